package meshapi

import (
	"time"

	"github.com/btmesh-tools/meshnode-go/pkg/wire"
)

// Application is the daemon's view of the registered application: the
// per-element model advertisement plus the company/product/version triple.
// Vendor-specific models are excluded from ElementModelIDs.
type Application interface {
	CompanyID() uint16
	ProductID() uint16
	VersionID() uint16
	ElementCount() int
	ElementModelIDs(index int) []uint16
}

// Handler receives daemon-initiated signals. The service registers one
// handler per application; implementations must not block.
type Handler interface {
	// MessageReceived delivers one decrypted inbound message for the
	// element at index.
	MessageReceived(elementIndex int, msg wire.Message)

	// ServiceRemoved signals that the daemon is going away. The
	// application must tear down cleanly.
	ServiceRemoved()
}

// Capabilities are the out-of-band hints declared to the daemon when
// joining the network.
type Capabilities struct {
	// OutputNumeric indicates the node can display a numeric code.
	OutputNumeric bool

	// OtherOOB indicates an "other"-class out-of-band method.
	OtherOOB bool
}

// ModelConfig pairs a model ID with the configuration restored for it.
type ModelConfig struct {
	ModelID uint16
	Config  ModelSettings
}

// ModelSettings mirrors the daemon's persisted per-model configuration.
type ModelSettings struct {
	Bindings          []wire.KeyIndex
	HasBindings       bool
	PublicationPeriod time.Duration
	HasPeriod         bool
}

// ElementConfigMap is the attach payload: element index to the model
// configurations the daemon restored from its persistent store.
type ElementConfigMap map[int][]ModelConfig

// Daemon is the asynchronous RPC surface of the external mesh daemon.
//
// Join, Attach, and Leave complete through their continuations; Send and
// Publish return immediately after handing the payload to the daemon, with
// delivery failures reported out-of-band by the daemon itself.
type Daemon interface {
	// Join provisions a new node. Exactly one of onComplete (with the
	// assigned token) or onFailed (with a reason) is invoked later.
	Join(app Application, deviceUUID []byte, caps Capabilities,
		onComplete func(token uint64), onFailed func(reason string))

	// Attach registers a provisioned node's runtime handlers for this
	// process lifetime. On success the daemon reports the node's unicast
	// address and the element configuration map to re-apply.
	Attach(app Application, token uint64,
		onSuccess func(nodeAddr wire.Address, cfg ElementConfigMap),
		onError func(err error))

	// Leave permanently destroys the daemon's persisted state for token.
	Leave(token uint64, onSuccess func(), onError func(err error))

	// Send transmits a unicast request/response payload from the element
	// at elementIndex.
	Send(elementIndex int, dest wire.Address, key wire.KeyIndex, payload []byte) error

	// Publish emits an unsolicited publication for modelID from the
	// element at elementIndex, using the model's configured publish
	// address and key.
	Publish(elementIndex int, modelID uint16, payload []byte) error
}

// ProvisionAgent is the out-of-band provisioning agent. Join requires one;
// a node without an agent cannot be provisioned.
type ProvisionAgent interface {
	// Capabilities returns the OOB capabilities to declare on join.
	Capabilities() Capabilities

	// DisplayNumeric presents a numeric OOB code to the operator.
	DisplayNumeric(number uint32)
}
