package mock

import (
	"sync"

	"github.com/btmesh-tools/meshnode-go/pkg/meshapi"
)

// Agent is a provisioning agent for tests and simulation mode. It declares
// the output-numeric and "other" OOB capabilities and records displayed
// codes.
type Agent struct {
	mu sync.Mutex

	displayed []uint32
}

// Compile-time check: *Agent implements meshapi.ProvisionAgent.
var _ meshapi.ProvisionAgent = (*Agent)(nil)

// NewAgent creates a mock provisioning agent.
func NewAgent() *Agent {
	return &Agent{}
}

// Capabilities declares the output-numeric display and the "other" OOB
// class.
func (a *Agent) Capabilities() meshapi.Capabilities {
	return meshapi.Capabilities{OutputNumeric: true, OtherOOB: true}
}

// DisplayNumeric records the OOB code instead of displaying it.
func (a *Agent) DisplayNumeric(number uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.displayed = append(a.displayed, number)
}

// Displayed returns all recorded OOB codes.
func (a *Agent) Displayed() []uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	result := make([]uint32, len(a.displayed))
	copy(result, a.displayed)
	return result
}
