package model

import (
	"errors"
	"sync"

	"github.com/btmesh-tools/meshnode-go/pkg/wire"
)

// Element errors.
var (
	ErrDuplicateModel = errors.New("duplicate model ID on element")
)

// Element is an addressable sub-unit of a node hosting an ordered list of
// models. Its index is the element's network address offset and is fixed
// at creation.
type Element struct {
	mu sync.RWMutex

	index  int
	models []Model
}

// NewElement creates an element with the given index.
func NewElement(index int) *Element {
	return &Element{index: index}
}

// Index returns the element index.
func (e *Element) Index() int {
	return e.index
}

// AddModel appends a model to the element.
// Returns ErrDuplicateModel if a model with the same ID is already present.
func (e *Element) AddModel(m Model) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, existing := range e.models {
		if existing.ModelID() == m.ModelID() {
			return ErrDuplicateModel
		}
	}
	e.models = append(e.models, m)
	return nil
}

// Models returns the element's models in insertion order.
func (e *Element) Models() []Model {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := make([]Model, len(e.models))
	copy(result, e.models)
	return result
}

// Dispatch fans an inbound message out to every model in insertion order.
// Each model decides recognition independently; earlier recognition does
// not stop delivery to later models.
func (e *Element) Dispatch(msg wire.Message) {
	for _, m := range e.Models() {
		m.ProcessMessage(msg)
	}
}

// Configure applies cfg to the first model matching modelID.
// No matching model is a silent no-op.
func (e *Element) Configure(modelID uint16, cfg Config) {
	for _, m := range e.Models() {
		if m.ModelID() == modelID {
			m.ApplyConfig(cfg)
			return
		}
	}
}

// ModelIDs returns the IDs of the element's SIG models, in insertion order.
// Vendor-specific models are excluded from the daemon's generic discovery
// surface.
func (e *Element) ModelIDs() []uint16 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := make([]uint16, 0, len(e.models))
	for _, m := range e.models {
		if m.VendorID() == NoVendor {
			ids = append(ids, m.ModelID())
		}
	}
	return ids
}

// Close releases every model that holds resources.
func (e *Element) Close() {
	for _, m := range e.Models() {
		if c, ok := m.(Closer); ok {
			c.Close()
		}
	}
}
