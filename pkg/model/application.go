package model

import (
	"errors"
	"sync"

	"github.com/btmesh-tools/meshnode-go/pkg/wire"
)

// Application errors.
var (
	ErrElementIndex = errors.New("element index does not match position")
)

// Application is the unit registered with the mesh daemon: an ordered
// sequence of elements plus the company/product/version identifier triple.
// Exactly one Application is registered per process.
type Application struct {
	mu sync.RWMutex

	companyID uint16
	productID uint16
	versionID uint16

	elements []*Element
}

// NewApplication creates an application with the given identity triple.
func NewApplication(companyID, productID, versionID uint16) *Application {
	return &Application{
		companyID: companyID,
		productID: productID,
		versionID: versionID,
	}
}

// CompanyID returns the company identifier.
func (a *Application) CompanyID() uint16 {
	return a.companyID
}

// ProductID returns the product identifier.
func (a *Application) ProductID() uint16 {
	return a.productID
}

// VersionID returns the version identifier.
func (a *Application) VersionID() uint16 {
	return a.versionID
}

// AddElement appends an element. The element's index must equal its
// position in the sequence; insertion order is element address order.
func (a *Application) AddElement(e *Element) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if e.Index() != len(a.elements) {
		return ErrElementIndex
	}
	a.elements = append(a.elements, e)
	return nil
}

// Element returns the element at index, or nil if out of range.
func (a *Application) Element(index int) *Element {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if index < 0 || index >= len(a.elements) {
		return nil
	}
	return a.elements[index]
}

// Elements returns all elements in index order.
func (a *Application) Elements() []*Element {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make([]*Element, len(a.elements))
	copy(result, a.elements)
	return result
}

// ElementCount returns the number of elements.
func (a *Application) ElementCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.elements)
}

// ElementModelIDs returns the SIG model IDs advertised for the element at
// index, or nil if out of range.
func (a *Application) ElementModelIDs(index int) []uint16 {
	e := a.Element(index)
	if e == nil {
		return nil
	}
	return e.ModelIDs()
}

// Dispatch routes an inbound message to the element at index.
// Messages for unknown elements are dropped.
func (a *Application) Dispatch(index int, msg wire.Message) {
	if e := a.Element(index); e != nil {
		e.Dispatch(msg)
	}
}

// Close releases resources held by every element's models.
func (a *Application) Close() {
	for _, e := range a.Elements() {
		e.Close()
	}
}
