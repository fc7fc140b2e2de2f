package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// NodeState contains the persisted runtime state for a node.
type NodeState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Token is the textual node token (16 hex digits); empty when the
	// node has never joined or was removed.
	Token string `json:"token,omitempty"`

	// NodeAddr is the unicast address from the last successful attach.
	NodeAddr uint16 `json:"node_addr,omitempty"`

	// Elements holds the per-element model configuration last applied.
	Elements []ElementState `json:"elements,omitempty"`
}

// ElementState is the persisted configuration of one element.
type ElementState struct {
	Index  int          `json:"index"`
	Models []ModelState `json:"models,omitempty"`
}

// ModelState is the persisted configuration of one model.
type ModelState struct {
	ModelID uint16 `json:"model_id"`

	Bindings []uint16 `json:"bindings,omitempty"`

	// PublicationPeriodMS is the publication period in milliseconds;
	// zero means publication disabled.
	PublicationPeriodMS int64 `json:"publication_period_ms,omitempty"`
}

// NodeStateStore manages persistence of node state to a JSON file.
type NodeStateStore struct {
	mu   sync.Mutex
	path string
}

// NewNodeStateStore creates a new node state store.
func NewNodeStateStore(path string) *NodeStateStore {
	return &NodeStateStore{path: path}
}

// Path returns the backing file path.
func (s *NodeStateStore) Path() string {
	return s.path
}

// Save persists the node state to disk.
func (s *NodeStateStore) Save(state *NodeState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	state.SavedAt = time.Now()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

// Load reads the node state from disk.
// Returns nil, nil if the file doesn't exist (empty state).
func (s *NodeStateStore) Load() (*NodeState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state NodeState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Clear removes the state file. Called after a successful node remove,
// which destroys the daemon's configuration for the token.
func (s *NodeStateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
