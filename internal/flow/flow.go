// Package flow tracks per-user conversational scratch state. A flow is a
// short text-collection exchange (jio creation, description amendment, item
// entry) that spans several inbound messages; between messages the collected
// fragments live here, keyed by user ID, never in storage.
//
// Scratch state is deliberately fragile: starting a new flow silently
// overwrites whatever flow the user had in progress, and a process restart
// drops all of it. Persisted jio state is never affected by a lost flow.
package flow

import (
	"sync"

	"github.com/supperjio/jiobot/internal/surface"
)

// Stage identifies what the next inbound text message from the user means.
type Stage int

const (
	// StageNone means the user has no flow in progress; inbound text is ignored.
	StageNone Stage = iota

	// StageAwaitingRestaurant collects the restaurant name of a new jio.
	StageAwaitingRestaurant

	// StageAwaitingDetails collects the description of a new jio.
	StageAwaitingDetails

	// StageAwaitingDescription collects a replacement description for an
	// existing jio.
	StageAwaitingDescription

	// StageAwaitingFood collects one item for the user's order.
	StageAwaitingFood
)

// State is one user's in-progress flow.
type State struct {
	Stage Stage

	// Restaurant holds the collected restaurant name between the
	// AwaitingRestaurant and AwaitingDetails stages of creation.
	Restaurant string

	// JioID is the target jio of an amendment or item-entry flow.
	JioID int64

	// PromptAddr is the address of the prompt message carrying a cancel
	// control, stripped when the flow finishes or is cancelled.
	PromptAddr *surface.Address
}

// Store holds the scratch state of all users. Safe for concurrent use,
// though the dispatcher drives it from a single goroutine.
type Store struct {
	mu     sync.Mutex
	states map[int64]State
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{states: map[int64]State{}}
}

// Begin starts a flow for the user, silently overwriting any flow already in
// progress.
func (s *Store) Begin(userID int64, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = st
}

// Get returns the user's current flow state, if any.
func (s *Store) Get(userID int64) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[userID]
	return st, ok
}

// Advance replaces the user's flow state with the next stage's state.
func (s *Store) Advance(userID int64, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = st
}

// Clear ends the user's flow. Clearing a user with no flow is a no-op.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
}
