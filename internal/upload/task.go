// Package upload drives the two-phase protocol for adding a document:
// write the blob to the object store, then register its metadata. Phase 2 is
// never issued before phase 1 completes, so a metadata record can never
// reference a key that does not exist. The reverse does not hold — a phase-2
// failure leaves an orphaned object behind, and this package deliberately
// does not attempt compensating deletion (see RegistrationError).
package upload

import "github.com/orefield/minedocs/internal/registry"

// State is the lifecycle position of one upload task.
//
//	StatePending → StateStored → StateRegistered        success path
//	StatePending → StateFailedStore                     phase 1 failure
//	StateStored  → StateFailedRegister                  phase 2 failure
type State int

const (
	StatePending State = iota
	StateStored
	StateRegistered
	StateFailedStore
	StateFailedRegister
)

// String returns the state name for logging and the attempt ledger.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateStored:
		return "stored"
	case StateRegistered:
		return "registered"
	case StateFailedStore:
		return "failed_store"
	case StateFailedRegister:
		return "failed_register"
	default:
		return "unknown"
	}
}

// Terminal reports whether the task has reached a final state.
func (s State) Terminal() bool {
	switch s {
	case StateRegistered, StateFailedStore, StateFailedRegister:
		return true
	default:
		return false
	}
}

// LocalFile is the file content captured for one upload attempt.
type LocalFile struct {
	Name     string
	MimeType string
	Size     int64
	Content  []byte
}

// Task is one upload attempt. Created per attempt and discarded once a
// terminal state is reached; re-submitting the same logical file creates a
// new Task with a new destination key (the protocol is not idempotent —
// duplicate submissions are a caller concern).
type Task struct {
	File        LocalFile
	MineID      string
	CategoryID  int
	AuthorityID int
	IssueDate   *registry.Date
	ExpiryDate  *registry.Date

	// DestinationKey is assigned by the coordinator before phase 1 and
	// never reused across attempts.
	DestinationKey string

	state State
}

// State returns the task's current lifecycle position.
func (t *Task) State() State {
	return t.state
}
