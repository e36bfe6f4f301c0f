package upload

import (
	"fmt"
	"strings"
)

// ValidationError reports required upload fields that were absent. Raised
// before any network effect: no key is generated and no state transition
// begins.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("upload: missing required fields: %s", strings.Join(e.Missing, ", "))
}

// StorageError reports a phase-1 object-store write failure. The task ends
// at StateFailedStore; metadata registration was never attempted, so no
// orphan exists (the store is atomic per object).
type StorageError struct {
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("upload: storing object %s: %v", e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// RegistrationError reports a phase-2 metadata registration failure after a
// successful store. The object written in phase 1 remains in the store with
// no referencing metadata record — an orphan. Cleanup is owned by an
// out-of-band reconciliation process, not by this subsystem; the key is
// carried here so operators can find the object.
type RegistrationError struct {
	Key string
	Err error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("upload: registering metadata for %s (stored object orphaned): %v", e.Key, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}
