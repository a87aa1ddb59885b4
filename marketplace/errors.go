package marketplace

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors returned by the core. Callers test with errors.Is and turn
// them into inline messages; nothing here is fatal to the process.
var (
	// ErrNotFound means an update or lookup referenced an id that is not in
	// the stored collection. Remove of a missing id is deliberately a no-op
	// and does not return this.
	ErrNotFound = errors.New("entity not found")

	// ErrNotLoggedIn means an operation needed the current session user and
	// there is none.
	ErrNotLoggedIn = errors.New("no user logged in")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password, so a login prompt can't be used to probe for accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmptyCart means checkout was attempted with nothing in the cart.
	ErrEmptyCart = errors.New("cart is empty")
)

// StorageError wraps a failed read or write against the key-value store. A
// read failure is surfaced instead of being folded into "empty collection" so
// callers can distinguish corruption from no-data-yet.
type StorageError struct {
	Op  string // "read", "write" or "delete"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ValidationError reports missing or malformed form fields. It never reaches
// storage; the operation fails before any mutation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, f := range names {
		parts = append(parts, f+": "+e.Fields[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
