package itr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common catalog conditions, checkable via errors.Is.
var (
	// ErrDuplicateRegistration indicates a name was registered more than once.
	ErrDuplicateRegistration = errors.New("itr: duplicate registration")

	// ErrUnknownIdent indicates a name was referenced but never registered.
	ErrUnknownIdent = errors.New("itr: unknown identifier")

	// ErrNotAlias indicates apply_type_aliases was asked to chase a name
	// that does not resolve to an Alias node.
	ErrNotAlias = errors.New("itr: not an alias")
)

// CatalogError carries context about a failed catalog operation.
type CatalogError struct {
	Name    string
	Message string
	Cause   error
}

func (e *CatalogError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("itr: %s: %s", e.Name, e.Message)
	}
	return fmt.Sprintf("itr: %s", e.Message)
}

func (e *CatalogError) Unwrap() error {
	return e.Cause
}

func newCatalogError(name, message string, cause error) *CatalogError {
	return &CatalogError{Name: name, Message: message, Cause: cause}
}
