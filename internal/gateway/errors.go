package gateway

import (
	"errors"
	"fmt"

	"github.com/finoracle/backoffice/internal/platform/httpx"
)

var (
	// ErrTransport covers network failures and any HTTP status >= 400.
	ErrTransport = fmt.Errorf("gateway: transport failure: %w", httpx.ErrUpstream)
	// ErrNoFixture is returned when a paged call fails and no fixture is bundled for the entity.
	ErrNoFixture = errors.New("gateway: no fixture for entity")
)

// StatusError reports a non-success HTTP status from the remote service.
type StatusError struct {
	Entity string
	Op     string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("gateway: %s %s returned status %d", e.Op, e.Entity, e.Code)
	}
	return fmt.Sprintf("gateway: %s %s returned status %d: %s", e.Op, e.Entity, e.Code, e.Body)
}

// Unwrap lets callers treat status failures the same as network failures.
func (e *StatusError) Unwrap() error {
	return ErrTransport
}
