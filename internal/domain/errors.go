package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("resource not found")

// ErrSameClientTransfer rejects a guarantor change where the target client is
// the application's current client.
var ErrSameClientTransfer = errors.New("target client is the same as the current client")

// ErrMissingDeportationTemplate fails a deport action closed when no
// deportation fee template is configured. Checked before any write.
var ErrMissingDeportationTemplate = errors.New("no deportation cancellation-fee template configured")

// InvalidTransitionError rejects a status move the workflow graph does not
// allow, including any move out of a terminal state.
type InvalidTransitionError struct {
	From ApplicationStatus
	To   ApplicationStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// MissingRequiredDateError rejects a forward move whose target requires a
// date captured from a physical document.
type MissingRequiredDateError struct {
	Target ApplicationStatus
	Field  string
}

func (e *MissingRequiredDateError) Error() string {
	return fmt.Sprintf("transition to %s requires %s", e.Target, e.Field)
}

// DocumentsIncompleteError carries the outstanding document names so the UI
// can surface them. User-correctable, never retried automatically.
type DocumentsIncompleteError struct {
	Missing []string
}

func (e *DocumentsIncompleteError) Error() string {
	return "documents incomplete: " + strings.Join(e.Missing, ", ")
}

// IllegalCancellationError rejects a cancellation type that is not legal for
// the application's current status (including stale client state observing a
// now-terminal application).
type IllegalCancellationError struct {
	Status ApplicationStatus
	Type   CancellationType
}

func (e *IllegalCancellationError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("application in status %s cannot be cancelled", e.Status)
	}
	return fmt.Sprintf("cancellation type %s is not allowed in status %s", e.Type, e.Status)
}

// MixedCurrencyError rejects a blended refund total across more than one
// currency; there is no FX conversion in this core.
type MixedCurrencyError struct {
	Currencies []string
}

func (e *MixedCurrencyError) Error() string {
	return "mixed-currency ledger cannot be blended into one total: " + strings.Join(e.Currencies, ", ")
}
