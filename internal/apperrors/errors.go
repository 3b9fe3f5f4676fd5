package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the authenticated operator lacks the role required for an action.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates the requested transition is not valid for the entry's current
// state, or another request for the same entry is still in flight.
var ErrConflict = errors.New("conflicting state")

// ErrPrecondition indicates a local precondition (period selected, period open,
// entry date inside the period) failed before any remote call was made.
var ErrPrecondition = errors.New("precondition failed")

// ErrSessionExpired indicates the bearer token is no longer valid and the
// operator must sign in again.
var ErrSessionExpired = errors.New("session expired")

// ErrRemote wraps a rejection from the ledger authority; the wrapped message is
// the server's literal message and is surfaced verbatim, never retried.
var ErrRemote = errors.New("ledger authority rejected the request")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")
