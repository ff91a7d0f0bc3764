package dispatch

import (
	"errors"
	"fmt"

	"github.com/Rohith-2027/cab-booking-backend/internal/models"
)

// InvalidInputError signals a malformed or out-of-range request field.
// Nothing has been written when it is returned.
type InvalidInputError struct {
	Field string
	Msg   string
}

func (e InvalidInputError) Error() string {
	if e.Field != "" && e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "invalid input"
}

// StateTransitionError signals an operation attempted from a booking
// status outside its legal source set. The transaction rolls back fully.
type StateTransitionError struct {
	Current models.BookingStatus
	Op      string
}

func (e StateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a booking in status %q", e.Op, e.Current)
}

type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// UnauthorizedError signals that the actor does not own or match the
// resource being operated on. Distinct from NotFound so callers can
// tell "not yours" from "does not exist".
type UnauthorizedError struct {
	Msg string
}

func (e UnauthorizedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "unauthorized"
}

// ResourceUnavailableError signals that no matching driver or vehicle
// is free, a shift overlaps, or an active trip blocks the operation.
type ResourceUnavailableError struct {
	Resource string
	Msg      string
}

func (e ResourceUnavailableError) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s unavailable", e.Resource)
	default:
		return "resource unavailable"
	}
}

// AlreadyProcessedError marks the idempotent no-op path, e.g. a cash
// confirmation for a payment that is already paid. The caller gets a
// distinct result, not a rollback-with-failure.
type AlreadyProcessedError struct {
	Msg string
}

func (e AlreadyProcessedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "already processed"
}

// InternalError wraps unexpected storage failures. The underlying
// cause is logged server-side, never shown to the caller.
type InternalError struct {
	Err error
}

func (e InternalError) Error() string {
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsInvalidInput(err error) bool {
	var target InvalidInputError
	return errors.As(err, &target)
}

func IsStateTransition(err error) bool {
	var target StateTransitionError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsResourceUnavailable(err error) bool {
	var target ResourceUnavailableError
	return errors.As(err, &target)
}

func IsAlreadyProcessed(err error) bool {
	var target AlreadyProcessedError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// asDispatchError passes typed dispatch errors through untouched and
// wraps anything else (driver errors, connection failures) as internal.
func asDispatchError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case IsInvalidInput(err), IsStateTransition(err), IsNotFound(err),
		IsUnauthorized(err), IsResourceUnavailable(err),
		IsAlreadyProcessed(err), IsInternal(err):
		return err
	}
	return InternalError{Err: err}
}
