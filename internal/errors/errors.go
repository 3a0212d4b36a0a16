package errors

import "fmt"

const (
	ErrNotFound        = "NOT_FOUND"
	ErrInvalidState    = "INVALID_STATE"
	ErrBusy            = "BUSY"
	ErrRaceLost        = "RACE_LOST"
	ErrUpstreamFailure = "UPSTREAM_FAILURE"
	ErrUnauthorized    = "UNAUTHORIZED"
	ErrForbidden       = "FORBIDDEN"
	ErrConflict        = "CONFLICT"
	ErrValidation      = "VALIDATION"
	ErrInternal        = "INTERNAL"
)

type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func Wrap(code, msg string, err error) *DomainError {
	return &DomainError{Code: code, Message: msg, Err: err}
}

// --- Generic ---

func NewNotFound(entity, id string) *DomainError {
	return &DomainError{Code: ErrNotFound, Message: fmt.Sprintf("%s with id %s not found", entity, id)}
}

func NewInvalidState(msg string) *DomainError {
	return &DomainError{Code: ErrInvalidState, Message: msg}
}

func NewBusy(msg string) *DomainError {
	return &DomainError{Code: ErrBusy, Message: msg}
}

func NewRaceLost(msg string) *DomainError {
	return &DomainError{Code: ErrRaceLost, Message: msg}
}

func NewUpstreamFailure(msg string, err error) *DomainError {
	return &DomainError{Code: ErrUpstreamFailure, Message: msg, Err: err}
}

func NewUnauthorized(msg string) *DomainError {
	return &DomainError{Code: ErrUnauthorized, Message: msg}
}

func NewForbidden(msg string) *DomainError {
	return &DomainError{Code: ErrForbidden, Message: msg}
}

func NewConflict(msg string) *DomainError {
	return &DomainError{Code: ErrConflict, Message: msg}
}

func NewValidation(msg string) *DomainError {
	return &DomainError{Code: ErrValidation, Message: msg}
}

func NewInternal(msg string, err error) *DomainError {
	return &DomainError{Code: ErrInternal, Message: msg, Err: err}
}

// --- Mission ---

func MissionNotFound(id string) *DomainError {
	return NewNotFound("mission", id)
}

func MissionInvalidTransition(from, to string) *DomainError {
	return &DomainError{
		Code:    ErrInvalidState,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// --- Dispatch ---

func AssignmentBusy(missionID string) *DomainError {
	return NewBusy(fmt.Sprintf("mission %s is being dispatched, retry later", missionID))
}

func AssignmentCoolingDown(missionID string) *DomainError {
	return NewBusy(fmt.Sprintf("mission %s was attempted recently, retry later", missionID))
}

func NotCurrentCandidate(missionID, driverID string) *DomainError {
	return NewInvalidState(fmt.Sprintf("driver %s does not hold the open offer for mission %s", driverID, missionID))
}

func DriverAlreadyBooked(driverID string) *DomainError {
	return NewInvalidState(fmt.Sprintf("driver %s already holds an assigned mission", driverID))
}

// --- Driver ---

func DriverNotFound(id string) *DomainError {
	return NewNotFound("driver", id)
}

func DriverNotAssigned(missionID, driverID string) *DomainError {
	return NewForbidden(fmt.Sprintf("driver %s is not assigned to mission %s", driverID, missionID))
}
