package solver

import (
	"errors"
	"fmt"
)

// InvariantError reports a structurally invalid input or an internal inconsistency. Infeasible placements are never reported through it
type InvariantError struct {
	Entity string
	Id     string
	Reason string
}

func (err *InvariantError) Error() string {
	if err.Id == "" {
		return fmt.Sprintf("%v invariant violated: %v", err.Entity, err.Reason)
	}
	return fmt.Sprintf("%v \"%v\" invariant violated: %v", err.Entity, err.Id, err.Reason)
}

func newInvariantError(entity, id, format string, args ...any) *InvariantError {
	return &InvariantError{
		Entity: entity,
		Id:     id,
		Reason: fmt.Sprintf(format, args...),
	}
}

func IsInvariantError(err error) bool {
	var invariantError *InvariantError
	return errors.As(err, &invariantError)
}
