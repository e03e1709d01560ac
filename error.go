package recurrent

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArg indicates malformed construction or registration parameters,
	// e.g. a non-positive period or pool size, or a nil work function.
	ErrInvalidArg = errors.New("invalid argument")
	// ErrAlreadyEnded indicates the executor is shut down or aborted
	// and accepts no further registrations.
	ErrAlreadyEnded = errors.New("already ended")
	// ErrAborted indicates the executor tore itself down
	// because its dispatcher could not accept a task.
	ErrAborted = errors.New("aborted")
)

// PanicError is an error a panicking work function is converted into.
// The schedule survives the panic; PanicError is only observed through hooks.
type PanicError struct {
	Recovered any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: work fn panicked and was recovered. recovered value = %v", e.Recovered)
}
