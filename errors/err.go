package errors

import (
	"fmt"
)

var (
	ErrInvalidConfig  = fmt.Errorf("agenteat: invalid config")
	ErrNotFound       = fmt.Errorf("agenteat: not found")
	ErrInvalidParams  = fmt.Errorf("agenteat: invalid params")
	ErrNotInitialized = fmt.Errorf("agenteat: not initialized")
	ErrInternal       = fmt.Errorf("agenteat: internal error")
	ErrInvalidRequest = fmt.Errorf("agenteat: invalid request")
)

// DetailError carries a message meant for API clients while still matching
// its sentinel kind through errors.Is.
type DetailError struct {
	Kind   error
	Detail string
}

func (e *DetailError) Error() string {
	return e.Detail
}

func (e *DetailError) Unwrap() error {
	return e.Kind
}

func WithDetail(kind error, format string, args ...any) error {
	return WithStack(&DetailError{
		Kind:   kind,
		Detail: fmt.Sprintf(format, args...),
	})
}

// DetailOf returns the client-facing message of err, falling back to err.Error().
func DetailOf(err error) string {
	var d *DetailError
	if As(err, &d) {
		return d.Detail
	}
	return err.Error()
}
