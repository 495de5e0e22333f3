package placeholder

import (
	"errors"
	"fmt"
)

// ErrInvalidSpec matches every *InvalidSpecError.
var ErrInvalidSpec = errors.New("invalid placeholder spec")

// InvalidSpecError reports a rejected kind or count.
type InvalidSpecError struct {
	Kind   string
	Count  int
	Reason string
}

func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("%v: kind=%q count=%d: %s", ErrInvalidSpec, e.Kind, e.Count, e.Reason)
}

func (e *InvalidSpecError) Unwrap() error { return ErrInvalidSpec }
