package redirect

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTarget    = errors.New("invalid redirect target")
	ErrTooManyRedirects = errors.New("too many redirects")
)

// RedirectError is returned when a redirect chain cannot be resolved. Hops
// holds every hop observed up to and including the offending one.
type RedirectError struct {
	Reason string
	Target string
	Hops   []Hop
	Err    error
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirect to %q: %s (after %d hops)", e.Target, e.Reason, len(e.Hops))
}

func (e *RedirectError) Unwrap() error {
	return e.Err
}
