package browser

import (
	"errors"
	"fmt"
)

var (
	ErrNoPage   = errors.New("no page loaded")
	ErrEmptyURL = errors.New("empty url")
)

// NavigationBoundsError is returned by Back and Forward at a history edge
type NavigationBoundsError struct {
	Direction string
	Cursor    int
	Length    int
}

func (e *NavigationBoundsError) Error() string {
	if e.Length == 0 {
		return fmt.Sprintf("cannot go %s: history is empty", e.Direction)
	}
	return fmt.Sprintf("cannot go %s: at entry %d of %d", e.Direction, e.Cursor+1, e.Length)
}
