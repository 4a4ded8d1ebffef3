package plugin

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownMember = errors.New("unknown member")
	ErrKindMismatch  = errors.New("member kind mismatch")
	ErrReadOnly      = errors.New("property is read-only")
)

// ConflictError reports two contributions claiming the same new name.
// Owner is the plugin (or HostOwner) that defined the name first.
type ConflictError struct {
	Plugin string
	Member string
	Owner  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("plugin %q: member %q already defined by %q", e.Plugin, e.Member, e.Owner)
}

// ShapeError reports a contribution that does not match the kind it claims
type ShapeError struct {
	Plugin string
	Member string
	Kind   Kind
	Reason string
}

func (e *ShapeError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("plugin %q: malformed %s: %s", e.Plugin, e.Kind, e.Reason)
	}
	return fmt.Sprintf("plugin %q: malformed %s %q: %s", e.Plugin, e.Kind, e.Member, e.Reason)
}
