// Package resolve looks up named object collections inside an event.
package resolve

import (
	"errors"
	"fmt"

	"github.com/justapithecus/objext/types"
)

// Sentinel errors for resolution failures. Both are recoverable: the event
// contributes zero records and processing continues.
var (
	// ErrCollectionNotFound indicates the event has no collection with the tag.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrTypeMismatch indicates the collection holds a different object kind.
	ErrTypeMismatch = errors.New("collection type mismatch")
)

// Error describes a failed resolution.
type Error struct {
	// Tag is the requested collection tag.
	Tag string
	// Want is the requested object kind.
	Want types.ObjectKind
	// Got is the kind found in the event (empty when not found).
	Got types.ObjectKind
	// Err is ErrCollectionNotFound or ErrTypeMismatch.
	Err error
}

func (e *Error) Error() string {
	if errors.Is(e.Err, ErrTypeMismatch) {
		return fmt.Sprintf("collection %q: %v (want %s, got %s)", e.Tag, e.Err, e.Want, e.Got)
	}
	return fmt.Sprintf("collection %q: %v", e.Tag, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Resolve returns the ordered objects of the collection named tag.
// The returned slice aliases the event and must not be modified.
// A collection with no objects resolves to an empty result and no error.
func Resolve(ev *types.Event, tag string, want types.ObjectKind) ([]types.PhysicsObject, error) {
	if ev == nil {
		return nil, &Error{Tag: tag, Want: want, Err: ErrCollectionNotFound}
	}
	coll, ok := ev.Collections[tag]
	if !ok {
		return nil, &Error{Tag: tag, Want: want, Err: ErrCollectionNotFound}
	}
	if coll.Kind != want {
		return nil, &Error{Tag: tag, Want: want, Got: coll.Kind, Err: ErrTypeMismatch}
	}
	return coll.Objects, nil
}
