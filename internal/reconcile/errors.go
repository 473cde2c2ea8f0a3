package reconcile

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
)

var (
	// ErrMissingSource is returned before any processing when the backend
	// source, or both agency sources, were not supplied.
	ErrMissingSource = eris.New("reconcile: missing required source")

	// ErrSourceRead classifies failures to open or parse a supplied source.
	ErrSourceRead = eris.New("reconcile: source read failure")
)

// SourceError wraps a read failure with the source it came from.
type SourceError struct {
	Kind SourceKind
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("reconcile: read %s source %q: %v", e.Kind, e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is makes every SourceError match ErrSourceRead.
func (e *SourceError) Is(target error) bool {
	return target == ErrSourceRead
}

// IsSourceRead reports whether err is a source read failure.
func IsSourceRead(err error) bool {
	return errors.Is(err, ErrSourceRead)
}

// IsMissingSource reports whether err means a required source was absent.
func IsMissingSource(err error) bool {
	return errors.Is(err, ErrMissingSource)
}
