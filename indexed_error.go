package lanes

import (
	"errors"
	"fmt"
)

// IndexedError exposes the input index of a failed task for correlation.
// Errors returned by Run and delivered on Stream's errors channel implement it.
type IndexedError interface {
	error
	Unwrap() error
	TaskIndex() (int, bool)
}

type indexedError struct {
	err   error
	index int
}

func newIndexedError(err error, index int) error {
	if err == nil {
		return nil
	}
	return &indexedError{err: err, index: index}
}

func (e *indexedError) Error() string { return e.err.Error() }
func (e *indexedError) Unwrap() error { return e.err }

func (e *indexedError) TaskIndex() (int, bool) { return e.index, true }

func (e *indexedError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "task(index=%d): %+v", e.index, e.err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractTaskIndex returns the failing task's input index from err if present.
func ExtractTaskIndex(err error) (int, bool) {
	var ie IndexedError
	if errors.As(err, &ie) {
		return ie.TaskIndex()
	}
	return 0, false
}
