package lanes

import "errors"

const Namespace = "lanes"

var (
	ErrInvalidLimit = errors.New(
		Namespace + ": concurrency limit must be a positive integer",
	)
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")
	ErrTaskCancelled = errors.New(Namespace + ": task execution cancelled")
	ErrTaskPanicked  = errors.New(Namespace + ": task execution panicked")
)
