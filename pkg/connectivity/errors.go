package connectivity

import "errors"

var (
	// ErrSearchCancelled is returned when a search pass or build was stopped
	// by the context or the progress reporter. Links found before the stop
	// are kept and the next query resumes from the remaining dirty items.
	ErrSearchCancelled = errors.New("connectivity: search cancelled")

	// ErrNilExecutor is returned by New when no executor is supplied.
	ErrNilExecutor = errors.New("connectivity: executor is nil")

	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("connectivity: invalid config")
)
