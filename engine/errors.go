package engine

import "errors"

var (
	// ErrInvalidInterval reports a malformed aggregation window interval.
	ErrInvalidInterval = errors.New("invalid aggregation interval")

	// ErrUnsupportedFormat reports an export format outside the known set.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrStore wraps failures of the underlying metric store.
	ErrStore = errors.New("metric store error")
)
