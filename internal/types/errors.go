package types

import "errors"

// Sentinel errors for facewire operations. Protocol violations are
// programmer errors in the data-source implementation, never retried.
var (
	// ErrInvalidInterval indicates a time interval whose start is not
	// strictly before its end.
	ErrInvalidInterval = errors.New("time interval start must be before end")

	// ErrTypeMismatch indicates complication data whose type conflicts with
	// the type it must match (the timeline default, or the requested type).
	ErrTypeMismatch = errors.New("complication type mismatch")

	// ErrReservedType indicates a data source returned NOT_CONFIGURED or
	// EMPTY, which only the platform may produce.
	ErrReservedType = errors.New("reserved complication type")

	// ErrUnknownType indicates an unrecognized complication type tag.
	ErrUnknownType = errors.New("unknown complication type")

	// ErrPlaceholderFields indicates placeholder-marked fields outside a
	// NO_DATA placeholder payload.
	ErrPlaceholderFields = errors.New("placeholder fields outside NO_DATA")

	// ErrDynamicPreview indicates preview data carrying a dynamic value
	// expression, which editors cannot evaluate.
	ErrDynamicPreview = errors.New("preview data must not contain dynamic values")

	// ErrAlreadyResponded indicates a second response to the same request.
	ErrAlreadyResponded = errors.New("request already responded to")

	// ErrExecutorClosed indicates a task posted after executor shutdown.
	ErrExecutorClosed = errors.New("executor closed")

	// ErrUnsupportedType indicates a request for a type the source does not
	// declare in its configuration.
	ErrUnsupportedType = errors.New("complication type not supported by source")
)
