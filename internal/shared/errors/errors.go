package errors

import "errors"

// Domain errors
var (
	// Target errors
	ErrInvalidHost = errors.New("invalid host")
	ErrEmptyTarget = errors.New("target cannot be empty")

	// Probe errors
	ErrProbeUnavailable      = errors.New("probe unavailable")
	ErrMissingCredential     = errors.New("credential not configured")
	ErrAssessmentPending     = errors.New("upstream assessment not ready")
	ErrAssessmentFailed      = errors.New("upstream assessment failed")
	ErrUnexpectedStatus      = errors.New("unexpected upstream status")
	ErrResponseTooLarge      = errors.New("response body exceeds limit")
	ErrTitleNotFound         = errors.New("no title tag found")
	ErrDeserializationFailed = errors.New("deserialization failed")

	// Cache errors
	ErrCacheDisabled = errors.New("report cache disabled")
)
