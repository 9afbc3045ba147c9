package domain

import "errors"

// Error kinds. Operations wrap these with the concrete reason, so callers
// match with errors.Is and read the message for details.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrValidationFailed   = errors.New("validation failed")
	ErrModerationRejected = errors.New("content rejected by moderation")
	ErrListingNotFound    = errors.New("listing not found")
	ErrForbidden          = errors.New("not authorized to modify this listing")
	ErrUpstream           = errors.New("upstream failure")
)

// ErrObjectNotFound is returned by object stores for missing keys.
var ErrObjectNotFound = errors.New("object not found")

// Kind names used in API responses and metrics labels.
const (
	KindUnauthenticated    = "unauthenticated"
	KindValidationFailed   = "validation_failed"
	KindModerationRejected = "moderation_rejected"
	KindNotFound           = "not_found"
	KindForbidden          = "forbidden"
	KindUpstreamFailure    = "upstream_failure"
)

// KindOf classifies err. Anything not wrapping a known kind is an upstream failure.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrValidationFailed):
		return KindValidationFailed
	case errors.Is(err, ErrModerationRejected):
		return KindModerationRejected
	case errors.Is(err, ErrListingNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	default:
		return KindUpstreamFailure
	}
}
