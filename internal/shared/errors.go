package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Provider errors
	ErrProviderUnavailable    = fmt.Errorf("provider unavailable")
	ErrProviderQuotaExceeded  = fmt.Errorf("%w: quota exceeded", ErrProviderUnavailable)
	ErrProviderRequestFailed  = fmt.Errorf("provider request failed")
	ErrAllSourcesFailed       = fmt.Errorf("all search methods failed")
	ErrLineNotFound           = fmt.Errorf("no match for line")
	ErrRenderSubmissionFailed = fmt.Errorf("render submission failed")
	ErrServiceUnavailable     = fmt.Errorf("service unavailable")
	ErrAPIRequest             = fmt.Errorf("API request failed")

	// Timeline errors
	ErrEmptyTimeline    = fmt.Errorf("timeline is empty")
	ErrIndexOutOfRange  = fmt.Errorf("index out of range")
	ErrEffectNotFound   = fmt.Errorf("effect not found")
	ErrJobNotFound      = fmt.Errorf("render job not found")
	ErrUnknownItemType  = fmt.Errorf("unknown timeline item type")
	ErrUnsupportedInput = fmt.Errorf("unsupported input")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)

// IsProviderUnavailable reports whether err means a provider could not be used at all (missing credential, quota).
func IsProviderUnavailable(err error) bool {
	return errors.Is(err, ErrProviderUnavailable)
}
