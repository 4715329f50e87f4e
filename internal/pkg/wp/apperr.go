package wp

import (
	"context"
	"errors"
	"fmt"

	"github.com/kaarshe/core/internal/pkg/apperr"
	"github.com/sony/gobreaker/v2"
)

// ConfigError maps a Configured failure to a client-facing error. feature
// names the backend in the message, e.g. "Contact".
func ConfigError(err error, feature string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNoBaseURL):
		return apperr.Misconfigured("Missing WORDPRESS_API_BASE")
	case errors.Is(err, ErrNoCredentials):
		return apperr.NotImplemented(feature + " backend not configured. Set WORDPRESS_APP_USER and WORDPRESS_APP_PASSWORD (Application Password) and ensure the CPT exists with show_in_rest=true.")
	default:
		return apperr.Misconfigured(err.Error())
	}
}

// WriteError maps a failed write. A non-2xx answer becomes a 502 carrying
// the upstream status and body; anything else is internal.
func WriteError(err error, action string) error {
	if err == nil {
		return nil
	}
	var se *StatusError
	if errors.As(err, &se) {
		return apperr.Upstream(fmt.Sprintf("WordPress %s failed (%d). %s", action, se.Status, se.Body), se.Status, se.Body, err)
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	return apperr.Internal(fmt.Sprintf("WordPress %s failed", action), err)
}

// ReadError maps a failed read. Every failure other than a missing base
// address is an upstream problem.
func ReadError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNoBaseURL) {
		return apperr.Misconfigured("Missing WORDPRESS_API_BASE")
	}
	var se *StatusError
	if errors.As(err, &se) {
		return apperr.Upstream(fmt.Sprintf("WordPress fetch failed (%d) %s", se.Status, what), se.Status, se.Body, err)
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperr.Upstream("WordPress is temporarily unavailable", 0, "", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Upstream(fmt.Sprintf("WordPress fetch timed out %s", what), 0, "", err)
	}
	return apperr.Upstream(fmt.Sprintf("WordPress fetch failed %s", what), 0, "", err)
}
