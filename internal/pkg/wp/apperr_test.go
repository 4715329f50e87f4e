package wp

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/kaarshe/core/internal/pkg/apperr"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
)

func TestConfigError(t *testing.T) {
	assert.NoError(t, ConfigError(nil, "Contact"))

	e := apperr.As(ConfigError(ErrNoBaseURL, "Contact"))
	assert.Equal(t, http.StatusInternalServerError, e.Status)
	assert.Equal(t, "Missing WORDPRESS_API_BASE", e.Message)

	e = apperr.As(ConfigError(fmt.Errorf("wrap: %w", ErrNoCredentials), "Book speaking"))
	assert.Equal(t, http.StatusNotImplemented, e.Status)
	assert.Contains(t, e.Message, "Book speaking backend not configured.")
}

func TestWriteError(t *testing.T) {
	e := apperr.As(WriteError(&StatusError{Status: 401, Body: "nope"}, "contact submit"))
	assert.Equal(t, http.StatusBadGateway, e.Status)
	assert.Equal(t, "WordPress contact submit failed (401). nope", e.Message)
	assert.Equal(t, 401, e.UpstreamStatus)

	e = apperr.As(WriteError(errors.New("dial tcp: refused"), "contact submit"))
	assert.Equal(t, apperr.KindInternal, e.Kind)
}

func TestReadError(t *testing.T) {
	assert.NoError(t, ReadError(nil, "posts"))

	e := apperr.As(ReadError(ErrNoBaseURL, "posts"))
	assert.Equal(t, http.StatusInternalServerError, e.Status)

	e = apperr.As(ReadError(&StatusError{Status: 404, Body: "{}"}, "pages"))
	assert.Equal(t, http.StatusBadGateway, e.Status)
	assert.Equal(t, "WordPress fetch failed (404) pages", e.Message)

	e = apperr.As(ReadError(fmt.Errorf("list: %w", gobreaker.ErrOpenState), "posts"))
	assert.Equal(t, apperr.KindUpstream, e.Kind)
	assert.Equal(t, "WordPress is temporarily unavailable", e.Message)
}
