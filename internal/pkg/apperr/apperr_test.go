package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatuses(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation("x").Status)
	assert.Equal(t, http.StatusUnauthorized, Authorization("x").Status)
	assert.Equal(t, http.StatusConflict, Duplicate("x").Status)
	assert.Equal(t, http.StatusInternalServerError, Misconfigured("x").Status)
	assert.Equal(t, http.StatusNotImplemented, NotImplemented("x").Status)
	assert.Equal(t, http.StatusBadGateway, Upstream("x", 500, "boom", nil).Status)
}

func TestAsUnwrapsWrapped(t *testing.T) {
	base := Duplicate("Email already subscribed")
	wrapped := fmt.Errorf("subscribe: %w", base)

	got := As(wrapped)
	require.NotNil(t, got)
	assert.Same(t, base, got)
	assert.True(t, IsKind(wrapped, KindDuplicate))
	assert.False(t, IsKind(wrapped, KindUpstream))
}

func TestAsClassifiesUnknown(t *testing.T) {
	cause := errors.New("disk on fire")
	got := As(cause)
	assert.Equal(t, KindInternal, got.Kind)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.ErrorIs(t, got, cause)
	assert.Nil(t, As(nil))
}
