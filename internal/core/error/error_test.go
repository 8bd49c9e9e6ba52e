package errx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapRedis(t *testing.T) {
	assert.Nil(t, WrapRedis(nil))

	notFound := WrapRedis(redis.Nil)
	require.Error(t, notFound)
	assert.Equal(t, http.StatusNotFound, StatusOf(notFound))
	assert.ErrorIs(t, notFound, ErrNotFound)
	assert.ErrorIs(t, notFound, redis.Nil)

	down := WrapRedis(errors.New("connection refused"))
	assert.Equal(t, http.StatusBadGateway, StatusOf(down))
	assert.NotErrorIs(t, down, ErrNotFound)
}

func TestWrappersCarrySentinels(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name     string
		err      error
		sentinel error
		status   int
	}{
		{"catalog", WrapCatalog(cause), ErrCatalogUnavailable, http.StatusServiceUnavailable},
		{"escalation", WrapEscalation(cause), ErrEscalationUnavailable, http.StatusBadGateway},
		{"parse", WrapParse(cause), ErrMalformedAnswer, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.ErrorIs(t, tt.err, cause)
			assert.Equal(t, tt.status, StatusOf(tt.err))
		})
	}
}

func TestAppErrorAs(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", WrapCatalog(errors.New("db down")))

	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, CatalogErrorMessage, appErr.Message)
	assert.Contains(t, appErr.Error(), "db down")
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("plain")))
}
