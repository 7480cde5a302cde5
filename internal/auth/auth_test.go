package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcruz7/lancer/internal/auth"
)

func TestManagerRoundTrip(t *testing.T) {
	t.Parallel()

	manager := auth.NewManager("sufficiently-long-test-secret", time.Hour)
	userID := uuid.New()

	token, err := manager.Issue(userID)
	require.NoError(t, err)

	got, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestManagerRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	manager := auth.NewManager("sufficiently-long-test-secret", time.Hour)

	manager.WithClock(func() time.Time { return issued })
	token, err := manager.Issue(uuid.New())
	require.NoError(t, err)

	manager.WithClock(func() time.Time { return issued.Add(2 * time.Hour) })
	_, err = manager.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestManagerRejectsForeignSecret(t *testing.T) {
	t.Parallel()

	token, err := auth.NewManager("secret-one-secret-one-secret", time.Hour).Issue(uuid.New())
	require.NoError(t, err)

	_, err = auth.NewManager("secret-two-secret-two-secret", time.Hour).Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	manager := auth.NewManager("sufficiently-long-test-secret", time.Hour)
	userID := uuid.New()

	token, err := manager.Issue(userID)
	require.NoError(t, err)

	var seen uuid.UUID
	handler := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.UserID(r.Context())
		require.True(t, ok)
		seen = id
	}))

	t.Run("passes a valid token through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, seen)
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
