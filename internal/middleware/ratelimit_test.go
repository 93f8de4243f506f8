package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/httprate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centsible/centsible-go/internal/model"
)

func TestRateLimitRejectsOverBudget(t *testing.T) {
	h := RateLimit(2, time.Hour, "test", httprate.KeyByIP)(okHandler())

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:2222").Code)

	rec := send("10.0.0.1:3333")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rec.Body.String())
	assert.Equal(t, "3600", rec.Header().Get("Retry-After"))

	// Another client is not affected by the first one's budget.
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1111").Code)
}

func TestRateLimitWindowResets(t *testing.T) {
	h := RateLimit(1, 300*time.Millisecond, "test", httprate.KeyByIP)(okHandler())

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1111"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, send())
	require.Equal(t, http.StatusTooManyRequests, send())

	time.Sleep(350 * time.Millisecond)
	assert.Equal(t, http.StatusOK, send())
}

func TestKeyByUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1111"

	// Unauthenticated requests fall back to the client IP.
	ipKey, err := KeyByUser(req)
	require.NoError(t, err)

	wantIP, err := httprate.KeyByIP(req)
	require.NoError(t, err)
	assert.Equal(t, wantIP, ipKey)

	ctx := ContextWithPrincipal(req.Context(), model.Principal{UserID: "u1"})
	userKey, err := KeyByUser(req.WithContext(ctx))
	require.NoError(t, err)
	assert.Equal(t, "user:u1", userKey)
}

func TestKeyByUserSeparatesUsersOnSharedIP(t *testing.T) {
	h := RateLimit(1, time.Hour, "test", KeyByUser)(okHandler())

	send := func(userID string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1111"
		ctx := ContextWithPrincipal(req.Context(), model.Principal{UserID: userID})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req.WithContext(ctx))
		return rec.Code
	}

	require.Equal(t, http.StatusOK, send("u1"))
	assert.Equal(t, http.StatusTooManyRequests, send("u1"))
	assert.Equal(t, http.StatusOK, send("u2"), "second user shares the IP but not the budget")
}
