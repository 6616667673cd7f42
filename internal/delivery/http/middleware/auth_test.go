package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"campusevents/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVerifier accepts a single known token.
type fakeVerifier struct {
	token  string
	userID string
	role   domain.Role
}

func (f *fakeVerifier) Verify(token string) (string, domain.Role, error) {
	if token != f.token {
		return "", "", errors.New("invalid token")
	}
	return f.userID, f.role, nil
}

func identityEcho(t *testing.T, wantUserID string, wantRole domain.Role, called *bool) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		*called = true
		userID, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, wantUserID, userID)
		role, ok := RoleFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, wantRole, role)
		w.WriteHeader(http.StatusOK)
	}
}

func TestRequireAuth(t *testing.T) {
	verifier := &fakeVerifier{token: "good-token", userID: "user-1", role: domain.RoleStudent}

	t.Run("raw token accepted", func(t *testing.T) {
		called := false
		handler := RequireAuth(verifier)(identityEcho(t, "user-1", domain.RoleStudent, &called))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "good-token")
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("bearer prefix tolerated", func(t *testing.T) {
		called := false
		handler := RequireAuth(verifier)(identityEcho(t, "user-1", domain.RoleStudent, &called))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		called := false
		handler := RequireAuth(verifier)(func(w http.ResponseWriter, r *http.Request) { called = true })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		called := false
		handler := RequireAuth(verifier)(func(w http.ResponseWriter, r *http.Request) { called = true })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "forged-token")
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestOptionalAuth(t *testing.T) {
	verifier := &fakeVerifier{token: "good-token", userID: "user-1", role: domain.RoleStudent}

	t.Run("valid token sets identity", func(t *testing.T) {
		called := false
		handler := OptionalAuth(verifier)(identityEcho(t, "user-1", domain.RoleStudent, &called))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "good-token")
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.True(t, called)
	})

	t.Run("no token passes through anonymously", func(t *testing.T) {
		called := false
		handler := OptionalAuth(verifier)(func(w http.ResponseWriter, r *http.Request) {
			called = true
			_, ok := UserIDFromContext(r.Context())
			assert.False(t, ok)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.True(t, called)
	})

	t.Run("invalid token passes through anonymously", func(t *testing.T) {
		called := false
		handler := OptionalAuth(verifier)(func(w http.ResponseWriter, r *http.Request) {
			called = true
			_, ok := UserIDFromContext(r.Context())
			assert.False(t, ok)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "forged-token")
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.True(t, called)
	})
}

func TestRequireRole(t *testing.T) {
	t.Run("allowed role", func(t *testing.T) {
		called := false
		handler := RequireRole(domain.RoleOrganizer, domain.RoleAdmin)(func(w http.ResponseWriter, r *http.Request) { called = true })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(SetIdentity(req.Context(), "org-1", domain.RoleOrganizer))
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.True(t, called)
	})

	t.Run("disallowed role", func(t *testing.T) {
		called := false
		handler := RequireRole(domain.RoleAdmin)(func(w http.ResponseWriter, r *http.Request) { called = true })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(SetIdentity(req.Context(), "user-1", domain.RoleStudent))
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("no identity", func(t *testing.T) {
		called := false
		handler := RequireRole(domain.RoleAdmin)(func(w http.ResponseWriter, r *http.Request) { called = true })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
