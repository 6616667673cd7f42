package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	h "campusevents/internal/delivery/http/helpers"
	"campusevents/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	token string
	user  *domain.User
	err   error
}

func (f *fakeAuthService) Register(ctx context.Context, name, email, password, role string) (string, *domain.User, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) h.APIResponse {
	t.Helper()
	var envelope h.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	return envelope
}

func TestAuthController_Register(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		serviceErr   error
		wantStatus   int
		wantErrCode  string
	}{
		{
			name:       "success",
			body:       `{"name":"Asha","email":"asha@example.com","password":"secret1"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:        "invalid json",
			body:        `{invalid`,
			wantStatus:  http.StatusBadRequest,
			wantErrCode: h.ErrCodeBadRequest,
		},
		{
			name:        "missing name",
			body:        `{"email":"asha@example.com","password":"secret1"}`,
			wantStatus:  http.StatusBadRequest,
			wantErrCode: h.ErrCodeBadRequest,
		},
		{
			name:        "bad email format",
			body:        `{"name":"Asha","email":"nope","password":"secret1"}`,
			wantStatus:  http.StatusBadRequest,
			wantErrCode: h.ErrCodeBadRequest,
		},
		{
			name:        "short password",
			body:        `{"name":"Asha","email":"asha@example.com","password":"abc"}`,
			wantStatus:  http.StatusBadRequest,
			wantErrCode: h.ErrCodeBadRequest,
		},
		{
			name:        "admin role rejected",
			body:        `{"name":"Asha","email":"asha@example.com","password":"secret1","role":"admin"}`,
			wantStatus:  http.StatusBadRequest,
			wantErrCode: h.ErrCodeBadRequest,
		},
		{
			name:        "unknown field rejected",
			body:        `{"name":"Asha","email":"asha@example.com","password":"secret1","surprise":true}`,
			wantStatus:  http.StatusBadRequest,
			wantErrCode: h.ErrCodeBadRequest,
		},
		{
			name:        "duplicate email",
			body:        `{"name":"Asha","email":"asha@example.com","password":"secret1"}`,
			serviceErr:  domain.ErrDuplicateEmail,
			wantStatus:  http.StatusConflict,
			wantErrCode: h.ErrCodeConflict,
		},
		{
			name:        "service failure",
			body:        `{"name":"Asha","email":"asha@example.com","password":"secret1"}`,
			serviceErr:  assert.AnError,
			wantStatus:  http.StatusInternalServerError,
			wantErrCode: h.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAuthService{
				token: "jwt-token",
				user:  &domain.User{ID: "user-1", Email: "asha@example.com", Role: domain.RoleStudent},
				err:   tt.serviceErr,
			}
			ctrl := NewAuthController(testLogger(), fake)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			ctrl.Register(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr)
			if tt.wantErrCode != "" {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantErrCode, envelope.Error.Code)
				return
			}
			require.Nil(t, envelope.Error)
			data, err := json.Marshal(envelope.Data)
			require.NoError(t, err)
			var resp AuthResponse
			require.NoError(t, json.Unmarshal(data, &resp))
			assert.Equal(t, "jwt-token", resp.Token)
			require.NotNil(t, resp.User)
			assert.Equal(t, "user-1", resp.User.ID)
		})
	}
}

func TestAuthController_Login(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		serviceErr  error
		wantStatus  int
		wantErrCode string
	}{
		{
			name:       "success",
			body:       `{"email":"asha@example.com","password":"secret1"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:        "missing password",
			body:        `{"email":"asha@example.com"}`,
			wantStatus:  http.StatusBadRequest,
			wantErrCode: h.ErrCodeBadRequest,
		},
		{
			name:        "bad credentials",
			body:        `{"email":"asha@example.com","password":"wrong1"}`,
			serviceErr:  domain.ErrInvalidGrant,
			wantStatus:  http.StatusUnauthorized,
			wantErrCode: h.ErrCodeUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAuthService{
				token: "jwt-token",
				user:  &domain.User{ID: "user-1", Email: "asha@example.com"},
				err:   tt.serviceErr,
			}
			ctrl := NewAuthController(testLogger(), fake)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			ctrl.Login(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr)
			if tt.wantErrCode != "" {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantErrCode, envelope.Error.Code)
				return
			}
			require.Nil(t, envelope.Error)
		})
	}
}
