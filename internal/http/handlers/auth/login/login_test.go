package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/trading-academy/internal/models"
	authservice "github.com/magabrotheeeer/trading-academy/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Login(ctx context.Context, username, password string) (string, models.Role, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Get(1).(models.Role), args.Error(2)
}

func TestLoginHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*AuthServiceMock)
		wantStatusCode int
		wantToken      string
		wantError      string
	}{
		{
			name: "success",
			body: `{"username":"trader","password":"secret123"}`,
			setupMock: func(m *AuthServiceMock) {
				m.On("Login", mock.Anything, "trader", "secret123").Return("jwt-token", models.RoleUser, nil)
			},
			wantStatusCode: http.StatusOK,
			wantToken:      "jwt-token",
		},
		{
			name:           "bad json",
			body:           `{"username":`,
			setupMock:      func(*AuthServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "missing password",
			body:           `{"username":"trader"}`,
			setupMock:      func(*AuthServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is a required field",
		},
		{
			name: "wrong password",
			body: `{"username":"trader","password":"nope"}`,
			setupMock: func(m *AuthServiceMock) {
				m.On("Login", mock.Anything, "trader", "nope").Return("", models.Role(""), authservice.ErrInvalidCredentials)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "invalid credentials",
		},
		{
			name: "storage failure",
			body: `{"username":"trader","password":"secret123"}`,
			setupMock: func(m *AuthServiceMock) {
				m.On("Login", mock.Anything, "trader", "secret123").Return("", models.Role(""), errors.New("db down"))
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "internal service error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(AuthServiceMock)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				data := got["data"].(map[string]any)
				assert.Equal(t, tt.wantToken, data["token"])
				assert.Equal(t, "user", data["role"])
			}
			svc.AssertExpectations(t)
		})
	}
}
