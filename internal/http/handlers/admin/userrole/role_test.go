package userrole

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/trading-academy/internal/http/middlewarectx"
	"github.com/magabrotheeeer/trading-academy/internal/lib/apperr"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

type UserServiceMock struct {
	mock.Mock
}

func (m *UserServiceMock) SetRole(ctx context.Context, actor models.Actor, userID string, role models.Role) error {
	return m.Called(ctx, actor, userID, role).Error(0)
}

const (
	adminID   = "2f0c6d1e-4a5b-4c7d-8e9f-0a1b2c3d4e5f"
	studentID = "7a8b9c0d-1e2f-4a3b-8c5d-6e7f8a9b0c1d"
	missingID = "9e8d7c6b-5a4f-4e3d-9c2b-1a0f9e8d7c6b"
)

func TestRoleHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	admin := models.Actor{ID: adminID, Role: models.RoleAdmin}

	tests := []struct {
		name      string
		userID    string
		body      string
		setupMock func(*UserServiceMock)
		wantCode  int
	}{
		{
			name:   "promote to support",
			userID: studentID,
			body:   `{"role":"support"}`,
			setupMock: func(m *UserServiceMock) {
				m.On("SetRole", mock.Anything, admin, studentID, models.RoleSupport).Return(nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name:      "unknown role",
			userID:    studentID,
			body:      `{"role":"owner"}`,
			setupMock: func(*UserServiceMock) {},
			wantCode:  http.StatusUnprocessableEntity,
		},
		{
			name:   "self demotion",
			userID: adminID,
			body:   `{"role":"user"}`,
			setupMock: func(m *UserServiceMock) {
				m.On("SetRole", mock.Anything, admin, adminID, models.RoleUser).Return(apperr.InvalidState("you cannot change your own role"))
			},
			wantCode: http.StatusConflict,
		},
		{
			name:   "unknown user",
			userID: missingID,
			body:   `{"role":"manager"}`,
			setupMock: func(m *UserServiceMock) {
				m.On("SetRole", mock.Anything, admin, missingID, models.RoleManager).Return(apperr.NotFound("user not found"))
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:      "malformed id is not found",
			userID:    "nobody",
			body:      `{"role":"manager"}`,
			setupMock: func(*UserServiceMock) {},
			wantCode:  http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(UserServiceMock)
			tt.setupMock(svc)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.userID)
			req := httptest.NewRequest(http.MethodPut, "/admin/users/"+tt.userID+"/role", bytes.NewBufferString(tt.body))
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithActor(ctx, admin))
			rec := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}
