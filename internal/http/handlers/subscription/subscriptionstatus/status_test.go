package subscriptionstatus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/trading-academy/internal/http/middlewarectx"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

type SubscriptionServiceMock struct {
	mock.Mock
}

func (m *SubscriptionServiceMock) Status(ctx context.Context, userID string) (*models.SubscriptionView, error) {
	args := m.Called(ctx, userID)
	view, _ := args.Get(0).(*models.SubscriptionView)
	return view, args.Error(1)
}

func TestStatusHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	student := models.Actor{ID: "u1", Role: models.RoleUser}
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	t.Run("expired subscription", func(t *testing.T) {
		svc := new(SubscriptionServiceMock)
		svc.On("Status", mock.Anything, "u1").Return(&models.SubscriptionView{
			Subscription: &models.Subscription{ID: "s1", Status: models.SubscriptionActive, EndDate: &end},
			Effective:    models.EffectiveExpired,
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/subscriptions/me", nil)
		req = req.WithContext(middlewarectx.WithActor(req.Context(), student))
		rec := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var got struct {
			Data models.SubscriptionView `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, models.EffectiveExpired, got.Data.Effective)
		assert.Equal(t, models.SubscriptionActive, got.Data.Subscription.Status)
	})

	t.Run("no subscription", func(t *testing.T) {
		svc := new(SubscriptionServiceMock)
		svc.On("Status", mock.Anything, "u1").Return(&models.SubscriptionView{Effective: models.EffectiveNone}, nil)

		req := httptest.NewRequest(http.MethodGet, "/subscriptions/me", nil)
		req = req.WithContext(middlewarectx.WithActor(req.Context(), student))
		rec := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"effective_status":"none"`)
	})

	t.Run("service error", func(t *testing.T) {
		svc := new(SubscriptionServiceMock)
		svc.On("Status", mock.Anything, "u1").Return(nil, errors.New("db down"))

		req := httptest.NewRequest(http.MethodGet, "/subscriptions/me", nil)
		req = req.WithContext(middlewarectx.WithActor(req.Context(), student))
		rec := httptest.NewRecorder()
		New(logger, svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
