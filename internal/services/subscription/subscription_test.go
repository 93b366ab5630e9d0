package services_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/trading-academy/internal/lib/apperr"
	"github.com/magabrotheeeer/trading-academy/internal/lib/logger"
	"github.com/magabrotheeeer/trading-academy/internal/models"
	services "github.com/magabrotheeeer/trading-academy/internal/services/subscription"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetPlan(ctx context.Context, id string) (*models.SubscriptionPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionPlan), args.Error(1)
}

func (m *RepoMock) GetSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) CreateSubscription(ctx context.Context, sub models.Subscription) (string, error) {
	args := m.Called(ctx, sub)
	return args.String(0), args.Error(1)
}

// CacheMock хранит значения в памяти, копируя их через reflect, как это делает redis через JSON.
type CacheMock struct {
	mock.Mock
	data map[string]any
}

func newCache() *CacheMock { return &CacheMock{data: map[string]any{}} }

func (m *CacheMock) Get(_ context.Context, key string, result any) (bool, error) {
	v, ok := m.data[key]
	if !ok {
		return false, nil
	}
	reflect.ValueOf(result).Elem().Set(reflect.ValueOf(v))
	return true, nil
}

func (m *CacheMock) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *CacheMock) Invalidate(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

var (
	now   = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end   = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	plan  = &models.SubscriptionPlan{ID: "plan-1", Name: "Pro", DurationDays: 30}
)

func clock(t time.Time) services.Option {
	return services.WithClock(func() time.Time { return t })
}

func TestSubscriptionService_Select(t *testing.T) {
	ctx := context.Background()
	pending := &models.Subscription{ID: "s1", UserID: "u1", PlanID: "plan-1", Status: models.SubscriptionPending}
	active := &models.Subscription{ID: "s2", UserID: "u1", PlanID: "plan-1", Status: models.SubscriptionActive, StartDate: &start, EndDate: &end}

	tests := []struct {
		name       string
		at         time.Time
		planID     string
		setup      func(r *RepoMock)
		wantID     string
		wantCreate bool
		wantErr    error
	}{
		{
			name:   "first subscription",
			at:     now,
			planID: "plan-1",
			setup: func(r *RepoMock) {
				r.On("GetPlan", ctx, "plan-1").Return(plan, nil).Once()
				r.On("GetSubscription", ctx, "u1").Return(nil, nil).Once()
				r.On("CreateSubscription", ctx, mock.MatchedBy(func(s models.Subscription) bool {
					return s.UserID == "u1" && s.PlanID == "plan-1" && s.Status == models.SubscriptionPending &&
						s.StartDate == nil && s.EndDate == nil
				})).Return("new", nil).Once()
			},
			wantCreate: true,
		},
		{
			name:   "pending on same plan is returned",
			at:     now,
			planID: "plan-1",
			setup: func(r *RepoMock) {
				r.On("GetPlan", ctx, "plan-1").Return(plan, nil).Once()
				r.On("GetSubscription", ctx, "u1").Return(pending, nil).Once()
			},
			wantID: "s1",
		},
		{
			name:   "pending on another plan",
			at:     now,
			planID: "plan-2",
			setup: func(r *RepoMock) {
				r.On("GetPlan", ctx, "plan-2").Return(&models.SubscriptionPlan{ID: "plan-2"}, nil).Once()
				r.On("GetSubscription", ctx, "u1").Return(pending, nil).Once()
			},
			wantErr: apperr.ErrInvalidState,
		},
		{
			name:   "active subscription",
			at:     now,
			planID: "plan-1",
			setup: func(r *RepoMock) {
				r.On("GetPlan", ctx, "plan-1").Return(plan, nil).Once()
				r.On("GetSubscription", ctx, "u1").Return(active, nil).Once()
			},
			wantErr: apperr.ErrInvalidState,
		},
		{
			name:   "expired subscription allows renewal",
			at:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			planID: "plan-1",
			setup: func(r *RepoMock) {
				r.On("GetPlan", ctx, "plan-1").Return(plan, nil).Once()
				r.On("GetSubscription", ctx, "u1").Return(active, nil).Once()
				r.On("CreateSubscription", ctx, mock.Anything).Return("new", nil).Once()
			},
			wantCreate: true,
		},
		{
			name:   "unknown plan",
			at:     now,
			planID: "nope",
			setup: func(r *RepoMock) {
				r.On("GetPlan", ctx, "nope").Return(nil, apperr.NotFound("plan not found")).Once()
			},
			wantErr: apperr.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setup(repo)
			svc := services.NewSubscriptionService(repo, newCache(), logger.Discard(), clock(tt.at))

			sub, err := svc.Select(ctx, "u1", tt.planID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			if tt.wantCreate {
				assert.NotEmpty(t, sub.ID)
				assert.Equal(t, models.SubscriptionPending, sub.Status)
			} else {
				assert.Equal(t, tt.wantID, sub.ID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_StatusResolvesAtReadTime(t *testing.T) {
	ctx := context.Background()
	active := &models.Subscription{ID: "s2", UserID: "u1", Status: models.SubscriptionActive, StartDate: &start, EndDate: &end}

	repo := new(RepoMock)
	repo.On("GetSubscription", ctx, "u1").Return(active, nil).Once()
	cache := newCache()

	view, err := services.NewSubscriptionService(repo, cache, logger.Discard(), clock(now)).Status(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.EffectiveActive, view.Effective)

	// Та же закешированная запись после окончания периода уже expired.
	later := services.NewSubscriptionService(repo, cache, logger.Discard(), clock(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	view, err = later.Status(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.EffectiveExpired, view.Effective)
	assert.Equal(t, models.SubscriptionActive, active.Status, "stored record is never rewritten")

	repo.AssertNumberOfCalls(t, "GetSubscription", 1)
}

func TestSubscriptionService_StatusNone(t *testing.T) {
	ctx := context.Background()
	repo := new(RepoMock)
	repo.On("GetSubscription", ctx, "u1").Return(nil, nil).Once()
	cache := newCache()
	svc := services.NewSubscriptionService(repo, cache, logger.Discard(), clock(now))

	view, err := svc.Status(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.EffectiveNone, view.Effective)

	view, err = svc.Status(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.EffectiveNone, view.Effective, "cached absence")
	repo.AssertNumberOfCalls(t, "GetSubscription", 1)
}

func TestSubscriptionService_EffectiveBypassesCache(t *testing.T) {
	ctx := context.Background()
	active := &models.Subscription{ID: "s2", UserID: "u1", Status: models.SubscriptionActive, StartDate: &start, EndDate: &end}

	repo := new(RepoMock)
	repo.On("GetSubscription", ctx, "u1").Return(nil, nil).Once()
	repo.On("GetSubscription", ctx, "u1").Return(active, nil).Once()
	svc := services.NewSubscriptionService(repo, newCache(), logger.Discard(), clock(now))

	// Отсутствие подписки попало в кеш до подтверждения оплаты.
	view, err := svc.Status(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.EffectiveNone, view.Effective)

	status, err := svc.Effective(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.EffectiveActive, status)
	repo.AssertExpectations(t)
}

func TestSubscriptionService_PendingIsNotCached(t *testing.T) {
	ctx := context.Background()
	pending := &models.Subscription{ID: "s1", UserID: "u1", PlanID: "plan-1", Status: models.SubscriptionPending}
	approved := &models.Subscription{ID: "s1", UserID: "u1", PlanID: "plan-1", Status: models.SubscriptionActive, StartDate: &start, EndDate: &end}

	repo := new(RepoMock)
	repo.On("GetSubscription", ctx, "u1").Return(pending, nil).Once()
	repo.On("GetSubscription", ctx, "u1").Return(approved, nil).Once()
	cache := newCache()
	svc := services.NewSubscriptionService(repo, cache, logger.Discard(), clock(now))

	view, err := svc.Status(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.EffectivePending, view.Effective)
	assert.Empty(t, cache.data)

	// Оплата подтверждена: следующий запрос видит active сразу, без ожидания TTL.
	view, err = svc.Status(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.EffectiveActive, view.Effective)
	repo.AssertExpectations(t)
}

func TestSubscriptionService_RepositoryError(t *testing.T) {
	ctx := context.Background()
	repo := new(RepoMock)
	repo.On("GetSubscription", ctx, "u1").Return(nil, errors.New("db down")).Once()
	svc := services.NewSubscriptionService(repo, newCache(), logger.Discard(), clock(now))

	_, err := svc.Effective(ctx, "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
