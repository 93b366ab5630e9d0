package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/trading-academy/internal/lib/apperr"
	"github.com/magabrotheeeer/trading-academy/internal/lib/logger"
	"github.com/magabrotheeeer/trading-academy/internal/models"
	services "github.com/magabrotheeeer/trading-academy/internal/services/users"
)

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) ListUsers(ctx context.Context, now time.Time, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, now, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *UserRepoMock) UpdateUserRole(ctx context.Context, userID string, role models.Role) error {
	return m.Called(ctx, userID, role).Error(0)
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	users := []*models.User{{ID: "u1", SubscriptionStatus: models.EffectiveExpired}}

	tests := []struct {
		role    models.Role
		allowed bool
	}{
		{models.RoleAdmin, true},
		{models.RoleManager, true},
		{models.RoleSupport, true},
		{models.RoleUser, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			repo := new(UserRepoMock)
			repo.On("ListUsers", ctx, now, 10, 0).Return(users, nil).Maybe()
			svc := services.NewUserService(repo, logger.Discard(), services.WithClock(func() time.Time { return now }))

			got, err := svc.List(ctx, models.Actor{ID: "x", Role: tt.role}, 10, 0)
			if !tt.allowed {
				assert.ErrorIs(t, err, apperr.ErrForbidden)
				repo.AssertNotCalled(t, "ListUsers", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, users, got)
		})
	}
}

func TestUserService_SetRole(t *testing.T) {
	ctx := context.Background()
	admin := models.Actor{ID: "admin-1", Role: models.RoleAdmin}

	tests := []struct {
		name    string
		actor   models.Actor
		userID  string
		role    models.Role
		setup   func(r *UserRepoMock)
		wantErr error
	}{
		{
			name:   "admin promotes user",
			actor:  admin,
			userID: "u1",
			role:   models.RoleSupport,
			setup: func(r *UserRepoMock) {
				r.On("UpdateUserRole", ctx, "u1", models.RoleSupport).Return(nil).Once()
			},
		},
		{
			name:    "manager has no role management",
			actor:   models.Actor{ID: "m1", Role: models.RoleManager},
			userID:  "u1",
			role:    models.RoleAdmin,
			setup:   func(*UserRepoMock) {},
			wantErr: apperr.ErrForbidden,
		},
		{
			name:    "unknown role",
			actor:   admin,
			userID:  "u1",
			role:    "owner",
			setup:   func(*UserRepoMock) {},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "admin cannot demote self",
			actor:   admin,
			userID:  "admin-1",
			role:    models.RoleUser,
			setup:   func(*UserRepoMock) {},
			wantErr: apperr.ErrInvalidState,
		},
		{
			name:   "unknown user",
			actor:  admin,
			userID: "ghost",
			role:   models.RoleUser,
			setup: func(r *UserRepoMock) {
				r.On("UpdateUserRole", ctx, "ghost", models.RoleUser).Return(apperr.NotFound("user not found")).Once()
			},
			wantErr: apperr.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			tt.setup(repo)
			svc := services.NewUserService(repo, logger.Discard())

			err := svc.SetRole(ctx, tt.actor, tt.userID, tt.role)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}
