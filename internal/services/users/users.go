// Package services реализует управление пользователями в админ-панели.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/trading-academy/internal/access"
	"github.com/magabrotheeeer/trading-academy/internal/lib/apperr"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// UserRepository определяет методы хранилища для пользователей.
type UserRepository interface {
	// ListUsers возвращает пользователей с эффективным статусом подписки на момент now.
	ListUsers(ctx context.Context, now time.Time, limit, offset int) ([]*models.User, error)
	UpdateUserRole(ctx context.Context, userID string, role models.Role) error
}

// UserService список пользователей и смена ролей.
type UserService struct {
	repo UserRepository
	log  *slog.Logger
	now  func() time.Time
}

// Option настраивает UserService.
type Option func(*UserService)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *UserService) { s.now = now }
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(repo UserRepository, log *slog.Logger, opts ...Option) *UserService {
	s := &UserService{repo: repo, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List возвращает пользователей. Требует доступа к разделу users.
func (s *UserService) List(ctx context.Context, actor models.Actor, limit, offset int) ([]*models.User, error) {
	if err := access.Authorize(actor.Role, access.Users); err != nil {
		return nil, err
	}
	return s.repo.ListUsers(ctx, s.now().UTC(), limit, offset)
}

// SetRole назначает пользователю роль. Требует доступа к разделу roleManagement.
// Администратор не может понизить сам себя.
func (s *UserService) SetRole(ctx context.Context, actor models.Actor, userID string, role models.Role) error {
	const op = "services.UserService.SetRole"

	if err := access.Authorize(actor.Role, access.RoleManagement); err != nil {
		return err
	}
	if !role.Valid() {
		return apperr.Validation("unknown role %q", role)
	}
	if actor.ID == userID && role != actor.Role {
		return apperr.InvalidState("you cannot change your own role")
	}
	if err := s.repo.UpdateUserRole(ctx, userID, role); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("role changed",
		slog.String("user_id", userID),
		slog.String("role", string(role)),
		slog.String("by", actor.ID),
	)
	return nil
}
