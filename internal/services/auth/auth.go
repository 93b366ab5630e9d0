// Package services содержит логику регистрации и аутентификации пользователей.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/trading-academy/internal/lib/apperr"
	"github.com/magabrotheeeer/trading-academy/internal/lib/jwt"
	"github.com/magabrotheeeer/trading-academy/internal/lib/password"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// ErrInvalidCredentials неверное имя пользователя или пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его ID.
	CreateUser(ctx context.Context, user models.User) (string, error)

	// GetUserByUsername возвращает пользователя по имени или NotFound.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByID возвращает пользователя по ID или NotFound.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// AuthService отвечает за регистрацию, вход и проверку JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register создает нового пользователя с ролью user и без подписки.
func (s *AuthService) Register(ctx context.Context, req models.DummyUser) (string, error) {
	return s.register(ctx, req, models.RoleUser)
}

// RegisterAdmin создает администратора. Используется только при первичной настройке.
func (s *AuthService) RegisterAdmin(ctx context.Context, req models.DummyUser) (string, error) {
	return s.register(ctx, req, models.RoleAdmin)
}

func (s *AuthService) register(ctx context.Context, req models.DummyUser, role models.Role) (string, error) {
	const op = "services.AuthService.Register"

	if req.Email == "" || req.Username == "" || req.Password == "" {
		return "", apperr.Validation("email, username and password are required")
	}
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return "", apperr.Validation("password is not acceptable")
	}
	user := models.User{
		ID:                 uuid.NewString(),
		Email:              req.Email,
		Username:           req.Username,
		PasswordHash:       hashed,
		Role:               role,
		SubscriptionStatus: models.EffectiveNone,
	}
	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", slog.String("user_id", id), slog.String("role", string(role)))
	return id, nil
}

// Login проверяет пароль и выдаёт JWT. Неизвестный пользователь и неверный
// пароль неразличимы для вызывающего.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (string, models.Role, error) {
	const op = "services.AuthService.Login"

	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		return "", "", ErrInvalidCredentials
	}
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", ErrInvalidCredentials
	}

	token, err := s.jwtMaker.GenerateToken(models.Actor{ID: user.ID, Username: user.Username, Role: user.Role})
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return token, user.Role, nil
}

// ValidateToken проверяет JWT и возвращает участника запроса с его текущей ролью.
//
// Из токена берётся только ID: роль читается из хранилища, поэтому понижение
// роли отзывает права сразу. Токен удалённого пользователя недействителен.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (models.Actor, error) {
	const op = "services.AuthService.ValidateToken"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return models.Actor{}, err
	}
	user, err := s.users.GetUserByID(ctx, claims.UserUID)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.Actor{}, fmt.Errorf("%s: %w: user no longer exists", op, jwt.ErrInvalidToken)
	}
	if err != nil {
		return models.Actor{}, fmt.Errorf("%s: %w", op, err)
	}
	if user.Role != models.Role(claims.Role) {
		s.log.Debug("role changed since token was issued",
			slog.String("user_id", user.ID),
			slog.String("token_role", claims.Role),
			slog.String("role", string(user.Role)),
		)
	}
	return models.Actor{ID: user.ID, Username: user.Username, Role: user.Role}, nil
}
