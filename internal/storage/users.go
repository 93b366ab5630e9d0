package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/trading-academy/internal/lib/apperr"
	"github.com/magabrotheeeer/trading-academy/internal/lifecycle"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

const userColumns = `id, email, username, password_hash, role, subscription_status, created_at`

// CreateUser сохраняет нового пользователя и возвращает его ID.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}

	query := `INSERT INTO users (id, email, username, password_hash, role, subscription_status)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var id string
	err := s.conn(ctx).QueryRowContext(ctx, query,
		user.ID, user.Email, user.Username, user.PasswordHash, user.Role, user.SubscriptionStatus).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", apperr.Validation("user with this email or username already exists")
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetUserByUsername возвращает пользователя по имени.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	var u models.User
	err := s.x.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// GetUserByID возвращает пользователя по ID.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUserByID"
	var u models.User
	err := s.x.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// userListRow — пользователь вместе с его последней подпиской.
type userListRow struct {
	models.User
	SubStatus  sql.NullString `db:"sub_status"`
	SubEndDate sql.NullTime   `db:"sub_end_date"`
}

// ListUsers возвращает пользователей, новые первыми. SubscriptionStatus
// вычисляется по последней подписке на момент now, а не берётся из users.
func (s *Storage) ListUsers(ctx context.Context, now time.Time, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListUsers"
	query := `SELECT u.id, u.email, u.username, u.password_hash, u.role, u.subscription_status, u.created_at,
			         ls.status AS sub_status, ls.end_date AS sub_end_date
			  FROM users u
			  LEFT JOIN LATERAL (
			      SELECT status, end_date FROM subscriptions
			      WHERE user_id = u.id
			      ORDER BY created_at DESC, id DESC
			      LIMIT 1
			  ) ls ON true
			  ORDER BY u.created_at DESC, u.id
			  LIMIT $1 OFFSET $2`
	rows := []userListRow{}
	if err := s.x.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	users := make([]*models.User, 0, len(rows))
	for i := range rows {
		u := rows[i].User
		var sub *models.Subscription
		if rows[i].SubStatus.Valid {
			sub = &models.Subscription{Status: models.SubscriptionStatus(rows[i].SubStatus.String)}
			if rows[i].SubEndDate.Valid {
				end := rows[i].SubEndDate.Time
				sub.EndDate = &end
			}
		}
		u.SubscriptionStatus = lifecycle.Resolve(sub, now)
		users = append(users, &u)
	}
	return users, nil
}

// UpdateUserRole меняет роль пользователя.
func (s *Storage) UpdateUserRole(ctx context.Context, userID string, role models.Role) error {
	const op = "storage.UpdateUserRole"
	res, err := s.conn(ctx).ExecContext(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOne(res, op, "user not found")
}

// UpdateUserSubscriptionCache обновляет денормализованный статус подписки пользователя.
func (s *Storage) UpdateUserSubscriptionCache(ctx context.Context, userID string, status models.EffectiveStatus) error {
	const op = "storage.UpdateUserSubscriptionCache"
	res, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE users SET subscription_status = $1 WHERE id = $2`, status, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOne(res, op, "user not found")
}

func expectOne(res sql.Result, op, notFoundMsg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return apperr.NotFound("%s", notFoundMsg)
	}
	return nil
}
