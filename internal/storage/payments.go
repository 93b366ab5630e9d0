package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/trading-academy/internal/lib/apperr"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

const paymentColumns = `id, subscription_id, user_id, amount, method, proof_key, status,
	admin_notes, reviewed_by, reviewed_at, created_at`

// CreatePayment сохраняет платёж в статусе pending.
func (s *Storage) CreatePayment(ctx context.Context, p models.Payment) (string, error) {
	const op = "storage.CreatePayment"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}

	query := `INSERT INTO payments (id, subscription_id, user_id, amount, method, proof_key, status)
			  VALUES ($1, $2, $3, $4, $5, $6, 'pending')
			  RETURNING id`
	var id string
	if err := s.conn(ctx).QueryRowContext(ctx, query,
		p.ID, p.SubscriptionID, p.UserID, p.Amount, p.Method, p.ProofKey).Scan(&id); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetPayment возвращает платёж по ID.
func (s *Storage) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	const op = "storage.GetPayment"
	p, err := scanPayment(s.conn(ctx).QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("payment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpdatePaymentStatus применяет решение review к платежу, только если он ещё pending.
//
// Условие status = 'pending' в UPDATE работает как compare-and-swap: из двух
// одновременных проверок одного платежа строку обновит только первая,
// вторая получит InvalidState.
func (s *Storage) UpdatePaymentStatus(ctx context.Context, review models.Review, adminID string, at time.Time) (*models.Payment, error) {
	const op = "storage.UpdatePaymentStatus"
	query := `UPDATE payments
			  SET status = $1, admin_notes = $2, reviewed_by = $3, reviewed_at = $4
			  WHERE id = $5 AND status = 'pending'
			  RETURNING ` + paymentColumns
	p, err := scanPayment(s.conn(ctx).QueryRowContext(ctx, query,
		review.Decision, review.AdminNotes, adminID, at, review.PaymentID))
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := s.GetPayment(ctx, review.PaymentID); getErr != nil {
			return nil, getErr
		}
		return nil, apperr.InvalidState("payment has already been reviewed")
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListPaymentsByUser возвращает платежи пользователя, новые первыми.
func (s *Storage) ListPaymentsByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Payment, error) {
	const op = "storage.ListPaymentsByUser"
	payments := []*models.Payment{}
	err := s.x.SelectContext(ctx, &payments,
		`SELECT `+paymentColumns+` FROM payments WHERE user_id = $1
		 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return payments, nil
}

// ListPaymentsByStatus возвращает платежи в статусе status, старые первыми.
func (s *Storage) ListPaymentsByStatus(ctx context.Context, status models.PaymentStatus, limit, offset int) ([]*models.Payment, error) {
	const op = "storage.ListPaymentsByStatus"
	payments := []*models.Payment{}
	err := s.x.SelectContext(ctx, &payments,
		`SELECT `+paymentColumns+` FROM payments WHERE status = $1
		 ORDER BY created_at, id LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return payments, nil
}

func scanPayment(row *sql.Row) (*models.Payment, error) {
	var p models.Payment
	var reviewedBy sql.NullString
	var reviewedAt sql.NullTime
	if err := row.Scan(&p.ID, &p.SubscriptionID, &p.UserID, &p.Amount, &p.Method, &p.ProofKey,
		&p.Status, &p.AdminNotes, &reviewedBy, &reviewedAt, &p.CreatedAt); err != nil {
		return nil, err
	}
	if reviewedBy.Valid {
		p.ReviewedBy = &reviewedBy.String
	}
	if reviewedAt.Valid {
		p.ReviewedAt = &reviewedAt.Time
	}
	return &p, nil
}
