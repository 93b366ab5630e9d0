package models

import "time"

// SubscriptionStatus хранимый статус подписки.
type SubscriptionStatus string

// Хранимые статусы подписки.
const (
	SubscriptionPending   SubscriptionStatus = "pending"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// EffectiveStatus статус подписки, вычисляемый на момент чтения из хранимого
// статуса и текущего времени. Именно он используется для проверки доступа.
type EffectiveStatus string

// Эффективные статусы подписки.
const (
	EffectiveNone    EffectiveStatus = "none"
	EffectivePending EffectiveStatus = "pending"
	EffectiveActive  EffectiveStatus = "active"
	EffectiveExpired EffectiveStatus = "expired"
)

// Subscription связывает пользователя с тарифным планом.
// StartDate и EndDate заполняются при подтверждении оплаты.
type Subscription struct {
	ID        string             `db:"id" json:"id"`
	UserID    string             `db:"user_id" json:"user_id"`
	PlanID    string             `db:"plan_id" json:"plan_id"`
	Status    SubscriptionStatus `db:"status" json:"status"`
	StartDate *time.Time         `db:"start_date" json:"start_date,omitempty"`
	EndDate   *time.Time         `db:"end_date" json:"end_date,omitempty"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
}

// SubscriptionView — подписка пользователя вместе с вычисленным статусом.
type SubscriptionView struct {
	Subscription *Subscription   `json:"subscription,omitempty"`
	Effective    EffectiveStatus `json:"effective_status"`
}

// DummySubscription тело запроса выбора тарифа.
type DummySubscription struct {
	PlanID string `json:"plan_id" validate:"required,uuid4"`
}

// ExpiringSubscription строка выборки для напоминаний об окончании подписки.
type ExpiringSubscription struct {
	SubscriptionID string    `db:"subscription_id"`
	Email          string    `db:"email"`
	Username       string    `db:"username"`
	PlanName       string    `db:"plan_name"`
	EndDate        time.Time `db:"end_date"`
}
