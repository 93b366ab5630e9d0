package models

import "time"

// PaymentReviewedEvent сообщение в очередь уведомлений о результате проверки платежа.
type PaymentReviewedEvent struct {
	PaymentID  string        `json:"payment_id"`
	Email      string        `json:"email"`
	Username   string        `json:"username"`
	PlanName   string        `json:"plan_name"`
	Decision   PaymentStatus `json:"decision"`
	AdminNotes string        `json:"admin_notes,omitempty"`
	EndDate    *time.Time    `json:"end_date,omitempty"`
}

// ExpiringEvent сообщение о скором окончании подписки.
type ExpiringEvent struct {
	Email    string    `json:"email"`
	Username string    `json:"username"`
	PlanName string    `json:"plan_name"`
	EndDate  time.Time `json:"end_date"`
}

// DashboardStats агрегаты для панели управления.
type DashboardStats struct {
	Users               int   `db:"users" json:"users"`
	ActiveSubscriptions int   `db:"active_subscriptions" json:"active_subscriptions"`
	PendingPayments     int   `db:"pending_payments" json:"pending_payments"`
	Revenue             int64 `db:"revenue" json:"revenue"`
}
