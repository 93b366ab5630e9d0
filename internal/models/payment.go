package models

import "time"

// PaymentMethod способ оплаты.
type PaymentMethod string

// Поддерживаемые способы оплаты.
const (
	MethodCrypto PaymentMethod = "crypto"
	MethodBank   PaymentMethod = "bank"
)

// Valid сообщает, поддерживается ли способ оплаты.
func (m PaymentMethod) Valid() bool {
	return m == MethodCrypto || m == MethodBank
}

// PaymentStatus статус проверки платежа. approved и rejected — терминальные.
type PaymentStatus string

// Статусы платежа.
const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
)

// IsDecision сообщает, является ли статус допустимым решением администратора.
func (s PaymentStatus) IsDecision() bool {
	return s == PaymentApproved || s == PaymentRejected
}

// Payment платёж пользователя по подписке, ожидающий ручной проверки.
type Payment struct {
	ID             string        `db:"id" json:"id"`
	SubscriptionID string        `db:"subscription_id" json:"subscription_id"`
	UserID         string        `db:"user_id" json:"user_id"`
	Amount         int64         `db:"amount" json:"amount"`
	Method         PaymentMethod `db:"method" json:"method"`
	ProofKey       string        `db:"proof_key" json:"proof_key"`
	Status         PaymentStatus `db:"status" json:"status"`
	AdminNotes     string        `db:"admin_notes" json:"admin_notes,omitempty"`
	ReviewedBy     *string       `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time    `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}

// Review решение администратора по платежу.
type Review struct {
	PaymentID  string
	Decision   PaymentStatus
	AdminNotes string
}

// DummyPayment тело запроса отправки платежа.
type DummyPayment struct {
	SubscriptionID string `json:"subscription_id" validate:"required,uuid4"`
	Amount         int64  `json:"amount" validate:"required,gt=0"`
	Method         string `json:"method" validate:"required,oneof=crypto bank"`
	ProofKey       string `json:"proof_key" validate:"max=512"`
}

// DummyReview тело запроса проверки платежа.
type DummyReview struct {
	Decision   string `json:"decision" validate:"required,oneof=approved rejected"`
	AdminNotes string `json:"admin_notes" validate:"max=1000"`
}
