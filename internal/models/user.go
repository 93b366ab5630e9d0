// Package models содержит доменные структуры платформы: пользователей, тарифы,
// подписки, платежи, курсы и прогресс, а также DTO для приёма JSON-запросов.
package models

import "time"

// Role роль пользователя в системе.
type Role string

// Роли упорядочены по широте прав, но не образуют строгой иерархии:
// support и manager имеют пересекающиеся, но не вложенные наборы прав.
const (
	RoleUser    Role = "user"
	RoleSupport Role = "support"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// Valid сообщает, является ли роль одной из известных.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleSupport, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// User представляет зарегистрированного пользователя платформы.
// SubscriptionStatus — хранимая копия эффективного статуса на момент последнего
// изменения подписки. ListUsers пересчитывает его по последней подписке.
type User struct {
	ID                 string          `db:"id" json:"id"`
	Email              string          `db:"email" json:"email"`
	Username           string          `db:"username" json:"username"`
	PasswordHash       string          `db:"password_hash" json:"-"`
	Role               Role            `db:"role" json:"role"`
	SubscriptionStatus EffectiveStatus `db:"subscription_status" json:"subscription_status"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
}

// Actor — аутентифицированный участник запроса.
type Actor struct {
	ID       string
	Username string
	Role     Role
}

// DummyUser используется для приёма данных регистрации из JSON-запроса.
type DummyUser struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// DummyLogin используется для приёма данных входа.
type DummyLogin struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// DummyRole тело запроса смены роли.
type DummyRole struct {
	Role string `json:"role" validate:"required,oneof=user support manager admin"`
}
