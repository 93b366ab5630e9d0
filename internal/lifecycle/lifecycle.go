// Package lifecycle вычисляет эффективный статус подписки.
//
// Статус не хранится и не обновляется фоновыми задачами: он выводится при каждом
// чтении из хранимой записи и текущего времени, поэтому UI и серверные проверки
// доступа всегда видят одно и то же.
package lifecycle

import (
	"time"

	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// Resolve возвращает эффективный статус подписки sub на момент now.
//
// Отсутствие записи даёт none, хранимый pending — pending. Хранимый active остаётся
// active, пока now не позже EndDate; active без EndDate считается бессрочным.
// Всё остальное — expired. Функция не изменяет sub.
func Resolve(sub *models.Subscription, now time.Time) models.EffectiveStatus {
	if sub == nil {
		return models.EffectiveNone
	}
	switch sub.Status {
	case models.SubscriptionPending:
		return models.EffectivePending
	case models.SubscriptionActive:
		if sub.EndDate == nil || !now.After(*sub.EndDate) {
			return models.EffectiveActive
		}
	}
	return models.EffectiveExpired
}

// IsActive сообщает, даёт ли подписка доступ к платному контенту на момент now.
func IsActive(sub *models.Subscription, now time.Time) bool {
	return Resolve(sub, now) == models.EffectiveActive
}

// Window возвращает период действия подписки, начинающейся в start, для тарифа
// длительностью durationDays.
func Window(start time.Time, durationDays int) (time.Time, time.Time) {
	return start, start.AddDate(0, 0, durationDays)
}
