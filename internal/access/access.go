// Package access реализует ролевую проверку доступа к разделам платформы.
//
// Одна и та же таблица используется для построения навигации админ-панели
// и для серверной проверки перед любой изменяющей операцией.
package access

import (
	"github.com/magabrotheeeer/trading-academy/internal/lib/apperr"
	"github.com/magabrotheeeer/trading-academy/internal/models"
)

// Category раздел (категория ресурсов) платформы.
type Category string

// Категории ресурсов.
const (
	Dashboard      Category = "dashboard"
	Analytics      Category = "analytics"
	Content        Category = "content"
	Pricing        Category = "pricing"
	Users          Category = "users"
	Payments       Category = "payments"
	Withdrawals    Category = "withdrawals"
	RoleManagement Category = "roleManagement"
	Logs           Category = "logs"
	Settings       Category = "settings"
)

// Categories все категории в порядке отображения в меню.
var Categories = []Category{
	Dashboard, Analytics, Content, Pricing, Users,
	Payments, Withdrawals, RoleManagement, Logs, Settings,
}

// policy таблица разрешений. Отсутствующая пара означает запрет.
// manager не видит logs; это ждёт подтверждения продукта.
var policy = map[models.Role]map[Category]bool{
	models.RoleUser: {},
	models.RoleSupport: {
		Pricing:     true,
		Users:       true,
		Payments:    true,
		Withdrawals: true,
	},
	models.RoleManager: {
		Dashboard:   true,
		Analytics:   true,
		Content:     true,
		Pricing:     true,
		Users:       true,
		Payments:    true,
		Withdrawals: true,
	},
}

// CanAccess сообщает, разрешён ли роли role доступ к категории c.
// admin имеет доступ ко всему, неизвестные роли — ни к чему.
func CanAccess(role models.Role, c Category) bool {
	if role == models.RoleAdmin {
		return true
	}
	return policy[role][c]
}

// Authorize возвращает apperr.Forbidden, если доступ запрещён.
func Authorize(role models.Role, c Category) error {
	if !CanAccess(role, c) {
		return apperr.Forbidden()
	}
	return nil
}

// Allowed возвращает категории, доступные роли, в порядке Categories.
func Allowed(role models.Role) []Category {
	res := make([]Category, 0, len(Categories))
	for _, c := range Categories {
		if CanAccess(role, c) {
			res = append(res, c)
		}
	}
	return res
}
