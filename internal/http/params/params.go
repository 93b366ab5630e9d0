// Package params читает параметры пути запроса.
package params

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/trading-academy/internal/lib/apperr"
)

// UUID возвращает параметр пути name в каноническом виде.
// Значение, не являющееся UUID, не может ссылаться на запись,
// поэтому для него возвращается apperr.NotFound с сообщением notFoundMsg.
func UUID(r *http.Request, name, notFoundMsg string) (string, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return "", apperr.NotFound("%s", notFoundMsg)
	}
	return id.String(), nil
}
