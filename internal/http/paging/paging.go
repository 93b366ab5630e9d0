// Package paging разбирает параметры постраничного вывода limit и offset.
package paging

import (
	"net/http"
	"strconv"

	"github.com/magabrotheeeer/trading-academy/internal/lib/apperr"
)

const (
	// DefaultLimit размер страницы, если limit не задан.
	DefaultLimit = 20
	// MaxLimit наибольший допустимый размер страницы.
	MaxLimit = 100
)

// FromRequest читает limit и offset из query-параметров запроса.
func FromRequest(r *http.Request) (limit, offset int, err error) {
	q := r.URL.Query()

	limit = DefaultLimit
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit <= 0 || limit > MaxLimit {
			return 0, 0, apperr.Validation("limit must be between 1 and %d", MaxLimit)
		}
	}
	if v := q.Get("offset"); v != "" {
		offset, err = strconv.Atoi(v)
		if err != nil || offset < 0 {
			return 0, 0, apperr.Validation("offset must be a non-negative number")
		}
	}
	return limit, offset, nil
}
