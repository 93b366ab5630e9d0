// Package apperr описывает классы доменных ошибок платформы.
//
// Каждая ошибка несёт вид (ErrValidation, ErrNotFound, ErrInvalidState, ErrForbidden)
// и человекочитаемое сообщение. Вид проверяется через errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

// Виды доменных ошибок.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrForbidden    = errors.New("access denied")
)

// Error доменная ошибка с видом и сообщением.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// Unwrap позволяет errors.Is сопоставлять ошибку с её видом.
func (e *Error) Unwrap() error {
	return e.Kind
}

func newf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Validation некорректные входные данные.
func Validation(format string, args ...any) error {
	return newf(ErrValidation, format, args...)
}

// NotFound запрошенная сущность отсутствует.
func NotFound(format string, args ...any) error {
	return newf(ErrNotFound, format, args...)
}

// InvalidState переход не разрешён из текущего состояния.
func InvalidState(format string, args ...any) error {
	return newf(ErrInvalidState, format, args...)
}

// Forbidden отказ проверки прав. Сообщение всегда одинаковое,
// чтобы не раскрывать, существует ли ресурс.
func Forbidden() error {
	return &Error{Kind: ErrForbidden, Msg: ErrForbidden.Error()}
}

// Message возвращает сообщение доменной ошибки, пригодное для показа пользователю.
func Message(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg, true
	}
	return "", false
}
