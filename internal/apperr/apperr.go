// Package apperr — таксономия ошибок ядра. Все ошибки восстановимы для
// вызывающего; проверяются через errors.Is по сентинелам.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// Некорректный ввод, состояние не менялось.
	ErrValidation = errors.New("validation failed")
	// Сущность по указанному идентификатору отсутствует.
	ErrNotFound = errors.New("not found")
	// Запрошенный переход недопустим из текущего состояния.
	ErrIllegalTransition = errors.New("illegal state transition")
	// Декоратор не прошёл атомарную проверку доступности.
	ErrUnavailable = errors.New("resource unavailable")
	// Удаление заблокировано ссылочным инвариантом.
	ErrConflict = errors.New("conflict")
)

func wrap(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
}

func Validationf(format string, args ...any) error {
	return wrap(ErrValidation, format, args...)
}

func NotFoundf(format string, args ...any) error {
	return wrap(ErrNotFound, format, args...)
}

func IllegalTransitionf(format string, args ...any) error {
	return wrap(ErrIllegalTransition, format, args...)
}

func Unavailablef(format string, args ...any) error {
	return wrap(ErrUnavailable, format, args...)
}

func Conflictf(format string, args ...any) error {
	return wrap(ErrConflict, format, args...)
}
