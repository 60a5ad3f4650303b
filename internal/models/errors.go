package models

import "errors"

// Ошибки бизнес-правил движка. Все возвращаются вызывающей стороне как есть;
// автоматически повторяется только ErrConcurrentModification.
var (
	ErrInvalidPackage          = errors.New("invalid package")
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrInsufficientBalance     = errors.New("insufficient balance")
	ErrDailyLimitExceeded      = errors.New("daily withdrawal limit exceeded")
	ErrInvalidPioneerLevel     = errors.New("invalid pioneer level")
	ErrNotInWaitingPeriod      = errors.New("not in waiting period")
	ErrWaitingPeriodNotElapsed = errors.New("waiting period not elapsed")
	ErrUserNotFound            = errors.New("user status not found")
	ErrConcurrentModification  = errors.New("concurrent modification of user status")
)
