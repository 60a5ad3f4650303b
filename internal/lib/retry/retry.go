// Package retry содержит ограниченный повтор для конфликтов оптимистичной блокировки.
// Повторяется только models.ErrConcurrentModification: это гонка без нарушения
// бизнес-правил, все остальные ошибки завершают вызов сразу.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/magabrotheeeer/benefit-engine/internal/models"
)

const (
	maxAttempts = 3
	baseDelay   = 25 * time.Millisecond
)

// OnConflict выполняет fn до maxAttempts раз с нарастающей задержкой.
// fn должна перечитывать агрегат на каждой попытке.
func OnConflict(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := range maxAttempts {
		err = fn(ctx)
		if !errors.Is(err, models.ErrConcurrentModification) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(baseDelay * time.Duration(attempt+1)):
		}
	}
	return err
}
