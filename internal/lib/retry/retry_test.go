package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/magabrotheeeer/benefit-engine/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestOnConflict_SucceedsAfterConflict(t *testing.T) {
	calls := 0
	err := OnConflict(context.Background(), func(_ context.Context) error {
		calls++
		if calls < 2 {
			return models.ErrConcurrentModification
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestOnConflict_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	err := OnConflict(context.Background(), func(_ context.Context) error {
		calls++
		return models.ErrConcurrentModification
	})

	assert.ErrorIs(t, err, models.ErrConcurrentModification)
	assert.Equal(t, maxAttempts, calls)
}

func TestOnConflict_BusinessErrorNotRetried(t *testing.T) {
	calls := 0
	boom := errors.New("business rule violated")
	err := OnConflict(context.Background(), func(_ context.Context) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
