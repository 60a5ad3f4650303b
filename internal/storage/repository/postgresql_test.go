package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/magabrotheeeer/benefit-engine/internal/migrations"
	"github.com/magabrotheeeer/benefit-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDb(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for i := 0; i < 10; i++ {
		storage, err = New(dsn)
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			storage.DB.Close()
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return storage, cleanup
}

func seedStatus(t *testing.T, s *Storage, uid string) *models.UserStatus {
	st := models.NewUserStatus(uid, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, s.CreateStatus(context.Background(), st))
	return st
}

func TestStorage_StatusRoundTrip(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	uid := uuid.New().String()
	next := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Microsecond)

	st := models.NewUserStatus(uid, time.Now().UTC().Truncate(time.Microsecond))
	st.Subscription.CurrentPackage = "premium"
	st.Subscription.PackageStatus = models.PackageStatusActive
	st.Subscription.BenefitCycle.CurrentDay = 3
	st.Subscription.BenefitCycle.NextBenefitDate = &next
	st.Financial.CurrentBalance = 1234.56
	st.Financial.Limits.DailyWithdrawalLimit = 5000
	st.Calculated.TotalInvested = 2000
	st.AdminFlags.AdminNotes = []models.AdminNote{
		{ID: uuid.New().String(), Note: "manual review done", AddedBy: "admin-1", AddedAt: time.Now().UTC(), Category: "kyc"},
	}
	require.NoError(t, storage.CreateStatus(ctx, st))

	got, err := storage.GetStatus(ctx, uid)
	require.NoError(t, err)

	assert.Equal(t, uid, got.UserUID)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, "premium", got.Subscription.CurrentPackage)
	assert.Equal(t, models.PackageStatusActive, got.Subscription.PackageStatus)
	assert.Equal(t, 3, got.Subscription.BenefitCycle.CurrentDay)
	require.NotNil(t, got.Subscription.BenefitCycle.NextBenefitDate)
	assert.True(t, next.Equal(*got.Subscription.BenefitCycle.NextBenefitDate))
	assert.InDelta(t, 1234.56, got.Financial.CurrentBalance, 0.001)
	assert.InDelta(t, 5000.0, got.Financial.Limits.DailyWithdrawalLimit, 0.001)
	assert.InDelta(t, 2000.0, got.Calculated.TotalInvested, 0.001)
	require.Len(t, got.AdminFlags.AdminNotes, 1)
	assert.Equal(t, "manual review done", got.AdminFlags.AdminNotes[0].Note)
	assert.Equal(t, "kyc", got.AdminFlags.AdminNotes[0].Category)
}

func TestStorage_GetStatus_NotFound(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()

	_, err := storage.GetStatus(context.Background(), uuid.New().String())
	require.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestStorage_CreateStatus_LosesRaceSilently(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	uid := uuid.New().String()
	first := seedStatus(t, storage, uid)

	second := models.NewUserStatus(uid, time.Now().UTC())
	second.Financial.CurrentBalance = 9999
	require.NoError(t, storage.CreateStatus(ctx, second))

	got, err := storage.GetStatus(ctx, uid)
	require.NoError(t, err)
	assert.InDelta(t, first.Financial.CurrentBalance, got.Financial.CurrentBalance, 0.001)
	assert.Equal(t, int64(1), got.Version)
}

func TestStorage_UpdateStatus_VersionConflict(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	uid := uuid.New().String()
	seedStatus(t, storage, uid)

	// Две копии одной версии: побеждает первая запись.
	winner, err := storage.GetStatus(ctx, uid)
	require.NoError(t, err)
	stale, err := storage.GetStatus(ctx, uid)
	require.NoError(t, err)

	winner.Financial.CurrentBalance = 100
	require.NoError(t, storage.UpdateStatus(ctx, winner))
	assert.Equal(t, int64(2), winner.Version)

	stale.Financial.CurrentBalance = 200
	err = storage.UpdateStatus(ctx, stale)
	require.ErrorIs(t, err, models.ErrConcurrentModification)

	got, err := storage.GetStatus(ctx, uid)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, got.Financial.CurrentBalance, 0.001)
	assert.Equal(t, int64(2), got.Version)
}

func TestStorage_ListActiveSubscriptionUIDs(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	active := seedStatus(t, storage, uuid.New().String())
	got, err := storage.GetStatus(ctx, active.UserUID)
	require.NoError(t, err)
	got.Subscription.PackageStatus = models.PackageStatusActive
	require.NoError(t, storage.UpdateStatus(ctx, got))

	seedStatus(t, storage, uuid.New().String()) // без активного пакета

	uids, err := storage.ListActiveSubscriptionUIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{active.UserUID}, uids)
}

func TestStorage_LedgerTransactions(t *testing.T) {
	storage, cleanup := setupTestDb(t)
	defer cleanup()
	ctx := context.Background()

	userUID := uuid.New().String()
	tx := models.LedgerTransaction{
		ID:        uuid.New().String(),
		UserUID:   userUID,
		Type:      models.LedgerTypeEarnings,
		Subtype:   models.LedgerSubtypeAutoEarning,
		Amount:    125,
		Currency:  "USD",
		Day:       1,
		Rate:      models.DailyBenefitRate,
		Timestamp: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, storage.InsertLedgerTransaction(ctx, tx))

	// Повторная доставка того же сообщения не создаёт дубликат.
	require.NoError(t, storage.InsertLedgerTransaction(ctx, tx))

	list, err := storage.ListLedgerTransactions(ctx, userUID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, tx.ID, list[0].ID)
	assert.Equal(t, models.LedgerTypeEarnings, list[0].Type)
	assert.InDelta(t, 125.0, list[0].Amount, 0.001)
	assert.Equal(t, 1, list[0].Day)
}
