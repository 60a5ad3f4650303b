package status

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/benefit-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetStatus(ctx context.Context, userUID string) (*models.UserStatus, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserStatus), args.Error(1)
}

func (m *RepoMock) CreateStatus(ctx context.Context, st *models.UserStatus) error {
	return m.Called(ctx, st).Error(0)
}

func (m *RepoMock) UpdateStatus(ctx context.Context, st *models.UserStatus) error {
	return m.Called(ctx, st).Error(0)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const testUID = "b7c2e4a1-5d83-4f96-8a07-3c1d9e6b2f44"

func TestGetOrCreate_LazyCreation(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := New(repo, cache, newNoopLogger())

	created := models.NewUserStatus(testUID, time.Now())

	// Первое чтение — записи нет, создаём и перечитываем.
	repo.On("GetStatus", mock.Anything, testUID).Return(nil, models.ErrUserNotFound).Once()
	repo.On("CreateStatus", mock.Anything, mock.AnythingOfType("*models.UserStatus")).Return(nil).Once()
	repo.On("GetStatus", mock.Anything, testUID).Return(created, nil).Once()

	st, err := svc.GetOrCreate(context.Background(), testUID)
	require.NoError(t, err)
	assert.Equal(t, testUID, st.UserUID)
	assert.Equal(t, 1, st.Subscription.BenefitCycle.CurrentDay)
	assert.Equal(t, models.DailyBenefitRate, st.Subscription.Benefits.DailyRate)
	repo.AssertExpectations(t)

	// Повторное обращение не создаёт запись заново.
	repo.On("GetStatus", mock.Anything, testUID).Return(created, nil).Once()
	again, err := svc.GetOrCreate(context.Background(), testUID)
	require.NoError(t, err)
	assert.Same(t, created, again)
	repo.AssertNumberOfCalls(t, "CreateStatus", 1)
}

func TestSnapshot_CacheMissThenHit(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := New(repo, cache, newNoopLogger())

	st := models.NewUserStatus(testUID, time.Now())
	key := CacheKey(testUID)

	cache.On("Get", key, mock.Anything).Return(false, nil).Once()
	repo.On("GetStatus", mock.Anything, testUID).Return(st, nil).Once()
	cache.On("Set", key, st, time.Hour).Return(nil).Once()

	got, err := svc.Snapshot(context.Background(), testUID)
	require.NoError(t, err)
	assert.Same(t, st, got)
	cache.AssertExpectations(t)

	// При попадании в кеш хранилище не трогаем.
	cache.On("Get", key, mock.Anything).Run(func(args mock.Arguments) {
		out := args.Get(1).(**models.UserStatus)
		*out = st
	}).Return(true, nil).Once()

	got, err = svc.Snapshot(context.Background(), testUID)
	require.NoError(t, err)
	assert.Same(t, st, got)
	repo.AssertNumberOfCalls(t, "GetStatus", 1)
}

func TestCreditConfirmed(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := New(repo, cache, newNoopLogger())

	st := models.NewUserStatus(testUID, time.Now())
	st.Financial.CurrentBalance = 250

	repo.On("GetStatus", mock.Anything, testUID).Return(st, nil)
	repo.On("UpdateStatus", mock.Anything, st).Return(nil)
	cache.On("Invalidate", CacheKey(testUID)).Return(nil)

	got, err := svc.CreditConfirmed(context.Background(),
		models.DummyCredit{UserUID: testUID, Amount: 100, Source: "commission"})
	require.NoError(t, err)
	assert.Equal(t, 350.0, got.Financial.CurrentBalance)
	assert.Equal(t, 1, got.Activity.TotalTransactions)
}

func TestCreditConfirmed_InvalidAmount(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := New(repo, cache, newNoopLogger())

	_, err := svc.CreditConfirmed(context.Background(),
		models.DummyCredit{UserUID: testUID, Amount: -5, Source: "deposit"})
	require.ErrorIs(t, err, models.ErrInvalidAmount)
	repo.AssertNotCalled(t, "GetStatus", mock.Anything, mock.Anything)
}

func TestFlagForAttention_Overwrites(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := New(repo, cache, newNoopLogger())

	st := models.NewUserStatus(testUID, time.Now())
	st.AdminFlags.NeedsAttention = true
	st.AdminFlags.AttentionReason = models.AttentionReasonPioneerWaiting
	st.AdminFlags.Priority = models.AttentionPriorityNormal

	repo.On("GetStatus", mock.Anything, testUID).Return(st, nil)
	repo.On("UpdateStatus", mock.Anything, st).Return(nil)
	cache.On("Invalidate", CacheKey(testUID)).Return(nil)

	err := svc.FlagForAttention(context.Background(), testUID,
		models.AttentionReasonHighWithdrawal, models.AttentionPriorityHigh)
	require.NoError(t, err)

	assert.True(t, st.AdminFlags.NeedsAttention)
	assert.Equal(t, models.AttentionReasonHighWithdrawal, st.AdminFlags.AttentionReason)
	assert.Equal(t, models.AttentionPriorityHigh, st.AdminFlags.Priority)
}

func TestAddAdminNote_AppendOnly(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := New(repo, cache, newNoopLogger())

	st := models.NewUserStatus(testUID, time.Now())
	st.AdminFlags.AdminNotes = []models.AdminNote{
		{ID: "existing", Note: "first note", AddedBy: "admin-1", Category: "kyc"},
	}
	st.AdminFlags.NeedsAttention = false

	repo.On("GetStatus", mock.Anything, testUID).Return(st, nil)
	repo.On("UpdateStatus", mock.Anything, st).Return(nil)
	cache.On("Invalidate", CacheKey(testUID)).Return(nil)

	err := svc.AddAdminNote(context.Background(), testUID, "second note", "admin-2", "withdrawal")
	require.NoError(t, err)

	require.Len(t, st.AdminFlags.AdminNotes, 2)
	assert.Equal(t, "first note", st.AdminFlags.AdminNotes[0].Note)
	assert.Equal(t, "second note", st.AdminFlags.AdminNotes[1].Note)
	assert.NotEmpty(t, st.AdminFlags.AdminNotes[1].ID)
	assert.Equal(t, "admin-2", st.AdminFlags.AdminNotes[1].AddedBy)
	// Журнал заметок не трогает флаг внимания.
	assert.False(t, st.AdminFlags.NeedsAttention)
}

func TestUpdateRetriesOnVersionConflict(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := New(repo, cache, newNoopLogger())

	st := models.NewUserStatus(testUID, time.Now())

	repo.On("GetStatus", mock.Anything, testUID).Return(st, nil)
	repo.On("UpdateStatus", mock.Anything, st).Return(models.ErrConcurrentModification).Once()
	repo.On("UpdateStatus", mock.Anything, st).Return(nil).Once()
	cache.On("Invalidate", CacheKey(testUID)).Return(nil)

	_, err := svc.CreditConfirmed(context.Background(),
		models.DummyCredit{UserUID: testUID, Amount: 10, Source: "deposit"})
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "UpdateStatus", 2)
}
