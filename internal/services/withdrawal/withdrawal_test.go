package withdrawal

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/benefit-engine/internal/models"
	servstatus "github.com/magabrotheeeer/benefit-engine/internal/services/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) UpdateStatus(ctx context.Context, st *models.UserStatus) error {
	return m.Called(ctx, st).Error(0)
}

type StatusesMock struct{ mock.Mock }

func (m *StatusesMock) GetOrCreate(ctx context.Context, userUID string) (*models.UserStatus, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserStatus), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const testUID = "9c1e5f3b-2d84-47a6-b1c9-6e0a8d7f2b55"

func setup(st *models.UserStatus) (*Service, *RepoMock, *StatusesMock, *CacheMock) {
	repo := new(RepoMock)
	statuses := new(StatusesMock)
	cache := new(CacheMock)
	svc := New(repo, statuses, cache, newNoopLogger())

	statuses.On("GetOrCreate", mock.Anything, testUID).Return(st, nil)
	repo.On("UpdateStatus", mock.Anything, st).Return(nil)
	cache.On("Invalidate", servstatus.CacheKey(testUID)).Return(nil)
	return svc, repo, statuses, cache
}

func activeStatus(balance, dailyLimit float64) *models.UserStatus {
	st := models.NewUserStatus(testUID, time.Now())
	st.Subscription.CurrentPackage = "gold"
	st.Subscription.PackageStatus = models.PackageStatusActive
	st.Financial.CurrentBalance = balance
	st.Financial.Limits.DailyWithdrawalLimit = dailyLimit
	st.Financial.Limits.MonthlyWithdrawalLimit = dailyLimit * 10
	return st
}

func TestProcessWithdrawalRequest_BalanceBoundary(t *testing.T) {
	st := activeStatus(1000, 10000)
	svc, _, _, _ := setup(st)

	// Сумма, равная балансу, проходит.
	res, err := svc.ProcessWithdrawalRequest(context.Background(),
		models.DummyWithdrawal{UserUID: testUID, Amount: 1000})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 0.0, st.Financial.CurrentBalance)
	assert.Equal(t, 1000.0, st.Financial.Withdrawals.PendingAmount)
	assert.Equal(t, 1, st.Financial.Withdrawals.PendingCount)

	// Сумма на копейку больше баланса — отказ.
	st2 := activeStatus(1000, 10000)
	svc2, repo2, _, _ := setup(st2)
	_, err = svc2.ProcessWithdrawalRequest(context.Background(),
		models.DummyWithdrawal{UserUID: testUID, Amount: 1000.01})
	require.ErrorIs(t, err, models.ErrInsufficientBalance)
	assert.Equal(t, 1000.0, st2.Financial.CurrentBalance)
	repo2.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestProcessWithdrawalRequest_DailyLimitNeverExceeded(t *testing.T) {
	st := activeStatus(5000, 1000)
	svc, _, _, _ := setup(st)

	res, err := svc.ProcessWithdrawalRequest(context.Background(),
		models.DummyWithdrawal{UserUID: testUID, Amount: 600})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, 600.0, st.Financial.Limits.UsedDailyLimit)

	_, err = svc.ProcessWithdrawalRequest(context.Background(),
		models.DummyWithdrawal{UserUID: testUID, Amount: 500})
	require.ErrorIs(t, err, models.ErrDailyLimitExceeded)

	// Использованный лимит не превышает дневной потолок при любой последовательности.
	assert.LessOrEqual(t, st.Financial.Limits.UsedDailyLimit, st.Financial.Limits.DailyWithdrawalLimit)
	assert.Equal(t, 600.0, st.Financial.Limits.UsedDailyLimit)
	assert.Equal(t, 1, st.Financial.Withdrawals.PendingCount)
}

func TestProcessWithdrawalRequest_LimitWindowResetsOncePerDay(t *testing.T) {
	st := activeStatus(5000, 1000)
	yesterday := time.Now().AddDate(0, 0, -1)
	st.Financial.Limits.LastLimitReset = &yesterday
	st.Financial.Limits.UsedDailyLimit = 900

	svc, _, _, _ := setup(st)

	res, err := svc.ProcessWithdrawalRequest(context.Background(),
		models.DummyWithdrawal{UserUID: testUID, Amount: 500})
	require.NoError(t, err)
	assert.True(t, res.Success)
	// Окно нового дня: счётчик сброшен до применения запроса.
	assert.Equal(t, 500.0, st.Financial.Limits.UsedDailyLimit)
}

func TestProcessWithdrawalRequest_HighVolumeAutoFlag(t *testing.T) {
	st := activeStatus(10000, 10000)
	svc, _, _, _ := setup(st)

	res, err := svc.ProcessWithdrawalRequest(context.Background(),
		models.DummyWithdrawal{UserUID: testUID, Amount: 6000})
	require.NoError(t, err)
	assert.True(t, res.Success)

	assert.True(t, st.AdminFlags.NeedsAttention)
	assert.Equal(t, models.AttentionReasonHighWithdrawal, st.AdminFlags.AttentionReason)
	assert.Equal(t, models.AttentionPriorityHigh, st.AdminFlags.Priority)
}

func TestProcessWithdrawalRequest_Priority(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(st *models.UserStatus)
		wantPriority string
		wantETA      string
	}{
		{
			name:         "gold tier",
			setup:        func(_ *models.UserStatus) {},
			wantPriority: "gold",
			wantETA:      "4-8 hours",
		},
		{
			name: "active pioneer with fast withdrawals",
			setup: func(st *models.UserStatus) {
				st.Pioneer.IsActive = true
				st.Pioneer.Benefits.FastWithdrawals = true
			},
			wantPriority: "pioneer_fast",
			wantETA:      "5-10 minutes",
		},
		{
			name: "pioneer waiting period does not grant priority",
			setup: func(st *models.UserStatus) {
				st.Pioneer.IsActive = false
				st.Pioneer.WaitingPeriod.IsInWaitingPeriod = true
				st.Pioneer.Benefits.FastWithdrawals = true
			},
			wantPriority: "gold",
			wantETA:      "4-8 hours",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := activeStatus(2000, 10000)
			tt.setup(st)
			svc, _, _, _ := setup(st)

			res, err := svc.ProcessWithdrawalRequest(context.Background(),
				models.DummyWithdrawal{UserUID: testUID, Amount: 100})
			require.NoError(t, err)
			assert.Equal(t, tt.wantPriority, res.Priority)
			assert.Equal(t, tt.wantETA, res.EstimatedProcessingTime)
		})
	}
}

func TestProcessWithdrawalRequest_InvalidAmount(t *testing.T) {
	repo := new(RepoMock)
	statuses := new(StatusesMock)
	cache := new(CacheMock)
	svc := New(repo, statuses, cache, newNoopLogger())

	_, err := svc.ProcessWithdrawalRequest(context.Background(),
		models.DummyWithdrawal{UserUID: testUID, Amount: 0})
	require.ErrorIs(t, err, models.ErrInvalidAmount)
	statuses.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything)
}
