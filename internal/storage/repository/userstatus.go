package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/benefit-engine/internal/models"
)

// statusColumns — единый порядок колонок агрегата для SELECT/INSERT/UPDATE.
const statusColumns = `user_uid, version,
	current_package, package_status, activated_at, expires_at,
	cycle_current_day, cycle_start_date, next_benefit_date, cycle_is_paused,
	daily_rate, total_earned, last_calculated_at, last_benefit_date,
	current_balance,
	daily_withdrawal_limit, monthly_withdrawal_limit, used_daily_limit, last_limit_reset,
	pending_amount, pending_count, last_withdrawal_request,
	pioneer_is_active, pioneer_level, pioneer_activated_at, pioneer_expires_at,
	waiting_in_period, waiting_ends_at,
	pioneer_discount, pioneer_priority_support, pioneer_fast_withdrawals,
	total_invested, total_returned,
	needs_attention, attention_reason, attention_priority, admin_notes,
	referred_by, direct_referrals,
	last_login, total_transactions, activity_is_active,
	created_at, updated_at`

// GetStatus возвращает агрегат статуса пользователя.
// Возвращает models.ErrUserNotFound, если записи нет.
func (s *Storage) GetStatus(ctx context.Context, userUID string) (*models.UserStatus, error) {
	const op = "storage.GetStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + statusColumns + ` FROM user_statuses WHERE user_uid = $1`
	row := s.DB.QueryRowContext(ctx, query, userUID)

	st, err := scanStatus(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}

// CreateStatus вставляет новый агрегат. При гонке двух ленивых созданий
// вставка молча проигрывает (ON CONFLICT DO NOTHING), вызывающая сторона
// перечитывает запись.
func (s *Storage) CreateStatus(ctx context.Context, st *models.UserStatus) error {
	const op = "storage.CreateStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	notes, err := json.Marshal(st.AdminFlags.AdminNotes)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if st.AdminFlags.AdminNotes == nil {
		notes = []byte("[]")
	}

	query := `INSERT INTO user_statuses (` + statusColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			          $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28,
			          $29, $30, $31, $32, $33, $34, $35, $36, $37, $38, $39, $40, $41,
			          $42, $43, $44)
			  ON CONFLICT (user_uid) DO NOTHING`
	_, err = s.DB.ExecContext(ctx, query, statusArgs(st, notes)...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateStatus перезаписывает агрегат целиком с проверкой версии.
// Если версия уже изменилась, возвращает models.ErrConcurrentModification:
// вся мутация применяется или не применяется вовсе.
func (s *Storage) UpdateStatus(ctx context.Context, st *models.UserStatus) error {
	const op = "storage.UpdateStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	notes, err := json.Marshal(st.AdminFlags.AdminNotes)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if st.AdminFlags.AdminNotes == nil {
		notes = []byte("[]")
	}

	query := `UPDATE user_statuses SET
			  version = version + 1,
			  current_package = $3, package_status = $4, activated_at = $5, expires_at = $6,
			  cycle_current_day = $7, cycle_start_date = $8, next_benefit_date = $9, cycle_is_paused = $10,
			  daily_rate = $11, total_earned = $12, last_calculated_at = $13, last_benefit_date = $14,
			  current_balance = $15,
			  daily_withdrawal_limit = $16, monthly_withdrawal_limit = $17, used_daily_limit = $18, last_limit_reset = $19,
			  pending_amount = $20, pending_count = $21, last_withdrawal_request = $22,
			  pioneer_is_active = $23, pioneer_level = $24, pioneer_activated_at = $25, pioneer_expires_at = $26,
			  waiting_in_period = $27, waiting_ends_at = $28,
			  pioneer_discount = $29, pioneer_priority_support = $30, pioneer_fast_withdrawals = $31,
			  total_invested = $32, total_returned = $33,
			  needs_attention = $34, attention_reason = $35, attention_priority = $36, admin_notes = $37,
			  referred_by = $38, direct_referrals = $39,
			  last_login = $40, total_transactions = $41, activity_is_active = $42,
			  created_at = $43, updated_at = $44
			  WHERE user_uid = $1 AND version = $2`
	result, err := s.DB.ExecContext(ctx, query, statusArgs(st, notes)...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return models.ErrConcurrentModification
	}
	st.Version++
	return nil
}

// ListActiveSubscriptionUIDs возвращает пользователей с активным пакетом
// для массовой обработки начислений.
func (s *Storage) ListActiveSubscriptionUIDs(ctx context.Context) ([]string, error) {
	const op = "storage.ListActiveSubscriptionUIDs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid FROM user_statuses
			  WHERE package_status = 'active'
			  ORDER BY user_uid`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var uids []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		uids = append(uids, uid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return uids, nil
}

func statusArgs(st *models.UserStatus, notes []byte) []any {
	return []any{
		st.UserUID, st.Version,
		st.Subscription.CurrentPackage, st.Subscription.PackageStatus,
		st.Subscription.ActivatedAt, st.Subscription.ExpiresAt,
		st.Subscription.BenefitCycle.CurrentDay, st.Subscription.BenefitCycle.CycleStartDate,
		st.Subscription.BenefitCycle.NextBenefitDate, st.Subscription.BenefitCycle.IsPaused,
		st.Subscription.Benefits.DailyRate, st.Subscription.Benefits.TotalEarned,
		st.Subscription.Benefits.LastCalculatedAt, st.Subscription.LastBenefitDate,
		st.Financial.CurrentBalance,
		st.Financial.Limits.DailyWithdrawalLimit, st.Financial.Limits.MonthlyWithdrawalLimit,
		st.Financial.Limits.UsedDailyLimit, st.Financial.Limits.LastLimitReset,
		st.Financial.Withdrawals.PendingAmount, st.Financial.Withdrawals.PendingCount,
		st.Financial.Withdrawals.LastWithdrawalRequest,
		st.Pioneer.IsActive, st.Pioneer.Level, st.Pioneer.ActivatedAt, st.Pioneer.ExpiresAt,
		st.Pioneer.WaitingPeriod.IsInWaitingPeriod, st.Pioneer.WaitingPeriod.EndsAt,
		st.Pioneer.Benefits.DiscountPercentage, st.Pioneer.Benefits.PrioritySupport,
		st.Pioneer.Benefits.FastWithdrawals,
		st.Calculated.TotalInvested, st.Calculated.TotalReturned,
		st.AdminFlags.NeedsAttention, st.AdminFlags.AttentionReason, st.AdminFlags.Priority, notes,
		st.Referrals.ReferredBy, st.Referrals.DirectReferrals,
		st.Activity.LastLogin, st.Activity.TotalTransactions, st.Activity.IsActive,
		st.CreatedAt, st.UpdatedAt,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStatus(row rowScanner) (*models.UserStatus, error) {
	var st models.UserStatus
	var notes []byte

	err := row.Scan(
		&st.UserUID, &st.Version,
		&st.Subscription.CurrentPackage, &st.Subscription.PackageStatus,
		&st.Subscription.ActivatedAt, &st.Subscription.ExpiresAt,
		&st.Subscription.BenefitCycle.CurrentDay, &st.Subscription.BenefitCycle.CycleStartDate,
		&st.Subscription.BenefitCycle.NextBenefitDate, &st.Subscription.BenefitCycle.IsPaused,
		&st.Subscription.Benefits.DailyRate, &st.Subscription.Benefits.TotalEarned,
		&st.Subscription.Benefits.LastCalculatedAt, &st.Subscription.LastBenefitDate,
		&st.Financial.CurrentBalance,
		&st.Financial.Limits.DailyWithdrawalLimit, &st.Financial.Limits.MonthlyWithdrawalLimit,
		&st.Financial.Limits.UsedDailyLimit, &st.Financial.Limits.LastLimitReset,
		&st.Financial.Withdrawals.PendingAmount, &st.Financial.Withdrawals.PendingCount,
		&st.Financial.Withdrawals.LastWithdrawalRequest,
		&st.Pioneer.IsActive, &st.Pioneer.Level, &st.Pioneer.ActivatedAt, &st.Pioneer.ExpiresAt,
		&st.Pioneer.WaitingPeriod.IsInWaitingPeriod, &st.Pioneer.WaitingPeriod.EndsAt,
		&st.Pioneer.Benefits.DiscountPercentage, &st.Pioneer.Benefits.PrioritySupport,
		&st.Pioneer.Benefits.FastWithdrawals,
		&st.Calculated.TotalInvested, &st.Calculated.TotalReturned,
		&st.AdminFlags.NeedsAttention, &st.AdminFlags.AttentionReason, &st.AdminFlags.Priority, &notes,
		&st.Referrals.ReferredBy, &st.Referrals.DirectReferrals,
		&st.Activity.LastLogin, &st.Activity.TotalTransactions, &st.Activity.IsActive,
		&st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(notes) > 0 {
		if err := json.Unmarshal(notes, &st.AdminFlags.AdminNotes); err != nil {
			return nil, err
		}
	}
	return &st, nil
}
