// Package models содержит доменные структуры движка начисления бенефитов:
// агрегат статуса пользователя, вложенные секции (подписка, финансы, пионер,
// административные флаги), а также вспомогательные типы для приёма данных
// из внешних источников (например, JSON-запросы).
package models

import "time"

// Статусы пакета подписки.
const (
	PackageStatusNone    = "none"
	PackageStatusActive  = "active"
	PackageStatusExpired = "expired"
	PackageStatusPaused  = "paused"
)

// Приоритеты административного внимания.
const (
	AttentionPriorityNormal = "normal"
	AttentionPriorityHigh   = "high"
)

// Причина флага, которая выставляется на время ожидания активации пионера
// и снимается автоматически после его завершения.
const AttentionReasonPioneerWaiting = "pioneer_waiting_period"

// AttentionReasonHighWithdrawal выставляется автоматически при крупном запросе на вывод.
const AttentionReasonHighWithdrawal = "high_withdrawal_volume"

// DailyBenefitRate — фиксированная дневная ставка начисления (12.5% от инвестиций).
const DailyBenefitRate = 0.125

// PauseDay — день цикла, в который начисления не производятся.
const PauseDay = 9

// UserStatus — агрегат состояния пользователя, одна запись на пользователя.
// Создаётся лениво при первом обращении и никогда не удаляется физически.
// Поле Version используется для оптимистичной блокировки при записи.
type UserStatus struct {
	UserUID      string       `json:"user_uid"`
	Version      int64        `json:"-"`
	Subscription Subscription `json:"subscription"`
	Financial    Financial    `json:"financial"`
	Pioneer      Pioneer      `json:"pioneer"`
	Calculated   Calculated   `json:"calculated"`
	AdminFlags   AdminFlags   `json:"admin_flags"`
	Referrals    Referrals    `json:"referrals"`
	Activity     Activity     `json:"activity"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Subscription описывает текущий пакет пользователя и состояние цикла начислений.
type Subscription struct {
	CurrentPackage  string       `json:"current_package"` // Название тарифа, "none" если пакета нет
	PackageStatus   string       `json:"package_status"`  // none, active, expired, paused
	ActivatedAt     *time.Time   `json:"activated_at,omitempty"`
	ExpiresAt       *time.Time   `json:"expires_at,omitempty"` // Активация + 45 дней
	BenefitCycle    BenefitCycle `json:"benefit_cycle"`
	Benefits        Benefits     `json:"benefits"`
	LastBenefitDate *time.Time   `json:"last_benefit_date,omitempty"`
}

// BenefitCycle — позиция пользователя внутри 9-дневного цикла начислений.
// День 9 всегда является днём паузы: начислений нет, IsPaused принудительно true.
type BenefitCycle struct {
	CurrentDay      int        `json:"current_day"` // 1..9
	CycleStartDate  *time.Time `json:"cycle_start_date,omitempty"`
	NextBenefitDate *time.Time `json:"next_benefit_date,omitempty"`
	IsPaused        bool       `json:"is_paused"`
}

// Benefits — накопленные начисления. TotalEarned монотонно не убывает.
type Benefits struct {
	DailyRate        float64    `json:"daily_rate"`
	TotalEarned      float64    `json:"total_earned"`
	LastCalculatedAt *time.Time `json:"last_calculated_at,omitempty"`
}

// Financial — авторитетный баланс пользователя, лимиты и зарезервированные выводы.
type Financial struct {
	CurrentBalance float64            `json:"current_balance"`
	Limits         WithdrawalLimits   `json:"limits"`
	Withdrawals    PendingWithdrawals `json:"withdrawals"`
}

// WithdrawalLimits — дневной и месячный потолок выводов.
// UsedDailyLimit сбрасывается в ноль один раз в календарный день,
// при первом запросе на вывод, наблюдаемом в этот день.
type WithdrawalLimits struct {
	DailyWithdrawalLimit   float64    `json:"daily_withdrawal_limit"`
	MonthlyWithdrawalLimit float64    `json:"monthly_withdrawal_limit"`
	UsedDailyLimit         float64    `json:"used_daily_limit"`
	LastLimitReset         *time.Time `json:"last_limit_reset,omitempty"`
}

// PendingWithdrawals — одобренные, но ещё не рассчитанные выводы.
type PendingWithdrawals struct {
	PendingAmount         float64    `json:"pending_amount"`
	PendingCount          int        `json:"pending_count"`
	LastWithdrawalRequest *time.Time `json:"last_withdrawal_request,omitempty"`
}

// Pioneer — состояние премиального уровня с 48-часовым периодом ожидания.
// IsActive и WaitingPeriod.IsInWaitingPeriod взаимоисключающие.
type Pioneer struct {
	IsActive      bool            `json:"is_active"`
	Level         string          `json:"level,omitempty"`
	ActivatedAt   *time.Time      `json:"activated_at,omitempty"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
	WaitingPeriod WaitingPeriod   `json:"waiting_period"`
	Benefits      PioneerBenefits `json:"benefits"`
}

// WaitingPeriod — 48-часовое окно между активацией пионера и включением уровня.
type WaitingPeriod struct {
	IsInWaitingPeriod bool       `json:"is_in_waiting_period"`
	EndsAt            *time.Time `json:"ends_at,omitempty"`
}

// PioneerBenefits — привилегии уровня пионера из таблицы уровней.
type PioneerBenefits struct {
	DiscountPercentage float64 `json:"discount_percentage"`
	PrioritySupport    bool    `json:"priority_support"`
	FastWithdrawals    bool    `json:"fast_withdrawals"`
}

// Calculated — производные суммы. Пересчитываются только мутирующими операциями,
// никогда не редактируются напрямую.
type Calculated struct {
	TotalInvested float64 `json:"total_invested"`
	TotalReturned float64 `json:"total_returned"`
}

// AdminFlags — единственная текущая причина ручной проверки плюс журнал заметок.
// NeedsAttention/AttentionReason перезаписываются, история живёт только в AdminNotes.
type AdminFlags struct {
	NeedsAttention  bool        `json:"needs_attention"`
	AttentionReason string      `json:"attention_reason,omitempty"`
	Priority        string      `json:"priority"`
	AdminNotes      []AdminNote `json:"admin_notes"`
}

// AdminNote — запись журнала административных заметок, только добавление.
type AdminNote struct {
	ID       string    `json:"id"`
	Note     string    `json:"note"`
	AddedBy  string    `json:"added_by"`
	AddedAt  time.Time `json:"added_at"`
	Category string    `json:"category"`
}

// Referrals — реферальные связи. Выплаты комиссий считает внешний коллаборатор.
type Referrals struct {
	ReferredBy      string `json:"referred_by,omitempty"`
	DirectReferrals int    `json:"direct_referrals"`
}

// Activity — агрегированная активность пользователя.
type Activity struct {
	LastLogin         *time.Time `json:"last_login,omitempty"`
	TotalTransactions int        `json:"total_transactions"`
	IsActive          bool       `json:"is_active"`
}

// NewUserStatus возвращает агрегат в начальном состоянии: без пакета,
// с фиксированной дневной ставкой и нормальным приоритетом внимания.
func NewUserStatus(userUID string, now time.Time) *UserStatus {
	return &UserStatus{
		UserUID: userUID,
		Version: 1,
		Subscription: Subscription{
			CurrentPackage: PackageStatusNone,
			PackageStatus:  PackageStatusNone,
			BenefitCycle:   BenefitCycle{CurrentDay: 1},
			Benefits:       Benefits{DailyRate: DailyBenefitRate},
		},
		AdminFlags: AdminFlags{Priority: AttentionPriorityNormal},
		Activity:   Activity{IsActive: true},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
