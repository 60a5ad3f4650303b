package models

// DummyActivatePackage используется для приёма запроса на активацию пакета
// из JSON-запроса, прежде чем передать данные в бизнес-логику.
type DummyActivatePackage struct {
	UserUID     string  `json:"user_uid" validate:"required,uuid"`
	PackageType string  `json:"package_type" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
}

// DummyProcessBenefits — запрос на обработку дневного начисления одного пользователя.
type DummyProcessBenefits struct {
	UserUID string `json:"user_uid" validate:"required,uuid"`
}

// DummyWithdrawal — запрос на вывод средств.
type DummyWithdrawal struct {
	UserUID string  `json:"user_uid" validate:"required,uuid"`
	Amount  float64 `json:"amount" validate:"required,gt=0"`
}

// DummyCredit — подтверждённое зачисление от внешнего коллаборатора
// (депозит или реферальная комиссия).
type DummyCredit struct {
	UserUID string  `json:"user_uid" validate:"required,uuid"`
	Amount  float64 `json:"amount" validate:"required,gt=0"`
	Source  string  `json:"source" validate:"required,oneof=deposit commission"`
}

// DummyActivatePioneer — запрос на активацию уровня пионера.
type DummyActivatePioneer struct {
	UserUID      string `json:"user_uid" validate:"required,uuid"`
	Level        string `json:"level" validate:"required"`
	DurationDays int    `json:"duration_days" validate:"required,gt=0"`
}

// DummyCompletePioneer — запрос на завершение периода ожидания пионера.
type DummyCompletePioneer struct {
	UserUID string `json:"user_uid" validate:"required,uuid"`
}

// DummyFlag — запрос на установку флага административного внимания.
type DummyFlag struct {
	UserUID  string `json:"user_uid" validate:"required,uuid"`
	Reason   string `json:"reason" validate:"required"`
	Priority string `json:"priority" validate:"required,oneof=normal high"`
}

// DummyAdminNote — запрос на добавление административной заметки.
// Автор берётся из JWT-контекста, не из тела запроса.
type DummyAdminNote struct {
	UserUID  string `json:"user_uid" validate:"required,uuid"`
	Note     string `json:"note" validate:"required"`
	Category string `json:"category" validate:"required"`
}

// BenefitResult — результат одного вызова обработки дневных начислений.
type BenefitResult struct {
	Processed   bool    `json:"processed"`
	Reason      string  `json:"reason,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
	CurrentDay  int     `json:"current_day"`
	TotalEarned float64 `json:"total_earned"`
	NewBalance  float64 `json:"new_balance"`
}

// BulkBenefitResult — сводка массовой обработки начислений: каждый пользователь
// обрабатывается независимо, ошибка одного не прерывает остальных.
type BulkBenefitResult struct {
	Processed int               `json:"processed"`
	Skipped   int               `json:"skipped"`
	Failed    map[string]string `json:"failed,omitempty"` // user_uid -> текст ошибки
}

// WithdrawalResult — результат успешного запроса на вывод.
type WithdrawalResult struct {
	Success                 bool    `json:"success"`
	Priority                string  `json:"priority"`
	EstimatedProcessingTime string  `json:"estimated_processing_time"`
	PendingAmount           float64 `json:"pending_amount"`
}
