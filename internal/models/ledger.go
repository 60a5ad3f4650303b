package models

import "time"

// Типы и подтипы записей леджера, публикуемых движком.
const (
	LedgerTypeEarnings       = "earnings"
	LedgerSubtypeAutoEarning = "auto_earnings"
)

// LedgerTransaction — запись леджера, публикуемая при каждом успешном
// дневном начислении. Потребляется внешним леджер-коллаборатором.
type LedgerTransaction struct {
	ID        string    `json:"id"`
	UserUID   string    `json:"user_uid"`
	Type      string    `json:"type"`
	Subtype   string    `json:"subtype"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Day       int       `json:"day"`  // День цикла, за который произведено начисление
	Rate      float64   `json:"rate"` // Дневная ставка на момент начисления
	Timestamp time.Time `json:"timestamp"`
}
