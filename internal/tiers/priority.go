package tiers

// WithdrawalPriority — вычисленный приоритет обработки вывода и
// человеко-читаемая оценка времени обработки.
type WithdrawalPriority struct {
	Level                   string
	EstimatedProcessingTime string
}

// Приоритет пионера с быстрыми выводами стоит выше любого тарифа.
var pioneerFastPriority = WithdrawalPriority{
	Level:                   "pioneer_fast",
	EstimatedProcessingTime: "5-10 minutes",
}

var tierPriorities = map[Tier]WithdrawalPriority{
	Diamond:  {Level: "diamond", EstimatedProcessingTime: "1-2 hours"},
	Platinum: {Level: "platinum", EstimatedProcessingTime: "2-4 hours"},
	Gold:     {Level: "gold", EstimatedProcessingTime: "4-8 hours"},
	Premium:  {Level: "premium", EstimatedProcessingTime: "8-12 hours"},
	Standard: {Level: "standard", EstimatedProcessingTime: "12-16 hours"},
	Basic:    {Level: "basic", EstimatedProcessingTime: "16-24 hours"},
	Starter:  {Level: "starter", EstimatedProcessingTime: "24 hours"},
}

// ResolvePriority возвращает приоритет обработки вывода как чистую функцию
// от привилегий пионера и текущего тарифа. Функция тотальна: для неизвестного
// тарифа возвращается самый низкий приоритет.
func ResolvePriority(pioneerFastWithdrawals bool, t Tier) WithdrawalPriority {
	if pioneerFastWithdrawals {
		return pioneerFastPriority
	}
	if p, ok := tierPriorities[t]; ok {
		return p
	}
	return tierPriorities[Starter]
}
