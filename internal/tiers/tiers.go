// Package tiers содержит неизменяемые справочники тарифных пакетов,
// уровней пионера и приоритетов обработки выводов. Таблицы разрешаются
// на этапе компиляции и не мутируются в рантайме, чтобы исключить
// расхождение лимитов между тарифами.
package tiers

// Tier — тарифный пакет подписки.
type Tier string

// Семь тарифов со строго возрастающими лимитами вывода.
const (
	Starter  Tier = "starter"
	Basic    Tier = "basic"
	Standard Tier = "standard"
	Premium  Tier = "premium"
	Gold     Tier = "gold"
	Platinum Tier = "platinum"
	Diamond  Tier = "diamond"
)

// Limits — дневной и месячный потолок выводов для тарифа.
type Limits struct {
	Daily   float64
	Monthly float64
}

var withdrawalLimits = map[Tier]Limits{
	Starter:  {Daily: 500, Monthly: 5000},
	Basic:    {Daily: 1000, Monthly: 10000},
	Standard: {Daily: 2000, Monthly: 20000},
	Premium:  {Daily: 5000, Monthly: 50000},
	Gold:     {Daily: 10000, Monthly: 100000},
	Platinum: {Daily: 25000, Monthly: 250000},
	Diamond:  {Daily: 50000, Monthly: 500000},
}

// All перечисляет тарифы в порядке возрастания лимитов.
func All() []Tier {
	return []Tier{Starter, Basic, Standard, Premium, Gold, Platinum, Diamond}
}

// LimitsFor возвращает лимиты вывода для тарифа.
// Второе значение false, если тариф неизвестен.
func LimitsFor(t Tier) (Limits, bool) {
	l, ok := withdrawalLimits[t]
	return l, ok
}

// PioneerLevel — уровень премиального статуса пионера.
type PioneerLevel string

const (
	PioneerBasic   PioneerLevel = "basic"
	PioneerPremium PioneerLevel = "premium"
	PioneerElite   PioneerLevel = "elite"
)

// PioneerPerks — привилегии уровня пионера.
type PioneerPerks struct {
	DiscountPercentage float64
	PrioritySupport    bool
	FastWithdrawals    bool
}

var pioneerPerks = map[PioneerLevel]PioneerPerks{
	PioneerBasic:   {DiscountPercentage: 5},
	PioneerPremium: {DiscountPercentage: 10, PrioritySupport: true},
	PioneerElite:   {DiscountPercentage: 15, PrioritySupport: true, FastWithdrawals: true},
}

// PerksFor возвращает привилегии уровня пионера.
// Второе значение false, если уровень неизвестен.
func PerksFor(l PioneerLevel) (PioneerPerks, bool) {
	p, ok := pioneerPerks[l]
	return p, ok
}
