package rabbitmq

// LedgerExchange — exchange, в который движок публикует записи леджера.
const LedgerExchange = "ledger"

// EarningsRoutingKey — ключ маршрутизации для начислений.
const EarningsRoutingKey = "earnings"

// QueueConfig связывает очередь с ключом маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetLedgerQueues возвращает очереди леджера, которые должны существовать
// до первой публикации.
func GetLedgerQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "ledger.earnings", RoutingKey: EarningsRoutingKey},
	}
}
