package rabbitmq

import (
	librabbit "github.com/magabrotheeeer/benefit-engine/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/benefit-engine/internal/models"
	"github.com/streadway/amqp"
)

// LedgerPublisher публикует записи леджера в exchange "ledger".
// Используется сервисом начислений как выходной интерфейс движка.
type LedgerPublisher struct {
	ch *amqp.Channel
}

// NewLedgerPublisher создает новый LedgerPublisher поверх открытого канала.
func NewLedgerPublisher(ch *amqp.Channel) *LedgerPublisher {
	return &LedgerPublisher{ch: ch}
}

// PublishEarning публикует запись о дневном начислении.
func (p *LedgerPublisher) PublishEarning(tx models.LedgerTransaction) error {
	return librabbit.PublishMessage(p.ch, librabbit.LedgerExchange, librabbit.EarningsRoutingKey, tx)
}
