package rabbitmq

import (
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/ott-reminder/internal/models"
)

// ReminderQueue публикует задания на рассылку напоминаний в обменник.
type ReminderQueue struct {
	ch *amqp.Channel
}

// NewReminderQueue создает издателя поверх открытого канала.
func NewReminderQueue(ch *amqp.Channel) *ReminderQueue {
	return &ReminderQueue{ch: ch}
}

// PublishReminder ставит задание на отправку напоминания в очередь.
func (q *ReminderQueue) PublishReminder(job models.ReminderJob) error {
	return PublishMessage(q.ch, Exchange, ForcedReminderRoutingKey, job)
}
