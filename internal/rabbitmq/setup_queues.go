package rabbitmq

// QueueConfig описывает очередь и ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Имена очередей и ключей маршрутизации рассылки напоминаний.
const (
	ForcedReminderQueue      = "reminder.forced"
	ForcedReminderRoutingKey = "forced"
)

// GetReminderQueues возвращает очереди сервиса рассылки.
func GetReminderQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: ForcedReminderQueue, RoutingKey: ForcedReminderRoutingKey},
	}
}
