package broker

import (
	"context"

	"github.com/streadway/amqp"

	"github.com/blogdesk/search-service/config/env"
	"github.com/blogdesk/search-service/logger"
)

// RabbitMQOptionFunc func type
type RabbitMQOptionFunc func(*RabbitMQBroker)

// RabbitMQSetBrokerHost set custom broker host
func RabbitMQSetBrokerHost(broker string) RabbitMQOptionFunc {
	return func(bk *RabbitMQBroker) {
		bk.brokerHost = broker
	}
}

// RabbitMQSetChannel set custom channel configuration
func RabbitMQSetChannel(ch *amqp.Channel) RabbitMQOptionFunc {
	return func(bk *RabbitMQBroker) {
		bk.ch = ch
	}
}

// RabbitMQBroker durable topic exchange broker with dead letter topology
type RabbitMQBroker struct {
	brokerHost string
	conn       *amqp.Connection
	ch         *amqp.Channel
}

// NewRabbitMQBroker setup rabbitmq configuration for publisher or consumer,
// default connection from RABBITMQ_BROKER environment.
// Declares the durable topic exchange, the dead letter exchange and the dead
// letter queue, so rejected messages stay observable for manual recovery.
func NewRabbitMQBroker(opts ...RabbitMQOptionFunc) *RabbitMQBroker {
	deferFunc := logger.LogWithDefer("Load RabbitMQ broker configuration... ")
	defer deferFunc()
	var err error

	rabbitmq := new(RabbitMQBroker)
	rabbitmq.brokerHost = env.BaseEnv().RabbitMQ.Broker
	for _, opt := range opts {
		opt(rabbitmq)
	}

	rabbitmq.conn, err = amqp.Dial(rabbitmq.brokerHost)
	if err != nil {
		panic("RabbitMQ: cannot connect to server broker: " + err.Error())
	}

	if rabbitmq.ch == nil {
		rabbitmq.ch, err = rabbitmq.conn.Channel()
		if err != nil {
			panic("RabbitMQ channel: " + err.Error())
		}
		if err := rabbitmq.ch.ExchangeDeclare(
			env.BaseEnv().RabbitMQ.ExchangeName, // name
			"topic",                             // type
			true,                                // durable
			false,                               // auto-deleted
			false,                               // internal
			false,                               // no-wait
			nil,
		); err != nil {
			panic("RabbitMQ exchange declare topic: " + err.Error())
		}
		if err := rabbitmq.ch.ExchangeDeclare(
			env.BaseEnv().RabbitMQ.DeadLetterExchange, "fanout", true, false, false, false, nil,
		); err != nil {
			panic("RabbitMQ exchange declare dead letter: " + err.Error())
		}

		deadQueue, err := rabbitmq.ch.QueueDeclare(
			env.BaseEnv().RabbitMQ.QueueName+".dead", true, false, false, false, nil,
		)
		if err != nil {
			panic("RabbitMQ dead letter queue declare: " + err.Error())
		}
		if err := rabbitmq.ch.QueueBind(
			deadQueue.Name, "", env.BaseEnv().RabbitMQ.DeadLetterExchange, false, nil,
		); err != nil {
			panic("RabbitMQ dead letter queue bind: " + err.Error())
		}

		// exactly one in-flight message per consumer instance, serializes
		// handling of near-simultaneous events for the same entity
		if err := rabbitmq.ch.Qos(1, 0, false); err != nil {
			panic("RabbitMQ Qos: " + err.Error())
		}
	}

	return rabbitmq
}

// DeclareQueue assert the durable per service queue bound to the dead letter
// exchange and bind the given routing keys of interest
func (r *RabbitMQBroker) DeclareQueue(queueName string, routingKeys []string) string {
	queue, err := r.ch.QueueDeclare(queueName, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange": env.BaseEnv().RabbitMQ.DeadLetterExchange,
	})
	if err != nil {
		panic("RabbitMQ queue declare: " + err.Error())
	}
	for _, key := range routingKeys {
		if err := r.ch.QueueBind(queue.Name, key, env.BaseEnv().RabbitMQ.ExchangeName, false, nil); err != nil {
			panic("RabbitMQ queue bind " + key + ": " + err.Error())
		}
	}
	return queue.Name
}

// Channel get active channel
func (r *RabbitMQBroker) Channel() *amqp.Channel {
	return r.ch
}

// Connection get active connection
func (r *RabbitMQBroker) Connection() *amqp.Connection {
	return r.conn
}

// Health method
func (r *RabbitMQBroker) Health() map[string]error {
	return map[string]error{"rabbitmq": nil}
}

// Disconnect method
func (r *RabbitMQBroker) Disconnect(ctx context.Context) error {
	deferFunc := logger.LogWithDefer("rabbitmq: disconnect...")
	defer deferFunc()

	return r.conn.Close()
}
