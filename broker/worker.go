package broker

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap/zapcore"

	"github.com/blogdesk/search-service/config/env"
	"github.com/blogdesk/search-service/helper"
	"github.com/blogdesk/search-service/logger"
	"github.com/blogdesk/search-service/tracer"
)

// WorkerHandlerFunc handler for one routing key, returned error routes the
// message to the dead letter destination
type WorkerHandlerFunc func(ctx context.Context, message []byte) error

// Consumer bound acknowledging consumer on the per service queue.
// Handling is serialized, one in-flight message per instance (Qos prefetch 1),
// bounding head-of-line blocking at the cost of out-of-band recovery for
// dead lettered messages.
type Consumer struct {
	ctx           context.Context
	ctxCancelFunc func()

	broker   *RabbitMQBroker
	handlers map[string]WorkerHandlerFunc
	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewConsumer create new rabbitmq consumer
func NewConsumer(bk *RabbitMQBroker) *Consumer {
	worker := &Consumer{
		broker:   bk,
		handlers: make(map[string]WorkerHandlerFunc),
		shutdown: make(chan struct{}, 1),
	}
	worker.ctx, worker.ctxCancelFunc = context.WithCancel(context.Background())
	return worker
}

// AddHandler register handler for routing key
func (c *Consumer) AddHandler(routingKey string, handlerFunc WorkerHandlerFunc) {
	logger.LogYellow(fmt.Sprintf(`[RABBITMQ-CONSUMER] (routing key): %-18s  --> (queue): "%s"`,
		`"`+routingKey+`"`, env.BaseEnv().RabbitMQ.QueueName))
	c.handlers[routingKey] = handlerFunc
}

// Serve declare the queue with its bindings and consume until shutdown or
// connection loss. Connection loss is fatal to the consumer, restart is a
// deployment layer concern.
func (c *Consumer) Serve() error {
	routingKeys := make([]string, 0, len(c.handlers))
	for key := range c.handlers {
		routingKeys = append(routingKeys, key)
	}
	sort.Strings(routingKeys)

	queueName := c.broker.DeclareQueue(env.BaseEnv().RabbitMQ.QueueName, routingKeys)

	deliveries, err := c.broker.Channel().Consume(
		queueName,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		panic("RabbitMQ consume: " + err.Error())
	}

	fmt.Printf("\x1b[34;1m⇨ RabbitMQ consumer running, queue: %s (%d routing keys). Broker: %s\x1b[0m\n\n",
		queueName, len(routingKeys), helper.MaskingPasswordURL(env.BaseEnv().RabbitMQ.Broker))

	return c.consumeLoop(deliveries)
}

func (c *Consumer) consumeLoop(deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-c.shutdown:
			return nil

		case message, ok := <-deliveries:
			if !ok {
				logger.LogRed("rabbitmq_consumer > delivery channel closed, stopping consumer")
				return amqp.ErrClosed
			}
			select {
			case <-c.shutdown:
				// shutdown raced a ready delivery, leave it unacked so the
				// broker redelivers it
				return nil
			default:
			}
			c.wg.Add(1)
			c.processMessage(message)
			c.wg.Done()
		}
	}
}

// Shutdown stop consuming and wait for the in-flight message, giving up when
// ctx expires so a hung handler cannot block the whole drain
func (c *Consumer) Shutdown(ctx context.Context) {
	defer logger.LogWithDefer("Stopping RabbitMQ consumer...")()

	c.shutdown <- struct{}{}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logger.LogRed("rabbitmq_consumer > shutdown wait: " + ctx.Err().Error())
	}
	c.ctxCancelFunc()
}

func (c *Consumer) processMessage(message amqp.Delivery) {
	if c.ctx.Err() != nil {
		logger.LogRed("rabbitmq_consumer > ctx root err: " + c.ctx.Err().Error())
		return
	}

	var err error
	trace, ctx := tracer.StartTraceWithContext(c.ctx, "RabbitMQConsumer")
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}

		if err == nil {
			message.Ack(false)
		} else {
			// reject without requeue, broker routes the message to the
			// dead letter exchange for out-of-band recovery
			message.Nack(false, false)
			logger.LogWithField(zapcore.ErrorLevel, map[string]interface{}{
				"message":     "rabbitmq_consumer: handler error, message dead lettered",
				"routing_key": message.RoutingKey,
				"error":       err.Error(),
			})
		}

		trace.SetError(err)
		trace.Finish()
	}()

	trace.SetTag("exchange", message.Exchange)
	trace.SetTag("routing_key", message.RoutingKey)
	trace.Log("body", message.Body)

	selectedHandler, ok := c.handlers[message.RoutingKey]
	if !ok {
		// forward-compatible no-op, acknowledge unknown event types
		logger.LogYellow("rabbitmq_consumer > no handler for routing key: " + message.RoutingKey)
		return
	}
	err = selectedHandler(ctx, message.Body)
}
