package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"github.com/blogdesk/search-service/config/env"
	"github.com/blogdesk/search-service/helper"
	"github.com/blogdesk/search-service/shared"
	"github.com/blogdesk/search-service/tracer"
)

// RabbitMQPublisher rabbitmq
type RabbitMQPublisher struct {
	conn *amqp.Connection
}

// NewRabbitMQPublisher setup rabbitmq publisher with client connection
func NewRabbitMQPublisher(conn *amqp.Connection) *RabbitMQPublisher {
	return &RabbitMQPublisher{
		conn: conn,
	}
}

// PublishMessage publish to the durable topic exchange, routing key derived
// from the event type. No in-process retry on failure, retry policy belongs
// to the caller.
func (r *RabbitMQPublisher) PublishMessage(ctx context.Context, args *shared.PublisherArgument) (err error) {
	trace := tracer.StartTrace(ctx, "rabbitmq:publish_message")
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
		trace.SetError(err)
		trace.Finish()
	}()

	ch, err := r.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if args.ContentType == "" {
		args.ContentType = helper.HeaderMIMEApplicationJSON
	}

	trace.SetTag("topic", args.Topic)
	trace.SetTag("key", args.Key)

	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		ContentType:  args.ContentType,
		Body:         helper.ToBytes(args.Data),
		Headers:      amqp.Table(args.Header),
	}

	trace.Log("header", msg.Headers)
	trace.Log("message", msg.Body)

	return ch.Publish(
		env.BaseEnv().RabbitMQ.ExchangeName,
		args.Topic, // routing key
		false,      // mandatory
		false,      // immediate
		msg)
}

// PublishEvent helper for publishing a domain event envelope
func (r *RabbitMQPublisher) PublishEvent(ctx context.Context, event shared.EventEnvelope) error {
	return r.PublishMessage(ctx, &shared.PublisherArgument{
		Topic: event.EventType,
		Key:   event.Data.EntityID,
		Data:  event,
	})
}
