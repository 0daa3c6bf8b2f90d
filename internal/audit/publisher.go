// Package audit publishes domain events to RabbitMQ.  Publishing is
// fire-and-forget: errors are logged and returned so callers can
// ignore broker trouble without interrupting the request flow.
package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/restaurant-table-reservation/internal/queue"
)

// Record publishes an activity event to audit.activity.  EventID and
// OccurredAt are filled in when absent.
func Record(ctx context.Context, ev queue.AuditEvent) error {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.OccurredAt == "" {
		ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	}
	return publish(ctx, queue.AuditQueue, ev)
}

// PublishKitchenTicket publishes a ticket to kitchen.tickets.
func PublishKitchenTicket(ctx context.Context, ev queue.KitchenTicketEvent) error {
	if ev.PlacedAt == "" {
		ev.PlacedAt = time.Now().UTC().Format(time.RFC3339)
	}
	return publish(ctx, queue.KitchenQueue, ev)
}

// publish declares the durable queue and sends one persistent JSON
// message on the default exchange.  Each publish dials a fresh
// connection; publishes are rare relative to request volume.
func publish(ctx context.Context, queueName string, event interface{}) error {
	conn, err := amqp.Dial(queue.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
