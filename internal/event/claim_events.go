package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"claims-service/internal/models"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const ClaimEventsQueue = "claim_events"

type ClaimEventType string

const (
	ClaimEventCreated       ClaimEventType = "claim.created"
	ClaimEventStatusChanged ClaimEventType = "claim.status_changed"
	ClaimEventFiled         ClaimEventType = "claim.filed"
	ClaimEventSynced        ClaimEventType = "claim.synced"
	ClaimEventSyncConflict  ClaimEventType = "claim.sync_conflict"
	ClaimEventDeleted       ClaimEventType = "claim.deleted"
)

// ClaimEvent is the message published for downstream consumers (notification
// service, dashboard feed). Carries enough to render an alert without a
// read-back.
type ClaimEvent struct {
	Type       ClaimEventType     `json:"type"`
	ClaimID    uuid.UUID          `json:"claim_id"`
	CustomerID uuid.UUID          `json:"customer_id"`
	Carrier    string             `json:"carrier"`
	Status     models.ClaimStatus `json:"status"`
	PrevStatus models.ClaimStatus `json:"prev_status,omitempty"`
	Note       string             `json:"note,omitempty"`
	Actor      string             `json:"actor,omitempty"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// ClaimEventPublisher publishes claim lifecycle events to RabbitMQ. A nil
// publisher is safe to call, so tests and degraded startup skip eventing.
type ClaimEventPublisher struct {
	conn *RabbitMQConnection
}

func NewClaimEventPublisher(conn *RabbitMQConnection) *ClaimEventPublisher {
	return &ClaimEventPublisher{conn: conn}
}

// Publish sends one claim event. Failures are logged, not propagated: event
// delivery must never fail a committed claim operation.
func (p *ClaimEventPublisher) Publish(ctx context.Context, ev ClaimEvent) {
	if p == nil || p.conn == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	if err := p.publish(ctx, ev); err != nil {
		slog.Error("Failed to publish claim event",
			"type", ev.Type, "claim_id", ev.ClaimID, "error", err)
		return
	}

	slog.Info("Claim event published", "type", ev.Type, "claim_id", ev.ClaimID, "status", ev.Status)
}

func (p *ClaimEventPublisher) publish(ctx context.Context, ev ClaimEvent) error {
	_, err := p.conn.Channel.QueueDeclare(
		ClaimEventsQueue, // queue name
		true,             // durable
		false,            // delete when unused
		false,            // exclusive
		false,            // no-wait
		nil,              // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal claim event: %w", err)
	}

	err = p.conn.Channel.PublishWithContext(
		ctx,
		"",               // exchange
		ClaimEventsQueue, // routing key (queue name)
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish claim event: %w", err)
	}
	return nil
}
