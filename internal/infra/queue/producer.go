package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/davronx1/leadgate/internal/entity"
)

type NotificationKind string

const (
	KindReviewPost   NotificationKind = "review_post"
	KindReviewUpdate NotificationKind = "review_update"
	KindDecision     NotificationKind = "decision"
	KindReminder     NotificationKind = "reminder"
)

// NotificationPayload is the wire format on the notification bus. It carries
// ids only; the worker re-reads current state before sending anything.
type NotificationPayload struct {
	Kind      NotificationKind `json:"kind"`
	LeadID    string           `json:"lead_id,omitempty"`
	ContactID string           `json:"contact_id,omitempty"`
}

// Producer publishes notification events. It implements usecase.Notifier, so
// every notification a use case fires is just a persistent message on the
// bus — delivery failures stay on the worker side of the fence.
type Producer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *Producer {
	return &Producer{Conn: conn, Ch: ch}
}

func (p *Producer) PostForReview(ctx context.Context, l *entity.Lead) error {
	return p.publish(ctx, NotificationPayload{Kind: KindReviewPost, LeadID: l.ID})
}

func (p *Producer) UpdateReviewMessage(ctx context.Context, l *entity.Lead) error {
	return p.publish(ctx, NotificationPayload{Kind: KindReviewUpdate, LeadID: l.ID})
}

func (p *Producer) NotifyDecision(ctx context.Context, l *entity.Lead) error {
	return p.publish(ctx, NotificationPayload{Kind: KindDecision, LeadID: l.ID})
}

func (p *Producer) SendReminder(ctx context.Context, contactID string) error {
	return p.publish(ctx, NotificationPayload{Kind: KindReminder, ContactID: contactID})
}

func (p *Producer) publish(ctx context.Context, payload NotificationPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s notification: %w", payload.Kind, err)
	}
	return nil
}
