package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/davronx1/leadgate/internal/entity"
	"github.com/davronx1/leadgate/internal/infra/http/middleware"
	"github.com/davronx1/leadgate/internal/usecase"
)

// ChatClient is what the worker needs from the chat platform.
type ChatClient interface {
	SendMessage(ctx context.Context, chatID, text string) (int64, error)
	EditMessageText(ctx context.Context, chatID string, messageID int64, text string) error
}

// MailSender delivers the decision copy to the sales inbox.
type MailSender interface {
	SendDecision(to string, lead *entity.Lead) error
}

// Worker drains the notification queue and performs the actual sends. It
// re-reads lead and contact state per message, so stale events resolve to the
// current truth.
type Worker struct {
	Channel     *amqp.Channel
	Store       usecase.Store
	Chat        ChatClient
	Mail        MailSender
	GroupChatID string
	ChannelURL  string
	SalesEmail  string
}

func NewWorker(ch *amqp.Channel, store usecase.Store, chat ChatClient, mail MailSender, groupChatID, channelURL, salesEmail string) *Worker {
	return &Worker{
		Channel:     ch,
		Store:       store,
		Chat:        chat,
		Mail:        mail,
		GroupChatID: groupChatID,
		ChannelURL:  channelURL,
		SalesEmail:  salesEmail,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("❌ failed to register notification consumer: %s", err)
	}

	go func() {
		for d := range msgs {
			var payload NotificationPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("[worker] malformed notification, dropping: %s", err)
				d.Nack(false, false)
				continue
			}

			if err := w.process(context.Background(), payload); err != nil {
				log.Printf("[worker] %s notification failed: %s", payload.Kind, err)
				middleware.RecordNotificationError(string(payload.Kind))
				d.Nack(false, false)
			} else {
				d.Ack(false)
			}
		}
	}()

	log.Printf(" [*] notification worker waiting on queue '%s'", queueName)
}

func (w *Worker) process(ctx context.Context, payload NotificationPayload) error {
	switch payload.Kind {
	case KindReviewPost:
		return w.postForReview(ctx, payload.LeadID)
	case KindReviewUpdate:
		return w.updateReviewMessage(ctx, payload.LeadID)
	case KindDecision:
		return w.notifyDecision(ctx, payload.LeadID)
	case KindReminder:
		return w.sendReminder(ctx, payload.ContactID)
	default:
		// unknown kind: ack and move on, nothing useful to retry
		log.Printf("[worker] unknown notification kind %q, skipping", payload.Kind)
		return nil
	}
}

func (w *Worker) postForReview(ctx context.Context, leadID string) error {
	lead, contact, err := w.loadLead(ctx, leadID)
	if err != nil {
		return err
	}

	messageID, err := w.Chat.SendMessage(ctx, w.GroupChatID, formatLeadCard(lead, contact))
	if err != nil {
		return err
	}
	return w.Store.Leads().SetReviewMessage(ctx, lead.ID, w.GroupChatID, messageID)
}

func (w *Worker) updateReviewMessage(ctx context.Context, leadID string) error {
	lead, contact, err := w.loadLead(ctx, leadID)
	if err != nil {
		return err
	}
	if lead.TelegramChatID == "" || lead.TelegramMessageID == 0 {
		log.Printf("[worker] lead %s has no review message yet, skipping update", lead.ID)
		return nil
	}
	return w.Chat.EditMessageText(ctx, lead.TelegramChatID, lead.TelegramMessageID, formatLeadCard(lead, contact))
}

func (w *Worker) notifyDecision(ctx context.Context, leadID string) error {
	lead, contact, err := w.loadLead(ctx, leadID)
	if err != nil {
		return err
	}

	if contact.TelegramID != "" {
		text := "Your application has been accepted. Our team will contact you shortly."
		if lead.Status == entity.StatusRejected {
			text = "Your application has been rejected."
			if lead.RejectionReason != "" {
				text += "\nReason: " + lead.RejectionReason
			}
		}
		if _, err := w.Chat.SendMessage(ctx, contact.TelegramID, text); err != nil {
			return err
		}
	}

	if w.Mail != nil && w.SalesEmail != "" {
		if err := w.Mail.SendDecision(w.SalesEmail, lead); err != nil {
			log.Printf("[worker] decision email for lead %s failed: %s", lead.ID, err)
		}
	}
	return nil
}

func (w *Worker) sendReminder(ctx context.Context, contactID string) error {
	contact, err := w.Store.Contacts().FindByID(ctx, contactID)
	if err != nil {
		return err
	}
	if contact.TelegramID == "" {
		log.Printf("[worker] contact %s has no telegram id, skipping reminder", contactID)
		return nil
	}
	text := "Don't miss our updates — join the channel: " + w.ChannelURL
	_, err = w.Chat.SendMessage(ctx, contact.TelegramID, text)
	return err
}

func (w *Worker) loadLead(ctx context.Context, leadID string) (*entity.Lead, *entity.Contact, error) {
	lead, err := w.Store.Leads().FindByID(ctx, leadID)
	if err != nil {
		return nil, nil, fmt.Errorf("load lead %s: %w", leadID, err)
	}
	contact, err := w.Store.Contacts().FindByID(ctx, lead.ContactID)
	if err != nil {
		return nil, nil, fmt.Errorf("load contact %s: %w", lead.ContactID, err)
	}
	return lead, contact, nil
}

func formatLeadCard(lead *entity.Lead, contact *entity.Contact) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📋 Lead — %s\n\n", lead.Status)
	fmt.Fprintf(&b, "📍 Location: %s\n", lead.Location)
	if lead.CompanyType != "" {
		fmt.Fprintf(&b, "🏢 Company type: %s\n", lead.CompanyType)
	}
	if lead.RoleInCompany != "" {
		fmt.Fprintf(&b, "👔 Role: %s\n", lead.RoleInCompany)
	}
	if len(lead.Interests) > 0 {
		fmt.Fprintf(&b, "🎯 Interests: %s\n", strings.Join(lead.Interests, ", "))
	}
	if lead.CompanyDescription != "" {
		fmt.Fprintf(&b, "📝 Description: %s\n", lead.CompanyDescription)
	}
	if lead.AnnualTurnover != "" {
		fmt.Fprintf(&b, "💰 Annual turnover: %s\n", lead.AnnualTurnover)
	}
	if lead.NumberOfEmployees != "" {
		fmt.Fprintf(&b, "👥 Employees: %s\n", lead.NumberOfEmployees)
	}
	fmt.Fprintf(&b, "👤 Name: %s\n", lead.FullName)
	fmt.Fprintf(&b, "📞 Phone: %s\n", lead.Phone)
	if lead.CompanyName != "" {
		fmt.Fprintf(&b, "🏢 Company: %s\n", lead.CompanyName)
	}
	if contact.TelegramID != "" {
		display := contact.TelegramUsername
		if display == "" {
			display = contact.TelegramID
		}
		fmt.Fprintf(&b, "📱 Telegram: @%s\n", display)
	}

	switch lead.Status {
	case entity.StatusAccepted:
		fmt.Fprintf(&b, "✅ Accepted by: %s", lead.DecidedBy)
	case entity.StatusRejected:
		fmt.Fprintf(&b, "❌ Rejected by: %s (%s)", lead.DecidedBy, lead.RejectionReason)
	}

	return b.String()
}
