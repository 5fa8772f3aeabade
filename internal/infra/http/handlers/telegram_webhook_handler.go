package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/davronx1/leadgate/internal/entity"
	"github.com/davronx1/leadgate/internal/infra/integration/telegram"
	"github.com/davronx1/leadgate/internal/usecase"
)

// TelegramWebhookHandler turns bot updates into funnel operations: deep-link
// starts link a chat identity to a lead, review-group buttons decide leads,
// and the join button completes the reminder goal.
type TelegramWebhookHandler struct {
	link      *usecase.LinkIdentityUseCase
	decide    *usecase.DecideLeadUseCase
	reminders *usecase.ReminderScheduler
}

func NewTelegramWebhookHandler(link *usecase.LinkIdentityUseCase, decide *usecase.DecideLeadUseCase, reminders *usecase.ReminderScheduler) *TelegramWebhookHandler {
	return &TelegramWebhookHandler{
		link:      link,
		decide:    decide,
		reminders: reminders,
	}
}

func (h *TelegramWebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		// Telegram retries on non-2xx; a malformed body will never parse, so
		// acknowledge it and move on.
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx := r.Context()
	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	}

	w.WriteHeader(http.StatusOK)
}

func (h *TelegramWebhookHandler) handleMessage(ctx context.Context, msg *telegram.Message) {
	if msg.From == nil {
		return
	}
	userID := strconv.FormatInt(msg.From.ID, 10)

	if param, ok := startParam(msg.Text); ok {
		_, err := h.link.Execute(ctx, usecase.LinkIdentityInput{
			Key:              param,
			TelegramID:       userID,
			TelegramUsername: msg.From.Username,
			FirstName:        msg.From.FirstName,
			LastName:         msg.From.LastName,
		})
		if err != nil {
			log.Printf("[webhook] link identity for user %s failed: %v", userID, err)
		}
		return
	}

	// A plain message from a reviewer who owes a free-text rejection reason
	// completes that rejection.
	if h.decide.AwaitingReason(userID) && msg.Text != "" {
		if _, err := h.decide.CompleteRejection(ctx, userID, msg.Text); err != nil {
			log.Printf("[webhook] complete rejection by %s failed: %v", userID, err)
		}
	}
}

func (h *TelegramWebhookHandler) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) {
	if cb.From == nil {
		return
	}
	userID := strconv.FormatInt(cb.From.ID, 10)

	switch {
	case strings.HasPrefix(cb.Data, "accept_"):
		h.decideLead(ctx, usecase.DecideLeadInput{
			LeadID:    strings.TrimPrefix(cb.Data, "accept_"),
			Outcome:   entity.StatusAccepted,
			DeciderID: userID,
		})

	case strings.HasPrefix(cb.Data, "reject_reason_"):
		payload := strings.TrimPrefix(cb.Data, "reject_reason_")
		leadID, code, ok := strings.Cut(payload, "|")
		if !ok {
			log.Printf("[webhook] malformed reject callback from %s: %q", userID, cb.Data)
			return
		}
		h.decideLead(ctx, usecase.DecideLeadInput{
			LeadID:     leadID,
			Outcome:    entity.StatusRejected,
			DeciderID:  userID,
			ReasonCode: code,
		})

	case strings.HasPrefix(cb.Data, "channel_joined_"):
		contactID := strings.TrimPrefix(cb.Data, "channel_joined_")
		if err := h.reminders.MarkGoalCompleted(ctx, contactID); err != nil {
			log.Printf("[webhook] mark channel joined for contact %s failed: %v", contactID, err)
		}
	}
}

func (h *TelegramWebhookHandler) decideLead(ctx context.Context, input usecase.DecideLeadInput) {
	out, err := h.decide.Execute(ctx, input)
	if err != nil {
		log.Printf("[webhook] decide lead %s failed: %v", input.LeadID, err)
		return
	}
	if out.AwaitingReason {
		log.Printf("[webhook] reviewer %s owes a rejection reason for lead %s", input.DeciderID, input.LeadID)
	}
}

// startParam extracts the payload of a "/start <param>" command.
func startParam(text string) (string, bool) {
	if !strings.HasPrefix(text, "/start") {
		return "", false
	}
	param := strings.TrimSpace(strings.TrimPrefix(text, "/start"))
	if param == "" {
		return "", false
	}
	return param, true
}
