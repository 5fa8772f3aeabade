package worker

import (
	"context"
	"log"
	"time"

	"github.com/davronx1/leadgate/internal/infra/http/middleware"
	"github.com/davronx1/leadgate/internal/usecase"
)

// ReminderWorker periodically drains the due set and hands each contact to
// the notifier. At-least-once is fine; MarkSent runs right after the publish
// so the same scan never re-sends.
type ReminderWorker struct {
	scheduler    *usecase.ReminderScheduler
	notifier     usecase.Notifier
	tickInterval time.Duration
}

func NewReminderWorker(scheduler *usecase.ReminderScheduler, notifier usecase.Notifier) *ReminderWorker {
	return &ReminderWorker{
		scheduler:    scheduler,
		notifier:     notifier,
		tickInterval: time.Hour,
	}
}

func (w *ReminderWorker) Start(ctx context.Context) {
	log.Println("🕒 reminder worker started (hourly scan)")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("reminder worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *ReminderWorker) runOnce(ctx context.Context) {
	due, err := w.scheduler.DueSet(ctx)
	if err != nil {
		log.Printf("[reminders] due-set scan failed: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}
	log.Printf("[reminders] %d contact(s) due", len(due))

	for _, contactID := range due {
		if err := w.notifier.SendReminder(ctx, contactID); err != nil {
			log.Printf("[reminders] send for contact %s failed: %v", contactID, err)
			continue
		}
		if err := w.scheduler.MarkSent(ctx, contactID); err != nil {
			log.Printf("[reminders] mark-sent for contact %s failed: %v", contactID, err)
			continue
		}
		middleware.RecordReminderSent()
	}
}
