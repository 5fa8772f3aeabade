package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/davronx1/leadgate/internal/entity"
)

// fakeStore is an in-memory Store. WithinTx snapshots all maps and restores
// them when the callback fails, so transactional rollback behaves like the
// real thing.
type fakeStore struct {
	mu        sync.Mutex
	contacts  map[string]*entity.Contact
	leads     map[string]*entity.Lead
	reminders map[string]*entity.ReminderState
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		contacts:  make(map[string]*entity.Contact),
		leads:     make(map[string]*entity.Lead),
		reminders: make(map[string]*entity.ReminderState),
	}
}

func (s *fakeStore) Contacts() ContactRepository   { return &fakeContactRepo{s} }
func (s *fakeStore) Leads() LeadRepository         { return &fakeLeadRepo{s} }
func (s *fakeStore) Reminders() ReminderRepository { return &fakeReminderRepo{s} }

func (s *fakeStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	contacts := snapshotMap(s.contacts, cloneContact)
	leads := snapshotMap(s.leads, cloneLead)
	reminders := snapshotMap(s.reminders, cloneReminder)
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.contacts = contacts
		s.leads = leads
		s.reminders = reminders
		s.mu.Unlock()
		return err
	}
	return nil
}

func snapshotMap[V any](src map[string]*V, clone func(*V) *V) map[string]*V {
	out := make(map[string]*V, len(src))
	for k, v := range src {
		out[k] = clone(v)
	}
	return out
}

func cloneContact(c *entity.Contact) *entity.Contact {
	cp := *c
	return &cp
}

func cloneLead(l *entity.Lead) *entity.Lead {
	cp := *l
	cp.Interests = append([]string(nil), l.Interests...)
	return &cp
}

func cloneReminder(r *entity.ReminderState) *entity.ReminderState {
	cp := *r
	cp.LastSentAt = cloneTime(r.LastSentAt)
	cp.NextDueAt = cloneTime(r.NextDueAt)
	cp.JoinedAt = cloneTime(r.JoinedAt)
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

type fakeContactRepo struct{ s *fakeStore }

func (r *fakeContactRepo) Create(_ context.Context, c *entity.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.contacts {
		if existing.Phone == c.Phone {
			return entity.ErrPhoneTaken
		}
		if c.TelegramID != "" && existing.TelegramID == c.TelegramID {
			return entity.ErrTelegramIDTaken
		}
	}
	r.s.contacts[c.ID] = cloneContact(c)
	return nil
}

func (r *fakeContactRepo) FindByID(_ context.Context, id string) (*entity.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contacts[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return cloneContact(c), nil
}

func (r *fakeContactRepo) FindByPhone(_ context.Context, phone string) (*entity.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.contacts {
		if c.Phone == phone {
			return cloneContact(c), nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *fakeContactRepo) FindByTelegramID(_ context.Context, telegramID string) (*entity.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.contacts {
		if c.TelegramID != "" && c.TelegramID == telegramID {
			return cloneContact(c), nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *fakeContactRepo) Update(_ context.Context, c *entity.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contacts[c.ID]; !ok {
		return entity.ErrNotFound
	}
	for id, existing := range r.s.contacts {
		if id == c.ID {
			continue
		}
		if existing.Phone == c.Phone {
			return entity.ErrPhoneTaken
		}
		if c.TelegramID != "" && existing.TelegramID == c.TelegramID {
			return entity.ErrTelegramIDTaken
		}
	}
	r.s.contacts[c.ID] = cloneContact(c)
	return nil
}

func (r *fakeContactRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contacts[id]; !ok {
		return entity.ErrNotFound
	}
	delete(r.s.contacts, id)
	return nil
}

type fakeLeadRepo struct{ s *fakeStore }

func (r *fakeLeadRepo) Create(_ context.Context, l *entity.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.leads[l.ID] = cloneLead(l)
	return nil
}

func (r *fakeLeadRepo) FindByID(_ context.Context, id string) (*entity.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leads[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return cloneLead(l), nil
}

func (r *fakeLeadRepo) CountByContactID(_ context.Context, contactID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, l := range r.s.leads {
		if l.ContactID == contactID {
			n++
		}
	}
	return n, nil
}

func (r *fakeLeadRepo) ReassignContact(_ context.Context, fromID, toID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var moved int64
	for _, l := range r.s.leads {
		if l.ContactID == fromID {
			l.ContactID = toID
			moved++
		}
	}
	return moved, nil
}

func (r *fakeLeadRepo) Update(_ context.Context, l *entity.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.leads[l.ID]; !ok {
		return entity.ErrNotFound
	}
	r.s.leads[l.ID] = cloneLead(l)
	return nil
}

func (r *fakeLeadRepo) SetReviewMessage(_ context.Context, leadID, chatID string, messageID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leads[leadID]
	if !ok {
		return entity.ErrNotFound
	}
	l.TelegramChatID = chatID
	l.TelegramMessageID = messageID
	return nil
}

type fakeReminderRepo struct{ s *fakeStore }

func (r *fakeReminderRepo) FindByContactID(_ context.Context, contactID string) (*entity.ReminderState, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rem, ok := r.s.reminders[contactID]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return cloneReminder(rem), nil
}

func (r *fakeReminderRepo) Upsert(_ context.Context, rem *entity.ReminderState) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.reminders[rem.ContactID] = cloneReminder(rem)
	return nil
}

func (r *fakeReminderRepo) Reassign(_ context.Context, fromContactID, toContactID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rem, ok := r.s.reminders[fromContactID]
	if !ok {
		return nil
	}
	delete(r.s.reminders, fromContactID)
	rem.ContactID = toContactID
	r.s.reminders[toContactID] = rem
	return nil
}

func (r *fakeReminderRepo) Delete(_ context.Context, contactID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.reminders, contactID)
	return nil
}

func (r *fakeReminderRepo) DueContactIDs(_ context.Context, now time.Time) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []string
	for id, rem := range r.s.reminders {
		if !rem.HasJoined && rem.NextDueAt != nil && !rem.NextDueAt.After(now) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *fakeReminderRepo) CompleteGoal(_ context.Context, contactID string, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rem, ok := r.s.reminders[contactID]
	if !ok {
		return nil
	}
	rem.HasJoined = true
	rem.NextDueAt = nil
	if rem.JoinedAt == nil {
		rem.JoinedAt = cloneTime(&now)
	}
	return nil
}

// fakeNotifier records every notification by kind. Safe for the fire-and-forget
// goroutines the use cases spawn.
type fakeNotifier struct {
	mu       sync.Mutex
	reviewed []string // lead ids posted for review
	updated  []string // lead ids whose review message was refreshed
	decided  []string // lead ids whose decision was announced
	reminded []string // contact ids reminded
}

func (n *fakeNotifier) PostForReview(_ context.Context, l *entity.Lead) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reviewed = append(n.reviewed, l.ID)
	return nil
}

func (n *fakeNotifier) UpdateReviewMessage(_ context.Context, l *entity.Lead) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updated = append(n.updated, l.ID)
	return nil
}

func (n *fakeNotifier) NotifyDecision(_ context.Context, l *entity.Lead) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.decided = append(n.decided, l.ID)
	return nil
}

func (n *fakeNotifier) SendReminder(_ context.Context, contactID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminded = append(n.reminded, contactID)
	return nil
}

func (n *fakeNotifier) reviewedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.reviewed)
}

func (n *fakeNotifier) decidedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.decided)
}

// fakeRejections is a plain map behind the RejectionStateStore interface.
type fakeRejections struct {
	mu      sync.Mutex
	pending map[string]string
}

func newFakeRejections() *fakeRejections {
	return &fakeRejections{pending: make(map[string]string)}
}

func (f *fakeRejections) Set(deciderID, leadID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[deciderID] = leadID
}

func (f *fakeRejections) Get(deciderID string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	leadID, ok := f.pending[deciderID]
	return leadID, ok
}

func (f *fakeRejections) Clear(deciderID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, deciderID)
}

// seedContact inserts a contact directly, bypassing uniqueness checks.
func seedContact(s *fakeStore, c *entity.Contact) *entity.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[c.ID] = cloneContact(c)
	return c
}

// seedLead inserts a lead directly.
func seedLead(s *fakeStore, l *entity.Lead) *entity.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads[l.ID] = cloneLead(l)
	return l
}

func seedReminder(s *fakeStore, rem *entity.ReminderState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders[rem.ContactID] = cloneReminder(rem)
}
