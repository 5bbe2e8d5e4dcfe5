// Package reminder owns a user's reminder collection: mutations with
// write-through persistence, the active/history views, and expiry of
// completed reminders.
package reminder

import (
	"context"
	"strconv"
	"sync"
	"time"
	"visuall/cmd/internal/domain/entity"
	"visuall/cmd/internal/forms"
	"visuall/cmd/internal/metrics"

	"github.com/labstack/gommon/log"
)

// Repository is the persistence adapter: one collection per user key.
// Read reports found=false for an absent or unreadable collection.
type Repository interface {
	Read(ctx context.Context, key string) ([]entity.Reminder, bool, error)
	Write(ctx context.Context, key string, reminders []entity.Reminder) error
}

type FormValidator interface {
	Reminder(form *forms.ReminderForm) error
}

func CollectionKey(userID int) string {
	return "reminders_" + strconv.Itoa(userID)
}

// Store holds the collection of the current user. All methods are safe for
// concurrent use; mutations are serialized and written through before they
// become visible.
type Store struct {
	mu        sync.Mutex
	repo      Repository
	validator FormValidator
	now       func() time.Time

	userID    int
	reminders []entity.Reminder
}

func NewStore(repo Repository, validator FormValidator, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{repo: repo, validator: validator, now: now, reminders: []entity.Reminder{}}
}

// Load switches the store to userID, dropping the previous collection.
// userID 0 means nobody is signed in.
func (s *Store) Load(ctx context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userID = 0
	s.reminders = []entity.Reminder{}
	if userID == 0 {
		return nil
	}

	key := CollectionKey(userID)
	stored, found, err := s.repo.Read(ctx, key)
	if err != nil {
		return &PersistenceError{Op: "load", Key: key, Err: err}
	}

	s.userID = userID
	if found {
		s.reminders = stored
		return nil
	}

	if err := s.repo.Write(ctx, key, s.reminders); err != nil {
		metrics.PersistenceFailures.WithLabelValues("load").Inc()
		return &PersistenceError{Op: "load", Key: key, Err: err}
	}
	return nil
}

func (s *Store) UserID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *Store) Create(ctx context.Context, form forms.ReminderForm) (*entity.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == 0 {
		return nil, ErrNotAuthenticated
	}
	if err := s.validator.Reminder(&form); err != nil {
		return nil, err
	}

	created := entity.Reminder{
		ID:        s.nextID(),
		CreatedAt: s.now().UTC().UnixMilli(),
	}
	applyForm(&created, form)

	next := append(s.snapshot(), created)
	if err := s.commit(ctx, "create", next); err != nil {
		return nil, err
	}
	out := created.Clone()
	return &out, nil
}

// Update replaces every editable field; id, creation time and completion
// state are kept.
func (s *Store) Update(ctx context.Context, id int, form forms.ReminderForm) (*entity.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == 0 {
		return nil, ErrNotAuthenticated
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	if err := s.validator.Reminder(&form); err != nil {
		return nil, err
	}

	next := s.snapshot()
	applyForm(&next[idx], form)
	if err := s.commit(ctx, "update", next); err != nil {
		return nil, err
	}
	out := next[idx].Clone()
	return &out, nil
}

// Delete is idempotent: an unknown id is not an error.
func (s *Store) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == 0 {
		return ErrNotAuthenticated
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}

	next := make([]entity.Reminder, 0, len(s.reminders)-1)
	next = append(next, s.reminders[:idx]...)
	next = append(next, s.reminders[idx+1:]...)
	return s.commit(ctx, "delete", next)
}

func (s *Store) ToggleCompleted(ctx context.Context, id int) (*entity.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if s.userID != 0 && idx >= 0 {
		return s.setCompleted(ctx, idx, !s.reminders[idx].Completed())
	}
	return nil, s.lookupErr(idx)
}

// SetCompleted moves the reminder to the requested state. Completing an
// already completed reminder keeps its original completion time.
func (s *Store) SetCompleted(ctx context.Context, id int, completed bool) (*entity.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if s.userID != 0 && idx >= 0 {
		return s.setCompleted(ctx, idx, completed)
	}
	return nil, s.lookupErr(idx)
}

func (s *Store) setCompleted(ctx context.Context, idx int, completed bool) (*entity.Reminder, error) {
	if s.reminders[idx].Completed() == completed {
		out := s.reminders[idx].Clone()
		return &out, nil
	}

	next := s.snapshot()
	if completed {
		next[idx].Complete(s.now().UTC().UnixMilli())
	} else {
		next[idx].Reopen()
	}

	op := "reopen"
	if completed {
		op = "complete"
	}
	if err := s.commit(ctx, op, next); err != nil {
		return nil, err
	}
	out := next[idx].Clone()
	return &out, nil
}

// Sweep drops completed reminders whose completion is at least retention
// old and returns how many were removed.
func (s *Store) Sweep(ctx context.Context, retention time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == 0 {
		return 0, nil
	}

	cutoff := s.now().UTC().UnixMilli() - retention.Milliseconds()
	kept := make([]entity.Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		if r.Completed() && *r.CompletedAt <= cutoff {
			continue
		}
		kept = append(kept, r.Clone())
	}

	evicted := len(s.reminders) - len(kept)
	if evicted == 0 {
		return 0, nil
	}
	if err := s.commit(ctx, "sweep", kept); err != nil {
		return 0, err
	}
	metrics.RemindersEvicted.Add(float64(evicted))
	return evicted, nil
}

func (s *Store) Get(id int) (*entity.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if s.userID == 0 || idx < 0 {
		return nil, s.lookupErr(idx)
	}
	out := s.reminders[idx].Clone()
	return &out, nil
}

// All returns the whole collection in insertion order.
func (s *Store) All() []entity.Reminder {
	return s.view(func(entity.Reminder) bool { return true })
}

// ActiveView returns the pending reminders in insertion order.
func (s *Store) ActiveView() []entity.Reminder {
	return s.view(func(r entity.Reminder) bool { return !r.Completed() })
}

// HistoryView returns the completed reminders in insertion order.
func (s *Store) HistoryView() []entity.Reminder {
	return s.view(func(r entity.Reminder) bool { return r.Completed() })
}

func (s *Store) view(keep func(entity.Reminder) bool) []entity.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entity.Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

// commit writes next through and only then makes it the current collection,
// so a failed write leaves memory and storage as they were.
func (s *Store) commit(ctx context.Context, op string, next []entity.Reminder) error {
	key := CollectionKey(s.userID)
	if err := s.repo.Write(ctx, key, next); err != nil {
		metrics.PersistenceFailures.WithLabelValues(op).Inc()
		log.Errorf("failed to persist %s of %s: %v", op, key, err)
		return &PersistenceError{Op: op, Key: key, Err: err}
	}
	s.reminders = next
	metrics.StoreMutations.WithLabelValues(op).Inc()
	return nil
}

func (s *Store) snapshot() []entity.Reminder {
	out := make([]entity.Reminder, len(s.reminders), len(s.reminders)+1)
	for i, r := range s.reminders {
		out[i] = r.Clone()
	}
	return out
}

func (s *Store) nextID() int {
	highest := 0
	for _, r := range s.reminders {
		if r.ID > highest {
			highest = r.ID
		}
	}
	return highest + 1
}

func (s *Store) indexOf(id int) int {
	for i, r := range s.reminders {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) lookupErr(idx int) error {
	if s.userID == 0 {
		return ErrNotAuthenticated
	}
	if idx < 0 {
		return ErrNotFound
	}
	return nil
}

func applyForm(r *entity.Reminder, form forms.ReminderForm) {
	r.Title = form.Title
	if r.Title == "" {
		r.Title = entity.DefaultTitle(form.DoctorName)
	}
	r.DoctorName = form.DoctorName
	r.Specialty = form.Specialty
	r.Date = form.Date
	r.Time = form.Time
	r.Location = form.Location
	r.Notes = form.Notes
}
