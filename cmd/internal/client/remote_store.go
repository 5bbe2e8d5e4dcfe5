package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"visuall/cmd/internal/domain/entity"
	"visuall/cmd/internal/forms"
	"visuall/cmd/internal/reminder"
	"visuall/cmd/internal/service"
	"visuall/cmd/internal/utils"

	"github.com/labstack/gommon/log"
)

type ReminderAPI interface {
	ListByUser(ctx context.Context, userID int) ([]service.ReminderResponse, error)
	CreateReminder(ctx context.Context, body *service.ReminderRequest) (*service.ReminderResponse, error)
	UpdateReminder(ctx context.Context, id int, body *service.ReminderRequest) (*service.ReminderResponse, error)
	DeleteReminder(ctx context.Context, id int) error
	CompleteReminder(ctx context.Context, id int) (*service.ReminderResponse, error)
	ReopenReminder(ctx context.Context, id int) (*service.ReminderResponse, error)
}

// RemoteStore mirrors reminder.Store against the REST API. Every mutation
// is sent to the server and followed by a full reload; a failed call leaves
// the local collection as it was.
type RemoteStore struct {
	mu        sync.Mutex
	api       ReminderAPI
	validator reminder.FormValidator
	now       func() time.Time

	userID    int
	reminders []entity.Reminder
}

func NewRemoteStore(api ReminderAPI, validator reminder.FormValidator, now func() time.Time) *RemoteStore {
	if now == nil {
		now = time.Now
	}
	return &RemoteStore{api: api, validator: validator, now: now, reminders: []entity.Reminder{}}
}

// Load fetches the collection of userID. userID 0 clears the store.
func (s *RemoteStore) Load(ctx context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID == 0 {
		s.userID = 0
		s.reminders = []entity.Reminder{}
		return nil
	}
	return s.reload(ctx, userID)
}

func (s *RemoteStore) UserID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *RemoteStore) Create(ctx context.Context, form forms.ReminderForm) (*entity.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == 0 {
		return nil, reminder.ErrNotAuthenticated
	}
	if err := s.validator.Reminder(&form); err != nil {
		return nil, err
	}

	created, err := s.api.CreateReminder(ctx, s.request(form))
	if err != nil {
		return nil, remoteErr(err)
	}
	return s.afterMutation(ctx, created)
}

func (s *RemoteStore) Update(ctx context.Context, id int, form forms.ReminderForm) (*entity.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == 0 {
		return nil, reminder.ErrNotAuthenticated
	}
	if s.indexOf(id) < 0 {
		return nil, reminder.ErrNotFound
	}
	if err := s.validator.Reminder(&form); err != nil {
		return nil, err
	}

	updated, err := s.api.UpdateReminder(ctx, id, s.request(form))
	if err != nil {
		return nil, remoteErr(err)
	}
	return s.afterMutation(ctx, updated)
}

// Delete of an id unknown locally is a no-op, as in reminder.Store.
func (s *RemoteStore) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == 0 {
		return reminder.ErrNotAuthenticated
	}
	if s.indexOf(id) < 0 {
		return nil
	}

	if err := s.api.DeleteReminder(ctx, id); err != nil && !errors.Is(err, reminder.ErrNotFound) {
		return remoteErr(err)
	}
	return s.reload(ctx, s.userID)
}

func (s *RemoteStore) ToggleCompleted(ctx context.Context, id int) (*entity.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return s.setCompleted(ctx, id, !s.reminders[idx].Completed())
}

func (s *RemoteStore) SetCompleted(ctx context.Context, id int, completed bool) (*entity.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(id); err != nil {
		return nil, err
	}
	return s.setCompleted(ctx, id, completed)
}

func (s *RemoteStore) setCompleted(ctx context.Context, id int, completed bool) (*entity.Reminder, error) {
	call := s.api.ReopenReminder
	if completed {
		call = s.api.CompleteReminder
	}

	resp, err := call(ctx, id)
	if err != nil {
		return nil, remoteErr(err)
	}
	return s.afterMutation(ctx, resp)
}

func (s *RemoteStore) Get(id int) (*entity.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	out := s.reminders[idx].Clone()
	return &out, nil
}

func (s *RemoteStore) All() []entity.Reminder {
	return s.view(func(entity.Reminder) bool { return true })
}

func (s *RemoteStore) ActiveView() []entity.Reminder {
	return s.view(func(r entity.Reminder) bool { return !r.Completed() })
}

func (s *RemoteStore) HistoryView() []entity.Reminder {
	return s.view(func(r entity.Reminder) bool { return r.Completed() })
}

func (s *RemoteStore) view(keep func(entity.Reminder) bool) []entity.Reminder {
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

// afterMutation reloads the collection. When only the reload fails, the
// mutation result is still returned along with the error.
func (s *RemoteStore) afterMutation(ctx context.Context, resp *service.ReminderResponse) (*entity.Reminder, error) {
	out := s.toEntity(*resp)
	if err := s.reload(ctx, s.userID); err != nil {
		return &out, fmt.Errorf("change saved but refresh failed: %w", err)
	}
	if idx := s.indexOf(out.ID); idx >= 0 {
		out = s.reminders[idx].Clone()
	}
	return &out, nil
}

func (s *RemoteStore) reload(ctx context.Context, userID int) error {
	list, err := s.api.ListByUser(ctx, userID)
	if err != nil {
		return remoteErr(err)
	}

	reminders := make([]entity.Reminder, len(list))
	for i, dto := range list {
		reminders[i] = s.toEntity(dto)
	}
	s.userID = userID
	s.reminders = reminders
	return nil
}

func (s *RemoteStore) lookup(id int) (int, error) {
	if s.userID == 0 {
		return -1, reminder.ErrNotAuthenticated
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return -1, reminder.ErrNotFound
	}
	return idx, nil
}

func (s *RemoteStore) indexOf(id int) int {
	for i, r := range s.reminders {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (s *RemoteStore) request(form forms.ReminderForm) *service.ReminderRequest {
	title := form.Title
	if title == "" {
		title = entity.DefaultTitle(form.DoctorName)
	}
	return &service.ReminderRequest{
		UsuarioID:     s.userID,
		Titulo:        title,
		NomeMedico:    form.DoctorName,
		Especialidade: form.Specialty,
		DataConsulta:  form.Date,
		HoraConsulta:  form.Time,
		LocalConsulta: form.Location,
		Observacoes:   form.Notes,
	}
}

// toEntity maps the wire record. A completed record without a completion
// time, as older servers send, is taken as completed now.
func (s *RemoteStore) toEntity(dto service.ReminderResponse) entity.Reminder {
	r := entity.Reminder{
		ID:         dto.ID,
		Title:      dto.Titulo,
		DoctorName: dto.NomeMedico,
		Specialty:  dto.Especialidade,
		Date:       dto.DataConsulta,
		Time:       dto.HoraConsulta,
		Location:   dto.LocalConsulta,
		Notes:      dto.Observacoes,
	}

	if created, err := utils.ParseEpoch(dto.DataCriacao); err == nil {
		r.CreatedAt = created
	} else if dto.DataCriacao != "" {
		log.Warnf("reminder %d has an unreadable creation time %q", dto.ID, dto.DataCriacao)
	}

	if dto.Concluido {
		completedAt := s.now().UTC().UnixMilli()
		if dto.DataConclusao != nil {
			if parsed, err := utils.ParseEpoch(*dto.DataConclusao); err == nil {
				completedAt = parsed
			}
		}
		r.Complete(completedAt)
	}
	return r
}

// remoteErr turns a 400 with field messages into the same validation error
// the local store returns.
func remoteErr(err error) error {
	var rerr *RemoteRequestError
	if errors.As(err, &rerr) && len(rerr.Fields) > 0 {
		return &forms.ValidationError{Fields: rerr.Fields}
	}
	return err
}
