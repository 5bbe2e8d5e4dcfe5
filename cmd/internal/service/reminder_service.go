package service

import (
	"context"
	"errors"
	"visuall/cmd/internal/announce"
	"visuall/cmd/internal/domain/entity"
	"visuall/cmd/internal/forms"
	"visuall/cmd/internal/reminder"
	"visuall/cmd/internal/utils"
	"visuall/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
)

type StoreProvider interface {
	Acquire(ctx context.Context, userID int) (*reminder.Store, error)
}

type Announcer interface {
	Listen(ctx context.Context, r entity.Reminder) announce.Notice
	Share(ctx context.Context, r entity.Reminder) announce.Notice
}

// ReminderRequest is the body of reminder creation and edition. UsuarioID is
// optional; when sent it must match the caller.
type ReminderRequest struct {
	UsuarioID     int    `json:"usuarioId"`
	Titulo        string `json:"titulo"`
	NomeMedico    string `json:"nomeMedico"`
	Especialidade string `json:"especialidade"`
	DataConsulta  string `json:"dataConsulta"`
	HoraConsulta  string `json:"horaConsulta"`
	LocalConsulta string `json:"localConsulta"`
	Observacoes   string `json:"observacoes"`
}

type ReminderResponse struct {
	ID            int     `json:"id"`
	UsuarioID     int     `json:"usuarioId"`
	Titulo        string  `json:"titulo"`
	NomeMedico    string  `json:"nomeMedico"`
	Especialidade string  `json:"especialidade"`
	DataConsulta  string  `json:"dataConsulta"`
	HoraConsulta  string  `json:"horaConsulta"`
	LocalConsulta string  `json:"localConsulta"`
	Observacoes   string  `json:"observacoes,omitempty"`
	Concluido     bool    `json:"concluido"`
	DataConclusao *string `json:"dataConclusao,omitempty"`
	DataCriacao   string  `json:"dataCriacao"`
}

type DefaultReminderService struct {
	Sessions  StoreProvider
	Announcer Announcer
}

func NewReminderService(sessions StoreProvider, announcer Announcer) *DefaultReminderService {
	return &DefaultReminderService{Sessions: sessions, Announcer: announcer}
}

func (s *DefaultReminderService) GetReminders(ctx context.Context, callerID, ownerID int) ([]*ReminderResponse, apierror.ErrorResponse) {
	store, apierr := s.ownedStore(ctx, callerID, ownerID)
	if apierr != nil {
		return nil, apierr
	}
	return toReminderResponses(callerID, store.All()), nil
}

func (s *DefaultReminderService) GetActive(ctx context.Context, callerID, ownerID int) ([]reminder.DisplayModel, apierror.ErrorResponse) {
	store, apierr := s.ownedStore(ctx, callerID, ownerID)
	if apierr != nil {
		return nil, apierr
	}
	return reminder.ToDisplayList(store.ActiveView()), nil
}

func (s *DefaultReminderService) GetHistory(ctx context.Context, callerID, ownerID int) ([]reminder.DisplayModel, apierror.ErrorResponse) {
	store, apierr := s.ownedStore(ctx, callerID, ownerID)
	if apierr != nil {
		return nil, apierr
	}
	return reminder.ToDisplayList(store.HistoryView()), nil
}

func (s *DefaultReminderService) CreateReminder(ctx context.Context, callerID int, req *ReminderRequest) (*ReminderResponse, apierror.ErrorResponse) {
	store, apierr := s.requestStore(ctx, callerID, req)
	if apierr != nil {
		return nil, apierr
	}

	created, err := store.Create(ctx, req.toForm())
	if err != nil {
		return nil, mapStoreError(err)
	}
	return toReminderResponse(callerID, *created), nil
}

func (s *DefaultReminderService) UpdateReminder(ctx context.Context, callerID, id int, req *ReminderRequest) (*ReminderResponse, apierror.ErrorResponse) {
	store, apierr := s.requestStore(ctx, callerID, req)
	if apierr != nil {
		return nil, apierr
	}

	updated, err := store.Update(ctx, id, req.toForm())
	if err != nil {
		return nil, mapStoreError(err)
	}
	return toReminderResponse(callerID, *updated), nil
}

func (s *DefaultReminderService) DeleteReminder(ctx context.Context, callerID, id int) apierror.ErrorResponse {
	store, apierr := s.ownedStore(ctx, callerID, callerID)
	if apierr != nil {
		return apierr
	}
	if err := store.Delete(ctx, id); err != nil {
		return mapStoreError(err)
	}
	return nil
}

// CompleteReminder and ReopenReminder are idempotent, unlike a toggle, so a
// retried request cannot flip the state back.
func (s *DefaultReminderService) CompleteReminder(ctx context.Context, callerID, id int) (*ReminderResponse, apierror.ErrorResponse) {
	return s.setCompleted(ctx, callerID, id, true)
}

func (s *DefaultReminderService) ReopenReminder(ctx context.Context, callerID, id int) (*ReminderResponse, apierror.ErrorResponse) {
	return s.setCompleted(ctx, callerID, id, false)
}

func (s *DefaultReminderService) ListenReminder(ctx context.Context, callerID, id int) (*announce.Notice, apierror.ErrorResponse) {
	r, apierr := s.lookup(ctx, callerID, id)
	if apierr != nil {
		return nil, apierr
	}
	notice := s.Announcer.Listen(ctx, *r)
	return &notice, nil
}

func (s *DefaultReminderService) ShareReminder(ctx context.Context, callerID, id int) (*announce.Notice, apierror.ErrorResponse) {
	r, apierr := s.lookup(ctx, callerID, id)
	if apierr != nil {
		return nil, apierr
	}
	notice := s.Announcer.Share(ctx, *r)
	return &notice, nil
}

func (s *DefaultReminderService) setCompleted(ctx context.Context, callerID, id int, completed bool) (*ReminderResponse, apierror.ErrorResponse) {
	store, apierr := s.ownedStore(ctx, callerID, callerID)
	if apierr != nil {
		return nil, apierr
	}

	r, err := store.SetCompleted(ctx, id, completed)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return toReminderResponse(callerID, *r), nil
}

func (s *DefaultReminderService) lookup(ctx context.Context, callerID, id int) (*entity.Reminder, apierror.ErrorResponse) {
	store, apierr := s.ownedStore(ctx, callerID, callerID)
	if apierr != nil {
		return nil, apierr
	}

	r, err := store.Get(id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return r, nil
}

func (s *DefaultReminderService) requestStore(ctx context.Context, callerID int, req *ReminderRequest) (*reminder.Store, apierror.ErrorResponse) {
	ownerID := callerID
	if req.UsuarioID != 0 {
		ownerID = req.UsuarioID
	}
	return s.ownedStore(ctx, callerID, ownerID)
}

// ownedStore only hands out the caller's own collection.
func (s *DefaultReminderService) ownedStore(ctx context.Context, callerID, ownerID int) (*reminder.Store, apierror.ErrorResponse) {
	if callerID <= 0 {
		return nil, apierror.InvalidAuthTokenError
	}
	if callerID != ownerID {
		return nil, apierror.ForbiddenError
	}

	store, err := s.Sessions.Acquire(ctx, callerID)
	if err != nil {
		log.Errorf("failed to load reminders of user %d: %v", callerID, err)
		return nil, apierror.InternalServerError
	}
	return store, nil
}

func mapStoreError(err error) apierror.ErrorResponse {
	var verr *forms.ValidationError
	var perr *reminder.PersistenceError

	switch {
	case errors.As(err, &verr):
		return apierror.FromFieldErrors(verr.Fields)
	case errors.Is(err, reminder.ErrNotAuthenticated):
		return apierror.InvalidAuthTokenError
	case errors.Is(err, reminder.ErrNotFound):
		return apierror.NotFoundError
	case errors.As(err, &perr):
		return apierror.PersistenceError
	default:
		log.Errorf("unexpected reminder store error: %v", err)
		return apierror.InternalServerError
	}
}

func (r *ReminderRequest) toForm() forms.ReminderForm {
	return forms.ReminderForm{
		Title:      r.Titulo,
		DoctorName: r.NomeMedico,
		Specialty:  r.Especialidade,
		Date:       r.DataConsulta,
		Time:       r.HoraConsulta,
		Location:   r.LocalConsulta,
		Notes:      r.Observacoes,
	}
}

func toReminderResponses(userID int, reminders []entity.Reminder) []*ReminderResponse {
	resp := make([]*ReminderResponse, len(reminders))
	for i, r := range reminders {
		resp[i] = toReminderResponse(userID, r)
	}
	return resp
}

func toReminderResponse(userID int, r entity.Reminder) *ReminderResponse {
	resp := &ReminderResponse{
		ID:            r.ID,
		UsuarioID:     userID,
		Titulo:        r.Title,
		NomeMedico:    r.DoctorName,
		Especialidade: r.Specialty,
		DataConsulta:  r.Date,
		HoraConsulta:  r.Time,
		LocalConsulta: r.Location,
		Observacoes:   r.Notes,
		Concluido:     r.Completed(),
		DataCriacao:   utils.FormatEpoch(r.CreatedAt),
	}
	if r.CompletedAt != nil {
		completedAt := utils.FormatEpoch(*r.CompletedAt)
		resp.DataConclusao = &completedAt
	}
	return resp
}
