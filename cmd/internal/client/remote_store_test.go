package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
	"visuall/cmd/internal/forms"
	"visuall/cmd/internal/reminder"
	"visuall/cmd/internal/service"
	"visuall/cmd/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory server for one user.
type fakeAPI struct {
	records   []service.ReminderResponse
	nextID    int
	calls     int
	listErr   error
	mutateErr error
}

func (f *fakeAPI) ListByUser(context.Context, int) ([]service.ReminderResponse, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]service.ReminderResponse(nil), f.records...), nil
}

func (f *fakeAPI) CreateReminder(_ context.Context, body *service.ReminderRequest) (*service.ReminderResponse, error) {
	f.calls++
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	f.nextID++
	rec := service.ReminderResponse{
		ID:            f.nextID,
		UsuarioID:     body.UsuarioID,
		Titulo:        body.Titulo,
		NomeMedico:    body.NomeMedico,
		Especialidade: body.Especialidade,
		DataConsulta:  body.DataConsulta,
		HoraConsulta:  body.HoraConsulta,
		LocalConsulta: body.LocalConsulta,
		Observacoes:   body.Observacoes,
		DataCriacao:   "2030-05-10T12:00:00.000Z",
	}
	f.records = append(f.records, rec)
	return &rec, nil
}

func (f *fakeAPI) UpdateReminder(_ context.Context, id int, body *service.ReminderRequest) (*service.ReminderResponse, error) {
	f.calls++
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].Titulo = body.Titulo
			f.records[i].HoraConsulta = body.HoraConsulta
			rec := f.records[i]
			return &rec, nil
		}
	}
	return nil, &RemoteRequestError{Status: http.StatusNotFound}
}

func (f *fakeAPI) DeleteReminder(_ context.Context, id int) error {
	f.calls++
	if f.mutateErr != nil {
		return f.mutateErr
	}
	for i := range f.records {
		if f.records[i].ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return &RemoteRequestError{Status: http.StatusNotFound}
}

func (f *fakeAPI) CompleteReminder(_ context.Context, id int) (*service.ReminderResponse, error) {
	return f.setCompleted(id, true)
}

func (f *fakeAPI) ReopenReminder(_ context.Context, id int) (*service.ReminderResponse, error) {
	return f.setCompleted(id, false)
}

func (f *fakeAPI) setCompleted(id int, completed bool) (*service.ReminderResponse, error) {
	f.calls++
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].Concluido = completed
			f.records[i].DataConclusao = nil
			if completed {
				at := "2030-05-11T08:00:00.000Z"
				f.records[i].DataConclusao = &at
			}
			rec := f.records[i]
			return &rec, nil
		}
	}
	return nil, &RemoteRequestError{Status: http.StatusNotFound}
}

var storeNow = time.Date(2030, 5, 10, 12, 0, 0, 0, time.UTC)

func newRemoteStore(t *testing.T, api *fakeAPI) *RemoteStore {
	t.Helper()
	now := func() time.Time { return storeNow }
	store := NewRemoteStore(api, forms.NewValidator(now, time.UTC, false), now)
	require.NoError(t, store.Load(context.Background(), 7))
	return store
}

func remoteForm() forms.ReminderForm {
	return forms.ReminderForm{
		DoctorName: "Dr. Ana Souza",
		Specialty:  "Cardiologia",
		Date:       "2030-05-20",
		Time:       "09:30",
		Location:   "InCor, sala 12",
	}
}

func TestRemoteCreate(t *testing.T) {
	api := &fakeAPI{}
	store := newRemoteStore(t, api)
	ctx := context.Background()

	created, err := store.Create(ctx, remoteForm())
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, "Consultation with Dr. Ana Souza", created.Title)
	assert.Equal(t, storeNow.UnixMilli(), created.CreatedAt)
	assert.Len(t, store.All(), 1)

	invalid := remoteForm()
	invalid.Time = "9h"
	_, err = store.Create(ctx, invalid)
	var verr *forms.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "time")
	assert.Equal(t, 1, api.calls)
}

func TestRemoteFailuresLeaveStateUnchanged(t *testing.T) {
	api := &fakeAPI{}
	store := newRemoteStore(t, api)
	ctx := context.Background()

	created, err := store.Create(ctx, remoteForm())
	require.NoError(t, err)

	api.mutateErr = &RemoteRequestError{Status: http.StatusInternalServerError, Message: "boom"}
	_, err = store.SetCompleted(ctx, created.ID, true)
	require.Error(t, err)
	assert.Empty(t, store.HistoryView())
	assert.Len(t, store.ActiveView(), 1)

	api.mutateErr = &RemoteRequestError{Status: http.StatusBadRequest, Fields: map[string]string{"date": "The date cannot be earlier than today"}}
	_, err = store.Update(ctx, created.ID, remoteForm())
	var verr *forms.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "The date cannot be earlier than today", verr.Fields["date"])
}

func TestRemoteRefreshFailure(t *testing.T) {
	api := &fakeAPI{}
	store := newRemoteStore(t, api)

	api.listErr = &RemoteRequestError{Message: "connection reset"}
	created, err := store.Create(context.Background(), remoteForm())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "change saved but refresh failed")
	require.NotNil(t, created)
	assert.Equal(t, "Dr. Ana Souza", created.DoctorName)
	assert.Empty(t, store.All())
}

func TestRemoteCompletion(t *testing.T) {
	api := &fakeAPI{}
	store := newRemoteStore(t, api)
	ctx := context.Background()

	created, err := store.Create(ctx, remoteForm())
	require.NoError(t, err)

	done, err := store.ToggleCompleted(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, done.Completed())
	want, err := utils.ParseEpoch("2030-05-11T08:00:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, want, *done.CompletedAt)
	assert.Len(t, store.HistoryView(), 1)

	reopened, err := store.ToggleCompleted(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, reopened.Completed())

	api.records[0].Concluido = true
	require.NoError(t, store.Load(ctx, 7))
	legacy, err := store.Get(created.ID)
	require.NoError(t, err)
	require.True(t, legacy.Completed())
	assert.Equal(t, storeNow.UnixMilli(), *legacy.CompletedAt)
}

func TestRemoteDelete(t *testing.T) {
	api := &fakeAPI{}
	store := newRemoteStore(t, api)
	ctx := context.Background()

	created, err := store.Create(ctx, remoteForm())
	require.NoError(t, err)

	api.records = nil
	require.NoError(t, store.Delete(ctx, created.ID))
	assert.Empty(t, store.All())

	calls := api.calls
	require.NoError(t, store.Delete(ctx, created.ID))
	assert.Equal(t, calls, api.calls)
}

func TestRemoteStoreSignedOut(t *testing.T) {
	api := &fakeAPI{}
	store := newRemoteStore(t, api)
	ctx := context.Background()

	require.NoError(t, store.Load(ctx, 0))
	assert.Equal(t, 0, store.UserID())

	_, err := store.Create(ctx, remoteForm())
	assert.ErrorIs(t, err, reminder.ErrNotAuthenticated)
	_, err = store.Update(ctx, 1, remoteForm())
	assert.ErrorIs(t, err, reminder.ErrNotAuthenticated)
	assert.ErrorIs(t, store.Delete(ctx, 1), reminder.ErrNotAuthenticated)
	_, err = store.ToggleCompleted(ctx, 1)
	assert.ErrorIs(t, err, reminder.ErrNotAuthenticated)

	require.NoError(t, store.Load(ctx, 7))
	_, err = store.Update(ctx, 99, remoteForm())
	assert.ErrorIs(t, err, reminder.ErrNotFound)
	_, err = store.Get(99)
	assert.True(t, errors.Is(err, reminder.ErrNotFound))
}
