package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
	"visuall/cmd/internal/forms"
	"visuall/cmd/internal/reminder"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *FileCredentialStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	creds := NewFileCredentialStore(filepath.Join(t.TempDir(), "visuall", "credentials.json"))
	c := New(srv.URL, 5*time.Second, creds)
	c.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return c, creds
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestLoginStoresCredentials(t *testing.T) {
	c, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			writeJSON(w, http.StatusOK, map[string]any{
				"token": "tok-1",
				"user":  map[string]any{"id": 7, "nome": "Maria", "email": "maria@example.com"},
			})
		case "/auth/logout":
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusInternalServerError, map[string]any{"code": 500, "message": "boom"})
		}
	})
	ctx := context.Background()

	_, err := c.Session()
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	got, err := c.Login(ctx, &forms.LoginForm{Email: "maria@example.com", Password: "segredo1"})
	require.NoError(t, err)
	assert.Equal(t, 7, got.UserID)

	stored, err := creds.Load()
	require.NoError(t, err)
	assert.Equal(t, got, stored)

	err = c.Logout(ctx)
	var rerr *RemoteRequestError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, http.StatusInternalServerError, rerr.Status)

	stored, err = creds.Load()
	require.NoError(t, err)
	assert.Nil(t, stored)

	assert.NoError(t, c.Logout(ctx))
}

func TestListByUserRetries(t *testing.T) {
	var calls atomic.Int32
	c, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"code": 503, "message": "busy"})
			return
		}
		assert.Equal(t, "/lembretes/usuario/7", r.URL.Path)
		writeJSON(w, http.StatusOK, []any{})
	})
	require.NoError(t, creds.Save(&Credentials{Token: "tok", UserID: 7}))

	list, err := c.ListByUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
	assert.Equal(t, int32(3), calls.Load())
}

func TestListByUserGivesUp(t *testing.T) {
	tests := []struct {
		name   string
		status int
		calls  int32
		target error
	}{
		{name: "unauthorized is not retried", status: http.StatusUnauthorized, calls: 1, target: reminder.ErrNotAuthenticated},
		{name: "forbidden is not retried", status: http.StatusForbidden, calls: 1},
		{name: "server errors exhaust retries", status: http.StatusInternalServerError, calls: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				writeJSON(w, tt.status, map[string]any{"code": tt.status, "message": "nope"})
			})
			require.NoError(t, creds.Save(&Credentials{Token: "tok", UserID: 7}))

			_, err := c.ListByUser(context.Background(), 7)
			var rerr *RemoteRequestError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, tt.status, rerr.Status)
			assert.Equal(t, "nope", rerr.Message)
			assert.Equal(t, tt.calls, calls.Load())
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestCallsRequireLogin(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})
	ctx := context.Background()

	_, err := c.ListByUser(ctx, 7)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = c.CompleteReminder(ctx, 1)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	assert.ErrorIs(t, c.DeleteReminder(ctx, 1), ErrNotLoggedIn)
}

func TestRemoteRequestError(t *testing.T) {
	tests := []struct {
		err       *RemoteRequestError
		retryable bool
		notFound  bool
		unauth    bool
	}{
		{err: &RemoteRequestError{Message: "connection refused"}, retryable: true},
		{err: &RemoteRequestError{Status: 404}, notFound: true},
		{err: &RemoteRequestError{Status: 401}, unauth: true},
		{err: &RemoteRequestError{Status: 429}, retryable: true},
		{err: &RemoteRequestError{Status: 502}, retryable: true},
		{err: &RemoteRequestError{Status: 400}},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.err.Retryable())
			assert.Equal(t, tt.notFound, tt.err.Is(reminder.ErrNotFound))
			assert.Equal(t, tt.unauth, tt.err.Is(reminder.ErrNotAuthenticated))
		})
	}
}

func TestFileCredentialStore(t *testing.T) {
	store := NewFileCredentialStore(filepath.Join(t.TempDir(), "nested", "credentials.json"))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, got)

	creds := &Credentials{Token: "tok", UserID: 3, Name: "Maria", Email: "maria@example.com"}
	require.NoError(t, store.Save(creds))

	got, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, creds, got)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	got, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}
