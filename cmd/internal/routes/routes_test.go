package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
	"visuall/cmd/internal/announce"
	"visuall/cmd/internal/domain/sqlite"
	"visuall/cmd/internal/domain/sqlite/repository"
	"visuall/cmd/internal/forms"
	"visuall/cmd/internal/reminder"
	"visuall/cmd/internal/service"
	"visuall/cmd/internal/session"
	"visuall/cmd/internal/utils/token"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	db, err := sqlite.Init(filepath.Join(t.TempDir(), "visuall.db"))
	require.NoError(t, err)

	validate := forms.NewValidator(time.Now, time.UTC, false)
	issuer := token.NewIssuer(testSecret, time.Hour)

	kvRepo := repository.NewKeyValueRepository(db)
	collectionRepo := repository.NewCollectionRepository(kvRepo)

	sessions := session.NewRegistry(context.Background(), func() *reminder.Store {
		return reminder.NewStore(collectionRepo, validate, time.Now)
	}, time.Hour, 5*time.Minute, time.Hour)
	t.Cleanup(sessions.Close)

	userRoutes := NewUserDefault(service.NewUserService(
		repository.NewUserRepository(db), validate, service.NewLocalIdentityProvider(bcrypt.MinCost), issuer, sessions))
	reminderRoutes := NewReminderDefault(service.NewReminderService(sessions, announce.NewDispatcher(nil, nil)))
	settingsRoutes := NewSettingsDefault(service.NewSettingsService(repository.NewSettingsRepository(kvRepo), validate))
	contactRoutes := NewContactDefault(
		service.NewContactService(repository.NewContactRepository(db), validate),
		service.NewDirectoryService(validate),
	)

	e := echo.New()
	e.POST("/auth/register", userRoutes.Register)
	e.POST("/auth/login", userRoutes.Login)

	authed := e.Group("", RequireAuth(issuer))
	authed.POST("/auth/logout", userRoutes.Logout)
	authed.GET("/auth/me", userRoutes.GetMe)
	authed.GET("/lembretes/usuario/:userId", reminderRoutes.GetReminders)
	authed.GET("/lembretes/usuario/:userId/ativos", reminderRoutes.GetActive)
	authed.GET("/lembretes/usuario/:userId/historico", reminderRoutes.GetHistory)
	authed.POST("/lembretes", reminderRoutes.CreateReminder)
	authed.PUT("/lembretes/:id", reminderRoutes.UpdateReminder)
	authed.DELETE("/lembretes/:id", reminderRoutes.DeleteReminder)
	authed.PUT("/lembretes/:id/concluir", reminderRoutes.CompleteReminder)
	authed.PUT("/lembretes/:id/reabrir", reminderRoutes.ReopenReminder)
	authed.POST("/lembretes/:id/ouvir", reminderRoutes.ListenReminder)

	e.GET("/acessibilidade/:profile", settingsRoutes.GetSettings)
	e.PUT("/acessibilidade/:profile", settingsRoutes.UpdateSettings)
	e.DELETE("/acessibilidade/:profile", settingsRoutes.ResetSettings)
	e.POST("/contato", contactRoutes.SendMessage)
	e.GET("/ouvidoria", contactRoutes.SearchDirectory)
	return e
}

func call(e *echo.Echo, method, path, bearer, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func signIn(t *testing.T, e *echo.Echo, email string) service.LoginResponse {
	t.Helper()
	body := `{"nome":"Maria Silva","email":"` + email + `","senha":"segredo1","confirmarSenha":"segredo1"}`
	rec := call(e, http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = call(e, http.MethodPost, "/auth/login", "", `{"email":"`+email+`","senha":"segredo1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[service.LoginResponse](t, rec)
}

func reminderBody(doctor string) string {
	date := time.Now().UTC().AddDate(0, 0, 10).Format("2006-01-02")
	return `{"nomeMedico":"` + doctor + `","especialidade":"Cardiologia","dataConsulta":"` + date +
		`","horaConsulta":"09:30","localConsulta":"InCor, sala 12"}`
}

func TestRequireAuth(t *testing.T) {
	e := newTestServer(t)

	expired := token.NewIssuer(testSecret, -time.Minute)
	stale, err := expired.Issue(1, "Maria", "maria@example.com")
	require.NoError(t, err)

	tests := []struct {
		name    string
		bearer  string
		message string
	}{
		{name: "missing", bearer: "", message: "Invalid or missing authentication token"},
		{name: "garbage", bearer: "abc.def.ghi", message: "Invalid or missing authentication token"},
		{name: "expired", bearer: stale, message: "Your session has expired, please sign in again"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(e, http.MethodGet, "/auth/me", tt.bearer, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
		})
	}
}

func TestReminderLifecycle(t *testing.T) {
	e := newTestServer(t)
	login := signIn(t, e, "maria@example.com")
	bearer := login.Token
	userPath := "/lembretes/usuario/" + strconv.Itoa(login.User.ID)

	rec := call(e, http.MethodGet, "/auth/me", bearer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "maria@example.com", decode[service.UserResponse](t, rec).Email)

	rec = call(e, http.MethodPost, "/lembretes", bearer, reminderBody("Dr. Ana Souza"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[service.ReminderResponse](t, rec)
	assert.Equal(t, "Consultation with Dr. Ana Souza", created.Titulo)
	id := strconv.Itoa(created.ID)

	rec = call(e, http.MethodGet, userPath, bearer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]service.ReminderResponse](t, rec), 1)

	rec = call(e, http.MethodPut, "/lembretes/"+id+"/concluir", bearer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[service.ReminderResponse](t, rec).Concluido)

	rec = call(e, http.MethodGet, userPath+"/ativos", bearer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]reminder.DisplayModel](t, rec))

	rec = call(e, http.MethodGet, userPath+"/historico", bearer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]reminder.DisplayModel](t, rec), 1)

	rec = call(e, http.MethodPut, "/lembretes/"+id+"/reabrir", bearer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[service.ReminderResponse](t, rec).Concluido)

	rec = call(e, http.MethodPost, "/lembretes/"+id+"/ouvir", bearer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	notice := decode[announce.Notice](t, rec)
	assert.Equal(t, announce.FallbackClipboard, notice.Fallback)
	assert.Contains(t, notice.Text, "Dr. Ana Souza")

	rec = call(e, http.MethodDelete, "/lembretes/"+id, bearer, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = call(e, http.MethodPut, "/lembretes/"+id, bearer, reminderBody("Dr. Ana Souza"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(e, http.MethodPost, "/auth/logout", bearer, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestReminderRequestErrors(t *testing.T) {
	e := newTestServer(t)
	login := signIn(t, e, "maria@example.com")
	other := signIn(t, e, "joao@example.com")

	rec := call(e, http.MethodGet, "/lembretes/usuario/"+strconv.Itoa(other.User.ID), login.Token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(e, http.MethodGet, "/lembretes/usuario/abc", login.Token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(e, http.MethodPost, "/lembretes", login.Token, `{"nomeMedico":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Malformed request body")

	rec = call(e, http.MethodPost, "/lembretes", login.Token, `{"nomeMedico":"A"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]any](t, rec)
	fields, ok := body["fields"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, fields, "doctorName")
	assert.Contains(t, fields, "date")
	assert.Contains(t, fields, "location")
}

func TestSettingsRoutes(t *testing.T) {
	e := newTestServer(t)

	rec := call(e, http.MethodGet, "/acessibilidade/kiosk", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"fontSize":100`)

	rec = call(e, http.MethodPut, "/acessibilidade/kiosk", "", `{"fontSize":120,"highContrast":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"fontSize":120`)
	assert.Contains(t, rec.Body.String(), `"highContrast":true`)

	rec = call(e, http.MethodPut, "/acessibilidade/kiosk", "", `{"fontSize":20}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(e, http.MethodDelete, "/acessibilidade/kiosk", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"fontSize":100`)
}

func TestContactRoutes(t *testing.T) {
	e := newTestServer(t)

	body := `{"nome":"Maria","email":"maria@example.com","assunto":"bug","mensagem":"O botao de ouvir nao responde."}`
	rec := call(e, http.MethodPost, "/contato", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"assunto":"bug"`)

	rec = call(e, http.MethodGet, "/ouvidoria?q=incor", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	units := decode[map[string][]service.OmbudsmanUnit](t, rec)
	require.Len(t, units["unidades"], 1)
	assert.Equal(t, "InCor", units["unidades"][0].Sigla)
}
