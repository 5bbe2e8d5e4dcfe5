package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	"visuall/cmd/internal/announce"
	"visuall/cmd/internal/config"
	"visuall/cmd/internal/domain/sqlite"
	"visuall/cmd/internal/domain/sqlite/repository"
	"visuall/cmd/internal/forms"
	cognitoclient "visuall/cmd/internal/integration/aws/cognito"
	"visuall/cmd/internal/integration/telegram"
	"visuall/cmd/internal/reminder"
	"visuall/cmd/internal/routes"
	"visuall/cmd/internal/service"
	"visuall/cmd/internal/session"
	"visuall/cmd/internal/utils/token"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration: ", err)
	}
	loc, _ := cfg.Location()

	// Init SQLite
	db, err := sqlite.Init(cfg.DBPath)
	if err != nil {
		log.Fatal("failed to initialize database: ", err)
	}
	defer func() { _ = sqlite.Close(db) }()

	idp, err := newIdentityProvider(ctx, cfg)
	if err != nil {
		log.Fatal("failed to initialize identity provider: ", err)
	}

	validate := forms.NewValidator(time.Now, loc, cfg.StrictSpecialty)
	issuer := token.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)

	// Getting repositories
	kvRepo := repository.NewKeyValueRepository(db)
	collectionRepo := repository.NewCollectionRepository(kvRepo)
	settingsRepo := repository.NewSettingsRepository(kvRepo)
	userRepo := repository.NewUserRepository(db)
	contactRepo := repository.NewContactRepository(db)

	sessions := session.NewRegistry(ctx, func() *reminder.Store {
		return reminder.NewStore(collectionRepo, validate, time.Now)
	}, cfg.SweepInterval, cfg.RetentionWindow, cfg.TokenTTL)
	sessions.Start()
	defer sessions.Close()

	var sharer announce.Sharer
	if cfg.TelegramEnabled() {
		sharer = telegram.NewSharer(cfg.TelegramToken, cfg.TelegramChatID)
	}
	dispatcher := announce.NewDispatcher(announce.NewCommandNarrator(cfg.NarratorCommand), sharer)

	// Getting services
	userService := service.NewUserService(userRepo, validate, idp, issuer, sessions)
	reminderService := service.NewReminderService(sessions, dispatcher)
	settingsService := service.NewSettingsService(settingsRepo, validate)
	contactService := service.NewContactService(contactRepo, validate)
	directoryService := service.NewDirectoryService(validate)

	// Getting routes
	userRoutes := routes.NewUserDefault(userService)
	reminderRoutes := routes.NewReminderDefault(reminderService)
	settingsRoutes := routes.NewSettingsDefault(settingsService)
	contactRoutes := routes.NewContactDefault(contactService, directoryService)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Auth
	e.POST("/auth/register", userRoutes.Register)
	e.POST("/auth/login", userRoutes.Login)
	e.POST("/auth/verify", userRoutes.VerifySignup)

	authed := e.Group("", routes.RequireAuth(issuer))
	authed.POST("/auth/logout", userRoutes.Logout)
	authed.GET("/auth/me", userRoutes.GetMe)

	// Reminders
	authed.GET("/lembretes/usuario/:userId", reminderRoutes.GetReminders)
	authed.GET("/lembretes/usuario/:userId/ativos", reminderRoutes.GetActive)
	authed.GET("/lembretes/usuario/:userId/historico", reminderRoutes.GetHistory)
	authed.POST("/lembretes", reminderRoutes.CreateReminder)
	authed.PUT("/lembretes/:id", reminderRoutes.UpdateReminder)
	authed.DELETE("/lembretes/:id", reminderRoutes.DeleteReminder)
	authed.PUT("/lembretes/:id/concluir", reminderRoutes.CompleteReminder)
	authed.PUT("/lembretes/:id/reabrir", reminderRoutes.ReopenReminder)
	authed.POST("/lembretes/:id/ouvir", reminderRoutes.ListenReminder)
	authed.POST("/lembretes/:id/compartilhar", reminderRoutes.ShareReminder)

	// Accessibility preferences are per display profile, no account needed
	e.GET("/acessibilidade", settingsRoutes.GetSettings)
	e.PUT("/acessibilidade", settingsRoutes.UpdateSettings)
	e.DELETE("/acessibilidade", settingsRoutes.ResetSettings)
	e.GET("/acessibilidade/:profile", settingsRoutes.GetSettings)
	e.PUT("/acessibilidade/:profile", settingsRoutes.UpdateSettings)
	e.DELETE("/acessibilidade/:profile", settingsRoutes.ResetSettings)

	e.POST("/contato", contactRoutes.SendMessage)
	e.GET("/ouvidoria", contactRoutes.SearchDirectory)

	go func() {
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("failed to shut down http server: %v", err)
	}
}

func newIdentityProvider(ctx context.Context, cfg *config.Config) (service.IdentityProvider, error) {
	if cfg.AuthProvider != config.AuthCognito {
		return service.NewLocalIdentityProvider(bcrypt.DefaultCost), nil
	}

	cogClient, err := cognitoclient.InitCognitoClient(ctx, cfg.AWSRegion, cfg.CognitoClientID, cfg.CognitoUserPoolID)
	if err != nil {
		return nil, err
	}
	return service.NewCognitoIdentityProvider(cogClient), nil
}
