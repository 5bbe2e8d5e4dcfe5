package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
	"visuall/cmd/internal/announce"
	"visuall/cmd/internal/client"
	"visuall/cmd/internal/config"
	"visuall/cmd/internal/domain/entity"
	"visuall/cmd/internal/domain/sqlite"
	"visuall/cmd/internal/domain/sqlite/repository"
	"visuall/cmd/internal/forms"
	"visuall/cmd/internal/integration/telegram"
	"visuall/cmd/internal/reminder"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// reminderBackend is implemented by reminder.Store (local mode) and
// client.RemoteStore (remote mode).
type reminderBackend interface {
	Load(ctx context.Context, userID int) error
	Create(ctx context.Context, form forms.ReminderForm) (*entity.Reminder, error)
	Update(ctx context.Context, id int, form forms.ReminderForm) (*entity.Reminder, error)
	Delete(ctx context.Context, id int) error
	ToggleCompleted(ctx context.Context, id int) (*entity.Reminder, error)
	Get(id int) (*entity.Reminder, error)
	ActiveView() []entity.Reminder
	HistoryView() []entity.Reminder
}

type app struct {
	cfg   *config.Config
	out   io.Writer
	local bool
	user  int

	db *gorm.DB
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "visuall",
		Short:         "VisuAll medical appointment reminders",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if f := cmd.Flags().Lookup("api"); f != nil && f.Changed {
				cfg.APIBaseURL = f.Value.String()
			}
			if f := cmd.Flags().Lookup("db"); f != nil && f.Changed {
				cfg.DBPath = f.Value.String()
			}
			if f := cmd.Flags().Lookup("credentials"); f != nil && f.Changed {
				cfg.CredentialsFile = f.Value.String()
			}
			a.cfg = cfg
			a.out = cmd.OutOrStdout()
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&a.local, "local", false, "Keep reminders in the local database instead of the API")
	rootCmd.PersistentFlags().IntVar(&a.user, "user", 1, "User ID of the local collection (with --local)")
	rootCmd.PersistentFlags().String("api", "", "Base URL of the VisuAll API")
	rootCmd.PersistentFlags().String("db", "", "Path of the local SQLite database")
	rootCmd.PersistentFlags().String("credentials", "", "Path of the stored login")

	rootCmd.AddCommand(newRegisterCmd(a))
	rootCmd.AddCommand(newLoginCmd(a))
	rootCmd.AddCommand(newLogoutCmd(a))
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newAddCmd(a))
	rootCmd.AddCommand(newEditCmd(a))
	rootCmd.AddCommand(newDoneCmd(a))
	rootCmd.AddCommand(newRemoveCmd(a))
	rootCmd.AddCommand(newListenCmd(a))
	rootCmd.AddCommand(newShareCmd(a))
	rootCmd.AddCommand(newSettingsCmd(a))

	return rootCmd
}

func (a *app) client() (*client.Client, error) {
	path := a.cfg.CredentialsFile
	if path == "" {
		var err error
		if path, err = client.DefaultCredentialsPath(); err != nil {
			return nil, err
		}
	}
	return client.New(a.cfg.APIBaseURL, a.cfg.RequestTimeout, client.NewFileCredentialStore(path)), nil
}

func (a *app) database() (*gorm.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := sqlite.Init(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", a.cfg.DBPath, err)
	}
	a.db = db
	return db, nil
}

func (a *app) close() {
	if a.db == nil {
		return
	}
	if err := sqlite.Close(a.db); err != nil {
		log.Warnf("failed to close database: %v", err)
	}
	a.db = nil
}

func (a *app) validator() (*forms.Validator, error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}
	return forms.NewValidator(time.Now, loc, a.cfg.StrictSpecialty), nil
}

// backend opens the reminder collection of the current user. In local mode
// the expired history is swept first, standing in for the periodic sweeper
// of a long-running process.
func (a *app) backend(ctx context.Context) (reminderBackend, error) {
	validate, err := a.validator()
	if err != nil {
		return nil, err
	}

	if a.local {
		db, err := a.database()
		if err != nil {
			return nil, err
		}
		kv := repository.NewKeyValueRepository(db)
		store := reminder.NewStore(repository.NewCollectionRepository(kv), validate, time.Now)
		if err := store.Load(ctx, a.user); err != nil {
			return nil, err
		}
		if _, err := store.Sweep(ctx, a.cfg.RetentionWindow); err != nil {
			return nil, err
		}
		return store, nil
	}

	c, err := a.client()
	if err != nil {
		return nil, err
	}
	creds, err := c.Session()
	if err != nil {
		return nil, fmt.Errorf("%w: run 'visuall login' first", err)
	}
	store := client.NewRemoteStore(c, validate, time.Now)
	if err := store.Load(ctx, creds.UserID); err != nil {
		return nil, err
	}
	return store, nil
}

func (a *app) dispatcher() *announce.Dispatcher {
	var sharer announce.Sharer
	if a.cfg.TelegramEnabled() {
		sharer = telegram.NewSharer(a.cfg.TelegramToken, a.cfg.TelegramChatID)
	}
	return announce.NewDispatcher(announce.NewCommandNarrator(a.cfg.NarratorCommand), sharer)
}

func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}
