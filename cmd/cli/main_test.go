package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"
	"visuall/cmd/internal/reminder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliEnv struct {
	t      *testing.T
	dbPath string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	t.Setenv("VISUALL_NARRATOR_COMMAND", "")
	t.Setenv("VISUALL_TELEGRAM_TOKEN", "")
	t.Setenv("VISUALL_TIMEZONE", "UTC")
	return &cliEnv{t: t, dbPath: filepath.Join(t.TempDir(), "visuall.db")}
}

// run executes one CLI invocation in local mode against the test database.
func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--local", "--user", "3", "--db", e.dbPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err)
	return out
}

func futureDate() string {
	return time.Now().UTC().AddDate(0, 1, 0).Format("2006-01-02")
}

func addArgs(doctor string) []string {
	return []string{"add",
		"--doctor", doctor,
		"--specialty", "Cardiologia",
		"--date", futureDate(),
		"--time", "09:30",
		"--location", "InCor, sala 12",
	}
}

func TestCLIReminderLifecycle(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("list")
	assert.Equal(t, "No active reminders.\n", out)

	out = env.mustRun(addArgs("Dr. Ana Souza")...)
	assert.Equal(t, "Reminder 1 created: Consultation with Dr. Ana Souza\n", out)
	env.mustRun(addArgs("Dr. Bruno Lima")...)

	out = env.mustRun("list")
	assert.Contains(t, out, "Consultation with Dr. Ana Souza")
	assert.Contains(t, out, "Consultation with Dr. Bruno Lima")

	out = env.mustRun("edit", "1", "--time", "14:15")
	assert.Equal(t, "Reminder 1 updated: Consultation with Dr. Ana Souza\n", out)

	out = env.mustRun("done", "1")
	assert.Equal(t, "Reminder 1 is now completed.\n", out)

	out = env.mustRun("list", "--history", "--json")
	var history []reminder.DisplayModel
	require.NoError(t, json.Unmarshal([]byte(out), &history))
	require.Len(t, history, 1)
	assert.Equal(t, "14:15", history[0].Time)
	assert.Equal(t, reminder.StatusCompleted, history[0].Status)

	out = env.mustRun("done", "1")
	assert.Equal(t, "Reminder 1 is now active.\n", out)

	out = env.mustRun("rm", "2")
	assert.Equal(t, "Reminder 2 deleted.\n", out)

	out = env.mustRun("list", "--json")
	var active []reminder.DisplayModel
	require.NoError(t, json.Unmarshal([]byte(out), &active))
	require.Len(t, active, 1)
	assert.Equal(t, 1, active[0].ID)
}

func TestCLIErrors(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("add", "--doctor", "A", "--date", "2001-01-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "some fields are invalid:")
	assert.Contains(t, err.Error(), "date: The date cannot be earlier than today")
	assert.Contains(t, err.Error(), "location: Location is required")

	_, err = env.run("done", "abc")
	assert.EqualError(t, err, `invalid reminder id "abc"`)

	_, err = env.run("edit", "9", "--time", "10:00")
	assert.ErrorIs(t, err, reminder.ErrNotFound)
}

func TestCLIListenFallsBackToText(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(addArgs("Dr. Ana Souza")...)

	out := env.mustRun("listen", "1")
	assert.Contains(t, out, "Voice playback is not available here.")
	assert.Contains(t, out, "Appointment reminder with Dr. Ana Souza, Cardiologia")

	out = env.mustRun("share", "1")
	assert.Contains(t, out, "Sharing is not available here.")
}

func TestCLISettings(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("settings")
	assert.Contains(t, out, "font size:       100%")

	out = env.mustRun("settings", "set", "--font-size", "120", "--high-contrast")
	assert.Contains(t, out, "font size:       120%")
	assert.Contains(t, out, "high contrast:   true")
	assert.Contains(t, out, "line height:     1.5")

	_, err := env.run("settings", "set", "--line-height", "2.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lineHeight: Line height must be at most 1.8")

	out = env.mustRun("settings", "--profile", "kiosk")
	assert.Contains(t, out, "font size:       100%")

	out = env.mustRun("settings", "reset")
	assert.Contains(t, out, "font size:       100%")
	assert.Contains(t, out, "high contrast:   false")
}
