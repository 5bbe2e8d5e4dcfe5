// Package announce turns a reminder into a spoken or shared message and
// hands it to whatever narration or share capability is available.
package announce

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"visuall/cmd/internal/domain/entity"
	"visuall/cmd/internal/metrics"
	"visuall/cmd/internal/reminder"

	"github.com/labstack/gommon/log"
)

// ErrCapabilityUnavailable is returned by a Narrator or Sharer that cannot
// run on this host or is not configured.
var ErrCapabilityUnavailable = errors.New("announce: capability unavailable")

const (
	shareTitle = "VisuAll reminder"

	LevelInfo    = "info"
	LevelWarning = "warning"

	FallbackClipboard = "clipboard"
)

type Narrator interface {
	Speak(ctx context.Context, text string) error
}

type Sharer interface {
	Share(ctx context.Context, title, text string) error
}

// Notice is the transient, non-fatal message shown after a voice or share
// request. When Fallback is set, Text should be offered for copying.
type Notice struct {
	Level    string `json:"level"`
	Message  string `json:"message"`
	Text     string `json:"text"`
	Fallback string `json:"fallback,omitempty"`
}

// Utterance is the sentence read aloud or shared for r.
func Utterance(r entity.Reminder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Appointment reminder with %s, %s, on %s, at %s, at %s.",
		r.DoctorName, r.Specialty, reminder.FormatDate(r.Date), reminder.FormatTime(r.Time), r.Location)
	if r.Notes != "" {
		fmt.Fprintf(&b, " Notes: %s", r.Notes)
	}
	return b.String()
}

type Dispatcher struct {
	narrator Narrator
	sharer   Sharer
}

// NewDispatcher accepts nil capabilities; requests to a missing one fall
// back to a copy notice.
func NewDispatcher(narrator Narrator, sharer Sharer) *Dispatcher {
	return &Dispatcher{narrator: narrator, sharer: sharer}
}

func (d *Dispatcher) Listen(ctx context.Context, r entity.Reminder) Notice {
	text := Utterance(r)
	if d.narrator == nil {
		return d.outcome("listen", text, ErrCapabilityUnavailable)
	}
	err := guard(func() error { return d.narrator.Speak(ctx, text) })
	return d.outcome("listen", text, err)
}

func (d *Dispatcher) Share(ctx context.Context, r entity.Reminder) Notice {
	text := Utterance(r)
	if d.sharer == nil {
		return d.outcome("share", text, ErrCapabilityUnavailable)
	}
	err := guard(func() error { return d.sharer.Share(ctx, shareTitle, text) })
	return d.outcome("share", text, err)
}

func (d *Dispatcher) outcome(action, text string, err error) Notice {
	switch {
	case err == nil:
		metrics.DispatchOutcomes.WithLabelValues(action, "ok").Inc()
		msg := "Reminder read aloud."
		if action == "share" {
			msg = "Reminder shared successfully!"
		}
		return Notice{Level: LevelInfo, Message: msg, Text: text}

	case errors.Is(err, ErrCapabilityUnavailable):
		metrics.DispatchOutcomes.WithLabelValues(action, "fallback").Inc()
		msg := "Voice playback is not available here. You can copy the reminder instead."
		if action == "share" {
			msg = "Sharing is not available here. You can copy the reminder instead."
		}
		return Notice{Level: LevelWarning, Message: msg, Text: text, Fallback: FallbackClipboard}

	default:
		metrics.DispatchOutcomes.WithLabelValues(action, "failed").Inc()
		log.Warnf("%s capability failed: %v", action, err)
		msg := "Could not read the reminder aloud."
		if action == "share" {
			msg = "Could not share the reminder."
		}
		return Notice{Level: LevelWarning, Message: msg, Text: text, Fallback: FallbackClipboard}
	}
}

// guard turns a panicking capability into an ordinary failure.
func guard(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("capability panicked: %v", rec)
		}
	}()
	return fn()
}
