package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"visuall/cmd/internal/announce"
	"visuall/cmd/internal/domain/entity"
	"visuall/cmd/internal/forms"
	"visuall/cmd/internal/reminder"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var history, asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show active reminders, or the history with --history",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()

			store, err := a.backend(cmd.Context())
			if err != nil {
				return err
			}

			reminders := store.ActiveView()
			if history {
				reminders = store.HistoryView()
			}
			models := reminder.ToDisplayList(reminders)

			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(models)
			}
			if len(models) == 0 {
				if history {
					a.printf("No completed reminders.\n")
				} else {
					a.printf("No active reminders.\n")
				}
				return nil
			}

			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tTITLE\tSPECIALTY\tDATE\tTIME\tLOCATION\tSTATUS")
			for _, m := range models {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", m.ID, m.Title, m.Specialty, m.Date, m.Time, m.Location, m.Status)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&history, "history", false, "Show completed reminders")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print display models as JSON")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var form forms.ReminderForm

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a reminder",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()

			store, err := a.backend(cmd.Context())
			if err != nil {
				return err
			}
			created, err := store.Create(cmd.Context(), form)
			if created != nil {
				a.printf("Reminder %d created: %s\n", created.ID, created.Title)
			}
			return describe(err)
		},
	}
	bindReminderFlags(cmd, &form)
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var form forms.ReminderForm

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a reminder; omitted flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			store, err := a.backend(cmd.Context())
			if err != nil {
				return err
			}
			current, err := store.Get(id)
			if err != nil {
				return describe(err)
			}

			merged := mergeForm(cmd, *current, form)
			updated, err := store.Update(cmd.Context(), id, merged)
			if updated != nil {
				a.printf("Reminder %d updated: %s\n", updated.ID, updated.Title)
			}
			return describe(err)
		},
	}
	bindReminderFlags(cmd, &form)
	return cmd
}

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done ID",
		Short: "Toggle a reminder between active and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			store, err := a.backend(cmd.Context())
			if err != nil {
				return err
			}
			r, err := store.ToggleCompleted(cmd.Context(), id)
			if r != nil {
				a.printf("Reminder %d is now %s.\n", r.ID, strings.ToLower(reminder.ToDisplay(*r).Status))
			}
			return describe(err)
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			store, err := a.backend(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), id); err != nil {
				return describe(err)
			}
			a.printf("Reminder %d deleted.\n", id)
			return nil
		},
	}
}

func newListenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "listen ID",
		Short: "Read a reminder aloud",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.announce(cmd, args[0], (*announce.Dispatcher).Listen)
		},
	}
}

func newShareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "share ID",
		Short: "Share a reminder, or print it for copying",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.announce(cmd, args[0], (*announce.Dispatcher).Share)
		},
	}
}

// announce runs the capability on this machine in both modes; in remote
// mode the reminder is only fetched from the API.
func (a *app) announce(cmd *cobra.Command, rawID string, action func(*announce.Dispatcher, context.Context, entity.Reminder) announce.Notice) error {
	defer a.close()

	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	store, err := a.backend(cmd.Context())
	if err != nil {
		return err
	}
	r, err := store.Get(id)
	if err != nil {
		return describe(err)
	}

	notice := action(a.dispatcher(), cmd.Context(), *r)
	a.printf("%s\n", notice.Message)
	if notice.Fallback == announce.FallbackClipboard {
		a.printf("\n%s\n", notice.Text)
	}
	return nil
}

func bindReminderFlags(cmd *cobra.Command, form *forms.ReminderForm) {
	cmd.Flags().StringVar(&form.Title, "title", "", "Title (defaults to 'Consultation with <doctor>')")
	cmd.Flags().StringVar(&form.DoctorName, "doctor", "", "Doctor name")
	cmd.Flags().StringVar(&form.Specialty, "specialty", "", "Specialty, e.g. "+strings.Join(forms.Specialties[:3], ", "))
	cmd.Flags().StringVar(&form.Date, "date", "", "Appointment date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&form.Time, "time", "", "Appointment time (HH:MM)")
	cmd.Flags().StringVar(&form.Location, "location", "", "Where the appointment takes place")
	cmd.Flags().StringVar(&form.Notes, "notes", "", "Notes")
}

// mergeForm starts from the stored reminder and applies the flags that were
// actually given. A title equal to the derived one is dropped so it follows
// a doctor change.
func mergeForm(cmd *cobra.Command, current entity.Reminder, given forms.ReminderForm) forms.ReminderForm {
	merged := forms.ReminderForm{
		DoctorName: current.DoctorName,
		Specialty:  current.Specialty,
		Date:       current.Date,
		Time:       current.Time,
		Location:   current.Location,
		Notes:      current.Notes,
	}
	if current.Title != entity.DefaultTitle(current.DoctorName) {
		merged.Title = current.Title
	}

	changed := cmd.Flags().Changed
	if changed("title") {
		merged.Title = given.Title
	}
	if changed("doctor") {
		merged.DoctorName = given.DoctorName
	}
	if changed("specialty") {
		merged.Specialty = given.Specialty
	}
	if changed("date") {
		merged.Date = given.Date
	}
	if changed("time") {
		merged.Time = given.Time
	}
	if changed("location") {
		merged.Location = given.Location
	}
	if changed("notes") {
		merged.Notes = given.Notes
	}
	return merged
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid reminder id %q", raw)
	}
	return id, nil
}

// describe spells out validation failures one field per line.
func describe(err error) error {
	var verr *forms.ValidationError
	if !errors.As(err, &verr) {
		return err
	}

	keys := make([]string, 0, len(verr.Fields))
	for k := range verr.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("some fields are invalid:")
	for _, k := range keys {
		fmt.Fprintf(&b, "\n  %s: %s", k, verr.Fields[k])
	}
	return errors.New(b.String())
}
