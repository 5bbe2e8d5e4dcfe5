package main

import (
	"visuall/cmd/internal/domain/entity"
	"visuall/cmd/internal/domain/sqlite/repository"
	"visuall/cmd/internal/forms"
	"visuall/cmd/internal/service"

	"github.com/spf13/cobra"
)

// Accessibility preferences belong to this device, so they always live in
// the local database whatever the reminder mode.
func newSettingsCmd(a *app) *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change accessibility preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()

			svc, err := a.settingsService()
			if err != nil {
				return err
			}
			settings, apierr := svc.GetSettings(cmd.Context(), profile)
			if apierr != nil {
				return apierr
			}
			a.printSettings(settings)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&profile, "profile", repository.DefaultProfile, "Display profile")

	var fontSize int
	var lineHeight float64
	var highContrast, simplified bool
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change the given preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()

			svc, err := a.settingsService()
			if err != nil {
				return err
			}

			var form forms.SettingsForm
			if cmd.Flags().Changed("font-size") {
				form.FontSize = &fontSize
			}
			if cmd.Flags().Changed("line-height") {
				form.LineHeight = &lineHeight
			}
			if cmd.Flags().Changed("high-contrast") {
				form.HighContrast = &highContrast
			}
			if cmd.Flags().Changed("simplified") {
				form.SimplifiedMode = &simplified
			}

			validate, err := a.validator()
			if err != nil {
				return err
			}
			if err := validate.Struct(&form); err != nil {
				return describe(err)
			}

			settings, apierr := svc.UpdateSettings(cmd.Context(), profile, &form)
			if apierr != nil {
				return apierr
			}
			a.printSettings(settings)
			return nil
		},
	}
	setCmd.Flags().IntVar(&fontSize, "font-size", 100, "Font size in percent (80-140)")
	setCmd.Flags().Float64Var(&lineHeight, "line-height", 1.5, "Line height (1.2-1.8)")
	setCmd.Flags().BoolVar(&highContrast, "high-contrast", false, "High contrast colors")
	setCmd.Flags().BoolVar(&simplified, "simplified", false, "Simplified mode")

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()

			svc, err := a.settingsService()
			if err != nil {
				return err
			}
			settings, apierr := svc.ResetSettings(cmd.Context(), profile)
			if apierr != nil {
				return apierr
			}
			a.printSettings(settings)
			return nil
		},
	}

	cmd.AddCommand(setCmd, resetCmd)
	return cmd
}

func (a *app) settingsService() (*service.DefaultSettingsService, error) {
	db, err := a.database()
	if err != nil {
		return nil, err
	}
	validate, err := a.validator()
	if err != nil {
		return nil, err
	}
	repo := repository.NewSettingsRepository(repository.NewKeyValueRepository(db))
	return service.NewSettingsService(repo, validate), nil
}

func (a *app) printSettings(s *entity.AccessibilitySettings) {
	a.printf("font size:       %d%%\n", s.FontSize)
	a.printf("line height:     %.1f\n", s.LineHeight)
	a.printf("high contrast:   %t\n", s.HighContrast)
	a.printf("simplified mode: %t\n", s.SimplifiedMode)
}
