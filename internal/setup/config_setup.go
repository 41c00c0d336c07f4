package setup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/hyacinth/internal/config"
	"github.com/bnema/hyacinth/internal/logger"
	"github.com/bnema/hyacinth/internal/ui"
	"github.com/charmbracelet/huh"
)

var ErrAborted = errors.New("setup aborted")

// Answers are the values collected by the config form
type Answers struct {
	Title       string
	AppID       string
	DisplayName string
	LogLevel    string
	Save        bool
}

// ConfigSetup walks the user through the window and display settings
type ConfigSetup struct {
	// run is swapped in tests; defaults to (*huh.Form).Run
	run func(*huh.Form) error
}

// NewConfigSetup creates a new config setup handler
func NewConfigSetup() *ConfigSetup {
	return &ConfigSetup{run: func(f *huh.Form) error { return f.Run() }}
}

// AnswersFrom prefills the form from an existing configuration.
func AnswersFrom(cfg *config.Config) Answers {
	return Answers{
		Title:       cfg.Window.Title,
		AppID:       cfg.Window.AppID,
		DisplayName: cfg.Display.Name,
		LogLevel:    cfg.Logging.LogLevel,
		Save:        true,
	}
}

// Form builds the huh form bound to a.
func (a *Answers) Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Window title").
				Description("Shown by the compositor for the fullscreen window").
				Value(&a.Title).
				Validate(ValidateTitle),
			huh.NewInput().
				Title("Application id").
				Description("Leave empty to reuse the title").
				Value(&a.AppID),
			huh.NewInput().
				Title("Wayland display").
				Description("Socket name or absolute path, empty for $WAYLAND_DISPLAY").
				Value(&a.DisplayName),
			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("From $LOG_LEVEL", ""),
					huh.NewOption("Debug", "debug"),
					huh.NewOption("Info", "info"),
					huh.NewOption("Warn", "warn"),
					huh.NewOption("Error", "error"),
				).
				Value(&a.LogLevel),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save configuration?").
				Value(&a.Save),
		),
	)
}

// ValidateTitle rejects titles the toplevel cannot carry.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("title cannot be empty")
	}
	if strings.ContainsRune(title, 0) {
		return errors.New("title cannot contain NUL")
	}
	return nil
}

// Apply copies the answers onto a copy of cfg.
func (a Answers) Apply(cfg config.Config) config.Config {
	cfg.Window.Title = strings.TrimSpace(a.Title)
	cfg.Window.AppID = strings.TrimSpace(a.AppID)
	cfg.Display.Name = strings.TrimSpace(a.DisplayName)
	cfg.Logging.LogLevel = a.LogLevel
	return cfg
}

// Run shows the form and saves the result.
func (cs *ConfigSetup) Run() error {
	cfg := config.Get()
	answers := AnswersFrom(cfg)

	fmt.Println(ui.FormatSetupHeader("Hyacinth configuration"))
	if err := cs.run(answers.Form()); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	if !answers.Save {
		logger.Info("Configuration not saved")
		return nil
	}

	if err := config.Update(answers.Apply(*cfg)); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	fmt.Println(ui.FormatSetupResult(true, "Saved", config.GetConfigPath()))
	return nil
}
