package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/bnema/hyacinth/internal/config"
	"github.com/bnema/hyacinth/internal/logger"
	"github.com/bnema/hyacinth/internal/metrics"
	"github.com/bnema/hyacinth/internal/ui"
	"github.com/bnema/hyacinth/internal/window"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var useTUI bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the fullscreen window",
	Long: `Connect to the compositor, open a fullscreen toplevel and keep it alive
until the compositor closes it or the process receives SIGINT/SIGTERM.`,
	RunE: runWindow,
}

func init() {
	runCmd.Flags().String("title", "", "Window title")
	runCmd.Flags().String("app-id", "", "Application id (defaults to the title)")
	runCmd.Flags().BoolVar(&useTUI, "tui", false, "Show a live status view in the terminal")

	// Bind flags to viper
	_ = viper.BindPFlag("window.title", runCmd.Flags().Lookup("title"))
	_ = viper.BindPFlag("window.app_id", runCmd.Flags().Lookup("app-id"))
}

func runWindow(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()
	collector := metrics.New()
	if addr := cfg.Metrics.ListenAddress; addr != "" {
		go func() {
			if err := collector.Serve(ctx, addr); err != nil {
				logger.Error("Metrics server failed", "address", addr, "error", err)
			}
		}()
	}

	s := window.NewSession(sessionOptions(cfg, collector))
	if err := s.Create(""); err != nil {
		return err
	}
	defer s.Destroy()

	// Interrupt unblocks Poll; stop the watcher before Destroy closes the fd
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			logger.Debug("Signal received, interrupting session")
			_ = s.Interrupt()
		case <-done:
		}
	}()
	defer wg.Wait()
	defer close(done)

	if useTUI {
		return runTUI(s)
	}

	for s.Poll() {
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("session ended: %w", err)
	}
	logger.Info("Window closed", "title", s.Title())
	return nil
}

// runTUI polls in the background and feeds snapshots to a bubbletea view.
func runTUI(s *window.Session) error {
	// The view owns the terminal
	logFile, err := logger.SetupFileLogging("TUI")
	if err != nil {
		return err
	}
	defer func() {
		logger.RestoreOutput()
		_ = logFile.Close()
	}()

	model := ui.NewSessionModel(s.Title(), func() { _ = s.Interrupt() })
	program := tea.NewProgram(model, tea.WithAltScreen())

	polled := make(chan struct{})
	go func() {
		defer close(polled)
		program.Send(ui.StatusMsg(statusOf(s)))
		for s.Poll() {
			program.Send(ui.StatusMsg(statusOf(s)))
		}
		program.Send(ui.DoneMsg{Err: s.Err()})
	}()

	if _, err := program.Run(); err != nil {
		_ = s.Interrupt()
		<-polled
		return fmt.Errorf("status view failed: %w", err)
	}
	// The view may quit first on q; wait for Poll to observe the interrupt
	<-polled

	if err := s.Err(); err != nil {
		return fmt.Errorf("session ended: %w", err)
	}
	return nil
}
