package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Status is a snapshot of a window session, sent by the poll loop
type Status struct {
	Title  string
	State  string
	Width  int32
	Height int32
	Scale  int32
	Output string
	Pings  uint64
	// Active is true once the toplevel is configured
	Active bool
}

// StatusMsg delivers a new Status to the model
type StatusMsg Status

// DoneMsg reports the end of the session; Err is nil on a clean close
type DoneMsg struct {
	Err error
}

// SessionModel shows the live state of a fullscreen window
type SessionModel struct {
	status  Status
	spinner spinner.Model
	width   int
	height  int
	done    bool
	err     error
	// onQuit interrupts the session when the user quits the view
	onQuit func()
}

// NewSessionModel creates a new session model
func NewSessionModel(title string, onQuit func()) *SessionModel {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: SpinnerDot,
		FPS:    time.Second / 10,
	}
	s.Style = SpinnerStyle

	return &SessionModel{
		status:  Status{Title: title, State: "connecting"},
		spinner: s,
		onQuit:  onQuit,
	}
}

func (m *SessionModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.onQuit != nil && !m.done {
				m.onQuit()
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.status = Status(msg)
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Err returns the error the session ended with.
func (m *SessionModel) Err() error {
	return m.err
}

func (m *SessionModel) View() string {
	title := TitleStyle.Render(IconWindow + " " + m.status.Title)

	var state string
	switch {
	case m.err != nil:
		state = ErrorStyle.Render(fmt.Sprintf("%s %v", IconError, m.err))
	case m.done:
		state = FormatStatus(false, m.status.State)
	case m.status.Active:
		state = FormatStatus(true, m.status.State)
	default:
		state = m.spinner.View() + " " + m.status.State
	}

	lines := []string{
		fmt.Sprintf("Size    %dx%d", m.status.Width, m.status.Height),
		fmt.Sprintf("Scale   %d", m.status.Scale),
		fmt.Sprintf("Pings   %d", m.status.Pings),
	}
	if m.status.Output != "" {
		lines = append(lines, "Output  "+m.status.Output)
	}
	details := TextStyle.Render(strings.Join(lines, "\n"))

	controls := MutedStyle.Render(FormatControl("q", "Close the window"))

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		state,
		"",
		details,
		"",
		controls,
	)

	if m.width == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
}
