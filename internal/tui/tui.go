// Package tui provides a Bubble Tea terminal user interface for asset-preloader.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/karsk/asset-preloader/internal/asset"
	"github.com/karsk/asset-preloader/internal/config"
	"github.com/karsk/asset-preloader/internal/fetch"
	"github.com/karsk/asset-preloader/internal/manifest"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StatePreparing
	StateFetching
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   asset.Level
}

// logBuffer collects progress events from manager goroutines until the
// next poll tick drains them.
type logBuffer struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (b *logBuffer) add(event asset.Event) {
	b.mu.Lock()
	b.entries = append(b.entries, LogEntry{Message: event.Message, Level: event.Level})
	b.mu.Unlock()
}

func (b *logBuffer) drain() []LogEntry {
	b.mu.Lock()
	entries := b.entries
	b.entries = nil
	b.mu.Unlock()
	return entries
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	logBuf    *logBuffer
	err       error

	ctx    context.Context
	cancel context.CancelFunc

	manager *asset.Manager

	queued     int
	loaded     int
	failed     int
	totalBytes int64

	// Options
	debugging bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel() Model {
	ti := textinput.New()
	ti.Placeholder = "manifest file or asset URLs"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  config.DefaultSettings(),
		logBuf:    &logBuffer{},
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// PrepareDoneMsg is sent when the manifest is parsed and assets queued.
	PrepareDoneMsg struct {
		Manager *asset.Manager
		Queued  int
		Total   int64
		Err     error
	}

	// FetchDoneMsg is sent when the download cycle completes.
	FetchDoneMsg struct {
		Loaded int
		Failed int
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StatePreparing || m.state == StateFetching {
				// In-flight fetches cannot be aborted; cancelling the
				// context makes them settle as failed.
				m.cancel()
			}

		case "enter":
			if m.state == StateInput && m.textInput.Value() != "" {
				m.state = StatePreparing
				return m, tea.Batch(m.prepare(), m.spinner.Tick)
			}

		case "v":
			if m.state == StateInput {
				m.debugging = !m.debugging
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new cycle
				m.state = StateInput
				m.logs = nil
				m.logBuf = &logBuffer{}
				m.err = nil
				m.manager = nil
				m.queued = 0
				m.loaded = 0
				m.failed = 0
				m.totalBytes = 0
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				m.textInput.Focus()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case PrepareDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.manager = msg.Manager
			m.queued = msg.Queued
			m.totalBytes = msg.Total
			m.state = StateFetching
			cmds = append(cmds, m.startFetch(), m.tickProgress())
		}

	case FetchDoneMsg:
		m.loaded = msg.Loaded
		m.failed = msg.Failed
		m.logs = append(m.logs, m.logBuf.drain()...)
		m.state = StateComplete

	case TickMsg:
		if m.manager != nil && m.state == StateFetching {
			loaded, failed, queued := m.manager.Progress()
			m.loaded = loaded
			m.failed = failed
			m.queued = queued

			m.logs = append(m.logs, m.logBuf.drain()...)
			if len(m.logs) > 10 {
				m.logs = m.logs[len(m.logs)-10:]
			}

			var percent float64
			if queued > 0 {
				percent = float64(loaded+failed) / float64(queued)
			}
			progressCmd := m.progress.SetPercent(percent)
			cmds = append(cmds, progressCmd, m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// prepare parses the input, queues all assets and estimates the total size.
func (m *Model) prepare() tea.Cmd {
	input := m.textInput.Value()
	settings := m.settings
	settings.Debugging = m.debugging
	logBuf := m.logBuf
	ctx := m.ctx

	return func() tea.Msg {
		var paths []string
		var err error
		if _, statErr := os.Stat(input); statErr == nil {
			paths, err = manifest.Load(input)
		} else {
			paths, err = manifest.Parse([]byte(strings.ReplaceAll(input, ",", "\n")))
		}
		if err != nil {
			return PrepareDoneMsg{Err: err}
		}
		if len(paths) == 0 {
			return PrepareDoneMsg{Err: fmt.Errorf("no asset paths in input")}
		}

		fetcher := fetch.NewHTTPFetcher(settings.UserAgent, settings.Timeout())
		manager := asset.NewManager(fetcher, settings, logBuf.add)
		for _, path := range paths {
			manager.QueueDownload(path)
		}

		return PrepareDoneMsg{
			Manager: manager,
			Queued:  len(paths),
			Total:   manager.EstimateTotal(ctx),
		}
	}
}

// startFetch runs the download cycle and blocks until it completes.
func (m *Model) startFetch() tea.Cmd {
	manager := m.manager
	ctx := m.ctx

	return func() tea.Msg {
		done := make(chan struct{})
		manager.DownloadAll(ctx, func() { close(done) })
		<-done

		loaded, failed, _ := manager.Progress()
		return FetchDoneMsg{Loaded: loaded, Failed: failed}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("asset-preloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Warm an image asset cache"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StatePreparing:
		b.WriteString(m.viewPreparing())
	case StateFetching:
		b.WriteString(m.viewFetching())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter a manifest file or asset URLs:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	debugCheck := "[ ]"
	if m.debugging {
		debugCheck = "[x]"
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Verbose/debug traces (v)\n", debugCheck))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewPreparing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Queueing assets..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewFetching() string {
	var b strings.Builder

	var percent float64
	if m.queued > 0 {
		percent = float64(m.loaded+m.failed) / float64(m.queued)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	line := fmt.Sprintf("Settled: %d/%d | Loaded: %d | Failed: %d",
		m.loaded+m.failed, m.queued, m.loaded, m.failed)
	if m.totalBytes > 0 {
		line += fmt.Sprintf(" | ~%.2f MB", float64(m.totalBytes)/1024/1024)
	}
	b.WriteString(infoStyle.Render(line))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	box := boxStyle.Render(fmt.Sprintf(
		"Preload complete\n\n"+
			"Queued: %d\n"+
			"Loaded: %d\n"+
			"Failed: %d",
		m.queued,
		m.loaded,
		m.failed,
	))
	return box
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "*"
		switch log.Level {
		case asset.LevelError:
			style = errorStyle
			prefix = "x"
		case asset.LevelSuccess:
			style = successStyle
			prefix = "+"
		case asset.LevelInfo:
			style = infoStyle
			prefix = ">"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start * v: verbose * esc: quit"
	case StatePreparing, StateFetching:
		return "esc: give up waiting"
	case StateComplete, StateError:
		return "r: new cycle * q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run() error {
	p := tea.NewProgram(NewModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
