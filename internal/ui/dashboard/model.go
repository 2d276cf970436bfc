package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	harnessdto "dojo/internal/modules/harness/dto"
	watchdto "dojo/internal/modules/watch/dto"
	"dojo/internal/ui/theme"
)

// historySize is how many past results the history bar keeps.
const historySize = 6

// EventMsg carries a loop event into the program.
type EventMsg struct{ Event watchdto.Event }

type tickMsg time.Time

type status int

const (
	statusStarting status = iota
	statusListening
	statusRunning
	statusPassed
	statusFailed
	statusStopped
)

type keyMap struct {
	Run  key.Binding
	Help key.Binding
	Quit key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Run:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "run now")),
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit: key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Run, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Run}, {k.Help, k.Quit}}
}

type Options struct {
	KataSlug string
	// Force receives a value when the user asks for an immediate run. Sends
	// never block.
	Force chan<- struct{}
	// Cancel stops the watch loop when the user quits.
	Cancel context.CancelFunc
	Now    func() time.Time
}

// Model renders the watch loop: banner, status, recent history, the last
// failure and the last hint.
type Model struct {
	kata      string
	workspace string
	started   time.Time
	now       time.Time
	clock     func() time.Time

	state   status
	verdict *harnessdto.VerdictOutput
	history []bool
	hint    string
	notice  string

	force  chan<- struct{}
	cancel context.CancelFunc

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	width   int
}

func New(opts Options) Model {
	clock := opts.Now
	if clock == nil {
		clock = time.Now
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Pending
	now := clock()
	return Model{
		kata:    opts.KataSlug,
		started: now,
		now:     now,
		clock:   clock,
		force:   opts.Force,
		cancel:  opts.Cancel,
		keys:    defaultKeys(),
		help:    help.New(),
		spinner: sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Run):
			m.requestRun()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tickMsg:
		m.now = m.clock()
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case EventMsg:
		m = m.apply(msg.Event)
		if m.state == statusStopped {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) requestRun() {
	if m.force == nil {
		return
	}
	select {
	case m.force <- struct{}{}:
		m.notice = "run requested"
	default:
	}
}

func (m Model) apply(event watchdto.Event) Model {
	switch event.Kind {
	case watchdto.EventListening:
		m.state = statusListening
		if event.KataSlug != "" {
			m.kata = event.KataSlug
		}
		m.workspace = event.Workspace
	case watchdto.EventQueued:
		m.notice = "change queued behind the current run"
	case watchdto.EventRunStarted:
		m.state = statusRunning
		m.notice = ""
	case watchdto.EventVerdict:
		if event.Verdict == nil {
			break
		}
		v := *event.Verdict
		m.verdict = &v
		if v.Passed() {
			m.state = statusPassed
			m.hint = ""
		} else {
			m.state = statusFailed
		}
		m.history = append(m.history, v.Passed())
		if len(m.history) > historySize {
			m.history = m.history[len(m.history)-historySize:]
		}
	case watchdto.EventRecorded:
		m.notice = recordedLine(event)
	case watchdto.EventHint:
		m.hint = event.Hint
	case watchdto.EventError:
		if event.Err != nil {
			m.notice = "error: " + event.Err.Error()
		}
	case watchdto.EventStopped:
		m.state = statusStopped
	}
	return m
}

func (m Model) View() string {
	sections := []string{m.renderBanner(), m.renderStatus(), m.renderHistory()}
	if m.state == statusFailed && m.verdict != nil {
		sections = append(sections, theme.FailurePanel.Render(failureText(*m.verdict)))
	}
	if m.hint != "" {
		sections = append(sections, theme.HintPanel.Render(theme.Title.Render("hint")+"\n"+m.hint))
	}
	if m.notice != "" {
		sections = append(sections, theme.Muted.Render(m.notice))
	}
	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m Model) renderBanner() string {
	left := "dojo ▸ " + m.kata
	right := elapsed(m.now.Sub(m.started))
	bar := left + "  " + theme.Muted.Render(right)
	if m.width > 0 {
		return theme.Banner.Width(m.width).Render(bar)
	}
	return theme.Banner.Render(bar)
}

func (m Model) renderStatus() string {
	switch m.state {
	case statusListening:
		return theme.Muted.Render("● listening for changes")
	case statusRunning:
		return m.spinner.View() + " running tests"
	case statusPassed:
		return theme.Pass.Render("✓ passed") + theme.Muted.Render(" in "+m.verdict.Duration.Round(time.Millisecond).String())
	case statusFailed:
		label := fmt.Sprintf("✗ %s", m.verdict.Kind)
		if n := len(m.verdict.Failures); n > 0 {
			label += fmt.Sprintf(" (%d)", n)
		}
		return theme.Fail.Render(label) + theme.Muted.Render(" in "+m.verdict.Duration.Round(time.Millisecond).String())
	case statusStopped:
		return theme.Muted.Render("stopped")
	default:
		return theme.Muted.Render("starting")
	}
}

func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return theme.Muted.Render("history  -")
	}
	marks := make([]string, len(m.history))
	for i, ok := range m.history {
		if ok {
			marks[i] = theme.Pass.Render("✓")
		} else {
			marks[i] = theme.Fail.Render("✗")
		}
	}
	return theme.Muted.Render("history  ") + strings.Join(marks, " ")
}

func failureText(v harnessdto.VerdictOutput) string {
	if len(v.Failures) == 0 {
		if v.Summary != "" {
			return v.Summary
		}
		return v.Kind
	}
	lines := make([]string, 0, len(v.Failures))
	for _, f := range v.Failures {
		lines = append(lines, theme.Hot.Render(f.Name)+"\n  "+f.Message)
	}
	return strings.Join(lines, "\n")
}

func recordedLine(event watchdto.Event) string {
	line := fmt.Sprintf("+%d xp (%s)", event.XPAwarded, event.Tier)
	for _, up := range event.LevelUps {
		line += "  level up " + up
	}
	return line
}

func elapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
