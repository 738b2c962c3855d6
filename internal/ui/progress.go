// Package ui renders key generation progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"rsaforge/internal/rsa"
)

type progressModel struct {
	title   string
	events  <-chan rsa.Event
	spinner spinner.Model
	prog    progress.Model
	items   []stageItem
	index   map[rsa.Stage]int
	width   int
	done    bool
	failed  bool
}

type stageItem struct {
	stage      rsa.Stage
	status     rsa.Status
	candidates uint64
	note       string
}

type eventMsg rsa.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model fed by rsa progress events.
// The model quits when events is closed.
func NewProgressModel(title string, events <-chan rsa.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 60

	items := make([]stageItem, len(rsa.Stages))
	index := make(map[rsa.Stage]int, len(rsa.Stages))
	for i, s := range rsa.Stages {
		items[i] = stageItem{stage: s, status: rsa.StatusQueued}
		index[s] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(rsa.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = min(msg.Width-4, 80)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	switch {
	case m.failed:
		header = "failed: " + header
	case m.done:
		header = "done: " + header
	default:
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(truncate(header, m.width)))
	b.WriteString("\n\n")

	for _, item := range m.items {
		status := styleStatus(item.status).Render(fmt.Sprintf("%8s", item.status))
		rest := fmt.Sprintf("%-9s", item.stage)
		if item.candidates > 0 {
			rest += fmt.Sprintf("  %d tried", item.candidates)
		}
		if item.note != "" {
			rest += "  " + item.note
		}
		b.WriteString("  " + status + " " + truncate(rest, m.width-12))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done && !m.failed {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.ViewAs(m.fraction()))
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev rsa.Event) tea.Cmd {
	idx, ok := m.index[ev.Stage]
	if !ok {
		return nil
	}
	item := &m.items[idx]
	item.status = ev.Status
	if ev.Candidates > 0 {
		item.candidates = ev.Candidates
	}
	switch ev.Status {
	case rsa.StatusDone:
		item.note = fmt.Sprintf("%.1f ms", float64(ev.Elapsed.Microseconds())/1000)
	case rsa.StatusError:
		m.failed = true
		if ev.Err != nil {
			item.note = ev.Err.Error()
		}
	}
	return m.prog.SetPercent(m.fraction())
}

// fraction weighs the two prime searches as most of the work.
func (m *progressModel) fraction() float64 {
	weights := map[rsa.Stage]float64{
		rsa.StagePrimeP:   0.45,
		rsa.StagePrimeQ:   0.45,
		rsa.StageExponent: 0.07,
		rsa.StageInverse:  0.03,
	}
	total := 0.0
	for _, item := range m.items {
		if item.status == rsa.StatusDone {
			total += weights[item.stage]
		}
	}
	return total
}

func styleStatus(status rsa.Status) lipgloss.Style {
	switch status {
	case rsa.StatusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case rsa.StatusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case rsa.StatusWorking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
