// Package tui renders live match progress with Bubble Tea.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lox/bountybot/internal/arena"
)

// historyLines is how many settled rounds the monitor keeps on screen.
const historyLines = 8

// roundMsg carries one settled round from the arena feed.
type roundMsg arena.Progress

// matchDoneMsg signals that the arena closed the feed.
type matchDoneMsg struct{}

// Monitor is the Bubble Tea model for watching a match.
type Monitor struct {
	updates <-chan arena.Progress

	// Match state
	names     [2]string
	bankrolls [2]int
	round     int
	rounds    int
	recent    []string

	// UI components
	bar progress.Model

	// Dimensions
	width    int
	height   int
	quitting bool
	done     bool
}

// NewMonitor builds a monitor fed by updates. The arena side closes the
// channel when the match ends, which quits the program.
func NewMonitor(updates <-chan arena.Progress) *Monitor {
	return &Monitor{
		updates: updates,
		bar:     progress.New(progress.WithDefaultGradient()),
		recent:  []string{},
	}
}

// Run displays the monitor until the match ends or the user quits.
func Run(updates <-chan arena.Progress) error {
	program := tea.NewProgram(NewMonitor(updates), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// Init starts listening on the arena feed.
func (m *Monitor) Init() tea.Cmd {
	return m.waitForRound()
}

// waitForRound returns a command that blocks on the arena feed.
func (m *Monitor) waitForRound() tea.Cmd {
	return func() tea.Msg {
		p, ok := <-m.updates
		if !ok {
			return matchDoneMsg{}
		}
		return roundMsg(p)
	}
}

// Update handles messages in the monitor
func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case roundMsg:
		m.applyRound(arena.Progress(msg))
		return m, m.waitForRound()

	case matchDoneMsg:
		m.done = true
		return m, tea.Sequence(tea.ClearScreen, tea.Quit)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = msg.Width - 4
		if m.bar.Width > 60 {
			m.bar.Width = 60
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// applyRound folds one settled round into the display state.
func (m *Monitor) applyRound(p arena.Progress) {
	swing := p.Bankrolls[0] - m.bankrolls[0]

	m.names = p.Names
	m.bankrolls = p.Bankrolls
	m.round = p.Round
	m.rounds = p.Rounds

	var line string
	switch {
	case swing > 0:
		line = fmt.Sprintf("round %*d  %s wins %d", digits(p.Rounds), p.Round, p.Names[0], swing)
	case swing < 0:
		line = fmt.Sprintf("round %*d  %s wins %d", digits(p.Rounds), p.Round, p.Names[1], -swing)
	default:
		line = fmt.Sprintf("round %*d  chop", digits(p.Rounds), p.Round)
	}

	m.recent = append(m.recent, line)
	if len(m.recent) > historyLines {
		m.recent = m.recent[len(m.recent)-historyLines:]
	}
}

// View renders the monitor
func (m *Monitor) View() string {
	if m.quitting || m.done {
		return ""
	}

	// Don't render until we have valid dimensions
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(HeaderStyle.Render(" bountybot arena "))
	b.WriteString("\n\n")

	b.WriteString(m.bar.ViewAs(m.fraction()))
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render(fmt.Sprintf("round %d of %d", m.round, m.rounds)))
	b.WriteString("\n\n")

	for i, name := range m.names {
		b.WriteString(NameStyle.Render(fmt.Sprintf("%-12s", name)))
		b.WriteString(netStyle(m.bankrolls[i]).Render(fmt.Sprintf("%+d", m.bankrolls[i])))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, line := range m.recent {
		b.WriteString(LogStyle.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(InfoStyle.Render("q to quit"))
	return b.String()
}

func (m *Monitor) fraction() float64 {
	if m.rounds == 0 {
		return 0
	}
	return float64(m.round) / float64(m.rounds)
}

// netStyle picks a style for a running bankroll.
func netStyle(n int) lipgloss.Style {
	switch {
	case n > 0:
		return SuccessStyle
	case n < 0:
		return ErrorStyle
	}
	return InfoStyle
}

// digits returns the print width of n, for aligning round numbers.
func digits(n int) int {
	return len(fmt.Sprint(n))
}
