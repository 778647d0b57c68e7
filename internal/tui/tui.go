// Package tui hosts the interactive terminal front end for a benchmarking
// session. It pumps runner snapshots into the live view and quits on demand.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chiranjeevipattigidi/hipBLASLt/internal/report"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/tui/live"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/tui/styles"
)

// Model wraps the live view with channel plumbing.
type Model struct {
	live    live.Model
	updates report.UpdateChan
	done    chan error
}

// NewModel builds the top-level TUI model. updates carries runner
// snapshots, done receives the runner's terminal error (or nil).
func NewModel(updates report.UpdateChan, done chan error) Model {
	return Model{
		live:    live.NewModel(),
		updates: updates,
		done:    done,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForUpdate(), m.waitForDone())
}

func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		return <-m.updates
	}
}

func (m Model) waitForDone() tea.Cmd {
	return func() tea.Msg {
		return live.DoneMsg{Err: <-m.done}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case report.Snapshot:
		var cmd tea.Cmd
		m.live, cmd = m.live.Update(msg)
		return m, tea.Batch(cmd, m.waitForUpdate())

	case live.DoneMsg:
		var cmd tea.Cmd
		m.live, cmd = m.live.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.live, cmd = m.live.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	header := styles.Title.Render("hipblaslt-bench")
	return header + "\n\n" + m.live.View() + "\n"
}
