// Package live is the in-flight benchmark view: throughput and
// time-per-enqueue sparklines, the solution currently under measurement and
// overall progress.
package live

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chiranjeevipattigidi/hipBLASLt/internal/report"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/tui/components"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/tui/styles"
)

// DoneMsg signals the runner completed, carrying its error if any.
type DoneMsg struct {
	Err error
}

// Model renders live run state from report snapshots.
type Model struct {
	Stats    report.Snapshot
	Progress progress.Model

	GflopsLine components.Sparkline
	TimeLine   components.Sparkline

	BestGFlops   float64
	BestSolution string

	Done bool
	Err  error

	Width  int
	Height int
}

func NewModel() Model {
	return Model{
		Progress:   progress.New(progress.WithDefaultGradient()),
		GflopsLine: components.NewSparkline(40, "GFLOPS", styles.Active),
		TimeLine:   components.NewSparkline(40, "Time/enqueue (us)", styles.Warn),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case report.Snapshot:
		m.Stats = msg
		m.GflopsLine.Add(msg.GFlops)
		m.TimeLine.Add(msg.TimePerEnqueueUs)

		if msg.GFlops > m.BestGFlops {
			m.BestGFlops = msg.GFlops
			m.BestSolution = msg.Solution
		}

		pct := 0.0
		if msg.SolutionsTotal > 0 {
			pct = float64(msg.SolutionsDone) / float64(msg.SolutionsTotal)
		}
		cmd := m.Progress.SetPercent(pct)
		return m, cmd

	case DoneMsg:
		m.Done = true
		m.Err = msg.Err
		return m, nil

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Progress.Width = msg.Width - 4

		half := (msg.Width / 2) - 4
		if half < 10 {
			half = 10
		}
		m.GflopsLine.Width = half
		m.TimeLine.Width = half
		return m, nil

	case progress.FrameMsg:
		prog, cmd := m.Progress.Update(msg)
		m.Progress = prog.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	s := strings.Builder{}

	col1 := fmt.Sprintf("RUN: %d/%d\nSOL: %d/%d",
		m.Stats.BenchmarkRun, m.Stats.TotalRuns,
		m.Stats.SolutionsDone, m.Stats.SolutionsTotal)

	col2 := fmt.Sprintf("%s\n%s",
		styles.Subtle.Render(m.Stats.Problem),
		styles.Active.Render(m.Stats.Solution))

	col3 := fmt.Sprintf("GFLOPS: %s\nTIME: %.1f us",
		styles.Value.Render(fmt.Sprintf("%.1f", m.Stats.GFlops)),
		m.Stats.TimePerEnqueueUs)

	grid := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Box.Render(col1),
		styles.Box.Render(col2),
		styles.Box.Render(col3),
	)
	s.WriteString(grid)
	s.WriteString("\n\n")

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Box.Render(m.GflopsLine.View()),
		styles.Box.Render(m.TimeLine.View()),
	))
	s.WriteString("\n\n")

	dist := fmt.Sprintf(
		"P50: %.0f us  |  P99: %.0f us  |  Max: %.0f us  |  Device: %s",
		m.Stats.P50TimeUs, m.Stats.P99TimeUs, m.Stats.MaxTimeUs,
		m.Stats.TotalDeviceTime.Round(0),
	)
	s.WriteString(styles.Box.Width(m.Width - 4).Render(dist))
	s.WriteString("\n\n")

	if m.BestSolution != "" {
		s.WriteString(styles.Subtle.Render("best so far: "))
		s.WriteString(styles.Value.Render(
			fmt.Sprintf("%s (%.1f GFLOPS)", m.BestSolution, m.BestGFlops)))
		s.WriteString("\n\n")
	}

	s.WriteString(m.Progress.View())

	if m.Done {
		s.WriteString("\n\n")
		if m.Err != nil {
			s.WriteString(styles.Error.Render("run failed: " + m.Err.Error()))
		} else {
			s.WriteString(styles.Value.Render("run complete"))
		}
		s.WriteString(styles.Subtle.Render("  press q to quit"))
	}

	return s.String()
}
