// Package viz renders a running adaptive integration in the terminal.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/kirella/bodysim/internal/metrics"
	"github.com/kirella/bodysim/internal/stepper"
)

const (
	historyCapacity = 240
	graphWidth      = 70
	graphHeight     = 10
	frameInterval   = time.Second / 30
	// Simulated time advanced per rendered frame.
	timePerFrame = 1.0 / 30.0
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Model drives one stepper from the bubbletea event loop, advancing a slice
// of simulated time per frame and plotting the trajectory and step sizes.
type Model struct {
	st        *stepper.Stepper
	modelName string
	ham       metrics.Hamiltonian

	running   bool
	err       error
	history   []float64
	dtHistory []float64
	lastDt    float64
}

func NewModel(st *stepper.Stepper, modelName string, ham metrics.Hamiltonian) Model {
	return Model{
		st:        st,
		modelName: modelName,
		ham:       ham,
		running:   true,
		history:   make([]float64, 0, historyCapacity),
		dtHistory: make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		}

	case TickMsg:
		if m.running && m.err == nil {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) advance() {
	deadline := m.st.Time() + timePerFrame
	for m.st.Time() < deadline {
		target := 0.0
		if remaining := deadline - m.st.Time(); remaining < m.st.StepSize() {
			target = remaining
		}
		res, err := m.st.TryStep(nil, target)
		if err != nil {
			m.err = err
			m.running = false
			return
		}
		m.lastDt = res.UsedDt
	}

	s := m.st.State()
	m.history = append(m.history, s.Q[0][0])
	m.dtHistory = append(m.dtHistory, m.lastDt)
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
		m.dtHistory = m.dtHistory[1:]
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("bodysim live · %s", m.modelName)))
	b.WriteString("\n")

	status := statusRunning.Render("running")
	if !m.running {
		status = statusPaused.Render("paused")
	}

	stats := m.st.Stats()
	lines := []string{
		labelStyle.Render("status") + status,
		labelStyle.Render("time") + valueStyle.Render(fmt.Sprintf("%.3f s", m.st.Time())),
		labelStyle.Render("dt") + valueStyle.Render(fmt.Sprintf("%.3e", m.st.StepSize())),
		labelStyle.Render("accepted") + valueStyle.Render(fmt.Sprintf("%d", stats.Accepted)),
		labelStyle.Render("rejected") + valueStyle.Render(fmt.Sprintf("%d", stats.Rejected)),
		labelStyle.Render("f evals") + valueStyle.Render(fmt.Sprintf("%d", stats.Evaluations)),
	}
	if m.ham != nil {
		lines = append(lines,
			labelStyle.Render("energy")+valueStyle.Render(fmt.Sprintf("%.6f", m.ham.Energy(m.st.State()))))
	}
	b.WriteString(statsStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")

	if len(m.history) > 1 {
		plot := asciigraph.Plot(m.history,
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("q[0]"))
		b.WriteString(graphStyle.Render(plot))
		b.WriteString("\n")
	}
	if len(m.dtHistory) > 1 {
		plot := asciigraph.Plot(m.dtHistory,
			asciigraph.Height(5),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("accepted dt"))
		b.WriteString(graphStyle.Render(plot))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("step failed: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("space pause · q quit"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// Run blocks until the user quits the live view.
func Run(st *stepper.Stepper, modelName string, ham metrics.Hamiltonian) error {
	p := tea.NewProgram(NewModel(st, modelName, ham))
	_, err := p.Run()
	return err
}
