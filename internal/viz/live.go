// Package viz renders a live terminal view of a benchmark run.
package viz

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/nbodybench/internal/body"
	"github.com/san-kum/nbodybench/internal/sim"
)

type iterMsg struct {
	iter      int
	elapsedMs float64
	gips      float64
}

type doneMsg struct {
	result *sim.Result
	err    error
}

// progress forwards orchestrator iterations into the TUI event loop.
type progress struct {
	ch     chan tea.Msg
	bodies int
}

func (p *progress) OnIteration(iter int, elapsedMs float64, s *body.Store) {
	n := float64(p.bodies)
	gips := 0.0
	if elapsedMs > 0 {
		gips = 1e-9 * n * n / (elapsedMs / 1000)
	}
	p.ch <- iterMsg{iter: iter, elapsedMs: elapsedMs, gips: gips}
}

// Model is the bubbletea model for a run in flight.
type Model struct {
	backendName string
	bodies      int
	totalIters  int

	ch      chan tea.Msg
	history []float64 // per-iteration GI/s
	iterMs  []float64
	done    bool
	result  *sim.Result
	err     error
}

// Run drives a live benchmark: the orchestrator runs in a goroutine and
// streams iterations into the TUI until the run finishes or the user
// quits.
func Run(runner *sim.Runner, store *body.Store, cfg sim.Config) (*sim.Result, error) {
	ch := make(chan tea.Msg, cfg.Iters+1)
	runner.AddObserver(&progress{ch: ch, bodies: store.Len()})

	m := Model{
		backendName: runner.Backend().Name(),
		bodies:      store.Len(),
		totalIters:  cfg.Iters,
		ch:          ch,
		history:     make([]float64, 0, cfg.Iters),
		iterMs:      make([]float64, 0, cfg.Iters),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		result, err := runner.Run(ctx, store, cfg)
		ch <- doneMsg{result: result, err: err}
	}()

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, err
	}

	fm := final.(Model)
	if fm.err != nil {
		return fm.result, fm.err
	}
	return fm.result, nil
}

func (m Model) Init() tea.Cmd {
	return m.waitForMsg()
}

func (m Model) waitForMsg() tea.Cmd {
	return func() tea.Msg {
		return <-m.ch
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case iterMsg:
		m.history = append(m.history, msg.gips)
		m.iterMs = append(m.iterMs, msg.elapsedMs)
		return m, m.waitForMsg()
	case doneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("NBODYBENCH") + "\n")

	status := "RUNNING"
	if m.done {
		if m.err != nil || (m.result != nil && len(m.result.Errors) > 0) {
			status = errorStyle.Render("FINISHED WITH ERRORS")
		} else {
			status = doneStyle.Render("FINISHED")
		}
	}
	s.WriteString(status + "\n\n")

	s.WriteString(progressBar(len(m.iterMs), m.totalIters, 40) +
		fmt.Sprintf("  %d/%d\n", len(m.iterMs), m.totalIters))

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("billion interactions/s per iteration"),
		)
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	var stats strings.Builder
	stats.WriteString(labelStyle.Render("Bodies") + valueStyle.Render(fmt.Sprintf("%d", m.bodies)) + "\n")
	stats.WriteString(labelStyle.Render("Backend") + valueStyle.Render(m.backendName) + "\n")
	if n := len(m.iterMs); n > 0 {
		stats.WriteString(labelStyle.Render("Last iter") + valueStyle.Render(fmt.Sprintf("%.2f ms", m.iterMs[n-1])) + "\n")
		stats.WriteString(labelStyle.Render("Last GI/s") + valueStyle.Render(fmt.Sprintf("%.3f", m.history[n-1])) + "\n")
	}
	if m.done && m.result != nil {
		stats.WriteString(labelStyle.Render("Avg iter") + valueStyle.Render(fmt.Sprintf("%.2f ms", m.result.AvgIterMillis)) + "\n")
		stats.WriteString(labelStyle.Render("Throughput") + valueStyle.Render(fmt.Sprintf("%.3f GI/s", m.result.GigaInteractionsPerSec)) + "\n")
		if len(m.result.Errors) > 0 {
			stats.WriteString(labelStyle.Render("Phase errors") + errorStyle.Render(fmt.Sprintf("%d", len(m.result.Errors))) + "\n")
		}
	}
	s.WriteString(statsStyle.Render(stats.String()) + "\n")

	s.WriteString(helpStyle.Render("Q: quit"))
	return s.String()
}
