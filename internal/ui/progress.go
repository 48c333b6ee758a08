// Package ui renders a running simulation in the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/blackjack-sim/internal/sim"
)

// --- Tea Messages ---

// ShoeDoneMsg is sent for every finished shoe.
type ShoeDoneMsg struct {
	Report sim.ShoeReport
}

// RunDoneMsg ends the run, with either a summary or an error.
type RunDoneMsg struct {
	Summary *sim.Summary
	Err     error
}

// ProgressModel 模拟进度界面
type ProgressModel struct {
	total    int
	seed     uint64
	bankroll float64
	cancel   func()

	spinner   spinner.Model
	started   time.Time
	completed int
	rounds    int
	net       float64
	exhausted int
	recent    []sim.ShoeReport

	summary *sim.Summary
	err     error
	quit    bool
}

// NewProgressModel builds the model for a run of opts.Shoes shoes. cancel is
// called when the user quits before the run finishes.
func NewProgressModel(opts sim.Options, cancel func()) *ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return &ProgressModel{
		total:    opts.Shoes,
		seed:     opts.Seed,
		bankroll: opts.StartingBankroll,
		cancel:   cancel,
		spinner:  s,
		started:  time.Now(),
	}
}

func (m *ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.summary == nil && m.err == nil && m.cancel != nil {
				m.cancel()
			}
			m.quit = true
			return m, tea.Quit
		}

	case ShoeDoneMsg:
		m.completed++
		m.rounds += msg.Report.Result.Rounds
		m.net += msg.Report.Result.Net
		if msg.Report.Result.Exhausted {
			m.exhausted++
		}
		m.recent = append(m.recent, msg.Report)
		if len(m.recent) > recentShoe {
			m.recent = m.recent[len(m.recent)-recentShoe:]
		}

	case RunDoneMsg:
		m.summary = msg.Summary
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Done reports whether the run has finished.
func (m *ProgressModel) Done() bool {
	return m.summary != nil || m.err != nil
}

// Summary is the final summary, nil until the run ends successfully.
func (m *ProgressModel) Summary() *sim.Summary {
	return m.summary
}

// Err is the run's error, if any.
func (m *ProgressModel) Err() error {
	return m.err
}

// Completed is the number of shoes reported so far.
func (m *ProgressModel) Completed() int {
	return m.completed
}

// Net is the running profit over the reported shoes.
func (m *ProgressModel) Net() float64 {
	return m.net
}

func (m *ProgressModel) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle("♠ Blackjack Simulator") + "\n\n")

	switch {
	case m.err != nil:
		sb.WriteString(errorStyle.Render("✗ " + m.err.Error()))
		sb.WriteString("\n")
		return docStyle.Render(sb.String())
	case m.summary != nil:
		sb.WriteString(SummaryView(m.summary))
		return docStyle.Render(sb.String())
	}

	pct := 0.0
	if m.total > 0 {
		pct = 100 * float64(m.completed) / float64(m.total)
	}
	fmt.Fprintf(&sb, "%s Simulating shoes (seed %d)\n", m.spinner.View(), m.seed)
	fmt.Fprintf(&sb, "%s %5.1f%%  %d/%d\n\n", progressBar(m.completed, m.total), pct, m.completed, m.total)

	stats := fmt.Sprintf("Rounds    %d\nNet       %s\nBankroll  %.2f\nElapsed   %s",
		m.rounds, FormatMoney(m.net), m.bankroll+m.net, time.Since(m.started).Round(time.Second))
	if m.exhausted > 0 {
		stats += fmt.Sprintf("\nExhausted %d", m.exhausted)
	}
	sb.WriteString(boxStyle.Render(stats) + "\n")

	if len(m.recent) > 0 {
		sb.WriteString("\nRecent shoes\n")
		for i := len(m.recent) - 1; i >= 0; i-- {
			r := m.recent[i]
			fmt.Fprintf(&sb, "  #%-6d %4d rounds  %s\n", r.Index, r.Result.Rounds, FormatMoney(r.Result.Net))
		}
	}
	sb.WriteString(grayStyle.Render("\nq 退出") + "\n")
	return docStyle.Render(sb.String())
}

// SummaryView renders a finished run.
func SummaryView(s *sim.Summary) string {
	lines := []string{
		fmt.Sprintf("Run        %s", s.RunID),
		fmt.Sprintf("Seed       %d", s.Seed),
		fmt.Sprintf("Shoes      %d", s.Shoes),
		fmt.Sprintf("Rounds     %d (%d played)", s.Rounds, s.RoundsPlayed),
		fmt.Sprintf("Wagered    %.2f", s.Wagered),
		fmt.Sprintf("Net        %s", FormatMoney(s.Net)),
		fmt.Sprintf("EV/round   %s", FormatMoney(s.EVPerRound)),
		fmt.Sprintf("EV/unit    %+.4f%%", 100*s.EVPerWagered),
		fmt.Sprintf("Bankroll   %.2f → %.2f (min %.2f)", s.StartingBankroll, s.EndingBankroll, s.MinBankroll),
		fmt.Sprintf("Elapsed    %s", s.Elapsed.Round(time.Millisecond)),
	}
	if s.ExhaustedShoes > 0 {
		lines = append(lines, fmt.Sprintf("Exhausted  %d", s.ExhaustedShoes))
	}
	return boxStyle.Render(strings.Join(lines, "\n")) + "\n"
}
