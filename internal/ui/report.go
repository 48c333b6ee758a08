package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/pterm/pterm"

	"github.com/palemoky/blackjack-sim/internal/sim"
)

// ShoeStats 单靴净值分布
type ShoeStats struct {
	Count  int
	Best   sim.ShoeReport
	Worst  sim.ShoeReport
	Mean   float64
	StdDev float64
}

// NewShoeStats summarises per-shoe nets. The zero value is returned for no
// reports.
func NewShoeStats(reports []sim.ShoeReport) ShoeStats {
	var st ShoeStats
	if len(reports) == 0 {
		return st
	}
	st.Count = len(reports)
	st.Best, st.Worst = reports[0], reports[0]
	sum := 0.0
	for _, r := range reports {
		sum += r.Result.Net
		if r.Result.Net > st.Best.Result.Net {
			st.Best = r
		}
		if r.Result.Net < st.Worst.Result.Net {
			st.Worst = r
		}
	}
	st.Mean = sum / float64(st.Count)
	if st.Count > 1 {
		ss := 0.0
		for _, r := range reports {
			d := r.Result.Net - st.Mean
			ss += d * d
		}
		st.StdDev = math.Sqrt(ss / float64(st.Count-1))
	}
	return st
}

// colorMoney 盈亏着色
func colorMoney(v float64, format string) string {
	s := fmt.Sprintf(format, v)
	switch {
	case v > 0:
		return pterm.NewStyle(pterm.FgGreen).Sprint(s)
	case v < 0:
		return pterm.NewStyle(pterm.FgRed).Sprint(s)
	default:
		return s
	}
}

// renderSummaryTable 负责生成汇总表格
func renderSummaryTable(s *sim.Summary) string {
	data := pterm.TableData{
		{"Metric", "Value"},
		{"Run", s.RunID},
		{"Seed", fmt.Sprintf("%d", s.Seed)},
		{"Shoes", fmt.Sprintf("%d", s.Shoes)},
		{"Rounds", fmt.Sprintf("%d", s.Rounds)},
		{"Rounds played", fmt.Sprintf("%d", s.RoundsPlayed)},
		{"Wagered", fmt.Sprintf("%.2f", s.Wagered)},
		{"Net", colorMoney(s.Net, "%+.2f")},
		{"EV per round", colorMoney(s.EVPerRound, "%+.4f")},
		{"EV per unit", colorMoney(100*s.EVPerWagered, "%+.4f%%")},
		{"Bankroll", fmt.Sprintf("%.2f → %.2f", s.StartingBankroll, s.EndingBankroll)},
		{"Min bankroll", fmt.Sprintf("%.2f", s.MinBankroll)},
		{"Elapsed", s.Elapsed.String()},
	}
	if s.ExhaustedShoes > 0 {
		data = append(data, []string{"Exhausted shoes", pterm.NewStyle(pterm.FgYellow).Sprintf("%d", s.ExhaustedShoes)})
	}
	table, _ := pterm.DefaultTable.WithHasHeader().WithData(data).WithBoxed().Srender()
	return table
}

// renderShoeTable 负责生成单靴分布表格
func renderShoeTable(st ShoeStats) string {
	data := pterm.TableData{
		{"Shoes", "Mean", "Std dev", "Best", "Worst"},
		{
			fmt.Sprintf("%d", st.Count),
			colorMoney(st.Mean, "%+.2f"),
			fmt.Sprintf("%.2f", st.StdDev),
			fmt.Sprintf("#%d %s", st.Best.Index, colorMoney(st.Best.Result.Net, "%+.2f")),
			fmt.Sprintf("#%d %s", st.Worst.Index, colorMoney(st.Worst.Result.Net, "%+.2f")),
		},
	}
	table, _ := pterm.DefaultTable.WithHasHeader().WithData(data).WithBoxed().Srender()
	return table
}

// RenderReport renders the run summary and, when reports are given, the
// per-shoe distribution.
func RenderReport(s *sim.Summary, reports []sim.ShoeReport) string {
	var sb strings.Builder
	sb.WriteString(renderSummaryTable(s))
	if len(reports) > 0 {
		sb.WriteString("\n")
		sb.WriteString(renderShoeTable(NewShoeStats(reports)))
	}
	return sb.String()
}

// PrintReport writes the report to the terminal.
func PrintReport(s *sim.Summary, reports []sim.ShoeReport) {
	pterm.DefaultSection.Println("Blackjack Simulation")
	pterm.Println(RenderReport(s, reports))
}
