// Package render formats scenario comparisons as terminal tables.
//
// Content is assembled first and styled once with lipgloss; counts are
// grouped by thousands with x/text so 100000 prints as 100,000.
package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ChuLiYu/policy-impact/pkg/types"
)

// wideLayoutMin minimum width for the side-by-side prevalence table
const wideLayoutMin = 112

// Options rendering options
type Options struct {
	NoColor bool // drop colors, keep borders
	Width   int  // 0 = detect from the terminal
}

// Renderer renders reports with a fixed style set
type Renderer struct {
	width   int
	styles  styles
	printer *message.Printer
}

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	cell     lipgloss.Style
	border   lipgloss.Style
	box      lipgloss.Style
	muted    lipgloss.Style
	healthy  lipgloss.Style
	diseased lipgloss.Style
	dead     lipgloss.Style
}

// New creates a Renderer
func New(opts Options) *Renderer {
	width := opts.Width
	if width <= 0 {
		width = TerminalWidth()
	}
	return &Renderer{
		width:   width,
		styles:  newStyles(opts.NoColor),
		printer: message.NewPrinter(language.English),
	}
}

func newStyles(noColor bool) styles {
	s := styles{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Bold(true).Padding(0, 1).Align(lipgloss.Center),
		cell:     lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right),
		border:   lipgloss.NewStyle(),
		box:      lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).Padding(0, 1),
		muted:    lipgloss.NewStyle(),
		healthy:  lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right),
		diseased: lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right),
		dead:     lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right),
	}
	if noColor {
		return s
	}

	s.title = s.title.Foreground(lipgloss.Color("12"))
	s.header = s.header.Foreground(lipgloss.Color("12"))
	s.border = s.border.Foreground(lipgloss.Color("240"))
	s.box = s.box.BorderForeground(lipgloss.Color("240"))
	s.muted = s.muted.Foreground(lipgloss.Color("244"))
	s.healthy = s.healthy.Foreground(lipgloss.Color("2"))
	s.diseased = s.diseased.Foreground(lipgloss.Color("214"))
	s.dead = s.dead.Foreground(lipgloss.Color("1"))
	return s
}

// TerminalWidth returns the current terminal width, defaulting to 80
func TerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// Count formats n with thousands separators
func (r *Renderer) Count(n int) string {
	return r.printer.Sprintf("%d", n)
}

// Percent formats a percentage with two decimals
func (r *Renderer) Percent(v float64) string {
	return r.printer.Sprintf("%.2f%%", v)
}

// Parameters renders the run parameters inside a box
func (r *Renderer) Parameters(report types.ReportData) string {
	p := report.Parameters
	policyIncidence := "-"
	if policy := findScenario(report, types.ScenarioPolicy); policy != nil {
		policyIncidence = fmt.Sprintf("%.4f", policy.Incidence)
	}

	lines := []string{
		r.styles.title.Render("Parameters"),
		fmt.Sprintf("Years               %d - %d", p.StartYear, p.EndYear),
		fmt.Sprintf("Population          %s", r.Count(report.PopulationSize)),
		fmt.Sprintf("Initial prevalence  %s", r.Percent(100*p.InitialPrevalence)),
		fmt.Sprintf("Incidence (BAU)     %.4f", p.Incidence),
		fmt.Sprintf("Incidence (Policy)  %s  (-%s)", policyIncidence, r.Percent(100*report.ReductionRate)),
		fmt.Sprintf("Case fatality       %.4f", p.CaseFatality),
		fmt.Sprintf("Mortality           %.4f", p.Mortality),
		fmt.Sprintf("Birth rate          %.4f", p.BirthRate),
		r.styles.muted.Render(fmt.Sprintf("Seed                %d", report.Seed)),
	}
	return r.styles.box.Render(strings.Join(lines, "\n"))
}

// StatsTable renders the yearly statistics of one scenario
func (r *Renderer) StatsTable(title string, stats []types.YearlyStatistic) string {
	rows := make([][]string, 0, len(stats))
	for _, st := range stats {
		rows = append(rows, []string{
			fmt.Sprintf("%d", st.Year),
			r.Count(st.Healthy),
			r.Count(st.Diseased),
			r.Count(st.Deaths),
			r.Count(st.Births),
			r.Count(st.TotalPopulation),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.styles.border).
		Headers("Year", "Healthy", "Diseased", "Deaths", "Births", "Total Population").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.styles.header
			}
			switch col {
			case 1:
				return r.styles.healthy
			case 2:
				return r.styles.diseased
			case 3:
				return r.styles.dead
			default:
				return r.styles.cell
			}
		})

	return r.styles.title.Render(title) + "\n" + t.String()
}

// PrevalenceTable renders both prevalence series. Narrow terminals get one
// table per scenario instead of a single side-by-side table.
func (r *Renderer) PrevalenceTable(bau, policy types.PrevalenceSeries) string {
	if r.width < wideLayoutMin {
		return r.singlePrevalence(types.ScenarioBAU.Title(), bau) + "\n\n" +
			r.singlePrevalence(types.ScenarioPolicy.Title(), policy)
	}

	rows := make([][]string, 0, len(bau.Years))
	for i, year := range bau.Years {
		row := []string{fmt.Sprintf("%d", year)}
		row = append(row, r.prevalenceCells(bau, i)...)
		row = append(row, r.prevalenceCells(policy, i)...)
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.styles.border).
		Headers("Year",
			"Healthy (BAU)", "Diseased (BAU)", "Dead (BAU)",
			"Healthy (Policy)", "Diseased (Policy)", "Dead (Policy)").
		Rows(rows...).
		StyleFunc(r.prevalenceStyle)

	return r.styles.title.Render("Health State Prevalence Over Time") + "\n" + t.String()
}

func (r *Renderer) singlePrevalence(title string, s types.PrevalenceSeries) string {
	rows := make([][]string, 0, len(s.Years))
	for i, year := range s.Years {
		rows = append(rows, append([]string{fmt.Sprintf("%d", year)}, r.prevalenceCells(s, i)...))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.styles.border).
		Headers("Year", "Healthy", "Diseased", "Dead").
		Rows(rows...).
		StyleFunc(r.prevalenceStyle)

	return r.styles.title.Render("Prevalence - "+title) + "\n" + t.String()
}

func (r *Renderer) prevalenceCells(s types.PrevalenceSeries, i int) []string {
	cell := func(vals []float64) string {
		if i >= len(vals) {
			return "-"
		}
		return r.Percent(vals[i])
	}
	return []string{cell(s.Healthy), cell(s.Diseased), cell(s.Dead)}
}

// prevalenceStyle colors columns by health state, repeating every three columns
func (r *Renderer) prevalenceStyle(row, col int) lipgloss.Style {
	if row == table.HeaderRow {
		return r.styles.header
	}
	if col == 0 {
		return r.styles.cell
	}
	switch (col - 1) % 3 {
	case 0:
		return r.styles.healthy
	case 1:
		return r.styles.diseased
	default:
		return r.styles.dead
	}
}

// Summary compares the final year and the cumulative deaths of both scenarios
func (r *Renderer) Summary(report types.ReportData) string {
	bau := findScenario(report, types.ScenarioBAU)
	policy := findScenario(report, types.ScenarioPolicy)
	if bau == nil || policy == nil || len(bau.Stats) == 0 || len(policy.Stats) == 0 {
		return ""
	}

	lastBAU := bau.Stats[len(bau.Stats)-1]
	lastPolicy := policy.Stats[len(policy.Stats)-1]

	lines := []string{
		r.styles.title.Render(fmt.Sprintf("Summary (%d)", lastBAU.Year)),
		fmt.Sprintf("Diseased       BAU %s   Policy %s   averted %s",
			r.Count(lastBAU.Diseased), r.Count(lastPolicy.Diseased), r.Count(lastBAU.Diseased-lastPolicy.Diseased)),
		fmt.Sprintf("Total deaths   BAU %s   Policy %s   averted %s",
			r.Count(totalDeaths(bau.Stats)), r.Count(totalDeaths(policy.Stats)),
			r.Count(totalDeaths(bau.Stats)-totalDeaths(policy.Stats))),
	}
	return r.styles.box.Render(strings.Join(lines, "\n"))
}

// findScenario returns the named scenario of report, or nil
func findScenario(report types.ReportData, name types.ScenarioName) *types.ScenarioReport {
	for i := range report.Scenarios {
		if report.Scenarios[i].Name == name {
			return &report.Scenarios[i]
		}
	}
	return nil
}

func totalDeaths(stats []types.YearlyStatistic) int {
	n := 0
	for _, st := range stats {
		n += st.Deaths
	}
	return n
}

// Report renders parameters, both statistics tables, the prevalence table and the summary
func (r *Renderer) Report(report types.ReportData) string {
	parts := []string{r.Parameters(report)}

	var bau, policy types.PrevalenceSeries
	for _, s := range report.Scenarios {
		parts = append(parts, r.StatsTable(s.Name.Title(), s.Stats))
		switch s.Name {
		case types.ScenarioBAU:
			bau = s.Prevalence
		case types.ScenarioPolicy:
			policy = s.Prevalence
		}
	}

	parts = append(parts, r.PrevalenceTable(bau, policy))
	if summary := r.Summary(report); summary != "" {
		parts = append(parts, summary)
	}
	return strings.Join(parts, "\n\n") + "\n"
}
