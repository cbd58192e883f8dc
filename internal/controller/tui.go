package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	m "codeapply.dev/pkg/codeapply/internal/model"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	infoStyle  = lipgloss.NewStyle().Faint(true)
	addedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cutStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	tableStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
)

// TUI implements UI using Bubble Tea for interactive display. Narration is
// collected while the run executes and presented together with the summary
// table, which becomes scrollable when it does not fit the terminal.
type TUI struct {
	output io.Writer
	config StartConfig
	lines  []string
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start configures the UI for the coming run and drops narration collected
// by a previous one.
func (p *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config := StartConfig{}
	for _, option := range options {
		option(&config)
	}

	p.config = config
	p.lines = nil

	return nil
}

// Close finalizes the UI.
func (p *TUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed. The interactive viewer already runs
// inside the display calls, so there is nothing left to wait for.
func (p *TUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// DisplayParsedCount records how many file blocks the input contained.
func (p *TUI) DisplayParsedCount(ctx context.Context, count int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.lines = append(p.lines, fmt.Sprintf("Parsed %d files from prompt output", count))

	return nil
}

// DisplayDecision records the narration for one snippet outcome.
func (p *TUI) DisplayDecision(ctx context.Context, decision m.Decision) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.lines = append(p.lines, narrateDecision(decision, p.config)...)

	return nil
}

// DisplayDiff records a colorized unified diff.
func (p *TUI) DisplayDiff(ctx context.Context, _ m.Path, diff string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.lines = append(p.lines, colorizeDiff(diff)...)

	return nil
}

// DisplayCopyOp records the narration for a single file copy.
func (p *TUI) DisplayCopyOp(ctx context.Context, op m.CopyOp) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if line, ok := narrateCopyOp(op, p.config); ok {
		p.lines = append(p.lines, line)
	}

	return nil
}

// DisplaySummary shows the collected narration and the run's outcome table.
func (p *TUI) DisplaySummary(ctx context.Context, report m.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	model := newRunModel(runTitle(report), p.lines, nil, outcomeTable(report))

	return p.present(model)
}

// DisplayReport shows one saved run report.
func (p *TUI) DisplayReport(ctx context.Context, report m.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	model := newRunModel("Report "+shortID(report.ID), nil, reportInfo(report), outcomeTable(report))

	return p.present(model)
}

// DisplayReports shows the saved runs, most recent first.
func (p *TUI) DisplayReports(ctx context.Context, reports []m.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(reports) == 0 {
		_, err := fmt.Fprintln(p.output, "No reports found")
		return err
	}

	model := newRunModel("Saved runs", nil, nil, reportListTable(reports))

	return p.present(model)
}

// present renders the model statically when it fits the terminal and starts
// an interactive program otherwise.
func (p *TUI) present(model runModel) error {
	if f, ok := p.output.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			model.height = height
			model.width = width
		}
	}

	if !model.needsPagination() {
		_, err := fmt.Fprint(p.output, model.View())
		return err
	}

	program := tea.NewProgram(model, tea.WithOutput(p.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

// runModel is the Bubble Tea model shared by summary, report and list views.
type runModel struct {
	title    string
	lines    []string
	info     []string
	table    table.Model
	height   int
	width    int
	quitting bool
}

func newRunModel(title string, lines, info []string, tbl table.Model) runModel {
	return runModel{
		title: title,
		lines: lines,
		info:  info,
		table: tbl,
	}
}

func (rm runModel) Init() tea.Cmd {
	return nil
}

func (rm runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		rm.height = msg.Height
		rm.width = msg.Width
		rm.table.SetHeight(rm.tableHeight())

		return rm, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			rm.quitting = true
			return rm, tea.Quit
		}
	}

	var cmd tea.Cmd
	rm.table, cmd = rm.table.Update(msg)

	return rm, cmd
}

func (rm runModel) View() string {
	if rm.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(rm.title) + "\n")

	for _, line := range rm.info {
		b.WriteString(infoStyle.Render(line) + "\n")
	}

	for _, line := range rm.lines {
		b.WriteString(line + "\n")
	}

	if len(rm.table.Rows()) > 0 {
		b.WriteString(tableStyle.Render(rm.table.View()) + "\n")
	}

	if rm.needsPagination() {
		b.WriteString(infoStyle.Render("↑/k: up | ↓/j: down | g: top | G: bottom | q: quit") + "\n")
	}

	return b.String()
}

// tableHeight reserves room for the title, info and narration lines plus the
// table chrome and key help.
func (rm runModel) tableHeight() int {
	reserved := 1 + len(rm.info) + len(rm.lines) + 6

	available := rm.height - reserved
	if available < 3 {
		return 3
	}

	return available
}

// needsPagination reports whether the view is too large for the terminal.
func (rm runModel) needsPagination() bool {
	if rm.height == 0 {
		return false
	}

	content := 1 + len(rm.info) + len(rm.lines) + len(rm.table.Rows()) + 6

	return content > rm.height
}

// outcomeTable builds the per-file outcome table for a run.
func outcomeTable(report m.RunReport) table.Model {
	columns := []table.Column{
		{Title: "Path", Width: 40},
		{Title: "Action", Width: 14},
		{Title: "Score", Width: 6},
	}

	rows := make([]table.Row, 0, len(report.Outcomes))
	for _, outcome := range report.Outcomes {
		rows = append(rows, table.Row{
			outcome.Path,
			formatAction(outcome.Action, report.DryRun),
			formatScore(outcome),
		})
	}

	return styledTable(columns, rows)
}

// reportListTable builds the one-line-per-run table for the list view.
func reportListTable(reports []m.RunReport) table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Mode", Width: 8},
		{Title: "Target", Width: 28},
		{Title: "Started", Width: 20},
		{Title: "Files", Width: 6},
	}

	rows := make([]table.Row, 0, len(reports))
	for _, report := range reports {
		rows = append(rows, table.Row{
			shortID(report.ID),
			string(report.Mode),
			report.Target,
			report.StartedAt.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d", len(report.Outcomes)),
		})
	}

	return styledTable(columns, rows)
}

func styledTable(columns []table.Column, rows []table.Row) table.Model {
	tbl := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(len(rows)+1),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	tbl.SetStyles(styles)

	return tbl
}

func runTitle(report m.RunReport) string {
	if report.DryRun {
		return fmt.Sprintf("Dry run against %s", report.Target)
	}

	return fmt.Sprintf("Applied to %s", report.Target)
}

func reportInfo(report m.RunReport) []string {
	info := []string{
		fmt.Sprintf("Mode: %s  Target: %s", report.Mode, report.Target),
	}

	if report.Mode == m.ModePrompt {
		info = append(info, fmt.Sprintf("Threshold: %v  Force: %v  Dry run: %v", report.Threshold, report.Force, report.DryRun))
	}

	info = append(info, fmt.Sprintf("Started: %s  Duration: %s", report.StartedAt.Format("2006-01-02 15:04:05"), report.Duration))

	return info
}

// colorizeDiff highlights added and removed lines.
func colorizeDiff(diff string) []string {
	rawLines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	lines := make([]string, 0, len(rawLines))

	for _, line := range rawLines {
		switch {
		case strings.HasPrefix(line, "+"):
			lines = append(lines, addedStyle.Render(line))
		case strings.HasPrefix(line, "-"):
			lines = append(lines, cutStyle.Render(line))
		default:
			lines = append(lines, line)
		}
	}

	return lines
}
