package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"forge-hq/t3dport/pkg/importer"
	t3derrors "forge-hq/t3dport/pkg/t3d/errors"
)

// DiagnosticView is the JSON form of one diagnostic.
type DiagnosticView struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Document string `json:"document,omitempty"`
	Line     int    `json:"line,omitempty"`
	Object   string `json:"object,omitempty"`
	Cause    string `json:"cause,omitempty"`
}

// ReportView is the JSON form of an import report.
type ReportView struct {
	*importer.Report

	Diagnostics []DiagnosticView `json:"diagnostics"`
	DurationMS  int64            `json:"duration_ms"`
}

// NewReportView builds the JSON form of report.
func NewReportView(report *importer.Report) *ReportView {
	view := &ReportView{
		Report:      report,
		Diagnostics: []DiagnosticView{},
		DurationMS:  report.Duration.Milliseconds(),
	}
	if report.Diagnostics == nil {
		return view
	}
	for _, d := range report.Diagnostics.Errors {
		dv := DiagnosticView{
			Type:     string(d.Type),
			Message:  d.Message,
			Document: d.Document,
			Line:     d.Line,
			Object:   d.Object,
		}
		if d.Err != nil {
			dv.Cause = d.Err.Error()
		}
		view.Diagnostics = append(view.Diagnostics, dv)
	}
	return view
}

// ReportFormatter writes import reports.
type ReportFormatter struct {
	format OutputFormat
	w      io.Writer

	title lipgloss.Style
	label lipgloss.Style
	value lipgloss.Style
	good  lipgloss.Style
	bad   lipgloss.Style
	warn  lipgloss.Style
	muted lipgloss.Style
	box   lipgloss.Style
}

// NewReportFormatter creates a formatter writing to w. Text output is
// styled for w's terminal and plain when w is not one.
func NewReportFormatter(format OutputFormat, w io.Writer) *ReportFormatter {
	r := lipgloss.NewRenderer(w)
	return &ReportFormatter{
		format: format,
		w:      w,
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("36")),
		label:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("33")),
		value:  r.NewStyle().Foreground(lipgloss.Color("35")),
		good:   r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		bad:    r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		warn:   r.NewStyle().Foreground(lipgloss.Color("214")),
		muted:  r.NewStyle().Foreground(lipgloss.Color("244")),
		box:    r.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
	}
}

// Write writes report in the formatter's format.
func (f *ReportFormatter) Write(report *importer.Report) error {
	if f.format == FormatJSON {
		return (&JSONFormatter{Indent: true}).FormatTo(f.w, NewReportView(report))
	}
	_, err := io.WriteString(f.w, f.Text(report))
	return err
}

// Text renders report as styled text.
func (f *ReportFormatter) Text(report *importer.Report) string {
	var b strings.Builder

	status := f.good.Render("✓ complete")
	if len(report.Unresolved) > 0 {
		status = f.warn.Render(fmt.Sprintf("! %d unresolved", len(report.Unresolved)))
	}

	rows := [][2]string{
		{"Run", report.RunID},
		{"Source", report.Source},
		{"Destination", report.Destination},
		{"Documents", fmt.Sprint(report.Documents)},
		{"Constructed", counts(report.Constructed)},
		{"Passes", counts(report.Passes)},
		{"Duration", report.Duration.Round(time.Millisecond).String()},
	}
	if len(report.Skipped) > 0 {
		rows = append(rows, [2]string{"Skipped", counts(report.Skipped)})
	}

	var summary strings.Builder
	summary.WriteString(f.title.Render("Import "+report.Mode.String()) + "  " + status + "\n")
	for i, row := range rows {
		summary.WriteString(f.label.Render(fmt.Sprintf("%-12s", row[0])) + " " + f.value.Render(row[1]))
		if i < len(rows)-1 {
			summary.WriteString("\n")
		}
	}
	b.WriteString(f.box.Render(summary.String()))
	b.WriteString("\n")

	if len(report.Unresolved) > 0 {
		b.WriteString(f.title.Render(fmt.Sprintf("Unresolved (%d)", len(report.Unresolved))) + "\n")
		for _, e := range report.Unresolved {
			b.WriteString("  " + f.bad.Render("✗ "+e.String()) + "\n")
		}
	}

	if len(report.Unsupported) > 0 {
		b.WriteString(f.title.Render(fmt.Sprintf("Unsupported (%d)", len(report.Unsupported))) + "\n")
		for _, msg := range report.Unsupported {
			b.WriteString("  " + f.warn.Render("! "+msg) + "\n")
		}
	}

	if byType := report.DiagnosticCounts(); len(byType) > 0 {
		b.WriteString(f.muted.Render("Diagnostics: "+diagnosticCounts(byType)) + "\n")
	}
	return b.String()
}

// counts formats a count map as "a=1 b=2" in key order.
func counts(m map[string]int) string {
	if len(m) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m[k]))
	}
	return strings.Join(parts, " ")
}

func diagnosticCounts(m map[t3derrors.ErrorType]int) string {
	plain := make(map[string]int, len(m))
	for k, v := range m {
		plain[string(k)] = v
	}
	return counts(plain)
}
