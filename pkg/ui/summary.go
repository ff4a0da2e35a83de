package ui

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"nuforcscraper/pkg/export"
)

// NewTable returns a table writer styled for this CLI and mirrored to the
// current output.
func NewTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(writer(false))
	return t
}

// PrintSummary renders the outcome of a run as a two-column table.
func PrintSummary(s *export.Summary) {
	t := NewTable()
	t.SetTitle("Export summary")
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows(SummaryRows(s))
	t.Render()
}

// SummaryRows returns the rows PrintSummary renders
func SummaryRows(s *export.Summary) []table.Row {
	rows := []table.Row{
		{"Run", s.RunID},
		{"Start URL", s.StartURL},
		{"Pages", s.Pages},
		{"Rows", s.TotalRows},
		{"Skipped rows", s.SkippedRows},
		{"Stop reason", strings.ReplaceAll(s.StopReason, "_", " ")},
		{"Duration", FormatDuration(s.Duration())},
		{"Output", s.OutputPath},
	}
	if s.Error != "" {
		rows = append(rows, table.Row{"Error", s.Error})
	}
	if minutes := s.Duration().Minutes(); minutes > 0 {
		rows = append(rows, table.Row{"Rows per minute", fmt.Sprintf("%.1f", float64(s.TotalRows)/minutes)})
	}
	return rows
}
