package session

import (
	"fmt"
	"html"
	"strings"
)

// TablePage renders markup shaped like the report index: a wpDataTable whose
// body holds rows, followed by a DataTables-style pager. When hasNext is false
// the next control carries the "disabled" class.
func TablePage(rows [][]string, hasNext bool) string {
	var b strings.Builder
	b.WriteString(`<html><head><title>Report Index</title></head><body>`)
	b.WriteString(`<table id="table_1" class="display wpDataTable"><thead><tr>`)
	for _, h := range []string{"Link", "Occurred", "City", "State", "Country", "Shape", "Summary", "Reported", "Media", "Explanation"} {
		fmt.Fprintf(&b, "<th>%s</th>", h)
	}
	b.WriteString(`</tr></thead><tbody>`)
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(cell))
		}
		b.WriteString("</tr>")
	}
	b.WriteString(`</tbody></table><div class="dataTables_paginate">`)
	b.WriteString(`<a class="paginate_button previous">Previous</a>`)
	if hasNext {
		b.WriteString(`<a class="paginate_button next" tabindex="0">Next</a>`)
	} else {
		b.WriteString(`<a class="paginate_button next disabled">Next</a>`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// ReportRow returns a ten-cell row whose cells are prefixed with id.
func ReportRow(id string) []string {
	return []string{
		"Open " + id,
		id + " 2024-01-01 21:00",
		id + " City",
		"CA",
		"USA",
		"Light",
		"Summary for " + id,
		"2024-01-02",
		"Y",
		"",
	}
}
