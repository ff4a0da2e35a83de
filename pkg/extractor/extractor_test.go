package extractor

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "nuforcscraper/pkg/errors"
	"nuforcscraper/pkg/logger"
	"nuforcscraper/pkg/models"
	"nuforcscraper/pkg/session"
	"nuforcscraper/pkg/settle"
)

func TestParseTwoRows(t *testing.T) {
	markup := session.TablePage([][]string{
		session.ReportRow("a"),
		session.ReportRow("b"),
	}, true)

	page, err := New("", nil, nil).Parse(markup)
	require.NoError(t, err)

	want := []models.Record{
		models.RecordFromCells(session.ReportRow("a")),
		models.RecordFromCells(session.ReportRow("b")),
	}
	if diff := cmp.Diff(want, page.Records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 0, page.Skipped)
}

func TestParseSkipsShortRows(t *testing.T) {
	markup := session.TablePage([][]string{
		{"only", "three", "cells"},
		session.ReportRow("a"),
		{"", "", "", "", "", "", "", ""},
	}, false)

	page, err := New("", nil, nil).Parse(markup)
	require.NoError(t, err)

	require.Len(t, page.Records, 1)
	assert.Equal(t, "Open a", page.Records[0].Link)
	assert.Equal(t, 2, page.Skipped)
}

func TestParseNineCellRow(t *testing.T) {
	row := session.ReportRow("n")[:9]
	page, err := New("", nil, nil).Parse(session.TablePage([][]string{row}, false))
	require.NoError(t, err)

	require.Len(t, page.Records, 1)
	assert.Equal(t, "Y", page.Records[0].Media)
	assert.Equal(t, "", page.Records[0].Explanation)
}

func TestParseEmptyBody(t *testing.T) {
	page, err := New("", nil, nil).Parse(session.TablePage(nil, false))
	require.NoError(t, err)
	assert.Empty(t, page.Records)
}

func TestParseIsIdempotent(t *testing.T) {
	markup := session.TablePage([][]string{session.ReportRow("a"), session.ReportRow("b")}, true)
	e := New("", nil, nil)

	first, err := e.Parse(markup)
	require.NoError(t, err)
	second, err := e.Parse(markup)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("parsing the same markup twice differs (-first +second):\n%s", diff)
	}
}

func TestParseMissingTable(t *testing.T) {
	_, err := New("", nil, nil).Parse(`<html><body><p>maintenance</p></body></html>`)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrorTypeTableStructure))
}

func TestParseMissingBody(t *testing.T) {
	markup := `<html><body><table class="wpDataTable"><thead><tr><th>Link</th></tr></thead></table></body></html>`

	// The HTML parser inserts tbody only around bare tr elements.
	_, err := New("", nil, nil).Parse(markup)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrorTypeTableStructure))
}

func TestParseUsesFirstMatchingTable(t *testing.T) {
	first := session.TablePage([][]string{session.ReportRow("first")}, false)
	second := strings.Replace(session.TablePage([][]string{session.ReportRow("second")}, false), `id="table_1"`, `id="table_2"`, 1)
	markup := strings.Replace(first, "</body>", extractBody(t, second)+"</body>", 1)

	page, err := New("", nil, nil).Parse(markup)
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "Open first", page.Records[0].Link)
}

func TestParseCustomSelector(t *testing.T) {
	markup := strings.Replace(session.TablePage([][]string{session.ReportRow("a")}, false), "display wpDataTable", "reports", 1)

	_, err := New("", nil, nil).Parse(markup)
	assert.Error(t, err)

	page, err := New("table.reports", nil, nil).Parse(markup)
	require.NoError(t, err)
	assert.Len(t, page.Records, 1)
}

func TestCellText(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want string
	}{
		{"plain", "<td>Phoenix</td>", "Phoenix"},
		{"padded", "<td>   Phoenix \n </td>", "Phoenix"},
		{"nested elements", `<td><a href="/sighting/?id=1">Open</a><span>Report</span></td>`, "Open Report"},
		{"inner whitespace", "<td>Bright\n\n   orb\tover   hills</td>", "Bright orb over hills"},
		{"line break", "<td>first<br>second</td>", "first second"},
		{"empty", "<td></td>", ""},
		{"whitespace only", "<td> \n\t </td>", ""},
		{"script ignored", "<td>Light<script>var x = 1;</script></td>", "Light"},
		{"entities", "<td>Fish &amp; Chips</td>", "Fish & Chips"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			markup := "<table><tbody><tr>" + tt.cell + "</tr></tbody></table>"
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
			require.NoError(t, err)
			assert.Equal(t, tt.want, CellText(doc.Find("td").First()))
		})
	}
}

func TestExtractSettlesBeforeSnapshot(t *testing.T) {
	fake := session.NewFakeFromMarkup(session.TablePage([][]string{session.ReportRow("a")}, false))
	require.NoError(t, fake.Navigate(context.Background(), "http://example.test"))

	counter := &settle.Counter{}
	page, err := New("", counter, logger.NewTestLogger()).Extract(context.Background(), fake)
	require.NoError(t, err)

	assert.Equal(t, 1, counter.Calls)
	assert.Len(t, page.Records, 1)
}

func TestExtractSnapshotFailure(t *testing.T) {
	fake := session.NewFakeFromMarkup(session.TablePage(nil, false))
	require.NoError(t, fake.Navigate(context.Background(), "http://example.test"))
	cause := stderrors.New("target closed")
	fake.SnapshotError = cause

	_, err := New("", nil, nil).Extract(context.Background(), fake)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrorTypeTableStructure))
	assert.ErrorIs(t, err, cause)
}

func TestExtractCancelledWhileSettling(t *testing.T) {
	fake := session.NewFakeFromMarkup(session.TablePage(nil, false))
	require.NoError(t, fake.Navigate(context.Background(), "http://example.test"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New("", settle.Delay(1e9), nil).Extract(ctx, fake)
	assert.ErrorIs(t, err, context.Canceled)
}

func extractBody(t *testing.T, markup string) string {
	t.Helper()
	start := strings.Index(markup, "<body>")
	end := strings.Index(markup, "</body>")
	require.True(t, start >= 0 && end > start)
	return markup[start+len("<body>") : end]
}
