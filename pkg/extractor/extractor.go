// Package extractor turns a rendered report-index page into Records.
//
// Parsing is pure: the same markup always yields the same Records, and the
// extractor keeps no memory of earlier pages.
package extractor

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	errs "nuforcscraper/pkg/errors"
	"nuforcscraper/pkg/logger"
	"nuforcscraper/pkg/models"
	"nuforcscraper/pkg/session"
	"nuforcscraper/pkg/settle"
)

// DefaultTableSelector matches the data table rendered by the report index.
const DefaultTableSelector = "table.wpDataTable"

// Page is the outcome of parsing one rendered page.
type Page struct {
	Records []models.Record
	// Skipped counts body rows with fewer than models.MinCells cells.
	Skipped int
}

// Extractor reads the data table of the current page
type Extractor struct {
	tableSelector string
	settler       settle.Settler
	logger        logger.Logger
}

// New creates an Extractor. An empty tableSelector uses DefaultTableSelector.
func New(tableSelector string, settler settle.Settler, log logger.Logger) *Extractor {
	if tableSelector == "" {
		tableSelector = DefaultTableSelector
	}
	if settler == nil {
		settler = settle.None
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Extractor{
		tableSelector: tableSelector,
		settler:       settler,
		logger:        log,
	}
}

// Extract waits for the page to settle, snapshots it and parses the snapshot.
func (e *Extractor) Extract(ctx context.Context, sess session.Session) (*Page, error) {
	if err := e.settler.Settle(ctx); err != nil {
		return nil, err
	}

	markup, err := sess.Snapshot(ctx)
	if err != nil {
		return nil, errs.TableStructure(err, "cannot read page content")
	}

	return e.Parse(markup)
}

// Parse converts markup into Records, one per qualifying body row in DOM order.
func (e *Extractor) Parse(markup string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, errs.TableStructure(err, "cannot parse page content")
	}

	table := doc.Find(e.tableSelector).First()
	if table.Length() == 0 {
		return nil, errs.TableStructure(nil, "no table matching %q", e.tableSelector)
	}

	body := table.Find("tbody").First()
	if body.Length() == 0 {
		return nil, errs.TableStructure(nil, "table %q has no body", e.tableSelector)
	}

	page := &Page{}
	body.Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < models.MinCells {
			page.Skipped++
			e.logger.DebugWithFields("Skipping short row", map[string]interface{}{
				"row":   i,
				"cells": cells.Length(),
			})
			return
		}

		texts := make([]string, 0, cells.Length())
		cells.Each(func(_ int, cell *goquery.Selection) {
			texts = append(texts, CellText(cell))
		})
		page.Records = append(page.Records, models.RecordFromCells(texts))
	})

	return page, nil
}

// CellText returns the visible text of a cell: each text node trimmed, the
// non-empty pieces joined by a space, and every whitespace run collapsed.
func CellText(cell *goquery.Selection) string {
	var pieces []string
	for _, n := range cell.Nodes {
		collectText(n, &pieces)
	}
	return Normalize(strings.Join(pieces, " "))
}

func collectText(n *html.Node, pieces *[]string) {
	switch n.Type {
	case html.TextNode:
		if t := strings.TrimSpace(n.Data); t != "" {
			*pieces = append(*pieces, t)
		}
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, pieces)
	}
}

// Normalize collapses inner whitespace to single spaces and trims the ends.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
