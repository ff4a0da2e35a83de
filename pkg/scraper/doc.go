// Package scraper runs one export: it opens a renderer session, walks the
// paginated report index page by page, accumulates every row and writes the
// export file once the session is closed.
//
// Basic usage:
//
//	s := scraper.New(cfg, browser.Opener(browser.OptionsFromConfig(cfg), log), log)
//	s.SetReporter(ui.NewPageTracker())
//	result, err := s.Run(ctx)
//
// A run fails without writing anything when the start page cannot be loaded,
// when the table never appears or when a page lacks the table structure. The
// last case can instead flush the rows gathered so far by setting
// scrape.partial_on_structure_error.
package scraper
