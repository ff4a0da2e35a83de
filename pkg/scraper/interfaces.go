package scraper

// Reporter receives per-page progress of a run
type Reporter interface {
	PageScraped(page, rows, total int)
}

type nopReporter struct{}

func (nopReporter) PageScraped(page, rows, total int) {}
