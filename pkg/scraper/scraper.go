package scraper

import (
	"context"
	"fmt"
	"time"

	"nuforcscraper/pkg/config"
	errs "nuforcscraper/pkg/errors"
	"nuforcscraper/pkg/export"
	"nuforcscraper/pkg/extractor"
	"nuforcscraper/pkg/logger"
	"nuforcscraper/pkg/pagination"
	"nuforcscraper/pkg/session"
	"nuforcscraper/pkg/settle"
)

// Result describes a finished run
type Result struct {
	export.Summary
	// Written reports whether the export file was flushed
	Written bool
}

// Scraper orchestrates one export run
type Scraper struct {
	config   *config.Config
	opener   session.Opener
	settler  settle.Settler
	reporter Reporter
	logger   logger.Logger
	runID    string
	now      func() time.Time
}

// New creates a new Scraper instance
func New(cfg *config.Config, opener session.Opener, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	runID := logger.NewRunID()

	return &Scraper{
		config:   cfg,
		opener:   opener,
		settler:  settle.Delay(cfg.Scrape.SettleDelay),
		reporter: nopReporter{},
		logger:   log.WithField("run_id", runID),
		runID:    runID,
		now:      time.Now,
	}
}

// SetReporter sets the receiver of per-page progress
func (s *Scraper) SetReporter(r Reporter) {
	if r == nil {
		r = nopReporter{}
	}
	s.reporter = r
}

// SetSettler replaces the settle wait derived from scrape.settle_delay
func (s *Scraper) SetSettler(st settle.Settler) {
	s.settler = st
}

// RunID returns the identifier attached to this run's logs and summary
func (s *Scraper) RunID() string {
	return s.runID
}

// Run performs the export. The session is closed before the file is written,
// on every path. A returned error means no export was written, except when a
// structure error is tolerated by configuration.
func (s *Scraper) Run(ctx context.Context) (*Result, error) {
	cfg := s.config
	result := &Result{Summary: export.Summary{
		RunID:       s.runID,
		StartURL:    cfg.Target.URL,
		OutputPath:  cfg.Output.Path,
		RowsPerPage: []int{},
		StartedAt:   s.now(),
	}}

	logger.LogComponentStart(s.logger, "scraper", map[string]interface{}{
		"url":       cfg.Target.URL,
		"max_pages": cfg.Scrape.MaxPages,
		"output":    cfg.Output.Path,
	})

	sess, err := s.opener(ctx)
	if err != nil {
		result.FinishedAt = s.now()
		result.Error = err.Error()
		s.logger.WithError(err).Error("Failed to open renderer session")
		return result, fmt.Errorf("failed to open renderer session: %w", err)
	}

	acc := export.NewAccumulator(cfg.DelimiterRune())
	driver := pagination.NewDriver(sess, pagination.Options{
		TableSelector:   cfg.Target.TableSelector,
		NextSelector:    cfg.Target.NextSelector,
		TableTimeout:    cfg.Scrape.TableTimeout,
		ClickAttempts:   cfg.Scrape.ClickAttempts,
		ClickRetryDelay: cfg.Scrape.ClickRetryDelay,
		Settler:         s.settler,
		Logger:          s.logger,
	})
	ex := extractor.New(cfg.Target.TableSelector, s.settler, s.logger)

	runErr := s.traverse(ctx, sess, driver, ex, acc, result)

	if err := sess.Quit(); err != nil {
		s.logger.WithError(err).Warn("Failed to close renderer session")
	}

	result.StopReason = string(driver.StopReason())
	result.TotalRows = acc.Len()
	logger.LogComponentStop(s.logger, "scraper", result.StopReason)

	if runErr != nil {
		result.Error = runErr.Error()
		if !s.tolerated(runErr) {
			result.FinishedAt = s.now()
			s.logger.WithError(runErr).Error("Export aborted, nothing written")
			return result, runErr
		}
		s.logger.WithError(runErr).Warn("Table structure changed, writing rows gathered so far")
	}

	if err := acc.Flush(cfg.Output.Path); err != nil {
		result.FinishedAt = s.now()
		result.Error = err.Error()
		s.logger.WithError(err).Error("Failed to write export")
		return result, err
	}
	result.Written = true
	result.FinishedAt = s.now()

	s.logger.InfoWithFields(fmt.Sprintf("Wrote %d total rows to %s", result.TotalRows, cfg.Output.Path), map[string]interface{}{
		"rows":  result.TotalRows,
		"pages": result.Pages,
		"path":  cfg.Output.Path,
	})

	if cfg.Output.WriteSummary {
		if err := export.WriteSummary(cfg.Output.Path, &result.Summary); err != nil {
			s.logger.WithError(err).Error("Failed to write run summary")
			return result, err
		}
	}

	return result, nil
}

// traverse visits at most MaxPages pages. Advance is only attempted when
// another page is still allowed.
func (s *Scraper) traverse(ctx context.Context, sess session.Session, driver *pagination.Driver, ex *extractor.Extractor, acc *export.Accumulator, result *Result) error {
	cfg := s.config

	if err := driver.Start(ctx, cfg.Target.URL); err != nil {
		s.logger.WithError(err).Error("Start page unavailable")
		return err
	}

	for page := 1; page <= cfg.Scrape.MaxPages; page++ {
		driver.BeginPage()
		s.logger.InfoWithFields(fmt.Sprintf("Scraping page %d", page), map[string]interface{}{
			"page": page,
		})

		extracted, err := ex.Extract(ctx, sess)
		if err != nil {
			if errs.Is(err, errs.ErrorTypeTableStructure) {
				driver.Finish(pagination.StopTableStructure)
			} else {
				driver.Finish(pagination.StopCancelled)
			}
			return fmt.Errorf("page %d: %w", page, err)
		}

		if err := acc.Append(extracted.Records...); err != nil {
			driver.Finish(pagination.StopCancelled)
			return err
		}

		rows := len(extracted.Records)
		result.Pages = page
		result.RowsPerPage = append(result.RowsPerPage, rows)
		result.SkippedRows += extracted.Skipped

		logger.LogPageScraped(s.logger, page, rows, extracted.Skipped, acc.Len())
		s.reporter.PageScraped(page, rows, acc.Len())

		if page == cfg.Scrape.MaxPages {
			driver.Finish(pagination.StopPageLimit)
			break
		}
		if !driver.Advance(ctx) {
			break
		}
	}

	if err := ctx.Err(); err != nil {
		driver.Finish(pagination.StopCancelled)
		return err
	}
	return nil
}

func (s *Scraper) tolerated(err error) bool {
	return s.config.Scrape.PartialOnStructureError && errs.Is(err, errs.ErrorTypeTableStructure)
}
