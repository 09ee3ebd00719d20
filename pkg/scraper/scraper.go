package scraper

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"pagescraper/internal/pagepool"
	"pagescraper/pkg/config"
	errs "pagescraper/pkg/errors"
	"pagescraper/pkg/fetch"
	"pagescraper/pkg/logger"
	"pagescraper/pkg/models"
	"pagescraper/pkg/ratelimit"
	"pagescraper/pkg/retry"
	"pagescraper/pkg/storage"
)

// Storage is the part of the output tree the loop touches
type Storage interface {
	EnsurePageDir(dir string) error
	Exists(path string) bool
	Write(path string, r io.Reader) (int64, error)
}

// Scraper runs the page × image fetch loop
type Scraper struct {
	target      config.TargetConfig
	outputRoot  string
	concurrency int
	fetcher     fetch.Fetcher
	storage     Storage
	retry       *retry.Config
	logger      logger.Logger
}

// New validates cfg, creates the output root and wires the HTTP client.
// Nothing touches the network or the filesystem if validation fails.
func New(cfg *config.Config, log logger.Logger) (*Scraper, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	if err := cfg.Validate(); err != nil {
		return nil, errs.New(errs.ErrorTypeConfig, 0, "invalid configuration", err)
	}

	manager, err := storage.NewManager(cfg.Output.BaseDirectory, cfg.Download.ChunkSize)
	if err != nil {
		log.WithError(err).WithField("output_dir", cfg.Output.BaseDirectory).Error("Failed to create output directory")
		return nil, err
	}
	log.WithField("output_dir", manager.Root()).Info("Output directory ready")

	client := fetch.NewClient(cfg.Download.Timeout, log,
		fetch.WithUserAgent(cfg.Download.UserAgent),
		fetch.WithLimiter(ratelimit.FromSettings(cfg.RateLimit)),
	)

	return &Scraper{
		target:      cfg.Target,
		outputRoot:  cfg.Output.BaseDirectory,
		concurrency: cfg.Download.ConcurrentPages,
		fetcher:     client,
		storage:     manager,
		retry:       retry.FromSettings(cfg.Retry, log),
		logger:      log,
	}, nil
}

// NewWithDeps builds a Scraper around caller-supplied collaborators.
// target is assumed to be valid already.
func NewWithDeps(target config.TargetConfig, outputRoot string, fetcher fetch.Fetcher, store Storage, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scraper{
		target:      target,
		outputRoot:  outputRoot,
		concurrency: 1,
		fetcher:     fetcher,
		storage:     store,
		retry:       retry.DefaultConfig(),
		logger:      log,
	}
}

// SetConcurrency sets how many pages may be processed at once
func (s *Scraper) SetConcurrency(n int) {
	s.concurrency = n
}

// SetRetry replaces the retry policy used for each image request
func (s *Scraper) SetRetry(cfg *retry.Config) {
	s.retry = cfg
}

// Run processes every configured page and returns the results in page order.
// Only ctx cancellation ends a run early.
func (s *Scraper) Run(ctx context.Context) RunSummary {
	start := time.Now()
	runID := uuid.NewString()
	log := s.logger.WithField("run_id", runID)

	var pages []int
	for n := s.target.StartPage; n <= s.target.EndPage; n++ {
		pages = append(pages, n)
	}

	log.InfoWithFields("Starting run", map[string]interface{}{
		"base_url":         s.target.BaseURL,
		"start_page":       s.target.StartPage,
		"end_page":         s.target.EndPage,
		"max_images":       s.target.MaxImagesPerPage,
		"concurrent_pages": s.concurrency,
	})

	pool := pagepool.NewWorkerPool(s.concurrency, func(ctx context.Context, page int) PageResult {
		return s.processPage(ctx, page, log)
	}, log)

	summary := RunSummary{
		RunID:    runID,
		Pages:    pool.Run(ctx, pages),
		Canceled: ctx.Err() != nil,
		Duration: time.Since(start),
	}

	log.InfoWithFields("Run finished", map[string]interface{}{
		"pages":      len(summary.Pages),
		"successes":  summary.TotalSuccesses(),
		"downloaded": summary.TotalDownloaded(),
		"skipped":    summary.TotalSkipped(),
		"requests":   summary.TotalRequests(),
		"canceled":   summary.Canceled,
		"duration":   summary.Duration,
	})
	return summary
}

// ProcessPage runs the probe loop for a single page number
func (s *Scraper) ProcessPage(ctx context.Context, number int) PageResult {
	return s.processPage(ctx, number, s.logger)
}

func (s *Scraper) processPage(ctx context.Context, number int, log logger.Logger) PageResult {
	start := time.Now()
	page := models.NewPageTarget(s.target.BaseURL, s.target.PagePrefix, number, s.outputRoot)
	res := PageResult{Page: page, State: StateProbing}
	log = log.WithField("page", page.Segment)

	defer func() {
		res.Duration = time.Since(start)
	}()

	if ctx.Err() != nil {
		res.stop(ReasonCanceled, ctx.Err())
		log.Warn("Page not started, run canceled")
		return res
	}

	if err := s.storage.EnsurePageDir(page.Dir); err != nil {
		res.stop(ReasonDirectoryError, err)
		log.WithError(err).WithField("dir", page.Dir).Error("Failed to create page directory, skipping page")
		return res
	}
	log.WithField("dir", page.Dir).Info("Page directory ready")

	for index := 1; index <= s.target.MaxImagesPerPage && res.State == StateProbing; index++ {
		res.LastIndex = index
		s.probe(ctx, page.Image(index, s.target.ImageExtension), &res, log)
	}

	if res.State == StateProbing {
		res.stop(ReasonCapReached, nil)
		log.WithFields(map[string]interface{}{
			"cap":       s.target.MaxImagesPerPage,
			"successes": res.Successes,
		}).Warn("Reached max images per page without a stop signal, the cap may be too low")
		return res
	}

	fields := map[string]interface{}{
		"reason":    res.Reason.String(),
		"index":     res.LastIndex,
		"successes": res.Successes,
		"requests":  res.Requests,
	}
	switch res.Reason {
	case ReasonNotFound:
		log.InfoWithFields(capitalize(res.Describe()), fields)
	case ReasonCanceled:
		log.WarnWithFields("Page canceled", fields)
	default:
		log.WithError(res.Err).WarnWithFields(capitalize(res.Describe()), fields)
	}
	return res
}

// probe materialises one image and updates res, stopping it when the page is done
func (s *Scraper) probe(ctx context.Context, img models.ImageTarget, res *PageResult, log logger.Logger) {
	if ctx.Err() != nil {
		res.stop(ReasonCanceled, ctx.Err())
		return
	}

	if s.storage.Exists(img.Path) {
		res.Successes++
		res.Skipped++
		log.WithField("file", img.Filename).Info("Skipping existing file")
		return
	}

	resp, err := retry.DoWithResult(ctx, func(ctx context.Context) (*http.Response, error) {
		res.Requests++
		return s.fetcher.Get(ctx, img.URL)
	}, s.retry)
	if err != nil {
		s.classifyFetchError(ctx, res, err)
		return
	}

	n, err := s.storage.Write(img.Path, resp.Body)
	resp.Body.Close()
	res.Bytes += n
	if err != nil {
		if errs.TypeOf(err) == errs.ErrorTypeTransport {
			res.stop(ReasonTransportError, err)
		} else {
			res.stop(ReasonWriteError, err)
		}
		if ctx.Err() != nil {
			res.stop(ReasonCanceled, err)
		}
		return
	}

	res.Successes++
	res.Downloaded++
	log.WithFields(map[string]interface{}{
		"file":  img.Filename,
		"bytes": n,
	}).Info("Downloaded image")
}

func (s *Scraper) classifyFetchError(ctx context.Context, res *PageResult, err error) {
	switch {
	case ctx.Err() != nil || errs.TypeOf(err) == errs.ErrorTypeCanceled:
		res.stop(ReasonCanceled, err)
	case errs.IsNotFound(err):
		res.stop(ReasonNotFound, nil)
	case errs.TypeOf(err) == errs.ErrorTypeHTTPStatus:
		res.stop(ReasonHTTPError, err)
		res.StatusCode = errs.StatusCode(err)
	default:
		res.stop(ReasonTransportError, err)
	}
}

func (r *PageResult) stop(reason StopReason, err error) {
	r.State = StateStopped
	r.Reason = reason
	r.Err = err
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
