// Package scraper implements the page × image fetch loop.
//
// For every page number n in [start, end] the scraper ensures the directory
// {output}/{prefix}_{n} exists, then probes images 1, 2, ... up to the
// configured cap at {base_url}/{prefix}_{n}/{i}{ext}. A file already on disk
// is counted and skipped without a request. The first 404 ends the page;
// any other status or a transport failure ends it too, and is not retried
// unless a retry policy asks for it. Running to the cap is reported so the
// operator can raise it.
//
// Each page yields a PageResult value holding its counters and the reason
// it stopped. Run collects them in page order into a RunSummary.
//
// Usage:
//
//	s, err := scraper.New(cfg, log)
//	if err != nil {
//		return err
//	}
//	summary := s.Run(ctx)
//	for _, page := range summary.Pages {
//		fmt.Println(page.Page.Segment, page.Reason, page.Successes)
//	}
package scraper
