package scraper

import (
	"fmt"
	"time"

	"pagescraper/pkg/models"
)

// State is the position of a page in its probe loop
type State int

const (
	StateProbing State = iota
	StateStopped
)

func (s State) String() string {
	if s == StateProbing {
		return "probing"
	}
	return "stopped"
}

// StopReason records why a page's probe loop ended
type StopReason int

const (
	ReasonNone StopReason = iota
	ReasonNotFound
	ReasonHTTPError
	ReasonTransportError
	ReasonWriteError
	ReasonDirectoryError
	ReasonCapReached
	ReasonCanceled
)

func (r StopReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNotFound:
		return "not_found"
	case ReasonHTTPError:
		return "http_error"
	case ReasonTransportError:
		return "transport_error"
	case ReasonWriteError:
		return "write_error"
	case ReasonDirectoryError:
		return "directory_error"
	case ReasonCapReached:
		return "cap_reached"
	case ReasonCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// PageResult is what processing one page produced. It is a plain value so
// pages can run on separate workers without sharing counters.
type PageResult struct {
	Page  models.PageTarget
	State State
	// Reason is set once State is StateStopped
	Reason StopReason
	// StatusCode is the HTTP status behind ReasonHTTPError
	StatusCode int
	// Err is the failure behind error reasons, nil otherwise
	Err error

	// Successes counts downloaded plus skipped images
	Successes  int
	Downloaded int
	Skipped    int
	// Requests counts HTTP attempts, retries included
	Requests int
	// LastIndex is the image index at which the loop stopped
	LastIndex int
	Bytes     int64
	Duration  time.Duration
}

// Describe renders the stop reason as an operator-facing sentence
func (r PageResult) Describe() string {
	switch r.Reason {
	case ReasonNotFound:
		if r.LastIndex == 1 {
			return "no images found for this page"
		}
		return fmt.Sprintf("end of sequence, %d images collected", r.Successes)
	case ReasonHTTPError:
		return fmt.Sprintf("stopped on HTTP status %d at image %d", r.StatusCode, r.LastIndex)
	case ReasonTransportError:
		return fmt.Sprintf("stopped on transport error at image %d", r.LastIndex)
	case ReasonWriteError:
		return fmt.Sprintf("stopped on write error at image %d", r.LastIndex)
	case ReasonDirectoryError:
		return "page skipped, directory could not be created"
	case ReasonCapReached:
		return fmt.Sprintf("reached cap of %d images, cap may be too low", r.LastIndex)
	case ReasonCanceled:
		return "canceled"
	default:
		return "still probing"
	}
}

// RunSummary aggregates the page results of one run, in page order
type RunSummary struct {
	RunID    string
	Pages    []PageResult
	Canceled bool
	Duration time.Duration
}

// TotalSuccesses is the sum of downloaded and skipped images across pages
func (s RunSummary) TotalSuccesses() int {
	total := 0
	for _, p := range s.Pages {
		total += p.Successes
	}
	return total
}

// TotalDownloaded is the number of files written during the run
func (s RunSummary) TotalDownloaded() int {
	total := 0
	for _, p := range s.Pages {
		total += p.Downloaded
	}
	return total
}

// TotalSkipped is the number of images already present on disk
func (s RunSummary) TotalSkipped() int {
	total := 0
	for _, p := range s.Pages {
		total += p.Skipped
	}
	return total
}

// TotalRequests is the number of HTTP attempts issued
func (s RunSummary) TotalRequests() int {
	total := 0
	for _, p := range s.Pages {
		total += p.Requests
	}
	return total
}

// PagesWith returns the page numbers that stopped for reason
func (s RunSummary) PagesWith(reason StopReason) []int {
	var pages []int
	for _, p := range s.Pages {
		if p.Reason == reason {
			pages = append(pages, p.Page.Number)
		}
	}
	return pages
}
