package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pagescraper/pkg/models"
	"pagescraper/pkg/scraper"
)

func sampleSummary() scraper.RunSummary {
	return scraper.RunSummary{
		RunID: "run",
		Pages: []scraper.PageResult{
			{
				Page:       models.NewPageTarget("http://x/a", "p", 1, "out"),
				State:      scraper.StateStopped,
				Reason:     scraper.ReasonNotFound,
				Successes:  2,
				Downloaded: 2,
				Requests:   3,
				LastIndex:  3,
			},
			{
				Page:       models.NewPageTarget("http://x/a", "p", 2, "out"),
				State:      scraper.StateStopped,
				Reason:     scraper.ReasonCapReached,
				Successes:  5,
				Downloaded: 4,
				Skipped:    1,
				Requests:   4,
				LastIndex:  5,
			},
		},
		Duration: 1500 * time.Millisecond,
	}
}

func TestRenderSummaryPlain(t *testing.T) {
	out := RenderSummary(sampleSummary(), false)

	assert.NotContains(t, out, "\033[")
	assert.Contains(t, out, "p_1")
	assert.Contains(t, out, "not_found")
	assert.Contains(t, out, "end of sequence, 2 images collected")
	assert.Contains(t, out, "cap_reached")
	assert.Contains(t, out, "2 pages, 7 images (6 downloaded, 1 already present), 7 requests")
	assert.Contains(t, out, "Cap reached on pages [2]")
	assert.NotContains(t, out, "canceled before")
}

func TestRenderSummaryCanceled(t *testing.T) {
	s := sampleSummary()
	s.Canceled = true

	assert.Contains(t, RenderSummary(s, false), "Run canceled before all pages finished")
}

func TestPrintHelpersRespectColorAndQuiet(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetQuietMode(false) })

	assert.False(t, ColorEnabled(), "buffers are not terminals")

	PrintSuccess("done")
	PrintInfo("Pages", "1-3")
	assert.Equal(t, "done\nPages: 1-3\n", buf.String())

	buf.Reset()
	SetQuietMode(true)
	PrintSuccess("hidden")
	PrintBanner()
	PrintError("Failed", "boom")
	assert.Equal(t, "Failed: boom\n", buf.String())
	assert.False(t, strings.Contains(buf.String(), "hidden"))
}
