package ui

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
	"pagescraper/pkg/scraper"
)

var (
	accent  = lipgloss.Color("#00BFFF")
	good    = lipgloss.Color("#39D353")
	caution = lipgloss.Color("#FFB000")
	bad     = lipgloss.Color("#FF5555")
)

// reasonColor picks the colour a stop reason is rendered in
func reasonColor(reason scraper.StopReason) lipgloss.Color {
	switch reason {
	case scraper.ReasonNotFound:
		return good
	case scraper.ReasonCapReached, scraper.ReasonCanceled:
		return caution
	default:
		return bad
	}
}

// RenderSummary formats the per-page table and the run totals
func RenderSummary(summary scraper.RunSummary, color bool) string {
	r := lipgloss.NewRenderer(io.Discard)
	if color {
		r.SetColorProfile(termenv.TrueColor)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	header := r.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	cell := r.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(summary.Pages))
	for _, p := range summary.Pages {
		rows = append(rows, []string{
			p.Page.Segment,
			p.Reason.String(),
			strconv.Itoa(p.Downloaded),
			strconv.Itoa(p.Skipped),
			strconv.Itoa(p.Requests),
			p.Describe(),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.NewStyle().Foreground(accent)).
		Headers("PAGE", "STOPPED", "DOWNLOADED", "SKIPPED", "REQUESTS", "DETAIL").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if col == 1 && row >= 0 && row < len(summary.Pages) {
				return cell.Foreground(reasonColor(summary.Pages[row].Reason))
			}
			return cell
		})

	totals := fmt.Sprintf("%d pages, %d images (%d downloaded, %d already present), %d requests in %s",
		len(summary.Pages),
		summary.TotalSuccesses(),
		summary.TotalDownloaded(),
		summary.TotalSkipped(),
		summary.TotalRequests(),
		summary.Duration.Round(time.Millisecond),
	)

	out := t.Render() + "\n" + r.NewStyle().Bold(true).Render(totals) + "\n"
	if capped := summary.PagesWith(scraper.ReasonCapReached); len(capped) > 0 {
		out += r.NewStyle().Foreground(caution).
			Render(fmt.Sprintf("Cap reached on pages %v; consider raising max_images_per_page", capped)) + "\n"
	}
	if summary.Canceled {
		out += r.NewStyle().Foreground(caution).Render("Run canceled before all pages finished") + "\n"
	}
	return out
}

// PrintSummary writes the summary to the console output
func PrintSummary(summary scraper.RunSummary) {
	fmt.Fprint(out, RenderSummary(summary, colorEnabled))
}
