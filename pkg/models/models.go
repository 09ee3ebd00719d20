package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PageTarget describes one parent page for a single iteration of the run
type PageTarget struct {
	Number  int    `json:"number"`
	Segment string `json:"segment"`
	BaseURL string `json:"base_url"`
	Dir     string `json:"dir"`
}

// ImageTarget describes one image probe within a page
type ImageTarget struct {
	Index    int    `json:"index"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Path     string `json:"path"`
}

// PageSegment returns the path component naming a page, e.g. "p_3"
func PageSegment(prefix string, number int) string {
	return fmt.Sprintf("%s_%d", prefix, number)
}

// NewPageTarget derives the page URL and page-local directory.
// A trailing slash on baseURL does not produce an empty path segment.
func NewPageTarget(baseURL, prefix string, number int, outputRoot string) PageTarget {
	segment := PageSegment(prefix, number)
	return PageTarget{
		Number:  number,
		Segment: segment,
		BaseURL: strings.TrimRight(baseURL, "/") + "/" + segment,
		Dir:     filepath.Join(outputRoot, segment),
	}
}

// Image derives the target for image index within the page
func (p PageTarget) Image(index int, ext string) ImageTarget {
	filename := fmt.Sprintf("%d%s", index, ext)
	return ImageTarget{
		Index:    index,
		Filename: filename,
		URL:      p.BaseURL + "/" + filename,
		Path:     filepath.Join(p.Dir, filename),
	}
}
