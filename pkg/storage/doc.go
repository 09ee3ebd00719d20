// Package storage manages the on-disk output tree of a scrape run.
//
// Layout is {root}/{prefix}_{n}/{index}{ext}. The root is created once and a
// failure there aborts the run; page directories are created per page and a
// failure there only skips that page. Files are streamed straight to their
// final path in fixed-size chunks.
package storage
