// Package fetch performs the image GET requests of a scrape run.
//
// Only a 200 response counts as success; Get hands the open body back so
// the caller can stream it to disk. Every other outcome is returned as a
// *errors.Error whose type tells the page loop why the page stopped.
package fetch
