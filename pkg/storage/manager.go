package storage

import (
	"fmt"
	"io"
	"os"

	errs "pagescraper/pkg/errors"
)

// DefaultChunkSize is the buffer size used when streaming a body to disk
const DefaultChunkSize = 8192

// Manager owns the output tree: the root directory and one directory per page
type Manager struct {
	root      string
	chunkSize int
}

// NewManager creates the output root if it is missing. A failure here is fatal to the run.
func NewManager(root string, chunkSize int) (*Manager, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errs.New(errs.ErrorTypeFilesystem, 0,
			fmt.Sprintf("failed to create output directory %q", root), err)
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Manager{root: root, chunkSize: chunkSize}, nil
}

// Root returns the output root directory
func (m *Manager) Root() string {
	return m.root
}

// EnsurePageDir creates a page directory. Pre-existing directories are not an error.
func (m *Manager) EnsurePageDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errs.New(errs.ErrorTypeFilesystem, 0,
			fmt.Sprintf("failed to create page directory %q", dir), err)
	}
	return nil
}

// Exists reports whether anything is present at path. Contents are not inspected.
func (m *Manager) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Write streams r into a new file at path in chunks. There is no temp file:
// if the copy fails part way, the truncated file stays where it is.
// Failures reading r are classified as transport errors, failures writing
// the file as filesystem errors.
func (m *Manager) Write(path string, r io.Reader) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, errs.New(errs.ErrorTypeFilesystem, 0,
			fmt.Sprintf("failed to create file %q", path), err)
	}

	src := &trackingReader{r: r}
	buf := make([]byte, m.chunkSize)
	n, copyErr := io.CopyBuffer(onlyWriter{out}, src, buf)
	closeErr := out.Close()

	if copyErr != nil {
		if src.err != nil {
			return n, errs.New(errs.ErrorTypeTransport, 0,
				fmt.Sprintf("failed reading body for %q", path), src.err)
		}
		return n, errs.New(errs.ErrorTypeFilesystem, 0,
			fmt.Sprintf("failed writing %q", path), copyErr)
	}
	if closeErr != nil {
		return n, errs.New(errs.ErrorTypeFilesystem, 0,
			fmt.Sprintf("failed to close %q", path), closeErr)
	}

	return n, nil
}

// trackingReader remembers the read error so Write can tell it apart from a write error
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}
	return n, err
}

// onlyWriter hides ReaderFrom so io.CopyBuffer uses the chunk buffer
type onlyWriter struct {
	w io.Writer
}

func (o onlyWriter) Write(p []byte) (int, error) {
	return o.w.Write(p)
}
