package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "pagescraper/pkg/errors"
)

func TestNewManagerCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out", "nested")

	m, err := NewManager(root, 0)
	require.NoError(t, err)
	assert.Equal(t, root, m.Root())
	assert.Equal(t, DefaultChunkSize, m.chunkSize)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Idempotent
	_, err = NewManager(root, 0)
	assert.NoError(t, err)
}

func TestNewManagerFailsWhenRootIsAFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := NewManager(filepath.Join(blocker, "out"), 0)
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeFilesystem, errs.TypeOf(err))
}

func TestEnsurePageDir(t *testing.T) {
	m, err := NewManager(t.TempDir(), 0)
	require.NoError(t, err)

	dir := filepath.Join(m.Root(), "p_1")
	require.NoError(t, m.EnsurePageDir(dir))
	require.NoError(t, m.EnsurePageDir(dir))

	// A regular file where the directory should go
	blocked := filepath.Join(m.Root(), "p_2")
	require.NoError(t, os.WriteFile(blocked, nil, 0644))
	err = m.EnsurePageDir(blocked)
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeFilesystem, errs.TypeOf(err))
}

func TestExists(t *testing.T) {
	m, err := NewManager(t.TempDir(), 0)
	require.NoError(t, err)

	path := filepath.Join(m.Root(), "1.jpg")
	assert.False(t, m.Exists(path))

	require.NoError(t, os.WriteFile(path, nil, 0644))
	assert.True(t, m.Exists(path), "empty files still count as present")
}

type countingReader struct {
	r     io.Reader
	reads int
	max   int
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.reads++
	if len(p) > c.max {
		c.max = len(p)
	}
	return c.r.Read(p)
}

func TestWriteStreamsInChunks(t *testing.T) {
	m, err := NewManager(t.TempDir(), 16)
	require.NoError(t, err)

	body := strings.Repeat("a", 100)
	src := &countingReader{r: strings.NewReader(body)}
	path := filepath.Join(m.Root(), "1.jpg")

	n, err := m.Write(path, src)
	require.NoError(t, err)
	assert.EqualValues(t, 100, n)
	assert.Equal(t, 16, src.max, "reads should use the configured chunk size")
	assert.GreaterOrEqual(t, src.reads, 7)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))
}

type failingReader struct {
	data []byte
	sent bool
}

func (f *failingReader) Read(p []byte) (int, error) {
	if !f.sent {
		f.sent = true
		return copy(p, f.data), nil
	}
	return 0, errors.New("connection reset by peer")
}

func TestWriteLeavesTruncatedFileOnReadFailure(t *testing.T) {
	m, err := NewManager(t.TempDir(), 0)
	require.NoError(t, err)
	path := filepath.Join(m.Root(), "2.jpg")

	n, err := m.Write(path, &failingReader{data: []byte("partial")})
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeTransport, errs.TypeOf(err))
	assert.EqualValues(t, 7, n)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "partial", string(data))

	_, statErr := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(statErr), "no temp file is used")
}

func TestWriteFailsWhenDirectoryMissing(t *testing.T) {
	m, err := NewManager(t.TempDir(), 0)
	require.NoError(t, err)

	_, err = m.Write(filepath.Join(m.Root(), "missing", "1.jpg"), strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeFilesystem, errs.TypeOf(err))
}
