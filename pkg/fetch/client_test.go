package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "pagescraper/pkg/errors"
	"pagescraper/pkg/logger"
	"pagescraper/pkg/ratelimit"
)

func TestGetSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/a/p_1/1.jpg", r.URL.Path)
		w.Write([]byte("image-bytes"))
	}))
	defer server.Close()

	client := NewClient(time.Second, logger.NewNopLogger())
	resp, err := client.Get(context.Background(), server.URL+"/a/p_1/1.jpg")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(body))
}

func TestGetClassifiesStatus(t *testing.T) {
	tests := []struct {
		status   int
		wantType errs.ErrorType
	}{
		{http.StatusNotFound, errs.ErrorTypeNotFound},
		{http.StatusForbidden, errs.ErrorTypeHTTPStatus},
		{http.StatusInternalServerError, errs.ErrorTypeHTTPStatus},
		{http.StatusNoContent, errs.ErrorTypeHTTPStatus},
		{http.StatusTooManyRequests, errs.ErrorTypeHTTPStatus},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(time.Second, logger.NewNopLogger())
			resp, err := client.Get(context.Background(), server.URL)
			assert.Nil(t, resp)
			require.Error(t, err)
			assert.Equal(t, tt.wantType, errs.TypeOf(err))
			assert.Equal(t, tt.status, errs.StatusCode(err))
		})
	}
}

func TestGetTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(time.Second, logger.NewNopLogger())
	_, err := client.Get(context.Background(), url)
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeTransport, errs.TypeOf(err))
}

func TestGetTimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(50*time.Millisecond, logger.NewNopLogger())
	_, err := client.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeTransport, errs.TypeOf(err))
	assert.Contains(t, err.Error(), "timed out")
}

func TestGetCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(time.Second, logger.NewNopLogger())
	_, err := client.Get(ctx, server.URL)
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeCanceled, errs.TypeOf(err))
}

func TestUserAgentHeader(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	client := NewClient(time.Second, logger.NewNopLogger(), WithUserAgent("pagescraper-test/1.0"))
	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "pagescraper-test/1.0", got)
}

func TestNoRetryByDefault(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(time.Second, logger.NewNopLogger())
	_, err := client.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestLimiterCancellation(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	limiter := ratelimit.New(0.001, 1)
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := NewClient(time.Second, logger.NewNopLogger(), WithLimiter(limiter))
	_, err := client.Get(ctx, server.URL)
	assert.Equal(t, errs.ErrorTypeCanceled, errs.TypeOf(err))
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestRequestsAreLogged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	tl := logger.NewTestLogger()
	client := NewClient(time.Second, tl)
	_, _ = client.Get(context.Background(), server.URL+"/x.jpg")

	msg, ok := tl.FindMessage("HTTP request completed")
	require.True(t, ok)
	assert.Equal(t, 404, msg.Fields["status_code"])
	assert.Equal(t, server.URL+"/x.jpg", msg.Fields["url"])
}

func TestStalledBodyTimesOut(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("partial"))
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(100*time.Millisecond, logger.NewNopLogger())
	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	start := time.Now()
	body, err := io.ReadAll(resp.Body)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBodyIdle))
	assert.Equal(t, "partial", string(body))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSlowBodyThatKeepsFlowingSucceeds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 5; i++ {
			w.Write([]byte("chunk"))
			w.(http.Flusher).Flush()
			time.Sleep(40 * time.Millisecond)
		}
	}))
	defer server.Close()

	client := NewClient(150*time.Millisecond, logger.NewNopLogger())
	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("chunk", 5), string(body))
}
