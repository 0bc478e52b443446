package monitor

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSourceFetchesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method %s", r.Method)
		}
		_, _ = io.WriteString(w, "timestamp,amount\n2025-08-01 00:00:00,1\n")
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, time.Second)
	rc, err := src.Open(context.Background())
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(b), "2025-08-01")
	assert.Equal(t, srv.URL, src.String())
}

func TestHTTPSourceNon2xxIsFailure(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusMovedPermanently} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if code == http.StatusMovedPermanently {
				// a redirect with no Location is returned to the caller as-is
				w.WriteHeader(code)
				return
			}
			http.Error(w, "nope", code)
		}))
		_, err := NewHTTPSource(srv.URL, time.Second).Open(context.Background())
		srv.Close()
		require.Error(t, err, "status %d", code)
		assert.True(t, errors.Is(err, ErrBadStatus), "status %d: %v", code, err)
	}
}

func TestHTTPSourceHonoursContext(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewHTTPSource(srv.URL, 0).Open(ctx)
	assert.Error(t, err)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.csv")
	require.NoError(t, os.WriteFile(path, []byte("timestamp,amount\n"), 0o644))

	rc, err := FileSource{Path: path}.Open(context.Background())
	require.NoError(t, err)
	rc.Close()

	_, err = FileSource{Path: path + ".missing"}.Open(context.Background())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = FileSource{Path: path}.Open(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSourcePicksByScheme(t *testing.T) {
	cases := []struct {
		in       string
		wantHTTP bool
		wantPath string
	}{
		{"progress.csv", false, "progress.csv"},
		{"/var/data/progress.csv", false, "/var/data/progress.csv"},
		{"file:///var/data/progress.csv", false, "/var/data/progress.csv"},
		{`C:\data\progress.csv`, false, `C:\data\progress.csv`},
		{"http://example.org/progress.csv", true, ""},
		{"HTTPS://example.org/progress.csv", true, ""},
	}
	for _, tc := range cases {
		src, err := NewSource(tc.in, 0)
		require.NoError(t, err, tc.in)
		if tc.wantHTTP {
			_, ok := src.(*HTTPSource)
			assert.True(t, ok, "%s should be http", tc.in)
			continue
		}
		fs, ok := src.(FileSource)
		require.True(t, ok, "%s should be file", tc.in)
		assert.Equal(t, tc.wantPath, fs.Path)
	}

	_, err := NewSource("  ", 0)
	assert.Error(t, err)
	_, err = NewSource("ftp://example.org/x.csv", 0)
	assert.Error(t, err)
}
