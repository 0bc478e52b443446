package monitor

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
)

//go:generate mockgen -destination=mock_source.go -package=monitor github.com/iafilius/WormChart/src/monitor Source

// Source yields the raw progress CSV for one cycle. The caller closes the reader.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// FileSource reads a local CSV.
type FileSource struct {
	Path string
}

func (s FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.Wrap(err, "open progress file")
	}
	return f, nil
}

func (s FileSource) String() string { return s.Path }

// DefaultHTTPTimeout bounds one passive GET of the CSV.
const DefaultHTTPTimeout = 30 * time.Second

// HTTPSource fetches the CSV with a plain GET. Any non-2xx status is a fetch failure.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource builds an HTTPSource whose client times out after timeout (DefaultHTTPTimeout when <= 0).
func NewHTTPSource(rawURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &HTTPSource{URL: rawURL, Client: &http.Client{Timeout: timeout}}
}

func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", s.URL)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, errors.Wrapf(ErrBadStatus, "get %s: %s", s.URL, resp.Status)
	}
	return resp.Body, nil
}

func (s *HTTPSource) String() string { return s.URL }

// ErrBadStatus marks a non-2xx HTTP response.
var ErrBadStatus = errors.New("unexpected http status")

// NewSource picks an HTTPSource for http(s) URLs and a FileSource for anything else
// (plain paths and file:// URLs).
func NewSource(location string, timeout time.Duration) (Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("empty data source")
	}
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// len==1 keeps Windows drive letters ("C:\data.csv") on the file path
		return FileSource{Path: location}, nil
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return NewHTTPSource(location, timeout), nil
	case "file":
		p := u.Path
		if p == "" {
			p = u.Opaque
		}
		return FileSource{Path: p}, nil
	}
	return nil, errors.Errorf("unsupported data source scheme %q", u.Scheme)
}
