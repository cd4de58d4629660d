package fileio

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxBytes caps how much of a source is read.
const DefaultMaxBytes int64 = 4 << 20

// Option configures a Reader.
type Option func(*Reader)

// WithFS sets the file system used by SourceFromFS sources.
func WithFS(fsys fs.FS) Option {
	return func(r *Reader) {
		r.fs = fsys
	}
}

// WithHTTPClient enables URL sources using client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Reader) {
		r.http = client
	}
}

// WithTimeout bounds URL requests. Local reads have no timeout and only stop
// when the context is done.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Reader) {
		r.timeout = timeout
	}
}

// WithMaxBytes overrides DefaultMaxBytes. Values <= 0 are ignored.
func WithMaxBytes(n int64) Option {
	return func(r *Reader) {
		if n > 0 {
			r.maxBytes = n
		}
	}
}

// Reader turns file handles into text.
type Reader struct {
	fs       fs.FS
	http     *http.Client
	timeout  time.Duration
	maxBytes int64
}

// NewReader constructs a Reader. Without WithHTTPClient, URL sources fail with
// ErrHTTPDisabled.
func NewReader(opts ...Option) *Reader {
	r := &Reader{maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.http != nil && r.timeout > 0 && r.http.Timeout == 0 {
		clone := *r.http
		clone.Timeout = r.timeout
		r.http = &clone
	}
	return r
}

var defaultReader = NewReader()

// ReadText reads src with a Reader that only supports local, upload and
// stream sources.
func ReadText(ctx context.Context, src Source) (string, error) {
	return defaultReader.ReadText(ctx, src)
}

// Result is delivered by ReadTextAsync.
type Result struct {
	Text string
	Err  error
}

// ReadTextAsync starts the read in its own goroutine. The returned channel
// receives exactly one Result and is then closed.
func (r *Reader) ReadTextAsync(ctx context.Context, src Source) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		text, err := r.ReadText(ctx, src)
		out <- Result{Text: text, Err: err}
	}()
	return out
}

// ReadText blocks until src is fully read or ctx is done. Every failure is a
// *ReadError.
func (r *Reader) ReadText(ctx context.Context, src Source) (string, error) {
	if src == nil {
		return "", &ReadError{Err: errors.New("source is nil")}
	}
	if err := ctx.Err(); err != nil {
		return "", readError(src, err)
	}

	rc, err := r.open(ctx, src)
	if err != nil {
		return "", readError(src, err)
	}
	defer func() {
		_ = rc.Close()
	}()

	data, err := r.readAll(ctx, rc)
	if err != nil {
		return "", readError(src, err)
	}
	if !isText(data) {
		return "", readError(src, ErrNotText)
	}
	return string(data), nil
}

func (r *Reader) open(ctx context.Context, src Source) (io.ReadCloser, error) {
	if o, ok := src.(opener); ok {
		return o.open()
	}

	switch src.Kind() {
	case SourceKindFile:
		if src.Location() == "" {
			return nil, errors.New("file path is required")
		}
		abs, err := filepath.Abs(src.Location())
		if err != nil {
			return nil, err
		}
		return os.Open(abs)
	case SourceKindFS:
		if r.fs == nil {
			return nil, errors.New("fs is nil")
		}
		if src.Location() == "" {
			return nil, errors.New("fs path is required")
		}
		return r.fs.Open(src.Location())
	case SourceKindURL:
		return r.openHTTP(ctx, src.Location())
	default:
		return nil, ErrUnsupportedSource
	}
}

func (r *Reader) openHTTP(ctx context.Context, url string) (io.ReadCloser, error) {
	if r.http == nil {
		return nil, ErrHTTPDisabled
	}
	if url == "" {
		return nil, errors.New("url is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, errors.New("unexpected status " + resp.Status)
	}
	return resp.Body, nil
}

func (r *Reader) readAll(ctx context.Context, rc io.Reader) ([]byte, error) {
	limited := io.LimitReader(ctxReader{ctx: ctx, r: rc}, r.maxBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > r.maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

// ctxReader stops a read between chunks once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func isText(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	if !utf8.Valid(data) {
		return false
	}
	for mt := mimetype.Detect(data); mt != nil; mt = mt.Parent() {
		if mt.Is("text/plain") {
			return true
		}
	}
	return false
}
