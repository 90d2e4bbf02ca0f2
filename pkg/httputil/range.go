package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// DefaultBlockSize is the granularity of range requests.
const DefaultBlockSize = 64 << 10

// ErrRangeNotSupported is returned when a server ignores the Range header.
var ErrRangeNotSupported = errors.New("server does not support range requests")

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}

// RangeReader reads a remote file through HTTP range requests.
//
// io.ReaderAt has no context parameter, so the context given to
// NewRangeReader bounds every request the reader makes.
type RangeReader struct {
	ctx       context.Context
	client    *http.Client
	url       string
	headers   map[string]string
	size      int64
	blockSize int64

	mu       sync.Mutex
	blocks   map[int64][]byte
	requests int
}

// NewRangeReader probes url for its size with HEAD, falling back to a
// one-byte range request when HEAD carries no length.
func NewRangeReader(ctx context.Context, client *http.Client, url string, headers map[string]string) (*RangeReader, error) {
	if client == nil {
		client = http.DefaultClient
	}
	r := &RangeReader{
		ctx:       ctx,
		client:    client,
		url:       url,
		headers:   headers,
		blockSize: DefaultBlockSize,
		blocks:    make(map[int64][]byte),
	}
	size, err := r.probe()
	if err != nil {
		return nil, err
	}
	r.size = size
	return r, nil
}

// Size returns the remote file length.
func (r *RangeReader) Size() int64 { return r.size }

// Requests returns how many range requests have been made so far.
func (r *RangeReader) Requests() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests
}

func (r *RangeReader) newRequest(method string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(r.ctx, method, r.url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

func (r *RangeReader) probe() (int64, error) {
	req, err := r.newRequest(http.MethodHead)
	if err != nil {
		return 0, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return 0, Retryable(err)
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK && resp.ContentLength > 0 {
		return resp.ContentLength, nil
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusMethodNotAllowed {
		return 0, statusError(r.url, resp.StatusCode)
	}

	req, err = r.newRequest(http.MethodGet)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Range", "bytes=0-0")
	resp, err = r.client.Do(req)
	if err != nil {
		return 0, Retryable(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusPartialContent {
		if resp.StatusCode == http.StatusOK {
			return 0, ErrRangeNotSupported
		}
		return 0, statusError(r.url, resp.StatusCode)
	}
	return totalFromContentRange(resp.Header.Get("Content-Range"))
}

// totalFromContentRange parses "bytes 0-0/12345".
func totalFromContentRange(h string) (int64, error) {
	_, total, ok := strings.Cut(h, "/")
	if !ok || total == "*" {
		return 0, fmt.Errorf("invalid Content-Range %q", h)
	}
	return strconv.ParseInt(total, 10, 64)
}

func statusError(url string, code int) error {
	err := &StatusError{URL: url, Code: code}
	if code >= 500 {
		return Retryable(err)
	}
	return err
}

// ReadAt implements io.ReaderAt.
func (r *RangeReader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if off >= r.size {
		return 0, io.EOF
	}
	end := min(off+int64(len(p)), r.size)
	if err := r.ensure(off/r.blockSize, (end-1)/r.blockSize); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for pos := off; pos < end; {
		idx := pos / r.blockSize
		block := r.blocks[idx]
		start := pos - idx*r.blockSize
		c := copy(p[n:], block[start:min(int64(len(block)), start+end-pos)])
		n += c
		pos += int64(c)
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// ensure fetches the missing blocks in [first, last] with a single request.
func (r *RangeReader) ensure(first, last int64) error {
	r.mu.Lock()
	for first <= last {
		if _, ok := r.blocks[first]; !ok {
			break
		}
		first++
	}
	r.mu.Unlock()
	if first > last {
		return nil
	}

	start := first * r.blockSize
	stop := min((last+1)*r.blockSize, r.size) - 1
	data, err := r.fetch(start, stop)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for idx := first; idx <= last; idx++ {
		lo := (idx - first) * r.blockSize
		hi := min(lo+r.blockSize, int64(len(data)))
		r.blocks[idx] = data[lo:hi]
	}
	return nil
}

func (r *RangeReader) fetch(start, stop int64) ([]byte, error) {
	req, err := r.newRequest(http.MethodGet)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, stop))

	r.mu.Lock()
	r.requests++
	r.mu.Unlock()

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, Retryable(err)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusPartialContent:
	case http.StatusOK:
		return nil, ErrRangeNotSupported
	default:
		return nil, statusError(r.url, resp.StatusCode)
	}

	data := make([]byte, stop-start+1)
	if _, err := io.ReadFull(resp.Body, data); err != nil {
		return nil, fmt.Errorf("read range %d-%d of %s: %w", start, stop, r.url, err)
	}
	return data, nil
}

var _ io.ReaderAt = (*RangeReader)(nil)
