package footballdata

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// acceptEncoding lists the encodings decodedBody understands.
const acceptEncoding = "gzip, deflate, br, zstd"

// decodedBody wraps body according to its Content-Encoding.
func decodedBody(body io.ReadCloser, contentEncoding string) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "", "identity":
		return body, nil
	case "gzip":
		r, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return readCloser{Reader: r, closers: []io.Closer{r, body}}, nil
	case "deflate":
		r := flate.NewReader(body)
		return readCloser{Reader: r, closers: []io.Closer{r, body}}, nil
	case "br":
		return readCloser{Reader: brotli.NewReader(body), closers: []io.Closer{body}}, nil
	case "zstd":
		d, err := zstd.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		r := d.IOReadCloser()
		return readCloser{Reader: r, closers: []io.Closer{r, body}}, nil
	default:
		slog.Warn("Unknown content encoding, reading as is", "encoding", contentEncoding)
		return body, nil
	}
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r readCloser) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
