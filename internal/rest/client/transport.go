package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

const acceptEncoding = "zstd, gzip, deflate"

// contextKey is a private type for context values
type contextKey string

const hooksKey contextKey = "hooks"

func withHooks(ctx context.Context, h Hooks) context.Context {
	return context.WithValue(ctx, hooksKey, h)
}

func hooksFrom(ctx context.Context) Hooks {
	h, _ := ctx.Value(hooksKey).(Hooks)
	return h
}

// progressTransport counts body bytes in both directions and, when
// compression is on, decodes the reply body before resty reads it.
type progressTransport struct {
	base        http.RoundTripper
	compression bool
}

// RoundTrip implements http.RoundTripper
func (t *progressTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	hooks := hooksFrom(req.Context())

	cloned := false
	clone := func() {
		if !cloned {
			req = req.Clone(req.Context())
			cloned = true
		}
	}

	if hooks.Upload != nil && req.Body != nil && req.Body != http.NoBody {
		clone()
		req.Body = &countingReader{rc: req.Body, total: req.ContentLength, report: hooks.Upload}
	}
	if t.compression && req.Header.Get("Accept-Encoding") == "" {
		clone()
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if hooks.Download != nil {
		resp.Body = &countingReader{rc: resp.Body, total: resp.ContentLength, report: hooks.Download}
	}
	if t.compression {
		if err := decodeBody(resp); err != nil {
			resp.Body.Close()
			return nil, err
		}
	}
	return resp, nil
}

// countingReader reports cumulative bytes on every read. When the total
// is unknown the final report repeats the count as the total.
type countingReader struct {
	rc     io.ReadCloser
	total  int64
	done   int64
	report func(done, total int64)
	ended  bool
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	if n > 0 {
		r.done += int64(n)
		r.report(r.done, r.total)
	}
	if errors.Is(err, io.EOF) && !r.ended {
		r.ended = true
		if r.total < 0 || (n == 0 && r.done == 0) {
			r.report(r.done, r.done)
		}
	}
	return n, err
}

func (r *countingReader) Close() error {
	return r.rc.Close()
}

// decodedBody closes both the decoder and the wire body
type decodedBody struct {
	io.Reader
	closeDecoder func()
	raw          io.ReadCloser
}

func (b *decodedBody) Close() error {
	b.closeDecoder()
	return b.raw.Close()
}

func decodeBody(resp *http.Response) error {
	if resp.ContentLength == 0 || (resp.Request != nil && resp.Request.Method == http.MethodHead) {
		return nil
	}

	var (
		reader       io.Reader
		closeDecoder func()
	)

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "zstd":
		dec, err := zstd.NewReader(resp.Body)
		if err != nil {
			return err
		}
		reader, closeDecoder = dec, dec.Close
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		reader, closeDecoder = gz, func() { gz.Close() }
	case "deflate":
		zr, err := zlib.NewReader(resp.Body)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		reader, closeDecoder = zr, func() { zr.Close() }
	default:
		return nil
	}

	resp.Body = &decodedBody{Reader: reader, closeDecoder: closeDecoder, raw: resp.Body}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return nil
}
