package request

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/restmanager/internal/rest/params"
	"golang.org/x/net/http/httpguts"
)

const (
	ProductName = "RestManager"
	Version     = "0.1"
)

var ErrInvalidRequest = errors.New("invalid request")

// DefaultUserAgent returns "<Product>/<Version> Go/<go version>/<Platform>"
func DefaultUserAgent() string {
	return fmt.Sprintf("%s/%s Go/%s/%s",
		ProductName, Version, strings.TrimPrefix(runtime.Version(), "go"), platformName(runtime.GOOS))
}

func platformName(goos string) string {
	switch goos {
	case "darwin":
		return "MacOS"
	case "windows":
		return "Windows"
	case "linux":
		return "Linux"
	case "freebsd":
		return "FreeBSD"
	case "openbsd":
		return "OpenBSD"
	case "netbsd":
		return "NetBSD"
	default:
		return "Unknown"
	}
}

// NormalizeMethod trims and uppercases an HTTP verb
func NormalizeMethod(method string) string {
	return strings.ToUpper(strings.TrimSpace(method))
}

// Descriptor is a fully-formed request ready for the transport.
// It is never modified after the builder returns it.
type Descriptor struct {
	method        string
	url           *url.URL
	header        http.Header
	kind          BodyKind
	body          []byte
	stream        io.Reader
	contentLength int64
}

// Method returns the uppercase HTTP verb
func (d *Descriptor) Method() string {
	return d.method
}

// URL returns a copy of the target URL
func (d *Descriptor) URL() *url.URL {
	u := *d.url
	return &u
}

// URLString returns the target URL as a string
func (d *Descriptor) URLString() string {
	return d.url.String()
}

// Header returns a copy of the request headers
func (d *Descriptor) Header() http.Header {
	return d.header.Clone()
}

// ContentType returns the Content-Type header, if any
func (d *Descriptor) ContentType() string {
	return d.header.Get("Content-Type")
}

// UserAgent returns the User-Agent header
func (d *Descriptor) UserAgent() string {
	return d.header.Get("User-Agent")
}

// BodyKind returns how the body is carried
func (d *Descriptor) BodyKind() BodyKind {
	return d.kind
}

// Body returns a copy of an in-memory body (bytes or multipart)
func (d *Descriptor) Body() []byte {
	if d.body == nil {
		return nil
	}
	out := make([]byte, len(d.body))
	copy(out, d.body)
	return out
}

// Stream returns the body reader of a stream descriptor. It can be read once.
func (d *Descriptor) Stream() io.Reader {
	return d.stream
}

// ContentLength returns the body size, or -1 when unknown
func (d *Descriptor) ContentLength() int64 {
	return d.contentLength
}

// Builder turns resources, verbs and parameters into descriptors
type Builder struct {
	BaseURL   *url.URL
	UserAgent string
}

// NewBuilder creates a builder; an empty userAgent selects the default one
func NewBuilder(baseURL *url.URL, userAgent string) Builder {
	if userAgent == "" {
		userAgent = DefaultUserAgent()
	}
	return Builder{BaseURL: baseURL, UserAgent: userAgent}
}

// Params builds a request whose parameters are structured pairs.
// It never fails: an empty method means GET and an empty resource targets
// the base URL itself.
func (b Builder) Params(resource, method string, set params.Set) *Descriptor {
	method = NormalizeMethod(method)
	if method == "" {
		method = http.MethodGet
	}

	d := &Descriptor{
		method:        method,
		url:           b.resolve(resource),
		header:        b.baseHeader(),
		kind:          BodyNone,
		contentLength: 0,
	}

	switch method {
	case http.MethodPost:
		d.body = []byte(set.Query())
		d.kind = BodyBytes
		d.contentLength = int64(len(d.body))
		d.header.Set("Content-Type", contentTypeForm)
	case http.MethodPut:
		d.url.RawQuery = joinQuery(d.url.RawQuery, set.Query())
		d.header.Set("Content-Length", "0")
	default:
		d.url.RawQuery = joinQuery(d.url.RawQuery, set.Query())
	}

	return d
}

// Payload builds a request around a raw body. Resource and method only
// shape the URL and verb; the body is not inspected.
func (b Builder) Payload(resource, method string, p Payload) (*Descriptor, error) {
	if strings.TrimSpace(resource) == "" {
		return nil, fmt.Errorf("%w: empty resource", ErrInvalidRequest)
	}
	method = NormalizeMethod(method)
	if method == "" {
		return nil, fmt.Errorf("%w: empty method", ErrInvalidRequest)
	}
	if !httpguts.ValidHeaderFieldName(method) {
		return nil, fmt.Errorf("%w: method %q is not a valid token", ErrInvalidRequest, method)
	}

	d := &Descriptor{
		method: method,
		url:    b.resolve(resource),
		header: b.baseHeader(),
		kind:   BodyNone,
	}

	if !carriesBody(method) {
		return d, nil
	}

	switch p.kind {
	case BodyBytes:
		d.kind = BodyBytes
		d.body = p.data
		d.contentLength = p.size
		d.header.Set("Content-Type", p.resolveContentType())
	case BodyStream:
		d.kind = BodyStream
		d.stream = p.stream
		d.contentLength = p.size
		d.header.Set("Content-Type", p.resolveContentType())
	case BodyMultipart:
		body, contentType, err := p.form.render()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		d.kind = BodyMultipart
		d.body = body
		d.contentLength = int64(len(body))
		d.header.Set("Content-Type", contentType)
	}

	if d.contentLength >= 0 {
		d.header.Set("Content-Length", strconv.FormatInt(d.contentLength, 10))
	}
	return d, nil
}

// carriesBody reports whether a raw payload is sent for the verb. The
// transport never writes a body for OPTIONS, so the descriptor carries none.
func carriesBody(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodDelete, http.MethodOptions:
		return false
	}
	return true
}

func (b Builder) baseHeader() http.Header {
	h := make(http.Header)
	ua := b.UserAgent
	if ua == "" {
		ua = DefaultUserAgent()
	}
	h.Set("User-Agent", ua)
	return h
}

// resolve appends resource to the base path with exactly one '/' at the
// join. A query inside resource is kept ahead of any parameters.
func (b Builder) resolve(resource string) *url.URL {
	var u url.URL
	if b.BaseURL != nil {
		u = *b.BaseURL
	}
	u.Fragment, u.RawFragment = "", ""

	resource, _, _ = strings.Cut(resource, "#")
	path, query, _ := strings.Cut(resource, "?")

	if path != "" {
		joined := strings.TrimSuffix(u.EscapedPath(), "/") + "/" + strings.TrimPrefix(path, "/")
		if unescaped, err := url.PathUnescape(joined); err == nil {
			u.Path = unescaped
			u.RawPath = joined
		} else {
			u.Path = joined
			u.RawPath = ""
		}
	}

	u.RawQuery = joinQuery(u.RawQuery, query)
	return &u
}

func joinQuery(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "&")
}
