package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/GriffinCanCode/restmanager/internal/rest/auth"
)

const jsonContentType = "application/json"

var (
	ErrNoResponse  = errors.New("no HTTP response received")
	ErrContentType = errors.New("unexpected content type")
	ErrDecode      = errors.New("failed to decode body")
	ErrUnknownMode = errors.New("unknown response mode")
)

// Mode is the configured expectation for reply bodies
type Mode int

const (
	// ModeJSON decodes application/json bodies; anything else is a parsing error
	ModeJSON Mode = iota
	// ModeRaw hands the body back untouched
	ModeRaw
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeJSON:
		return "json"
	case ModeRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// ParseMode converts "json" or "raw" (any case) to a Mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return ModeJSON, nil
	case "raw":
		return ModeRaw, nil
	default:
		return ModeJSON, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Kind is the terminal classification of a request lifecycle
type Kind int

const (
	KindSuccess Kind = iota
	KindNetworkError
	KindParsingError
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindNetworkError:
		return "network_error"
	case KindParsingError:
		return "parsing_error"
	default:
		return "unknown"
	}
}

// Reply is what the transport hands back. StatusCode is 0 when no status
// line was ever received.
type Reply struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Err        error
}

// TransportError reports whether the transport flagged an error
func (r Reply) TransportError() bool {
	return r.Err != nil
}

// Result is the classified outcome of one lifecycle
type Result struct {
	Kind        Kind
	StatusCode  int
	Header      http.Header
	ContentType string
	Raw         []byte

	// Value is the decoded JSON document in ModeJSON, or the raw bytes in
	// ModeRaw. Only set on success.
	Value any

	// Err explains a non-success Kind
	Err error

	// TransportErr is the transport error, if any, even on success
	TransportErr error
}

// Success reports whether the lifecycle succeeded
func (r *Result) Success() bool {
	return r.Kind == KindSuccess
}

// AuthExhausted reports whether the transport was aborted after a
// second authentication challenge
func (r *Result) AuthExhausted() bool {
	return errors.Is(r.Err, auth.ErrExhausted)
}

// Map returns the decoded body as an object, or nil
func (r *Result) Map() map[string]any {
	m, _ := r.Value.(map[string]any)
	return m
}

// APIError returns errors[0].message from a decoded JSON body, if present
func (r *Result) APIError() string {
	errs, ok := r.Map()["errors"].([]any)
	if !ok || len(errs) == 0 {
		return ""
	}
	first, ok := errs[0].(map[string]any)
	if !ok {
		return ""
	}
	msg, _ := first["message"].(string)
	return msg
}

// IsJSONContentType applies the content-type gate: the first 16
// characters must read application/json, ignoring case.
func IsJSONContentType(contentType string) bool {
	return len(contentType) >= len(jsonContentType) &&
		strings.EqualFold(contentType[:len(jsonContentType)], jsonContentType)
}

// Classify turns a transport reply into a Result.
//
// A reply without a status line is a network error. A second auth
// challenge is a network error as well, since the transport aborted.
// Any other reply is a real HTTP exchange, 4xx and 5xx included, and is
// judged by mode alone.
func Classify(reply Reply, mode Mode, codec Codec) *Result {
	res := &Result{
		StatusCode:   reply.StatusCode,
		Header:       reply.Header,
		Raw:          reply.Body,
		TransportErr: reply.Err,
	}
	if reply.Header != nil {
		res.ContentType = reply.Header.Get("Content-Type")
	}

	if reply.StatusCode == 0 {
		res.Kind = KindNetworkError
		res.Err = reply.Err
		if res.Err == nil {
			res.Err = ErrNoResponse
		}
		return res
	}

	if errors.Is(reply.Err, auth.ErrExhausted) {
		res.Kind = KindNetworkError
		res.Err = reply.Err
		return res
	}

	if mode == ModeRaw {
		res.Kind = KindSuccess
		res.Value = reply.Body
		return res
	}

	if !IsJSONContentType(res.ContentType) {
		res.Kind = KindParsingError
		res.Err = fmt.Errorf("%w: %q", ErrContentType, res.ContentType)
		return res
	}

	if codec == nil {
		codec = DefaultCodec()
	}
	value, err := codec.Decode(reply.Body)
	if err != nil {
		res.Kind = KindParsingError
		res.Err = fmt.Errorf("%w: %v", ErrDecode, err)
		return res
	}

	res.Kind = KindSuccess
	res.Value = value
	return res
}
