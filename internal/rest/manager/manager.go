package manager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/GriffinCanCode/restmanager/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/restmanager/internal/rest/auth"
	"github.com/GriffinCanCode/restmanager/internal/rest/client"
	"github.com/GriffinCanCode/restmanager/internal/rest/params"
	"github.com/GriffinCanCode/restmanager/internal/rest/request"
	"github.com/GriffinCanCode/restmanager/internal/rest/response"
	"go.uber.org/zap"
)

var (
	ErrBusy            = errors.New("a request is already in flight")
	ErrInvalidSettings = errors.New("invalid settings")
)

// Settings is the persistent configuration of a Manager
type Settings struct {
	BaseURL   string
	Username  string
	Password  string
	UserAgent string // empty selects the default User-Agent
	Mode      response.Mode
}

// Manager issues one asynchronous REST request at a time against a base
// URL and keeps a snapshot of the last completed reply.
type Manager struct {
	client     *client.Client
	clientOpts client.Options
	codec      response.Codec
	handler    Handler
	metrics    *monitoring.Metrics
	logger     *zap.Logger
	initial    *Settings

	mu       sync.RWMutex
	settings Settings
	baseURL  *url.URL
	inFlight *Call
	last     *response.Result
}

// New creates a manager
func New(opts ...Option) *Manager {
	m := &Manager{
		codec:  response.DefaultCodec(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.client == nil {
		m.clientOpts.Logger = m.logger
		m.client = client.NewClient(m.clientOpts)
	}
	if m.initial != nil {
		if err := m.Configure(*m.initial); err != nil {
			m.logger.Warn("ignoring initial settings", zap.Error(err))
		}
		m.initial = nil
	}
	return m
}

// Configure replaces all settings. Applying the same settings twice is
// the same as applying them once.
func (m *Manager) Configure(s Settings) error {
	base, err := parseBaseURL(s.BaseURL)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.inFlight != nil {
		return ErrBusy
	}
	m.settings = s
	m.baseURL = base
	return nil
}

// SetBaseURL changes the base URL
func (m *Manager) SetBaseURL(raw string) error {
	return m.update(func(s *Settings) { s.BaseURL = raw })
}

// SetCredentials changes the Basic credentials; empty strings are allowed
func (m *Manager) SetCredentials(username, password string) error {
	return m.update(func(s *Settings) {
		s.Username = username
		s.Password = password
	})
}

// SetUserAgent overrides the User-Agent; empty restores the default
func (m *Manager) SetUserAgent(userAgent string) error {
	return m.update(func(s *Settings) { s.UserAgent = userAgent })
}

// SetResponseMode changes how reply bodies are interpreted
func (m *Manager) SetResponseMode(mode response.Mode) error {
	return m.update(func(s *Settings) { s.Mode = mode })
}

func (m *Manager) update(fn func(*Settings)) error {
	s := m.Settings()
	fn(&s)
	return m.Configure(s)
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: base url: %v", ErrInvalidSettings, err)
	}
	return u, nil
}

// Request sends structured parameters. It does not validate resource or
// method: an empty method means GET and an empty resource targets the
// base URL. The only error is ErrBusy.
func (m *Manager) Request(ctx context.Context, resource, method string, set params.Set) (*Call, error) {
	return m.start(ctx, func(b request.Builder) (*request.Descriptor, error) {
		return b.Params(resource, method, set), nil
	})
}

// RequestMap sends a plain name/value map, keys in sorted order
func (m *Manager) RequestMap(ctx context.Context, resource, method string, values map[string]string) (*Call, error) {
	return m.Request(ctx, resource, method, params.FromMap(values))
}

// RequestBytes sends a raw body. An empty contentType is sniffed from data.
func (m *Manager) RequestBytes(ctx context.Context, resource, method string, data []byte, contentType string) (*Call, error) {
	return m.requestPayload(ctx, resource, method, request.Bytes(data, contentType))
}

// RequestStream sends the content of r; size is -1 when unknown
func (m *Manager) RequestStream(ctx context.Context, resource, method string, r io.Reader, size int64, contentType string) (*Call, error) {
	return m.requestPayload(ctx, resource, method, request.Stream(r, size, contentType))
}

// RequestMultipart sends a multipart/form-data body
func (m *Manager) RequestMultipart(ctx context.Context, resource, method string, form *request.Form) (*Call, error) {
	return m.requestPayload(ctx, resource, method, request.MultipartForm(form))
}

func (m *Manager) requestPayload(ctx context.Context, resource, method string, p request.Payload) (*Call, error) {
	return m.start(ctx, func(b request.Builder) (*request.Descriptor, error) {
		return b.Payload(resource, method, p)
	})
}

// start claims the manager, builds the descriptor, emits Begin and
// dispatches the call
func (m *Manager) start(ctx context.Context, build func(request.Builder) (*request.Descriptor, error)) (*Call, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	m.mu.Lock()
	if m.inFlight != nil {
		m.mu.Unlock()
		m.reject("busy", ErrBusy)
		return nil, ErrBusy
	}

	d, err := build(request.NewBuilder(m.baseURL, m.settings.UserAgent))
	if err != nil {
		m.mu.Unlock()
		m.reject("invalid_request", err)
		return nil, err
	}

	creds := auth.Credentials{Username: m.settings.Username, Password: m.settings.Password}
	call := newCall(d, creds, m.settings.Mode, m.handler)
	m.inFlight = call
	m.mu.Unlock()

	m.logger.Debug("request begin",
		zap.String("call_id", call.ID()),
		zap.String("method", d.Method()),
		zap.String("url", d.URLString()),
		zap.Stringer("mode", call.Mode()),
	)
	call.emit(Event{Type: EventBegin})

	go m.run(ctx, call)
	return call, nil
}

func (m *Manager) reject(reason string, err error) {
	m.logger.Debug("request rejected", zap.String("reason", reason), zap.Error(err))
	if m.metrics != nil {
		m.metrics.RecordRejected(reason)
	}
}

func (m *Manager) run(ctx context.Context, call *Call) {
	d := call.Descriptor()

	reqSize := d.ContentLength()
	if reqSize < 0 {
		reqSize = 0
	}
	timer := monitoring.NewTimer(m.metrics, d.Method(), reqSize)

	hooks := client.Hooks{
		Upload: func(sent, total int64) {
			call.emit(Event{Type: EventUploadProgress, Done: sent, Total: total})
		},
		Download: func(received, total int64) {
			call.emit(Event{Type: EventDownloadProgress, Done: received, Total: total})
		},
		Challenge: func(ch auth.Challenge) (auth.Credentials, error) {
			if m.metrics != nil {
				m.metrics.IncAuthChallenges()
			}
			creds, err := call.auth.Respond(ch)
			if err != nil {
				m.logger.Debug("auth challenge refused",
					zap.String("call_id", call.ID()),
					zap.Int("attempt", call.auth.Attempts()),
				)
				return creds, err
			}
			call.emit(Event{Type: EventAuthChallenge, Realm: ch.Realm})
			return creds, nil
		},
	}

	reply := m.client.Send(ctx, d, hooks)
	result := response.Classify(reply, call.Mode(), m.codec)

	duration := timer.Stop(result.Kind.String(), result.StatusCode, int64(len(result.Raw)))
	m.logResult(call, result, zap.Duration("duration", duration))

	m.mu.Lock()
	m.last = result
	m.mu.Unlock()

	// The call stays in flight until its terminal handler has returned, so
	// the snapshot it reads cannot be replaced by a later call
	call.finish(result, func() {
		m.mu.Lock()
		m.inFlight = nil
		m.mu.Unlock()
	})
}

func (m *Manager) logResult(call *Call, result *response.Result, extra ...zap.Field) {
	d := call.Descriptor()
	u := d.URL()

	fields := append([]zap.Field{
		zap.String("call_id", call.ID()),
		zap.String("method", d.Method()),
		zap.String("path", u.Path),
		zap.String("query", u.RawQuery),
		zap.Any("headers", d.Header()),
		zap.Int("status", result.StatusCode),
		zap.Int("body_size", len(result.Raw)),
		zap.Stringer("outcome", result.Kind),
	}, extra...)
	if result.TransportErr != nil {
		fields = append(fields, zap.NamedError("transport_error", result.TransportErr))
	}
	m.logger.Debug("request finished", fields...)

	switch result.Kind {
	case response.KindNetworkError:
		m.logger.Warn("request failed",
			zap.String("call_id", call.ID()),
			zap.String("url", d.URLString()),
			zap.Bool("auth_exhausted", result.AuthExhausted()),
			zap.Error(result.Err),
		)
	case response.KindParsingError:
		m.logger.Warn("response parsing failed",
			zap.String("call_id", call.ID()),
			zap.Int("status", result.StatusCode),
			zap.String("content_type", result.ContentType),
			zap.Error(result.Err),
		)
	case response.KindSuccess:
		if msg := result.APIError(); msg != "" {
			m.logger.Warn("api error",
				zap.String("call_id", call.ID()),
				zap.Int("status", result.StatusCode),
				zap.String("message", msg),
			)
		}
	}
}

// InFlight reports whether a call is running
func (m *Manager) InFlight() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inFlight != nil
}

// LastResult returns the last completed result, or nil
func (m *Manager) LastResult() *response.Result {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// RawBody returns a copy of the last reply body
func (m *Manager) RawBody() []byte {
	last := m.LastResult()
	if last == nil || last.Raw == nil {
		return nil
	}
	out := make([]byte, len(last.Raw))
	copy(out, last.Raw)
	return out
}

// DecodedBody returns the last decoded body: the JSON document in
// ModeJSON, the raw bytes in ModeRaw, nil when the last call failed.
func (m *Manager) DecodedBody() any {
	last := m.LastResult()
	if last == nil {
		return nil
	}
	return last.Value
}

// LastStatusCode returns the last HTTP status, 0 when none was received
func (m *Manager) LastStatusCode() int {
	last := m.LastResult()
	if last == nil {
		return 0
	}
	return last.StatusCode
}

// Settings returns the current settings as configured
func (m *Manager) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// BaseURL returns the base URL, normalized by parsing
func (m *Manager) BaseURL() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.baseURL == nil {
		return ""
	}
	return m.baseURL.String()
}

// UserAgent returns the User-Agent sent with every request
func (m *Manager) UserAgent() string {
	if ua := m.Settings().UserAgent; ua != "" {
		return ua
	}
	return request.DefaultUserAgent()
}

// AuthUser returns the configured username
func (m *Manager) AuthUser() string {
	return m.Settings().Username
}

// AuthPass returns the configured password
func (m *Manager) AuthPass() string {
	return m.Settings().Password
}

// ResponseMode returns the configured response mode
func (m *Manager) ResponseMode() response.Mode {
	return m.Settings().Mode
}

// Client returns the transport client
func (m *Manager) Client() *client.Client {
	return m.client
}
