package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/GriffinCanCode/restmanager/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/restmanager/internal/rest/auth"
	"github.com/GriffinCanCode/restmanager/internal/rest/request"
	"github.com/GriffinCanCode/restmanager/internal/rest/response"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds a single exchange, including the body read
const DefaultTimeout = 30 * time.Second

var ErrAborted = errors.New("request aborted")

// Options configures a Client
type Options struct {
	Timeout     time.Duration
	RateLimit   float64 // requests per second, <= 0 is unlimited
	Compression bool    // advertise zstd, gzip and deflate and decode replies
	Logger      *zap.Logger

	// BreakerThreshold opens the circuit after that many consecutive
	// exchanges without a status line; 0 disables the breaker
	BreakerThreshold uint32
	BreakerCooldown  time.Duration

	// Transport replaces the pooled transport underneath progress reporting
	Transport http.RoundTripper
}

// Hooks receive events while one request is in flight
type Hooks struct {
	Upload   func(sent, total int64)
	Download func(received, total int64)

	// Challenge answers a Basic authentication challenge. Returning an
	// error aborts the request.
	Challenge func(auth.Challenge) (auth.Credentials, error)
}

// Client wraps resty with rate limiting, an optional circuit breaker and
// progress reporting
type Client struct {
	Resty   *resty.Client
	Limiter *rate.Limiter
	Breaker *resilience.Breaker // nil when disabled
	Mu      sync.RWMutex
}

// NewClient creates a pooled HTTP client. Retries are left to the caller:
// the only resend it performs is the answer to an auth challenge.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	base := opts.Transport
	if base == nil {
		// Pooled transport from the retryable client; its retry loop is unused
		retryClient := retryablehttp.NewClient()
		retryClient.RetryMax = 0
		retryClient.Logger = nil
		base = retryClient.HTTPClient.Transport
	}

	restyClient := resty.New()
	restyClient.
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetLogger(opts.Logger.Sugar()).
		SetDisableWarn(true).
		SetTransport(&progressTransport{base: base, compression: opts.Compression})

	c := &Client{Resty: restyClient}
	c.SetRateLimit(opts.RateLimit)

	if opts.BreakerThreshold > 0 {
		logger := opts.Logger
		c.Breaker = resilience.New("rest", resilience.Settings{
			Threshold: opts.BreakerThreshold,
			Cooldown:  opts.BreakerCooldown,
			OnStateChange: func(name string, from, to resilience.State) {
				logger.Warn("circuit breaker state changed",
					zap.String("breaker", name),
					zap.Stringer("from", from),
					zap.Stringer("to", to),
				)
			},
		})
	}
	return c
}

// SetTimeout configures request timeout
func (c *Client) SetTimeout(duration time.Duration) {
	if duration <= 0 {
		duration = DefaultTimeout
	}
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Resty.SetTimeout(duration)
}

// SetRateLimit configures rate limiting (requests per second)
func (c *Client) SetRateLimit(rps float64) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	if rps <= 0 {
		c.Limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	c.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// Send performs one request lifecycle: the initial send and, when the
// server challenges for Basic credentials, the authenticated resend.
// It never returns an error; failures are carried in the Reply.
func (c *Client) Send(ctx context.Context, d *request.Descriptor, hooks Hooks) response.Reply {
	c.Mu.RLock()
	limiter := c.Limiter
	c.Mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		return response.Reply{Err: fmt.Errorf("rate limit error: %w", err)}
	}

	body, err := bodyOf(d)
	if err != nil {
		return response.Reply{Err: fmt.Errorf("read request body: %w", err)}
	}

	if c.Breaker == nil {
		return c.exchange(ctx, d, body, hooks)
	}
	if err := c.Breaker.Allow(); err != nil {
		return response.Reply{Err: fmt.Errorf("%w: %w", ErrAborted, err)}
	}
	reply := c.exchange(ctx, d, body, hooks)
	// A canceled caller says nothing about the server
	c.Breaker.Record(reply.StatusCode != 0 || ctx.Err() != nil)
	return reply
}

func (c *Client) exchange(ctx context.Context, d *request.Descriptor, body []byte, hooks Hooks) response.Reply {
	ctx = withHooks(ctx, hooks)

	var creds *auth.Credentials
	challenges := 0
	for {
		reply := toReply(c.execute(ctx, d, body, creds))
		if reply.Err != nil || reply.StatusCode != http.StatusUnauthorized || hooks.Challenge == nil {
			return reply
		}

		challenge, ok := auth.ParseChallenge(reply.Header.Get("WWW-Authenticate"))
		if !ok {
			return reply
		}

		challenges++
		answer, err := hooks.Challenge(challenge)
		if err == nil && challenges > auth.MaxChallenges {
			err = auth.ErrExhausted
		}
		if err != nil {
			reply.Err = fmt.Errorf("%w: %w", ErrAborted, err)
			return reply
		}
		creds = &answer
	}
}

func (c *Client) execute(ctx context.Context, d *request.Descriptor, body []byte, creds *auth.Credentials) (*resty.Response, error) {
	c.Mu.RLock()
	req := c.Resty.R().SetContext(ctx)
	c.Mu.RUnlock()

	for key, values := range d.Header() {
		// The transport derives Content-Length from the body
		if key == "Content-Length" {
			continue
		}
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	if body != nil {
		req.SetBody(body)
	}
	if creds != nil {
		req.SetBasicAuth(creds.Username, creds.Password)
	}

	return req.Execute(d.Method(), d.URLString())
}

// bodyOf returns the bytes to send. Stream payloads are read once so a
// challenged request can be sent again with the same body.
func bodyOf(d *request.Descriptor) ([]byte, error) {
	switch d.BodyKind() {
	case request.BodyNone:
		return nil, nil
	case request.BodyStream:
		stream := d.Stream()
		if stream == nil {
			return []byte{}, nil
		}
		if n := d.ContentLength(); n >= 0 {
			stream = io.LimitReader(stream, n)
		}
		return io.ReadAll(stream)
	default:
		return d.Body(), nil
	}
}

func toReply(resp *resty.Response, err error) response.Reply {
	reply := response.Reply{Err: err}
	if resp == nil || resp.RawResponse == nil {
		return reply
	}
	reply.StatusCode = resp.StatusCode()
	reply.Header = resp.Header()
	reply.Body = resp.Body()
	return reply
}
