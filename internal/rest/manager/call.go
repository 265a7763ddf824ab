package manager

import (
	"context"
	"sync"

	"github.com/GriffinCanCode/restmanager/internal/rest/auth"
	"github.com/GriffinCanCode/restmanager/internal/rest/request"
	"github.com/GriffinCanCode/restmanager/internal/rest/response"
	"github.com/GriffinCanCode/restmanager/internal/shared/id"
)

// Call is the handle of one request lifecycle
type Call struct {
	id         string
	descriptor *request.Descriptor
	auth       *auth.Handler
	mode       response.Mode

	events emitter
	done   chan struct{}

	mu     sync.Mutex
	result *response.Result
}

func newCall(d *request.Descriptor, creds auth.Credentials, mode response.Mode, handler Handler) *Call {
	return &Call{
		id:         id.NewCallID().String(),
		descriptor: d,
		auth:       auth.NewHandler(creds),
		mode:       mode,
		events:     emitter{handler: handler},
		done:       make(chan struct{}),
	}
}

// ID returns the unique call id
func (c *Call) ID() string {
	return c.id
}

// Descriptor returns the request that was sent
func (c *Call) Descriptor() *request.Descriptor {
	return c.descriptor
}

// Mode returns the response mode captured when the call started
func (c *Call) Mode() response.Mode {
	return c.mode
}

// Challenges returns how many auth challenges this call received
func (c *Call) Challenges() int {
	return c.auth.Attempts()
}

// Done is closed after the terminal event has been delivered
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Result returns the outcome, or nil while the call is in flight
func (c *Call) Result() *response.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Wait blocks until the call completes or ctx is done
func (c *Call) Wait(ctx context.Context) (*response.Result, error) {
	select {
	case <-c.done:
		return c.Result(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Call) emit(ev Event) {
	ev.CallID = c.id
	c.events.emit(ev)
}

// finish publishes the result and delivers the terminal event. release
// runs after the handler returns and before waiters are woken.
func (c *Call) finish(result *response.Result, release func()) {
	c.mu.Lock()
	c.result = result
	c.mu.Unlock()

	c.emit(Event{Type: terminalEvent(result.Kind), Result: result})
	if release != nil {
		release()
	}
	close(c.done)
}
