package manager

import (
	"sync"

	"github.com/GriffinCanCode/restmanager/internal/rest/response"
)

// EventType identifies a lifecycle notification
type EventType int

const (
	EventBegin EventType = iota
	EventUploadProgress
	EventDownloadProgress
	EventAuthChallenge
	EventSuccess
	EventNetworkError
	EventParsingError
)

// String returns the string representation of the event type
func (t EventType) String() string {
	switch t {
	case EventBegin:
		return "begin"
	case EventUploadProgress:
		return "upload_progress"
	case EventDownloadProgress:
		return "download_progress"
	case EventAuthChallenge:
		return "auth_challenge"
	case EventSuccess:
		return "success"
	case EventNetworkError:
		return "network_error"
	case EventParsingError:
		return "parsing_error"
	default:
		return "unknown"
	}
}

// Terminal reports whether the event ends a lifecycle
func (t EventType) Terminal() bool {
	return t == EventSuccess || t == EventNetworkError || t == EventParsingError
}

func terminalEvent(kind response.Kind) EventType {
	switch kind {
	case response.KindSuccess:
		return EventSuccess
	case response.KindParsingError:
		return EventParsingError
	default:
		return EventNetworkError
	}
}

// Event is one notification of a request lifecycle
type Event struct {
	Type   EventType
	CallID string

	// Progress events: bytes so far and total, -1 when unknown. Counts
	// are per transfer: the resend after an auth challenge starts both
	// directions again from zero.
	Done  int64
	Total int64

	// Auth challenge events
	Realm string

	// Terminal events
	Result *response.Result
}

// Handler receives lifecycle events. Begin runs on the caller's
// goroutine; everything else runs on the call's goroutine. Events of one
// call are never delivered concurrently.
//
// The manager stays busy until the terminal handler returns: the
// snapshot accessors describe this call, and starting another request
// from inside the handler fails with ErrBusy. Done is closed only after
// the handler returns, so the handler must read ev.Result rather than
// Wait on its own call.
type Handler func(Event)

// emitter serializes the events of one call and drops anything that
// arrives after the terminal event
type emitter struct {
	mu      sync.Mutex
	handler Handler
	closed  bool
}

func (e *emitter) emit(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	if ev.Type.Terminal() {
		e.closed = true
	}
	if e.handler != nil {
		e.handler(ev)
	}
}
