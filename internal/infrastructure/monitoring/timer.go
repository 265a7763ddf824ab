package monitoring

import "time"

// Timer measures one request lifecycle
type Timer struct {
	start   time.Time
	metrics *Metrics
	method  string
	reqSize int64
}

// NewTimer starts a timer and marks the lifecycle in flight. A nil
// metrics yields a timer that records nothing.
func NewTimer(metrics *Metrics, method string, reqSize int64) *Timer {
	if metrics != nil {
		metrics.IncInFlight()
	}
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		method:  method,
		reqSize: reqSize,
	}
}

// Stop stops the timer and records the lifecycle
func (t *Timer) Stop(outcome string, status int, respSize int64) time.Duration {
	duration := time.Since(t.start)
	if t.metrics == nil {
		return duration
	}
	t.metrics.DecInFlight()
	t.metrics.RecordRequest(t.method, outcome, status, duration, t.reqSize, respSize)
	return duration
}
