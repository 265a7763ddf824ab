// Package manager is the asynchronous REST request façade.
//
// A Manager holds a base URL, optional Basic credentials, a User-Agent and
// a response mode. Each Request* call builds a descriptor, emits
// EventBegin before returning, and runs the exchange on its own
// goroutine. The lifecycle ends with exactly one of EventSuccess,
// EventNetworkError or EventParsingError.
//
// Only one call may be in flight per Manager; a second call fails with
// ErrBusy. Each call owns its descriptor, its auth challenge counter and
// its result, so nothing a later call does can tear an earlier result.
// The manager also keeps a snapshot of the last completed result, written
// before the terminal event is delivered.
//
// HTTP status codes never decide the outcome: a 404 with a JSON body is a
// success. A network error means no status line was received, or the
// server challenged a second time and the call was aborted.
//
// Example Usage:
//
//	m := manager.New(
//		manager.WithSettings(manager.Settings{BaseURL: "https://api.example.com"}),
//		manager.WithLogger(logger),
//	)
//	call, err := m.Request(ctx, "/self.json", "GET", params.Set{})
//	if err != nil {
//		return err
//	}
//	result, err := call.Wait(ctx)
//	if err == nil && result.Success() {
//		fmt.Println(result.StatusCode, result.Map())
//	}
package manager
