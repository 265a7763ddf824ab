// Package client is the HTTP transport behind the request manager.
//
// Built on go-resty/resty over a pooled transport:
//   - Connection pooling and keep-alive
//   - Context-based cancellation
//   - Rate limiting per client instance
//   - Upload and download progress hooks
//   - Optional zstd, gzip and deflate reply decoding
//   - Optional circuit breaker that fails fast after repeated
//     exchanges without a status line
//
// A single Send covers one lifecycle. A 401 carrying a Basic challenge is
// passed to Hooks.Challenge; the answer is used for one resend, and a
// second challenge aborts with ErrAborted.
//
// Example Usage:
//
//	c := client.NewClient(client.Options{Timeout: 10 * time.Second})
//	reply := c.Send(ctx, descriptor, client.Hooks{Challenge: handler.Respond})
//	result := response.Classify(reply, response.ModeJSON, nil)
package client
