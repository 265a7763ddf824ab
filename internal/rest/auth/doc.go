// Package auth answers HTTP Basic authentication challenges.
//
// A Handler lives for one request lifecycle. It moves from Idle to
// Challenged on the first 401 and hands back the stored credentials; a
// second 401 in the same lifecycle returns ErrExhausted and the transport
// aborts. A fresh Handler (or Reset) is used for every new request.
package auth
