// Package main is the entry point for restctl, a command line client for
// the REST request manager.
//
// restctl sends one request against a configured base URL, waits for the
// terminal event and prints the reply body to stdout. The status line,
// lifecycle events and logs go to stderr.
//
// Configuration:
//   - YAML or TOML file (--config)
//   - Environment variables (REST_BASE_URL, REST_USERNAME, ...)
//   - CLI flags (override both)
//
// Usage:
//
//	# Structured parameters, sent in the query string for GET
//	restctl --base-url https://api.example.com --param q=go /search
//
//	# Raw body from a file
//	restctl -X PUT --data @doc.json --content-type application/json /docs/1
//
// Exit status is 1 on a network error, a parsing error or a bad invocation.
//
// Signals:
//   - SIGINT, SIGTERM: cancel the request in flight
package main
