// Package params encodes request parameters for the REST manager.
//
// Parameters are ordered name/value pairs. A Set carries its encoding mode:
//   - Raw: names and values are percent-encoded when the request is built
//   - PreEncoded: the caller already encoded them, they pass through as-is
//
// Encoding follows RFC 3986 query-component rules: only unreserved
// characters (ALPHA, DIGIT, "-", ".", "_", "~") stay literal and a space
// becomes %20. Decode(Encode(x)) returns x for any input, including
// non-ASCII text.
//
// Example Usage:
//
//	set := params.NewSet(params.Pair{Name: "q", Value: "café au lait"})
//	set.Query() // "q=caf%C3%A9%20au%20lait"
package params
