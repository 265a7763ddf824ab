package params

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

const upperhex = "0123456789ABCDEF"

// Pair is a single name/value parameter. Order is significant.
type Pair struct {
	Name  string
	Value string
}

// Mode tells whether a Set still needs percent-encoding
type Mode int

const (
	// Raw pairs are encoded when the request is built
	Raw Mode = iota
	// PreEncoded pairs are already wire-safe and pass through untouched
	PreEncoded
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case Raw:
		return "raw"
	case PreEncoded:
		return "pre-encoded"
	default:
		return "unknown"
	}
}

// shouldEscape reports whether c falls outside the RFC 3986 unreserved set.
func shouldEscape(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return false
	case c == '-', c == '.', c == '_', c == '~':
		return false
	}
	return true
}

// Escape percent-encodes s for use as a query component
func Escape(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscape(c) {
			sb.WriteByte('%')
			sb.WriteByte(upperhex[c>>4])
			sb.WriteByte(upperhex[c&15])
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// Unescape reverses Escape. '+' is kept literal.
func Unescape(s string) (string, error) {
	out, err := url.PathUnescape(s)
	if err != nil {
		return "", fmt.Errorf("unescape %q: %w", s, err)
	}
	return out, nil
}

// Encode percent-encodes every name and value, preserving order
func Encode(pairs []Pair) []Pair {
	out := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, Pair{Name: Escape(p.Name), Value: Escape(p.Value)})
	}
	return out
}

// Passthrough copies pairs that the caller already encoded
func Passthrough(pairs []Pair) []Pair {
	out := make([]Pair, len(pairs))
	copy(out, pairs)
	return out
}

// Decode reverses Encode
func Decode(pairs []Pair) ([]Pair, error) {
	out := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		name, err := Unescape(p.Name)
		if err != nil {
			return nil, err
		}
		value, err := Unescape(p.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, Pair{Name: name, Value: value})
	}
	return out, nil
}

// Join renders wire pairs as name=value&name=value
func Join(pairs []Pair) string {
	if len(pairs) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, p := range pairs {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(p.Name)
		sb.WriteByte('=')
		sb.WriteString(p.Value)
	}
	return sb.String()
}

// ParseQuery splits a wire query into decoded pairs, keeping order.
// A leading '?' is ignored.
func ParseQuery(query string) ([]Pair, error) {
	query = strings.TrimPrefix(query, "?")
	if query == "" {
		return []Pair{}, nil
	}

	var wire []Pair
	for _, part := range strings.Split(query, "&") {
		if part == "" {
			continue
		}
		name, value, _ := strings.Cut(part, "=")
		wire = append(wire, Pair{Name: name, Value: value})
	}
	return Decode(wire)
}

// Set is an ordered parameter list together with its encoding mode
type Set struct {
	pairs []Pair
	mode  Mode
}

// NewSet creates a set of unencoded pairs
func NewSet(pairs ...Pair) Set {
	return Set{pairs: Passthrough(pairs), mode: Raw}
}

// PreEncodedSet creates a set whose pairs are sent as given
func PreEncodedSet(pairs ...Pair) Set {
	return Set{pairs: Passthrough(pairs), mode: PreEncoded}
}

// FromMap creates a raw set from a map, ordered by key
func FromMap(m map[string]string) Set {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]Pair, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, Pair{Name: k, Value: m[k]})
	}
	return Set{pairs: pairs, mode: Raw}
}

// Add returns a copy of the set with one more pair
func (s Set) Add(name, value string) Set {
	pairs := make([]Pair, len(s.pairs), len(s.pairs)+1)
	copy(pairs, s.pairs)
	return Set{pairs: append(pairs, Pair{Name: name, Value: value}), mode: s.mode}
}

// Mode returns the encoding mode
func (s Set) Mode() Mode {
	return s.mode
}

// Len returns the number of pairs
func (s Set) Len() int {
	return len(s.pairs)
}

// Pairs returns a copy of the pairs as supplied
func (s Set) Pairs() []Pair {
	return Passthrough(s.pairs)
}

// Encoded returns the pairs ready for the wire
func (s Set) Encoded() []Pair {
	if s.mode == PreEncoded {
		return Passthrough(s.pairs)
	}
	return Encode(s.pairs)
}

// Query renders the set as a query string or form body
func (s Set) Query() string {
	return Join(s.Encoded())
}
