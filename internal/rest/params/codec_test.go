package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"unreserved untouched", "AZaz09-._~", "AZaz09-._~"},
		{"space is percent-encoded", "a b", "a%20b"},
		{"plus is encoded", "a+b", "a%2Bb"},
		{"reserved characters", "a&b=c/d?e#f", "a%26b%3Dc%2Fd%3Fe%23f"},
		{"utf-8 bytes", "é", "%C3%A9"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.in))
		})
	}
}

func TestUnescape(t *testing.T) {
	t.Run("plus stays literal", func(t *testing.T) {
		out, err := Unescape("a+b%20c")
		require.NoError(t, err)
		assert.Equal(t, "a+b c", out)
	})

	t.Run("broken escape", func(t *testing.T) {
		_, err := Unescape("%zz")
		assert.Error(t, err)
	})
}

func TestRoundTrip(t *testing.T) {
	inputs := []Pair{
		{Name: "plain", Value: "value"},
		{Name: "spaces and+plus", Value: "a b+c"},
		{Name: "ключ", Value: "значение"},
		{Name: "emoji", Value: "🚀 launch"},
		{Name: "reserved", Value: "!*'();:@&=+$,/?#[]"},
		{Name: "percent", Value: "100%"},
		{Name: "", Value: ""},
		{Name: "invalid-utf8", Value: string([]byte{0xff, 0xfe, 0x00})},
	}

	decoded, err := Decode(Encode(inputs))
	require.NoError(t, err)
	assert.Equal(t, inputs, decoded)
}

func TestEncodeEmpty(t *testing.T) {
	assert.Empty(t, Encode(nil))
	assert.Empty(t, Encode([]Pair{}))
	assert.Equal(t, "", Join(nil))
}

func TestPassthrough(t *testing.T) {
	in := []Pair{{Name: "a%20b", Value: "c%2Fd"}}
	out := Passthrough(in)
	assert.Equal(t, in, out)

	out[0].Name = "changed"
	assert.Equal(t, "a%20b", in[0].Name, "passthrough must copy")
}

func TestSet(t *testing.T) {
	t.Run("raw set encodes", func(t *testing.T) {
		set := NewSet(Pair{Name: "a b", Value: "c&d"}, Pair{Name: "x", Value: "1"})
		assert.Equal(t, Raw, set.Mode())
		assert.Equal(t, "a%20b=c%26d&x=1", set.Query())
	})

	t.Run("pre-encoded set passes through", func(t *testing.T) {
		set := PreEncodedSet(Pair{Name: "a%20b", Value: "c%26d"})
		assert.Equal(t, PreEncoded, set.Mode())
		assert.Equal(t, "a%20b=c%26d", set.Query())
	})

	t.Run("map is ordered by key", func(t *testing.T) {
		set := FromMap(map[string]string{"zeta": "1", "alpha": "2", "mid": "3"})
		assert.Equal(t, "alpha=2&mid=3&zeta=1", set.Query())
	})

	t.Run("add does not alias", func(t *testing.T) {
		base := NewSet(Pair{Name: "a", Value: "1"})
		grown := base.Add("b", "2")
		assert.Equal(t, 1, base.Len())
		assert.Equal(t, 2, grown.Len())
		assert.Equal(t, "a=1&b=2", grown.Query())
	})

	t.Run("zero set is empty", func(t *testing.T) {
		var set Set
		assert.Equal(t, 0, set.Len())
		assert.Equal(t, "", set.Query())
	})
}

func TestParseQuery(t *testing.T) {
	pairs, err := ParseQuery("?b=2&a=%C3%A9%20x&flag")
	require.NoError(t, err)
	assert.Equal(t, []Pair{
		{Name: "b", Value: "2"},
		{Name: "a", Value: "é x"},
		{Name: "flag", Value: ""},
	}, pairs)

	empty, err := ParseQuery("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "raw", Raw.String())
	assert.Equal(t, "pre-encoded", PreEncoded.String())
	assert.Equal(t, "unknown", Mode(9).String())
}
