package response

import (
	"errors"

	"github.com/bytedance/sonic"
)

var errEmptyBody = errors.New("empty body")

// Codec decodes a reply body into a structured value
type Codec interface {
	Decode(data []byte) (any, error)
}

// SonicCodec decodes JSON with bytedance/sonic
type SonicCodec struct {
	api sonic.API
}

// NewSonicCodec creates a codec with encoding/json compatible behavior
func NewSonicCodec() SonicCodec {
	return SonicCodec{api: sonic.ConfigStd}
}

// Decode parses data into maps, slices, strings, float64s, bools and nil
func (c SonicCodec) Decode(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, errEmptyBody
	}

	api := c.api
	if api == nil {
		api = sonic.ConfigStd
	}

	var v any
	if err := api.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// CodecFunc adapts a function to Codec
type CodecFunc func(data []byte) (any, error)

// Decode calls f(data)
func (f CodecFunc) Decode(data []byte) (any, error) {
	return f(data)
}

// DefaultCodec returns the codec used when none is configured
func DefaultCodec() Codec {
	return NewSonicCodec()
}
