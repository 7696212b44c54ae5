package entity

import "encoding/json"

// Codec serializes an entity to the self-describing byte blob the store
// persists, and back.
type Codec[T Entity] interface {
	Encode(e T) ([]byte, error)
	Decode(data []byte) (T, error)
}

// jsonCodec is the standard codec: UTF-8 JSON. Date-typed fields
// round-trip through RFC 3339 strings; optional dates are pointer fields,
// so a missing value decodes to nil rather than an error.
type jsonCodec[T Entity] struct {
	factory func() T
}

// NewJSONCodec builds the JSON codec for an entity kind. factory
// allocates a fresh zero entity to decode into.
func NewJSONCodec[T Entity](factory func() T) Codec[T] {
	return jsonCodec[T]{factory: factory}
}

func (c jsonCodec[T]) Encode(e T) ([]byte, error) {
	return json.Marshal(e)
}

func (c jsonCodec[T]) Decode(data []byte) (T, error) {
	e := c.factory()
	if err := json.Unmarshal(data, e); err != nil {
		var zero T
		return zero, err
	}
	return e, nil
}
