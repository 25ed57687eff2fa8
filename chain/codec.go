//
// codec.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package chain

import (
	"math"
)

// Number defines the clear value types of the chain inputs and
// outputs.
type Number interface {
	uint64 | float64
}

// Encode encodes the value into its 64-bit wire representation.
// Floats are encoded by their IEEE-754 bit pattern.
func Encode[T Number](v T) uint64 {
	switch v := any(v).(type) {
	case float64:
		return math.Float64bits(v)
	case uint64:
		return v
	}
	panic("unsupported type")
}

// Decode decodes the 64-bit wire representation into a value.
func Decode[T Number](raw uint64) T {
	var zero T
	switch any(zero).(type) {
	case float64:
		return any(math.Float64frombits(raw)).(T)
	default:
		return any(raw).(T)
	}
}

// EncodeAll encodes the values.
func EncodeAll[T Number](values []T) []uint64 {
	result := make([]uint64, len(values))
	for i, v := range values {
		result[i] = Encode(v)
	}
	return result
}

// DecodeAll decodes the raw values.
func DecodeAll[T Number](raw []uint64) []T {
	result := make([]T, len(raw))
	for i, v := range raw {
		result[i] = Decode[T](v)
	}
	return result
}
