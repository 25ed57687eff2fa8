//
// circ_float_test.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package circuits

import (
	"math"
	"math/rand"
	"testing"

	"github.com/markkurossi/mpcbench/circuit"
)

func compileFloat64Multiplier(t *testing.T) *circuit.Circuit {
	t.Helper()

	cc := NewCompiler()
	x := cc.Input(0, 64)
	y := cc.Input(1, 64)
	z, err := NewFloat64Multiplier(cc, x, y)
	if err != nil {
		t.Fatalf("NewFloat64Multiplier failed: %v", err)
	}
	cc.Output(0, z)

	circ, err := cc.Compile()
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return circ
}

func fmul(t *testing.T, circ *circuit.Circuit, x, y float64) float64 {
	t.Helper()
	return math.Float64frombits(compute(t, circ,
		math.Float64bits(x), math.Float64bits(y)))
}

func TestFloat64Multiplier(t *testing.T) {
	circ := compileFloat64Multiplier(t)

	tests := [][2]float64{
		{2.0, 1.5},
		{3.0, 1.5},
		{-2.5, 4.0},
		{0.1, 0.2},
		{1.0 / 3.0, 3.0},
		{math.Pi, math.E},
		{-1.7976931348623157e+150, 1e150},
		{1e-150, 1e-150},
		{1.0000000000000002, 1.0000000000000002},
		{math.MaxFloat64, 1.0},
		{math.MaxFloat64, 0.5},
	}
	for _, test := range tests {
		got := fmul(t, circ, test[0], test[1])
		if expected := test[0] * test[1]; got != expected {
			t.Errorf("%v*%v=%v, expected %v", test[0], test[1], got,
				expected)
		}
	}
}

func TestFloat64MultiplierRandom(t *testing.T) {
	circ := compileFloat64Multiplier(t)
	rnd := rand.New(rand.NewSource(3))

	for i := 0; i < 500; i++ {
		x := (rnd.Float64() - 0.5) * math.Pow(2, float64(rnd.Intn(400)-200))
		y := (rnd.Float64() - 0.5) * math.Pow(2, float64(rnd.Intn(400)-200))
		if x == 0 || y == 0 {
			continue
		}
		got := fmul(t, circ, x, y)
		if expected := x * y; got != expected {
			t.Errorf("%v*%v=%v, expected %v", x, y, got, expected)
		}
	}
}

func TestFloat64MultiplierSpecial(t *testing.T) {
	circ := compileFloat64Multiplier(t)
	inf := math.Inf(1)
	negZero := math.Copysign(0, -1)

	tests := []struct {
		x, y     float64
		expected float64
	}{
		{0, 5, 0},
		{-3, 0, negZero},
		{negZero, negZero, 0},
		{inf, 2, inf},
		{inf, -2, -inf},
		{-inf, -inf, inf},
		{math.MaxFloat64, 2, inf},
		{-math.MaxFloat64, math.MaxFloat64, -inf},
		{1e-200, 1e-200, 0},
		{-1e-200, 1e-200, negZero},
	}
	for _, test := range tests {
		got := fmul(t, circ, test.x, test.y)
		if math.Float64bits(got) != math.Float64bits(test.expected) {
			t.Errorf("%v*%v=%v, expected %v", test.x, test.y, got,
				test.expected)
		}
	}

	nans := [][2]float64{
		{math.NaN(), 1},
		{2, math.NaN()},
		{inf, 0},
		{negZero, -inf},
	}
	for _, test := range nans {
		got := compute(t, circ, math.Float64bits(test[0]),
			math.Float64bits(test[1]))
		if got != Float64QNaN {
			t.Errorf("%v*%v=%x, expected NaN", test[0], test[1], got)
		}
	}
}

func TestFloat64MultiplierArgs(t *testing.T) {
	cc := NewCompiler()
	if _, err := NewFloat64Multiplier(cc, cc.Input(0, 32),
		cc.Input(1, 64)); err == nil {
		t.Fatalf("32-bit operand accepted")
	}
}
