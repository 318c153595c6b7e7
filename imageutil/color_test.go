package imageutil

import (
	"math"
	"testing"
)

func TestLinearRoundTripAllValues(t *testing.T) {
	for v := 0; v < 256; v++ {
		p := Pixel{R: uint8(v), G: uint8(255 - v), B: uint8(v / 2), A: uint8(v)}
		if got := FromLinear(ToLinear(p)); got != p {
			t.Fatalf("Expected %v to survive linear round trip, got %v", p, got)
		}
	}
}

func TestSRGBTransfer(t *testing.T) {
	if v := DecodeSRGB(1); math.Abs(v-1) > 1e-12 {
		t.Errorf("Expected white to stay 1, got %f", v)
	}
	// Mid-gray 128 is roughly 21.6% linear light.
	if v := ToLinear(Pixel{R: 128}).R; v < 0.21 || v > 0.22 {
		t.Errorf("Expected ~0.216 for 128, got %f", v)
	}
}

func TestHSVRoundTrip(t *testing.T) {
	colors := []Pixel{
		{200, 100, 50, 255},
		{0, 0, 0, 255},
		{255, 255, 255, 10},
		{12, 240, 99, 128},
		{90, 30, 250, 0},
	}
	for _, c := range colors {
		if got := FromHSV(ToHSV(c), c.A); got != c {
			t.Errorf("HSV: expected %v, got %v (hsv %+v)", c, got, ToHSV(c))
		}
		if got := FromHSL(ToHSL(c), c.A); got != c {
			t.Errorf("HSL: expected %v, got %v (hsl %+v)", c, got, ToHSL(c))
		}
	}
}

func TestToHSV(t *testing.T) {
	hsv := ToHSV(Pixel{R: 255, A: 255})
	if hsv.H != 0 || hsv.S != 1 || hsv.V != 1 {
		t.Errorf("Expected pure red to be (0,1,1), got %+v", hsv)
	}
	hsv = ToHSV(Pixel{B: 255, A: 255})
	if hsv.H != 240 {
		t.Errorf("Expected blue hue 240, got %f", hsv.H)
	}
}

func TestLumaAndLuminance(t *testing.T) {
	p := Pixel{R: 255, A: 255}
	if Luma(p) != 85 {
		t.Errorf("Expected luma 85, got %f", Luma(p))
	}
	if l := Luminance(p); l < 76 || l > 77 {
		t.Errorf("Red should have luminance ~76, got %f", l)
	}
}
