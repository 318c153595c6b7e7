package imageutil

import (
	"testing"

	"github.com/wbrown/pixelpipe/progress"
)

func gradientOf(w, h int, mags []float32, d Direction) *GradientResult {
	dirs := make([]Direction, len(mags))
	for i := range dirs {
		dirs[i] = d
	}
	return &GradientResult{Width: w, Height: h, Magnitude: mags, Direction: dirs}
}

func TestNonMaxSuppressionThinsEqualRidge(t *testing.T) {
	g := gradientOf(6, 3, []float32{
		0, 0, 4, 4, 0, 0,
		0, 0, 4, 4, 0, 0,
		0, 0, 4, 4, 0, 0,
	}, West)
	p := &progress.Progress{}
	out := NonMaxSuppression(g, p)

	want := []float32{
		0, 0, 0, 4, 0, 0,
		0, 0, 0, 4, 0, 0,
		0, 0, 0, 4, 0, 0,
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, out)
		}
	}
	if !p.Done() {
		t.Errorf("Expected one increment per row, got %d of %d", p.Value(), p.Max())
	}
}

func TestNonMaxSuppressionUsesDirection(t *testing.T) {
	// A diagonal ridge survives along NE/SW but is suppressed when compared
	// against the vertical neighbours that carry a larger value.
	mags := []float32{
		0, 0, 0, 0, 0,
		0, 1, 0, 9, 0,
		0, 0, 5, 0, 0,
		0, 9, 0, 1, 0,
		0, 0, 0, 0, 0,
	}
	out := NonMaxSuppression(gradientOf(5, 5, mags, NorthWest), nil)
	if out[2*5+2] != 5 {
		t.Errorf("NW/SE axis: expected centre 5 kept, got %v", out[2*5+2])
	}
	out = NonMaxSuppression(gradientOf(5, 5, mags, NorthEast), nil)
	if out[2*5+2] != 0 {
		t.Errorf("NE/SW axis: expected centre suppressed, got %v", out[2*5+2])
	}
	out = NonMaxSuppression(gradientOf(5, 5, mags, South), nil)
	if out[2*5+2] != 5 {
		t.Errorf("N/S axis: expected centre 5 kept, got %v", out[2*5+2])
	}
}

func TestDoubleThreshold(t *testing.T) {
	got := DoubleThreshold([]float32{0, 0.99, 1, 1.5, 2, 10}, 1, 2, nil)
	want := []ThresholdClass{ThresholdNone, ThresholdNone, ThresholdWeak, ThresholdWeak, ThresholdStrong, ThresholdStrong}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestRenderThresholds(t *testing.T) {
	classes := []ThresholdClass{
		ThresholdStrong, ThresholdWeak,
		ThresholdNone, ThresholdWeak,
	}
	p := &progress.Progress{}
	out := RenderThresholds(classes, Size{Width: 4, Height: 4}, 1, p)

	checks := map[Coord]Pixel{
		{1, 1}: EdgeStrong,
		{2, 1}: EdgeWeak,
		{1, 2}: EdgeNone,
		{2, 2}: EdgeWeak,
		{0, 0}: EdgeNone,
		{3, 3}: EdgeNone,
	}
	for c, want := range checks {
		if got := out.Pixel(c); got != want {
			t.Errorf("%v: expected %v, got %v", c, want, got)
		}
	}
	if p.Value() != 2 {
		t.Errorf("Expected 2 interior rows, got %d", p.Value())
	}
}
