package imageutil

import "math"

// CreateGradientImage creates a horizontal gray gradient test image.
func CreateGradientImage(width, height int) *PixelBuffer {
	b := NewPixelBuffer(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(255 * x / max(width-1, 1))
			b.SetPixel(Pt(x, y), Pixel{R: v, G: v, B: v, A: 255})
		}
	}
	return b
}

// CreateCheckerboardImage creates a black and white checkerboard.
func CreateCheckerboardImage(width, height, squareSize int) *PixelBuffer {
	b := NewFilledBuffer(width, height, Pixel{A: 255})
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if ((x/squareSize)+(y/squareSize))%2 == 0 {
				b.SetPixel(Pt(x, y), Pixel{R: 255, G: 255, B: 255, A: 255})
			}
		}
	}
	return b
}

// CreateSolidImage creates a single-colour image.
func CreateSolidImage(width, height int, c Pixel) *PixelBuffer {
	return NewFilledBuffer(width, height, c)
}

// CreateStepImage creates a sharp vertical edge: columns left of edgeX are
// black, the rest white.
func CreateStepImage(width, height, edgeX int) *PixelBuffer {
	b := NewFilledBuffer(width, height, Pixel{A: 255})
	for y := 0; y < height; y++ {
		for x := edgeX; x < width; x++ {
			b.SetPixel(Pt(x, y), Pixel{R: 255, G: 255, B: 255, A: 255})
		}
	}
	return b
}

// CreateColorBarsImage creates a colour bars test pattern.
func CreateColorBarsImage(width, height int) *PixelBuffer {
	colors := []Pixel{
		{255, 255, 255, 255}, // White
		{255, 255, 0, 255},   // Yellow
		{0, 255, 255, 255},   // Cyan
		{0, 255, 0, 255},     // Green
		{255, 0, 255, 255},   // Magenta
		{255, 0, 0, 255},     // Red
		{0, 0, 255, 255},     // Blue
		{0, 0, 0, 255},       // Black
	}
	b := NewPixelBuffer(width, height)
	barWidth := max(width/len(colors), 1)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			b.SetPixel(Pt(x, y), colors[min(x/barWidth, len(colors)-1)])
		}
	}
	return b
}

// CreateNoiseImage creates deterministic pseudo-random noise from seed.
func CreateNoiseImage(width, height int, seed uint32) *PixelBuffer {
	b := NewPixelBuffer(width, height)
	s := seed | 1
	next := func() uint8 {
		// xorshift32
		s ^= s << 13
		s ^= s >> 17
		s ^= s << 5
		return uint8(s)
	}
	for i := 0; i < len(b.Pix); i += 4 {
		b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3] = next(), next(), next(), 255
	}
	return b
}

// CalculateMSE calculates the mean squared error of the colour channels.
func CalculateMSE(a, b *PixelBuffer) float64 {
	if a.Size() != b.Size() {
		return math.MaxFloat64
	}
	var sumSq float64
	for i := 0; i < len(a.Pix); i += 4 {
		for ch := 0; ch < 3; ch++ {
			d := float64(a.Pix[i+ch]) - float64(b.Pix[i+ch])
			sumSq += d * d
		}
	}
	return sumSq / float64(a.Width()*a.Height()*3)
}

// CalculateMaxDiff returns the largest colour channel difference, or 256
// when the sizes differ.
func CalculateMaxDiff(a, b *PixelBuffer) int {
	if a.Size() != b.Size() {
		return 256
	}
	maxDiff := 0
	for i := 0; i < len(a.Pix); i += 4 {
		for ch := 0; ch < 3; ch++ {
			maxDiff = max(maxDiff, abs(int(a.Pix[i+ch])-int(b.Pix[i+ch])))
		}
	}
	return maxDiff
}

// CalculateJaccardIndex compares two edge maps, treating pixels brighter
// than mid-gray as edges. Returns 1 when both are empty.
func CalculateJaccardIndex(a, b *PixelBuffer) float64 {
	if a.Size() != b.Size() {
		return 0
	}
	var intersection, union int
	for i := 0; i < len(a.Pix); i += 4 {
		e1 := a.Pix[i] > 128
		e2 := b.Pix[i] > 128
		if e1 && e2 {
			intersection++
		}
		if e1 || e2 {
			union++
		}
	}
	if union == 0 {
		return 1.0
	}
	return float64(intersection) / float64(union)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
