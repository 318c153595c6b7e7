package imageutil

import "fmt"

// Coord is a signed pixel position. Kernel offsets may push it negative
// before it is checked with InBounds.
type Coord struct {
	X, Y int
}

// Pt is shorthand for Coord{x, y}.
func Pt(x, y int) Coord {
	return Coord{X: x, Y: y}
}

// CoordFromIndex converts a row-major pixel index to a coordinate.
func CoordFromIndex(i, width int) Coord {
	return Coord{X: i % width, Y: i / width}
}

func (c Coord) Add(o Coord) Coord {
	return Coord{X: c.X + o.X, Y: c.Y + o.Y}
}

func (c Coord) Sub(o Coord) Coord {
	return Coord{X: c.X - o.X, Y: c.Y - o.Y}
}

func (c Coord) Scale(k int) Coord {
	return Coord{X: c.X * k, Y: c.Y * k}
}

// InBounds reports whether c addresses a pixel of an s-sized buffer.
func (c Coord) InBounds(s Size) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < s.Width && c.Y < s.Height
}

// Index returns the row-major pixel index of c in a buffer of the given width.
func (c Coord) Index(width int) int {
	return c.Y*width + c.X
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Size is a width and height in pixels.
type Size struct {
	Width, Height int
}

// Area returns Width*Height.
func (s Size) Area() int {
	return s.Width * s.Height
}

// Shrink returns the size left after removing border pixels from every edge,
// never negative.
func (s Size) Shrink(border int) Size {
	return Size{Width: max(s.Width-2*border, 0), Height: max(s.Height-2*border, 0)}
}

// Grow returns the size after adding border pixels to every edge.
func (s Size) Grow(border int) Size {
	return Size{Width: s.Width + 2*border, Height: s.Height + 2*border}
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}
