// Package position maps the semantic axes of a Wardley Map onto pixels.
//
// Maturity runs left to right (0 is Genesis, 1 is Commodity). Visibility
// runs bottom to top (0 is the needs axis, 1 is the user), so the vertical
// mapping inverts the axis to match screen coordinates where y grows
// downward. All functions are linear and total: values outside [0, 1] are
// mapped as-is and land outside the canvas.
package position

// Point is a pixel coordinate or a pixel offset.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the offset from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Canvas is the pixel size of the drawing area.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Place maps a (maturity, visibility) pair to a pixel position on c.
func (c Canvas) Place(maturity, visibility float64) Point {
	return Point{
		X: MaturityToX(maturity, c.Width),
		Y: VisibilityToY(visibility, c.Height),
	}
}

// Semantic maps a pixel position on c back to (maturity, visibility).
func (c Canvas) Semantic(p Point) (maturity, visibility float64) {
	return XToMaturity(p.X, c.Width), YToVisibility(p.Y, c.Height)
}

// MaturityToX maps maturity to an x coordinate on a canvas of the given width.
func MaturityToX(maturity, width float64) float64 {
	return maturity * width
}

// VisibilityToY maps visibility to a y coordinate on a canvas of the given
// height. Visibility 1 is the top edge.
func VisibilityToY(visibility, height float64) float64 {
	return (1 - visibility) * height
}

// XToMaturity is the inverse of MaturityToX. It returns 0 for a zero width.
func XToMaturity(x, width float64) float64 {
	if width == 0 {
		return 0
	}
	return x / width
}

// YToVisibility is the inverse of VisibilityToY. It returns 0 for a zero height.
func YToVisibility(y, height float64) float64 {
	if height == 0 {
		return 0
	}
	return 1 - y/height
}
