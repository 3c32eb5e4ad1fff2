package vision

import "math"

// iouEpsilon keeps the IoU denominator non-zero when both boxes are
// degenerate, so malformed detections score 0 instead of dividing by zero.
const iouEpsilon = 1e-6

// Point is a 2D position in pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is an axis-aligned bounding box in pixel coordinates with
// (X1,Y1) the top-left and (X2,Y2) the bottom-right corner.
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Area returns the box area. Inverted or non-finite boxes have zero area,
// so they fail to overlap anything rather than producing an error.
func (b Box) Area() float64 {
	w := b.X2 - b.X1
	h := b.Y2 - b.Y1
	if !(w > 0) || !(h > 0) || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return 0
	}
	return w * h
}

// Center returns the box midpoint.
func (b Box) Center() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: (b.Y1 + b.Y2) / 2}
}

// IoU returns the intersection-over-union of two boxes: 0 for disjoint or
// degenerate boxes, 1 for identical non-degenerate boxes. Symmetric.
func IoU(a, b Box) float64 {
	ix1 := math.Max(a.X1, b.X1)
	iy1 := math.Max(a.Y1, b.Y1)
	ix2 := math.Min(a.X2, b.X2)
	iy2 := math.Min(a.Y2, b.Y2)

	iw := ix2 - ix1
	ih := iy2 - iy1
	if !(iw > 0) || !(ih > 0) {
		return 0
	}
	inter := iw * ih

	union := a.Area() + b.Area() - inter + iouEpsilon
	return inter / union
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
