package vision

import (
	"math"
	"testing"
)

func TestBoxArea(t *testing.T) {
	tests := []struct {
		name string
		box  Box
		want float64
	}{
		{"unit square", Box{0, 0, 1, 1}, 1},
		{"rectangle", Box{0, 0, 10, 5}, 50},
		{"offset", Box{2, 3, 6, 9}, 24},
		{"inverted x", Box{10, 0, 0, 10}, 0},
		{"inverted y", Box{0, 10, 10, 0}, 0},
		{"zero width", Box{5, 0, 5, 10}, 0},
		{"nan coordinate", Box{math.NaN(), 0, 10, 10}, 0},
		{"infinite width", Box{math.Inf(-1), 0, math.Inf(1), 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.Area(); got != tt.want {
				t.Errorf("Area() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBoxCenter(t *testing.T) {
	b := Box{0, 0, 10, 10}
	c := b.Center()
	if c.X != 5 || c.Y != 5 {
		t.Errorf("Center() = (%v, %v), want (5, 5)", c.X, c.Y)
	}
}

func TestIoU_IdenticalBoxes(t *testing.T) {
	b := Box{0, 0, 100, 100}
	got := IoU(b, b)
	// The epsilon in the denominator keeps this marginally below 1.0.
	if math.Abs(got-1.0) > 1e-6 {
		t.Errorf("IoU(b, b) = %v, want ~1.0", got)
	}
}

func TestIoU_Symmetry(t *testing.T) {
	a := Box{0, 0, 10, 10}
	b := Box{5, 5, 15, 15}
	if IoU(a, b) != IoU(b, a) {
		t.Errorf("IoU is not symmetric: %v != %v", IoU(a, b), IoU(b, a))
	}
}

func TestIoU_Disjoint(t *testing.T) {
	a := Box{0, 0, 10, 10}
	b := Box{20, 20, 30, 30}
	if got := IoU(a, b); got != 0 {
		t.Errorf("IoU of disjoint boxes = %v, want 0", got)
	}
}

func TestIoU_Touching(t *testing.T) {
	// Boxes sharing an edge have zero intersection area.
	a := Box{0, 0, 10, 10}
	b := Box{10, 0, 20, 10}
	if got := IoU(a, b); got != 0 {
		t.Errorf("IoU of edge-touching boxes = %v, want 0", got)
	}
}

func TestIoU_HalfOverlap(t *testing.T) {
	a := Box{0, 0, 10, 10}
	b := Box{0, 0, 10, 20}
	// intersection = 100, union = 100 + 200 - 100 = 200
	got := IoU(a, b)
	if math.Abs(got-0.5) > 1e-6 {
		t.Errorf("IoU = %v, want ~0.5", got)
	}
}

func TestIoU_DegenerateBoxes(t *testing.T) {
	degenerate := Box{5, 5, 5, 5}
	if got := IoU(degenerate, degenerate); got != 0 {
		t.Errorf("IoU of two degenerate boxes = %v, want 0", got)
	}
	if got := IoU(degenerate, Box{0, 0, 10, 10}); got != 0 {
		t.Errorf("IoU of degenerate vs valid box = %v, want 0", got)
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{"same point", Point{3, 4}, Point{3, 4}, 0},
		{"3-4-5 triangle", Point{0, 0}, Point{3, 4}, 5},
		{"negative coords", Point{-3, -4}, Point{0, 0}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); got != tt.want {
				t.Errorf("Distance() = %v, want %v", got, tt.want)
			}
		})
	}
}
