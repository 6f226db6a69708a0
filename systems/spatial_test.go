package systems

import (
	"math"
	"testing"
)

func bodiesAt(coords ...[2]float32) []Body {
	bodies := make([]Body, len(coords))
	for i, c := range coords {
		bodies[i] = Body{Idx: int32(i), ID: uint32(i + 1), X: c[0], Y: c[1]}
	}
	return bodies
}

func fillGrid(g *SpatialGrid, bodies []Body) {
	for i := range bodies {
		g.Insert(bodies[i].Idx, bodies[i].X, bodies[i].Y)
	}
}

func TestQueryRadius(t *testing.T) {
	bodies := bodiesAt([2]float32{50, 50}, [2]float32{60, 50}, [2]float32{200, 200})
	g := NewSpatialGrid(400, 400, 32)
	fillGrid(g, bodies)

	got := g.QueryRadiusInto(nil, 50, 50, 20, 0, bodies)
	if len(got) != 1 {
		t.Fatalf("got %d neighbors, want 1", len(got))
	}
	if got[0].Idx != 1 {
		t.Errorf("neighbor idx = %d, want 1", got[0].Idx)
	}
	if math.Abs(float64(got[0].DistSq-100)) > 0.001 {
		t.Errorf("DistSq = %v, want 100", got[0].DistSq)
	}
}

func TestQueryRadiusExcludesSelf(t *testing.T) {
	bodies := bodiesAt([2]float32{50, 50}, [2]float32{50, 50})
	g := NewSpatialGrid(400, 400, 32)
	fillGrid(g, bodies)

	got := g.QueryRadiusInto(nil, 50, 50, 10, 0, bodies)
	if len(got) != 1 || got[0].Idx != 1 {
		t.Errorf("self should be excluded, got %+v", got)
	}
}

func TestQueryRadiusWrapsTorus(t *testing.T) {
	// Bodies on opposite edges are close through the seam
	bodies := bodiesAt([2]float32{5, 200}, [2]float32{395, 200})
	g := NewSpatialGrid(400, 400, 32)
	fillGrid(g, bodies)

	got := g.QueryRadiusInto(nil, 5, 200, 15, 0, bodies)
	if len(got) != 1 {
		t.Fatalf("seam neighbor not found, got %d results", len(got))
	}
	if got[0].DX > 0 {
		t.Errorf("DX = %v, want negative (shortest path crosses the seam)", got[0].DX)
	}
	if math.Abs(float64(got[0].DistSq-100)) > 0.001 {
		t.Errorf("DistSq = %v, want 100", got[0].DistSq)
	}
}

func TestToroidalDelta(t *testing.T) {
	tests := []struct {
		name           string
		x1, y1, x2, y2 float32
		wantDX, wantDY float32
	}{
		{"direct", 10, 10, 30, 40, 20, 30},
		{"wrap x", 10, 50, 390, 50, -20, 0},
		{"wrap y", 50, 10, 50, 390, 0, -20},
		{"wrap both", 395, 395, 5, 5, 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dx, dy := ToroidalDelta(tt.x1, tt.y1, tt.x2, tt.y2, 400, 400)
			if dx != tt.wantDX || dy != tt.wantDY {
				t.Errorf("ToroidalDelta = (%v, %v), want (%v, %v)", dx, dy, tt.wantDX, tt.wantDY)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		x    float32
		want float32
	}{
		{"inside", 55, 55},
		{"past edge", 105, 5},
		{"negative", -5, 95},
		{"exactly span", 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Wrap(tt.x, 100); math.Abs(float64(got-tt.want)) > 0.001 {
				t.Errorf("Wrap(%v, 100) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}
