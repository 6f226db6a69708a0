// Package systems provides the spatial, physical and sensory machinery the
// world's tick pipeline is built from.
package systems

import (
	"github.com/tetch/pond/components"
)

// Body is a frozen per-organism view built once at the start of a tick. The
// sense and decide phases read only bodies, never live ECS state, so they
// can run in parallel. Idx is the body's index in the tick's id-sorted
// snapshot slice.
type Body struct {
	Idx       int32
	ID        uint32
	X, Y      float32
	Heading   float32
	Speed     float32
	Energy    float32
	MaxEnergy float32
	Age       float32
	Sex       components.Sex
	State     components.State
	IsChild   bool
	ParentA   uint32
	ParentB   uint32

	VisionRange     float32
	VisionHalfAngle float32
	MaxSpeed        float32
	Fertility       float32
	SleepPressure   float32
}

// Neighbor is a nearby body with precomputed toroidal delta and squared
// distance, so sensors never recompute them.
type Neighbor struct {
	Idx    int32
	DX, DY float32
	DistSq float32
}

// MaxQueryResults caps the number of neighbors returned by spatial queries,
// bounding per-organism work in dense clusters.
const MaxQueryResults = 128

// SpatialGrid buckets body indices into cells for O(1) neighbor lookups.
// Cells preserve insertion order, so inserting bodies in id order keeps
// query results deterministic.
type SpatialGrid struct {
	cellSize float32
	cols     int
	rows     int
	width    float32
	height   float32
	cells    [][]int32
}

// NewSpatialGrid creates a grid covering the given world size.
func NewSpatialGrid(width, height, cellSize float32) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]int32, cols*rows)
	for i := range cells {
		cells[i] = make([]int32, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		width:    width,
		height:   height,
		cells:    cells,
	}
}

// Clear empties every cell, keeping capacity for reuse across ticks.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds a body index at the given position.
func (g *SpatialGrid) Insert(idx int32, x, y float32) {
	ci := g.cellIndex(x, y)
	g.cells[ci] = append(g.cells[ci], idx)
}

// QueryRadiusInto appends bodies within radius of (x, y) to dst, up to
// MaxQueryResults, excluding the querying body itself. Reuse dst across
// calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, x, y, radius float32, exclude int32, bodies []Body) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1
	centerCol := int(x / g.cellSize)
	centerRow := int(y / g.cellSize)
	radiusSq := radius * radius

	for dc := -cellRadius; dc <= cellRadius; dc++ {
		for dr := -cellRadius; dr <= cellRadius; dr++ {
			// Toroidal wrap of the cell coordinates
			col := ((centerCol+dc)%g.cols + g.cols) % g.cols
			row := ((centerRow+dr)%g.rows + g.rows) % g.rows

			for _, bi := range g.cells[row*g.cols+col] {
				if bi == exclude {
					continue
				}
				b := &bodies[bi]
				dx, dy := ToroidalDelta(x, y, b.X, b.Y, g.width, g.height)
				distSq := dx*dx + dy*dy
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{Idx: bi, DX: dx, DY: dy, DistSq: distSq})
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}

	return dst
}

// cellIndex returns the flat index for a world position.
func (g *SpatialGrid) cellIndex(x, y float32) int {
	col := int(x / g.cellSize)
	row := int(y / g.cellSize)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return row*g.cols + col
}

// ToroidalDelta returns the shortest path delta from (x1,y1) to (x2,y2).
func ToroidalDelta(x1, y1, x2, y2, w, h float32) (dx, dy float32) {
	dx = x2 - x1
	dy = y2 - y1

	if dx > w/2 {
		dx -= w
	} else if dx < -w/2 {
		dx += w
	}
	if dy > h/2 {
		dy -= h
	} else if dy < -h/2 {
		dy += h
	}

	return dx, dy
}
