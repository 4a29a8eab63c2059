package scene

import (
	"testing"
)

func TestPrimitiveCounts(t *testing.T) {
	tests := []struct {
		name      string
		geom      *Geometry
		vertices  int
		triangles int
	}{
		{"box", NewBoxGeometry(2, 2, 2), 8, 12},
		{"plane 1x1", NewPlaneGeometry(10, 10, 1, 1), 4, 2},
		{"plane 4x4", NewPlaneGeometry(10, 10, 4, 4), 25, 32},
		{"circle", NewCircleGeometry(3, 8), 10, 8},
		{"ring", NewRingGeometry(1, 2, 8), 18, 16},
		{"octahedron", NewOctahedronGeometry(1), 6, 8},
		{"cone", NewConeGeometry(1, 2, 8), 19, 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(tt.geom.Positions); got != tt.vertices {
				t.Errorf("Expected %d vertices, got %d", tt.vertices, got)
			}
			if got := tt.geom.TriangleCount(); got != tt.triangles {
				t.Errorf("Expected %d triangles, got %d", tt.triangles, got)
			}
			for _, idx := range tt.geom.Indices {
				if int(idx) >= len(tt.geom.Positions) {
					t.Fatalf("Index %d out of range (%d vertices)", idx, len(tt.geom.Positions))
				}
			}
		})
	}
}

func TestSphereBounds(t *testing.T) {
	g := NewSphereGeometry(3, 12, 8)
	center, radius := g.Bounds()
	if center.Length() > 1e-4 {
		t.Errorf("Expected sphere centred at origin, got %v", center)
	}
	if radius < 2.9 || radius > 3.1 {
		t.Errorf("Expected bounding radius near 3, got %f", radius)
	}
}

func TestPlaneGridLayout(t *testing.T) {
	// Deformers index the grid row-major; pin the layout.
	g := NewPlaneGeometry(8, 4, 2, 2)
	if len(g.Positions) != 9 {
		t.Fatalf("Expected 9 vertices, got %d", len(g.Positions))
	}

	first := g.Positions[0]
	if first.X != -4 || first.Z != -2 {
		t.Errorf("Expected first vertex at (-4, 0, -2), got %v", first)
	}
	last := g.Positions[8]
	if last.X != 4 || last.Z != 2 {
		t.Errorf("Expected last vertex at (4, 0, 2), got %v", last)
	}
	for _, p := range g.Positions {
		if p.Y != 0 {
			t.Fatalf("Expected flat plane, found y=%f", p.Y)
		}
	}
}

func TestBoundingBox(t *testing.T) {
	g := NewBoxGeometry(2, 4, 6)
	min, max := g.BoundingBox()
	if min != V3(-1, -2, -3) || max != V3(1, 2, 3) {
		t.Errorf("Expected bounds (-1,-2,-3)..(1,2,3), got %v..%v", min, max)
	}
}

func TestGeometryDisposeIdempotent(t *testing.T) {
	g := NewBoxGeometry(1, 1, 1)
	if g.Disposed() {
		t.Fatalf("Expected fresh geometry to be live")
	}
	g.Dispose()
	g.Dispose()
	if !g.Disposed() {
		t.Errorf("Expected geometry disposed after Dispose")
	}
}
