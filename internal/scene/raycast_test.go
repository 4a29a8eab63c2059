package scene

import (
	"testing"
)

func TestIntersectSphere(t *testing.T) {
	r := Ray{Origin: V3(0, 0, -10), Dir: V3(0, 0, 1)}

	tests := []struct {
		name   string
		center Vec3
		radius float32
		hit    bool
		dist   float32
	}{
		{"dead ahead", V3(0, 0, 0), 1, true, 9},
		{"behind origin", V3(0, 0, -20), 1, false, 0},
		{"offset miss", V3(5, 0, 0), 1, false, 0},
		{"grazing inside", V3(0, 0, -10), 2, true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := r.IntersectSphere(tt.center, tt.radius)
			if ok != tt.hit {
				t.Fatalf("Expected hit=%v, got %v", tt.hit, ok)
			}
			if ok && (d < tt.dist-0.01 || d > tt.dist+0.01) {
				t.Errorf("Expected distance near %f, got %f", tt.dist, d)
			}
		})
	}
}

func TestRaycastOrdering(t *testing.T) {
	root := NewScene("root")
	near := NewMesh("near", NewSphereGeometry(1, 8, 6), NewMaterial(Grey(1)))
	near.Position = V3(0, 0, 5)
	far := NewMesh("far", NewSphereGeometry(1, 8, 6), NewMaterial(Grey(1)))
	far.Position = V3(0, 0, 15)
	root.Add(far, near)

	hits := Raycast(root, Ray{Origin: V3(0, 0, 0), Dir: V3(0, 0, 1)})
	if len(hits) != 2 {
		t.Fatalf("Expected 2 hits, got %d", len(hits))
	}
	if hits[0].Object != near || hits[1].Object != far {
		t.Errorf("Expected nearest-first ordering")
	}
}

func TestRaycastSkipsInvisible(t *testing.T) {
	root := NewScene("root")
	hidden := NewMesh("hidden", NewSphereGeometry(1, 8, 6), NewMaterial(Grey(1)))
	hidden.Position = V3(0, 0, 5)
	hidden.Visible = false
	root.Add(hidden)

	if hits := Raycast(root, Ray{Origin: V3(0, 0, 0), Dir: V3(0, 0, 1)}); len(hits) != 0 {
		t.Errorf("Expected no hits on invisible mesh, got %d", len(hits))
	}
}

func TestCameraProjectRayRoundTrip(t *testing.T) {
	cam := NewCamera(60, 16.0/9.0)
	cam.Position = V3(0, 10, 30)
	cam.Target = V3(0, 0, 0)

	p := V3(3, 2, -4)
	ndcX, ndcY, depth, ok := cam.Project(p)
	if !ok {
		t.Fatalf("Expected point in front of camera to project")
	}
	if depth <= 0 {
		t.Fatalf("Expected positive depth, got %f", depth)
	}

	// A ray through the projected coordinates passes back through the point.
	ray := cam.Ray(ndcX, ndcY)
	toPoint := p.Sub(ray.Origin)
	along := ray.Dir.Scale(toPoint.Dot(ray.Dir))
	if miss := toPoint.Sub(along).Length(); miss > 0.01 {
		t.Errorf("Expected ray to pass through projected point, miss distance %f", miss)
	}
}

func TestCameraProjectBehind(t *testing.T) {
	cam := NewCamera(60, 1)
	cam.Position = V3(0, 0, 10)
	cam.Target = V3(0, 0, 0)

	if _, _, _, ok := cam.Project(V3(0, 0, 20)); ok {
		t.Errorf("Expected point behind camera to fail projection")
	}
}
