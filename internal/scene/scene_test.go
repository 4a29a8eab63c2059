package scene

import (
	"math"
	"testing"
)

func TestAddRemoveReparent(t *testing.T) {
	root := NewScene("root")
	a := NewGroup("a")
	b := NewGroup("b")
	child := NewMesh("child", NewBoxGeometry(1, 1, 1), NewMaterial(Grey(0.5)))

	root.Add(a, b)
	a.Add(child)

	if got := len(root.Children()); got != 2 {
		t.Fatalf("Expected root to have 2 children, got %d", got)
	}
	if child.Parent() != a {
		t.Errorf("Expected child parent to be a")
	}

	// Adding to b must detach from a first.
	b.Add(child)
	if len(a.Children()) != 0 {
		t.Errorf("Expected a to have no children after reparent, got %d", len(a.Children()))
	}
	if child.Parent() != b {
		t.Errorf("Expected child parent to be b after reparent")
	}

	if !b.Remove(child) {
		t.Errorf("Expected Remove to report true for direct child")
	}
	if b.Remove(child) {
		t.Errorf("Expected Remove to report false for detached node")
	}
	if child.Parent() != nil {
		t.Errorf("Expected detached child to have nil parent")
	}
}

func TestTraverseAndCount(t *testing.T) {
	root := NewScene("root")
	g := NewGroup("g")
	root.Add(g)
	for i := 0; i < 3; i++ {
		g.Add(NewGroup("leaf"))
	}

	if got := Count(root); got != 5 {
		t.Errorf("Expected Count 5, got %d", got)
	}

	// Returning false for a branch root skips its subtree.
	visited := 0
	Traverse(root, func(o Object) bool {
		visited++
		return o.Base().Name != "g"
	})
	if visited != 2 {
		t.Errorf("Expected traversal to visit 2 nodes when pruning at g, got %d", visited)
	}
}

func TestFindByName(t *testing.T) {
	root := NewScene("root")
	inner := NewGroup("inner")
	target := NewGroup("holographic-screen")
	root.Add(inner)
	inner.Add(target)

	if got := FindByName(root, "holographic-screen"); got != target {
		t.Errorf("Expected FindByName to return the nested group")
	}
	if got := FindByName(root, "missing"); got != nil {
		t.Errorf("Expected nil for a missing name, got %v", got)
	}
}

func TestWorldPosition(t *testing.T) {
	root := NewScene("root")
	parent := NewGroup("parent")
	child := NewGroup("child")
	root.Add(parent)
	parent.Add(child)

	parent.Position = V3(10, 0, 0)
	child.Position = V3(0, 5, 0)

	got := child.WorldPosition()
	want := V3(10, 5, 0)
	if got.DistanceTo(want) > 1e-5 {
		t.Errorf("Expected world position %v, got %v", want, got)
	}

	// Rotating the parent 90 degrees about Y carries the child with it.
	parent.Rotation = V3(0, math.Pi/2, 0)
	child.Position = V3(1, 0, 0)
	got = child.WorldPosition()
	want = V3(10, 0, -1)
	if got.DistanceTo(want) > 1e-5 {
		t.Errorf("Expected rotated world position %v, got %v", want, got)
	}
}

func TestWorldVisible(t *testing.T) {
	root := NewScene("root")
	parent := NewGroup("parent")
	child := NewGroup("child")
	root.Add(parent)
	parent.Add(child)

	if !child.WorldVisible() {
		t.Errorf("Expected child to be world-visible by default")
	}
	parent.Visible = false
	if child.WorldVisible() {
		t.Errorf("Expected child to inherit parent invisibility")
	}
}

func TestDetachAndDispose(t *testing.T) {
	root := NewScene("root")
	group := NewGroup("group")
	mesh := NewMesh("m", NewBoxGeometry(1, 1, 1), NewMaterial(Grey(0.2)))
	pts := NewPoints("p", NewPointsGeometry([]Vec3{{}, {1, 1, 1}}), NewPointsMaterial(Grey(1), 0.5))
	group.Add(mesh, pts)
	root.Add(group)

	DetachAndDispose(group)

	if len(root.Children()) != 0 {
		t.Errorf("Expected group removed from root, got %d children", len(root.Children()))
	}
	if !mesh.Geometry.Disposed() || !mesh.Material.Disposed() {
		t.Errorf("Expected mesh geometry and material disposed")
	}
	if !pts.Geometry.Disposed() || !pts.Material.Disposed() {
		t.Errorf("Expected points geometry and material disposed")
	}

	// A second dispose is a no-op, not a panic.
	DetachAndDispose(group)
}
