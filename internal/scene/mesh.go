package scene

// Mesh is a drawable node pairing a geometry with a material.
type Mesh struct {
	Object3D
	Geometry *Geometry
	Material *Material
}

// NewMesh creates a named mesh node.
func NewMesh(name string, g *Geometry, m *Material) *Mesh {
	mesh := &Mesh{Geometry: g, Material: m}
	mesh.Object3D = NewObject3D(mesh, name)
	return mesh
}

// Dispose releases the mesh's geometry and material. The node itself stays
// valid; callers detach it from the graph separately.
func (m *Mesh) Dispose() {
	if m == nil {
		return
	}
	m.Geometry.Dispose()
	m.Material.Dispose()
}

// Points is a particle-system node: a cloud of positions drawn as sized
// points. Velocities, when present, are integrated by whoever animates the
// system; the slice is index-aligned with Geometry.Positions.
type Points struct {
	Object3D
	Geometry   *Geometry
	Material   *PointsMaterial
	Velocities []Vec3
}

// NewPoints creates a named particle-system node.
func NewPoints(name string, g *Geometry, m *PointsMaterial) *Points {
	p := &Points{Geometry: g, Material: m}
	p.Object3D = NewObject3D(p, name)
	return p
}

// Dispose releases the particle system's geometry and material.
func (p *Points) Dispose() {
	if p == nil {
		return
	}
	p.Geometry.Dispose()
	p.Material.Dispose()
}

// DisposeTree disposes every mesh and particle system in the subtree rooted
// at obj, then detaches all children of obj. Nodes already disposed are
// skipped by the idempotent Dispose calls.
func DisposeTree(obj Object) {
	if obj == nil {
		return
	}
	Traverse(obj, func(o Object) bool {
		switch n := o.(type) {
		case *Mesh:
			n.Dispose()
		case *Points:
			n.Dispose()
		}
		return true
	})
	obj.Base().Clear()
}

// DetachAndDispose removes obj from its parent (when attached) and disposes
// the whole subtree. This is the single point where graph removal and
// resource release happen together.
func DetachAndDispose(obj Object) {
	if obj == nil {
		return
	}
	if p := obj.Base().Parent(); p != nil {
		p.Base().Remove(obj)
	}
	DisposeTree(obj)
}
