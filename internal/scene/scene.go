// Package scene implements a lightweight retained scene graph: a tree of
// named objects carrying transforms, meshes, particle systems and lights,
// with explicit geometry/material disposal and ray picking. It renders
// nothing itself; renderers walk the tree.
package scene

// Object is any node that can live in the scene graph. Concrete node types
// (Group, Mesh, Points, lights) embed Object3D and inherit its behaviour.
type Object interface {
	// Base returns the embedded Object3D carrying transform, name,
	// visibility, children and animation tags.
	Base() *Object3D
}

// Object3D is the shared node state embedded by every concrete object type.
type Object3D struct {
	Name     string
	Position Vec3
	Rotation Vec3 // Euler angles in radians, XYZ order
	Scl      Vec3
	Visible  bool

	// Anims holds the tagged animation descriptors attached to this node.
	// The descriptor list is data only; whoever ticks the scene decides
	// how each variant moves the node.
	Anims []Animation

	parent   Object
	children []Object
	self     Object
}

// NewObject3D initialises base node state. Concrete constructors call this
// with their own receiver so parent links point at the concrete type.
func NewObject3D(self Object, name string) Object3D {
	return Object3D{
		Name:    name,
		Scl:     One(),
		Visible: true,
		self:    self,
	}
}

// Base implements Object.
func (o *Object3D) Base() *Object3D { return o }

// Parent returns the node's parent, or nil for a detached node.
func (o *Object3D) Parent() Object { return o.parent }

// Children returns the node's direct children. The returned slice is the
// live backing slice; callers must not mutate it.
func (o *Object3D) Children() []Object { return o.children }

// Add attaches children to this node, detaching each from any previous
// parent first.
func (o *Object3D) Add(objs ...Object) {
	for _, obj := range objs {
		if obj == nil {
			continue
		}
		b := obj.Base()
		if b.parent != nil {
			b.parent.Base().Remove(obj)
		}
		b.parent = o.owner()
		o.children = append(o.children, obj)
	}
}

// Remove detaches a direct child. Returns false when obj is not a child of
// this node.
func (o *Object3D) Remove(obj Object) bool {
	for i, c := range o.children {
		if c == obj {
			o.children = append(o.children[:i], o.children[i+1:]...)
			obj.Base().parent = nil
			return true
		}
	}
	return false
}

// Clear detaches all children.
func (o *Object3D) Clear() {
	for _, c := range o.children {
		c.Base().parent = nil
	}
	o.children = nil
}

// owner returns the concrete Object this base belongs to, falling back to
// the base itself for bare Object3D values.
func (o *Object3D) owner() Object {
	if o.self != nil {
		return o.self
	}
	return o
}

// Traverse walks the subtree rooted at obj depth-first, calling fn for every
// node including obj itself. Traversal of a branch stops when fn returns
// false for its root.
func Traverse(obj Object, fn func(Object) bool) {
	if obj == nil || !fn(obj) {
		return
	}
	for _, c := range obj.Base().children {
		Traverse(c, fn)
	}
}

// LocalMatrix returns the node's local TRS matrix.
func (o *Object3D) LocalMatrix() Mat4 {
	return ComposeTRS(o.Position, o.Rotation, o.Scl)
}

// WorldMatrix composes the node's transform with all ancestors.
func (o *Object3D) WorldMatrix() Mat4 {
	m := o.LocalMatrix()
	for p := o.parent; p != nil; p = p.Base().parent {
		m = p.Base().LocalMatrix().Mul(m)
	}
	return m
}

// WorldPosition returns the node's origin in world space.
func (o *Object3D) WorldPosition() Vec3 {
	return o.WorldMatrix().ApplyPoint(Vec3{})
}

// WorldVisible reports whether the node and all its ancestors are visible.
func (o *Object3D) WorldVisible() bool {
	if !o.Visible {
		return false
	}
	for p := o.parent; p != nil; p = p.Base().parent {
		if !p.Base().Visible {
			return false
		}
	}
	return true
}

// Group is a plain container node.
type Group struct {
	Object3D
}

// NewGroup creates an empty named group.
func NewGroup(name string) *Group {
	g := &Group{}
	g.Object3D = NewObject3D(g, name)
	return g
}

// Scene is the root of a scene graph plus the scene-wide appearance state a
// renderer needs: background and fog.
type Scene struct {
	Group

	Background Color
	FogColor   Color
	FogDensity float32 // 0 disables fog
}

// NewScene creates an empty scene.
func NewScene(name string) *Scene {
	s := &Scene{}
	s.Object3D = NewObject3D(s, name)
	return s
}

// Count returns the number of nodes in the subtree rooted at obj, including
// obj itself.
func Count(obj Object) int {
	n := 0
	Traverse(obj, func(Object) bool {
		n++
		return true
	})
	return n
}

// FindByName returns the first node in the subtree with the given name, or
// nil when absent.
func FindByName(obj Object, name string) Object {
	var found Object
	Traverse(obj, func(o Object) bool {
		if found != nil {
			return false
		}
		if o.Base().Name == name {
			found = o
			return false
		}
		return true
	})
	return found
}
