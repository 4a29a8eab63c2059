package scene

import (
	"sort"

	"github.com/chewxy/math32"
)

// Ray is a world-space half-line.
type Ray struct {
	Origin Vec3
	Dir    Vec3 // unit length
}

// Hit is one ray intersection, nearest-first when returned from Raycast.
type Hit struct {
	Object   Object
	Distance float32
	Point    Vec3
}

// IntersectSphere returns the distance along the ray to a sphere, or false
// when the ray misses or the sphere is behind the origin.
func (r Ray) IntersectSphere(center Vec3, radius float32) (float32, bool) {
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Dir)
	c := oc.LengthSq() - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math32.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// Raycast intersects the ray against the bounding spheres of every visible
// mesh in the subtree, returning hits sorted by distance. Particle systems
// and lights are not pickable.
func Raycast(root Object, r Ray) []Hit {
	var hits []Hit
	Traverse(root, func(o Object) bool {
		if !o.Base().Visible {
			return false
		}
		mesh, isMesh := o.(*Mesh)
		if !isMesh || mesh.Geometry == nil {
			return true
		}
		localCenter, radius := mesh.Geometry.Bounds()
		world := mesh.WorldMatrix()
		center := world.ApplyPoint(localCenter)
		radius *= mesh.Scl.MaxComponent()
		if t, ok := r.IntersectSphere(center, radius); ok {
			hits = append(hits, Hit{Object: o, Distance: t, Point: r.At(t)})
		}
		return true
	})
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}
