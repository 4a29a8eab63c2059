package scene

import (
	"github.com/chewxy/math32"
)

// Camera is a perspective camera. It lives outside the scene graph; the
// renderer and picker consume its view parameters directly.
type Camera struct {
	Position Vec3
	Target   Vec3
	Up       Vec3
	FOV      float32 // vertical field of view in degrees
	Aspect   float32
	Near     float32
	Far      float32
}

// NewCamera returns a camera with conventional defaults placed on the +Z
// axis looking at the origin.
func NewCamera(fov, aspect float32) *Camera {
	return &Camera{
		Position: Vec3{0, 10, 30},
		Up:       Vec3{0, 1, 0},
		FOV:      fov,
		Aspect:   aspect,
		Near:     0.1,
		Far:      1000,
	}
}

// Basis returns the camera's orthonormal view basis: forward towards the
// target, right, and true up.
func (c *Camera) Basis() (forward, right, up Vec3) {
	forward = c.Target.Sub(c.Position).Normalize()
	right = forward.Cross(c.Up).Normalize()
	up = right.Cross(forward)
	return forward, right, up
}

// Ray returns a world-space picking ray through normalized device
// coordinates (ndcX, ndcY in [-1, 1], +Y up).
func (c *Camera) Ray(ndcX, ndcY float32) Ray {
	forward, right, up := c.Basis()
	halfH := math32.Tan(c.FOV * math32.Pi / 360)
	halfW := halfH * c.Aspect
	dir := forward.
		Add(right.Scale(ndcX * halfW)).
		Add(up.Scale(ndcY * halfH)).
		Normalize()
	return Ray{Origin: c.Position, Dir: dir}
}

// Project maps a world-space point to normalized device coordinates plus
// view depth. ok is false for points at or behind the camera plane.
func (c *Camera) Project(p Vec3) (ndcX, ndcY, depth float32, ok bool) {
	forward, right, up := c.Basis()
	rel := p.Sub(c.Position)
	depth = rel.Dot(forward)
	if depth <= c.Near {
		return 0, 0, depth, false
	}
	halfH := math32.Tan(c.FOV*math32.Pi/360) * depth
	halfW := halfH * c.Aspect
	ndcX = rel.Dot(right) / halfW
	ndcY = rel.Dot(up) / halfH
	return ndcX, ndcY, depth, true
}
