package engine

import (
	"github.com/chewxy/math32"

	"github.com/jmylchreest/atrium/internal/scene"
)

const (
	minPolar    = 0.05
	maxPolar    = math32.Pi/2 - 0.05
	minDistance = 6
	maxDistance = 80
)

// OrbitControls drives the camera on a damped spherical orbit around a
// target point. Input methods adjust the desired pose; Update eases the
// current pose towards it and writes the camera position every frame.
type OrbitControls struct {
	camera *scene.Camera

	Target scene.Vec3

	azimuth  float32
	polar    float32
	distance float32

	wantAzimuth  float32
	wantPolar    float32
	wantDistance float32

	// Damping controls how quickly the pose converges; 0 snaps instantly.
	Damping float32

	autoRotateSpeed float32
}

// NewOrbitControls creates controls initialised from the camera's current
// position relative to the target.
func NewOrbitControls(cam *scene.Camera, target scene.Vec3) *OrbitControls {
	c := &OrbitControls{
		camera:  cam,
		Target:  target,
		Damping: 8,
	}
	rel := cam.Position.Sub(target)
	c.distance = rel.Length()
	if c.distance == 0 {
		c.distance = minDistance
	}
	c.polar = math32.Acos(scene.Clamp(rel.Y/c.distance, -1, 1))
	c.azimuth = math32.Atan2(rel.X, rel.Z)
	c.wantAzimuth = c.azimuth
	c.wantPolar = scene.Clamp(c.polar, minPolar, maxPolar)
	c.wantDistance = scene.Clamp(c.distance, minDistance, maxDistance)
	return c
}

// Rotate adjusts the desired azimuth and polar angles by deltas in radians.
func (c *OrbitControls) Rotate(dAzimuth, dPolar float32) {
	c.wantAzimuth += dAzimuth
	c.wantPolar = scene.Clamp(c.wantPolar+dPolar, minPolar, maxPolar)
}

// Zoom scales the desired orbit distance; factors below 1 move closer.
func (c *OrbitControls) Zoom(factor float32) {
	if factor <= 0 {
		return
	}
	c.wantDistance = scene.Clamp(c.wantDistance*factor, minDistance, maxDistance)
}

// Pan shifts the orbit target in the camera's horizontal plane.
func (c *OrbitControls) Pan(dx, dz float32) {
	sin, cos := math32.Sin(c.azimuth), math32.Cos(c.azimuth)
	c.Target.X += dx*cos - dz*sin
	c.Target.Z += -dx*sin - dz*cos
}

// SetAutoRotate spins the orbit at the given azimuthal speed in radians per
// second; 0 disables.
func (c *OrbitControls) SetAutoRotate(speed float32) {
	c.autoRotateSpeed = speed
}

// Update eases the orbit towards the desired pose and repositions the
// camera.
func (c *OrbitControls) Update(dt float32) {
	if c.autoRotateSpeed != 0 {
		c.wantAzimuth += c.autoRotateSpeed * dt
	}
	k := float32(1)
	if c.Damping > 0 {
		k = 1 - math32.Exp(-c.Damping*dt)
	}
	c.azimuth += (c.wantAzimuth - c.azimuth) * k
	c.polar += (c.wantPolar - c.polar) * k
	c.distance += (c.wantDistance - c.distance) * k

	sp := math32.Sin(c.polar)
	c.camera.Position = scene.V3(
		c.Target.X+c.distance*sp*math32.Sin(c.azimuth),
		c.Target.Y+c.distance*math32.Cos(c.polar),
		c.Target.Z+c.distance*sp*math32.Cos(c.azimuth),
	)
	c.camera.Target = c.Target
}

// Distance returns the current orbit distance.
func (c *OrbitControls) Distance() float32 { return c.distance }
