package effects

import (
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/jmylchreest/atrium/internal/scene"
)

// fireRing wraps the stage perimeter in a band of rising flame particles
// over a glowing base torus. Perpetual.
type fireRing struct {
	base
	rng       *rand.Rand
	intensity float32

	flames  *scene.Points
	ring    *scene.Mesh
	radius  float32
	ceiling float32
	elapsed float32
}

func newFireRing(host *scene.Group, intensity float32, rng *rand.Rand) *fireRing {
	return &fireRing{
		base:      newBase(host, "fire-ring"),
		rng:       rng,
		intensity: intensity,
		radius:    16,
	}
}

func (e *fireRing) Init() {
	ringMat := scene.NewMaterial(scene.RGB(0.9, 0.3, 0.05))
	ringMat.Emissive = scene.RGB(1, 0.4, 0.1)
	ringMat.EmissiveIntensity = 1.5
	e.ring = scene.NewMesh("fire-ring-base", scene.NewTorusGeometry(e.radius, 0.3, 8, 48), ringMat)
	e.ring.Position = scene.V3(0, 0.15, 0)
	e.group.Add(e.ring)

	e.ceiling = 2.5 + 1.5*e.intensity
	count := 150 + int(100*e.intensity)
	positions := make([]scene.Vec3, count)
	velocities := make([]scene.Vec3, count)
	for i := range positions {
		positions[i] = e.spawnPoint()
		positions[i].Y = e.rng.Float32() * e.ceiling
		velocities[i] = scene.V3((e.rng.Float32()-0.5)*0.3, 1.5+e.rng.Float32(), (e.rng.Float32()-0.5)*0.3)
	}
	mat := scene.NewPointsMaterial(scene.RGB(1, 0.45, 0.1), 0.2)
	mat.Transparent = true
	mat.Opacity = 0.75
	mat.Blending = scene.AdditiveBlending
	e.flames = scene.NewPoints("fire-ring-flames", scene.NewPointsGeometry(positions), mat)
	e.flames.Velocities = velocities
	e.group.Add(e.flames)
}

func (e *fireRing) spawnPoint() scene.Vec3 {
	angle := e.rng.Float32() * 2 * math32.Pi
	r := e.radius + (e.rng.Float32()-0.5)*1.6
	return scene.V3(r*math32.Cos(angle), 0, r*math32.Sin(angle))
}

func (e *fireRing) Update(dt float32) {
	e.elapsed += dt
	for i := range e.flames.Geometry.Positions {
		p := &e.flames.Geometry.Positions[i]
		*p = p.Add(e.flames.Velocities[i].Scale(dt))
		if p.Y > e.ceiling {
			*p = e.spawnPoint()
		}
	}
	e.flames.Material.Opacity = 0.6 + 0.15*math32.Sin(e.elapsed*7)
	e.ring.Material.EmissiveIntensity = 1.3 + 0.4*math32.Sin(e.elapsed*5)
}
