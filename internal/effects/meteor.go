package effects

import (
	"fmt"
	"math/rand"

	"github.com/jmylchreest/atrium/internal/scene"
)

// meteorShower is the one finite built-in: a volley of glowing rocks falls
// through the scene and the effect reports Finished once every rock has
// dropped below the floor or the lifetime cap is hit.
type meteorShower struct {
	base
	rng       *rand.Rand
	intensity float32

	meteors []meteorBody
	elapsed float32
	maxLife float32
}

type meteorBody struct {
	mesh *scene.Mesh
	vel  scene.Vec3
	spin scene.Vec3
	done bool
}

func newMeteorShower(host *scene.Group, intensity float32, rng *rand.Rand) *meteorShower {
	return &meteorShower{
		base:      newBase(host, "meteor-shower"),
		rng:       rng,
		intensity: intensity,
		maxLife:   18,
	}
}

func (e *meteorShower) Init() {
	count := 8 + int(14*e.intensity)
	e.meteors = make([]meteorBody, count)
	for i := range e.meteors {
		size := 0.25 + e.rng.Float32()*0.3
		mat := scene.NewMaterial(scene.RGB(0.45, 0.3, 0.25))
		mat.Emissive = scene.RGB(1, 0.45, 0.15)
		mat.EmissiveIntensity = 2
		mesh := scene.NewMesh(fmt.Sprintf("meteor-%d", i), scene.NewOctahedronGeometry(size), mat)
		mesh.Position = scene.V3(
			(e.rng.Float32()-0.5)*90,
			28+e.rng.Float32()*16,
			(e.rng.Float32()-0.5)*90,
		)
		e.group.Add(mesh)
		e.meteors[i] = meteorBody{
			mesh: mesh,
			vel: scene.V3(
				-6-e.rng.Float32()*6,
				-14-e.rng.Float32()*8,
				(e.rng.Float32()-0.5)*8,
			),
			spin: scene.V3(e.rng.Float32()*4, e.rng.Float32()*4, e.rng.Float32()*4),
		}
	}
}

func (e *meteorShower) Update(dt float32) {
	e.elapsed += dt
	for i := range e.meteors {
		m := &e.meteors[i]
		if m.done {
			continue
		}
		m.mesh.Position = m.mesh.Position.Add(m.vel.Scale(dt))
		m.mesh.Rotation = m.mesh.Rotation.Add(m.spin.Scale(dt))
		if m.mesh.Position.Y < -4 {
			m.done = true
			m.mesh.Visible = false
		}
	}
}

func (e *meteorShower) Finished() bool {
	if e.elapsed > e.maxLife {
		return true
	}
	for i := range e.meteors {
		if !e.meteors[i].done {
			return false
		}
	}
	return len(e.meteors) > 0
}
