package effects

import (
	"fmt"
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/jmylchreest/atrium/internal/scene"
)

// shootingStar streaks a bright head with a fading point trail across the
// sky and respawns on a randomized interval. Perpetual.
type shootingStar struct {
	base
	rng       *rand.Rand
	intensity float32

	head      *scene.Mesh
	trail     *scene.Points
	vel       scene.Vec3
	inFlight  bool
	respawnIn float32
}

const trailLen = 12

func newShootingStar(host *scene.Group, intensity float32, rng *rand.Rand) *shootingStar {
	return &shootingStar{
		base:      newBase(host, "shooting-star"),
		rng:       rng,
		intensity: intensity,
	}
}

func (e *shootingStar) Init() {
	mat := scene.NewMaterial(scene.Grey(1))
	mat.Emissive = scene.RGB(1, 1, 0.9)
	mat.EmissiveIntensity = 3
	e.head = scene.NewMesh("star-head", scene.NewSphereGeometry(0.2, 8, 6), mat)
	e.head.Visible = false
	e.group.Add(e.head)

	tmat := scene.NewPointsMaterial(scene.RGB(1, 1, 0.85), 0.15)
	tmat.Transparent = true
	tmat.Opacity = 0.8
	tmat.Blending = scene.AdditiveBlending
	e.trail = scene.NewPoints("star-trail", scene.NewPointsGeometry(make([]scene.Vec3, trailLen)), tmat)
	e.trail.Visible = false
	e.group.Add(e.trail)

	e.respawnIn = 0.5
}

func (e *shootingStar) launch() {
	side := float32(1)
	if e.rng.Float32() < 0.5 {
		side = -1
	}
	e.head.Position = scene.V3(side*50, 25+e.rng.Float32()*15, (e.rng.Float32()-0.5)*60)
	e.vel = scene.V3(-side*(20+e.rng.Float32()*10), -6-e.rng.Float32()*4, (e.rng.Float32()-0.5)*6)
	e.head.Visible = true
	e.trail.Visible = true
	e.inFlight = true
}

func (e *shootingStar) Update(dt float32) {
	if !e.inFlight {
		e.respawnIn -= dt
		if e.respawnIn <= 0 {
			e.launch()
		}
		return
	}
	e.head.Position = e.head.Position.Add(e.vel.Scale(dt))

	back := e.vel.Normalize().Scale(-0.6)
	for i := range e.trail.Geometry.Positions {
		e.trail.Geometry.Positions[i] = e.head.Position.Add(back.Scale(float32(i + 1)))
	}

	if e.head.Position.Y < 2 || math32.Abs(e.head.Position.X) > 60 {
		e.head.Visible = false
		e.trail.Visible = false
		e.inFlight = false
		e.respawnIn = (2 + e.rng.Float32()*4) / (0.5 + e.intensity)
	}
}

// aurora hangs layered translucent curtains high over the stage, swaying
// and shimmering as a pure function of elapsed time. Perpetual.
type aurora struct {
	base
	intensity float32

	curtains  []*scene.Mesh
	baseAlpha []float32
	elapsed   float32
}

func newAurora(host *scene.Group, intensity float32, _ *rand.Rand) *aurora {
	return &aurora{base: newBase(host, "aurora"), intensity: intensity}
}

func (e *aurora) Init() {
	colors := []scene.Color{
		scene.RGB(0.3, 1, 0.6),
		scene.RGB(0.45, 0.7, 1),
		scene.RGB(0.75, 0.4, 1),
	}
	for i, c := range colors {
		mat := scene.NewMaterial(c)
		mat.Emissive = c
		mat.EmissiveIntensity = 1.2
		mat.Transparent = true
		mat.Opacity = 0.12 + 0.18*e.intensity
		mat.Blending = scene.AdditiveBlending
		mat.Side = scene.DoubleSide

		curtain := scene.NewMesh(fmt.Sprintf("aurora-curtain-%d", i),
			scene.NewPlaneGeometry(44, 10, 16, 1), mat)
		curtain.Rotation = scene.V3(math32.Pi/2, 0, 0)
		curtain.Position = scene.V3(0, 26+float32(i)*3, -18-float32(i)*5)
		e.group.Add(curtain)
		e.curtains = append(e.curtains, curtain)
		e.baseAlpha = append(e.baseAlpha, mat.Opacity)
	}
}

func (e *aurora) Update(dt float32) {
	e.elapsed += dt
	for i, c := range e.curtains {
		fi := float32(i)
		c.Rotation.Z = 0.05 * math32.Sin(e.elapsed*0.3+fi)
		c.Material.Opacity = e.baseAlpha[i] + 0.06*math32.Sin(e.elapsed*0.5+fi*1.3)
	}
}

// lightning fires a jagged bolt at randomized intervals: segments flash in
// with a point-light spike, fade over a quarter second and are torn down
// until the next strike. Perpetual.
type lightning struct {
	base
	rng       *rand.Rand
	intensity float32

	light    *scene.PointLight
	bolt     *scene.Group
	boltAge  float32
	strikeIn float32
}

const boltFade = 0.3

func newLightning(host *scene.Group, intensity float32, rng *rand.Rand) *lightning {
	return &lightning{
		base:      newBase(host, "lightning"),
		rng:       rng,
		intensity: intensity,
	}
}

func (e *lightning) Init() {
	e.light = scene.NewPointLight("lightning-light", scene.RGB(0.85, 0.9, 1), 0, 70)
	e.light.Position = scene.V3(0, 25, 0)
	e.group.Add(e.light)
	e.strikeIn = 1 + e.rng.Float32()*3
}

func (e *lightning) strike() {
	x := (e.rng.Float32() - 0.5) * 50
	z := (e.rng.Float32() - 0.5) * 50
	e.bolt = scene.NewGroup("lightning-bolt")

	const steps = 5
	top := scene.V3(x, 30, z)
	for i := 0; i < steps; i++ {
		bottom := scene.V3(
			top.X+(e.rng.Float32()-0.5)*3,
			top.Y-30/float32(steps),
			top.Z+(e.rng.Float32()-0.5)*3,
		)
		seg := bottom.Sub(top)
		mat := scene.NewMaterial(scene.Grey(1))
		mat.Emissive = scene.RGB(0.9, 0.95, 1)
		mat.EmissiveIntensity = 4
		mat.Transparent = true
		mesh := scene.NewMesh(fmt.Sprintf("bolt-seg-%d", i),
			scene.NewCylinderGeometry(0.06, 0.1, seg.Length(), 5), mat)
		mesh.Position = top.Add(seg.Scale(0.5))
		mesh.Rotation = scene.V3(seg.Z*0.1, 0, -seg.X*0.1)
		e.bolt.Add(mesh)
		top = bottom
	}
	e.group.Add(e.bolt)
	e.light.Position = scene.V3(x, 25, z)
	e.boltAge = 0
}

func (e *lightning) Update(dt float32) {
	if e.bolt == nil {
		e.strikeIn -= dt
		if e.strikeIn <= 0 {
			e.strike()
		}
		return
	}
	e.boltAge += dt
	fade := 1 - e.boltAge/boltFade
	if fade < 0 {
		fade = 0
	}
	e.light.Intensity = 9 * e.intensity * fade
	for _, c := range e.bolt.Children() {
		if m, ok := c.(*scene.Mesh); ok {
			m.Material.Opacity = fade
		}
	}
	if e.boltAge >= boltFade {
		scene.DetachAndDispose(e.bolt)
		e.bolt = nil
		e.light.Intensity = 0
		e.strikeIn = (1.5 + e.rng.Float32()*3) / (0.5 + e.intensity)
	}
}
