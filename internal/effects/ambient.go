package effects

import (
	"fmt"
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/jmylchreest/atrium/internal/scene"
)

// birds circles a small flock high above the stage. Every bird's position
// is a pure function of elapsed time and its own phase, so variable frame
// rates never accumulate drift.
type birds struct {
	base
	rng *rand.Rand

	flock   []*scene.Mesh
	orbits  []birdOrbit
	elapsed float32
}

type birdOrbit struct {
	radius float32
	height float32
	speed  float32
	phase  float32
}

func newBirds(host *scene.Group, _ float32, rng *rand.Rand) *birds {
	return &birds{base: newBase(host, "birds"), rng: rng}
}

func (e *birds) Init() {
	count := 5 + e.rng.Intn(4)
	for i := 0; i < count; i++ {
		mat := scene.NewMaterial(scene.Grey(0.2))
		bird := scene.NewMesh(fmt.Sprintf("bird-%d", i), scene.NewConeGeometry(0.18, 0.5, 5), mat)
		bird.Rotation = scene.V3(math32.Pi/2, 0, 0)
		e.group.Add(bird)
		e.flock = append(e.flock, bird)
		e.orbits = append(e.orbits, birdOrbit{
			radius: 14 + e.rng.Float32()*8,
			height: 16 + e.rng.Float32()*6,
			speed:  0.3 + e.rng.Float32()*0.3,
			phase:  e.rng.Float32() * 2 * math32.Pi,
		})
	}
}

func (e *birds) Update(dt float32) {
	e.elapsed += dt
	for i, bird := range e.flock {
		o := e.orbits[i]
		a := o.phase + e.elapsed*o.speed
		bird.Position = scene.V3(
			math32.Cos(a)*o.radius,
			o.height+math32.Sin(e.elapsed*2+o.phase)*0.6,
			math32.Sin(a)*o.radius,
		)
		bird.Rotation.Y = -a
	}
}

// embers rise from the stage floor, flickering, and recycle at a low
// ceiling.
type embers struct {
	base
	rng       *rand.Rand
	intensity float32

	points  *scene.Points
	elapsed float32
}

func newEmbers(host *scene.Group, intensity float32, rng *rand.Rand) *embers {
	return &embers{base: newBase(host, "embers"), rng: rng, intensity: intensity}
}

func (e *embers) Init() {
	count := 60 + int(60*e.intensity)
	positions := make([]scene.Vec3, count)
	velocities := make([]scene.Vec3, count)
	for i := range positions {
		positions[i] = e.spawn()
		positions[i].Y = e.rng.Float32() * 6
		velocities[i] = scene.V3((e.rng.Float32()-0.5)*0.4, 0.8+e.rng.Float32()*1.2, (e.rng.Float32()-0.5)*0.4)
	}
	mat := scene.NewPointsMaterial(scene.RGB(1, 0.5, 0.15), 0.12)
	mat.Transparent = true
	mat.Opacity = 0.8
	mat.Blending = scene.AdditiveBlending
	e.points = scene.NewPoints("ember-points", scene.NewPointsGeometry(positions), mat)
	e.points.Velocities = velocities
	e.group.Add(e.points)
}

func (e *embers) spawn() scene.Vec3 {
	angle := e.rng.Float32() * 2 * math32.Pi
	r := e.rng.Float32() * 12
	return scene.V3(r*math32.Cos(angle), 0.2, r*math32.Sin(angle))
}

func (e *embers) Update(dt float32) {
	e.elapsed += dt
	for i := range e.points.Geometry.Positions {
		p := &e.points.Geometry.Positions[i]
		*p = p.Add(e.points.Velocities[i].Scale(dt))
		if p.Y > 6 {
			*p = e.spawn()
		}
	}
	e.points.Material.Opacity = 0.65 + 0.2*math32.Sin(e.elapsed*6)
}

// sparkles scatters softly twinkling motes through the air dome.
type sparkles struct {
	base
	rng       *rand.Rand
	intensity float32

	points  *scene.Points
	elapsed float32
}

func newSparkles(host *scene.Group, intensity float32, rng *rand.Rand) *sparkles {
	return &sparkles{base: newBase(host, "sparkles"), rng: rng, intensity: intensity}
}

func (e *sparkles) Init() {
	count := 60 + int(50*e.intensity)
	positions := make([]scene.Vec3, count)
	velocities := make([]scene.Vec3, count)
	for i := range positions {
		angle := e.rng.Float32() * 2 * math32.Pi
		r := e.rng.Float32() * 20
		positions[i] = scene.V3(r*math32.Cos(angle), 2+e.rng.Float32()*16, r*math32.Sin(angle))
		velocities[i] = scene.V3((e.rng.Float32()-0.5)*0.1, (e.rng.Float32()-0.5)*0.1, (e.rng.Float32()-0.5)*0.1)
	}
	mat := scene.NewPointsMaterial(scene.Grey(1), 0.08)
	mat.Transparent = true
	mat.Opacity = 0.7
	mat.Blending = scene.AdditiveBlending
	e.points = scene.NewPoints("sparkle-points", scene.NewPointsGeometry(positions), mat)
	e.points.Velocities = velocities
	e.group.Add(e.points)
}

func (e *sparkles) Update(dt float32) {
	e.elapsed += dt
	for i := range e.points.Geometry.Positions {
		e.points.Geometry.Positions[i] = e.points.Geometry.Positions[i].Add(e.points.Velocities[i].Scale(dt))
	}
	e.points.Material.Opacity = 0.5 + 0.35*math32.Sin(e.elapsed*3)
}

// snowfall drops flakes over the whole stage footprint and recycles them at
// the ceiling.
type snowfall struct {
	base
	rng       *rand.Rand
	intensity float32

	points *scene.Points
}

func newSnowfall(host *scene.Group, intensity float32, rng *rand.Rand) *snowfall {
	return &snowfall{base: newBase(host, "snowfall"), rng: rng, intensity: intensity}
}

func (e *snowfall) Init() {
	count := 200 + int(200*e.intensity)
	positions := make([]scene.Vec3, count)
	velocities := make([]scene.Vec3, count)
	for i := range positions {
		positions[i] = scene.V3((e.rng.Float32()-0.5)*70, e.rng.Float32()*20, (e.rng.Float32()-0.5)*70)
		velocities[i] = scene.V3((e.rng.Float32()-0.5)*0.4, -(1.2 + e.rng.Float32()*0.8), (e.rng.Float32()-0.5)*0.4)
	}
	mat := scene.NewPointsMaterial(scene.Grey(0.95), 0.14)
	mat.Transparent = true
	mat.Opacity = 0.9
	e.points = scene.NewPoints("snowfall-points", scene.NewPointsGeometry(positions), mat)
	e.points.Velocities = velocities
	e.group.Add(e.points)
}

func (e *snowfall) Update(dt float32) {
	for i := range e.points.Geometry.Positions {
		p := &e.points.Geometry.Positions[i]
		*p = p.Add(e.points.Velocities[i].Scale(dt))
		if p.Y < 0 {
			*p = scene.V3((e.rng.Float32()-0.5)*70, 20, (e.rng.Float32()-0.5)*70)
		}
	}
}

// fireflies meander near the ground on per-point sinusoidal paths keyed to
// elapsed time.
type fireflies struct {
	base
	rng       *rand.Rand
	intensity float32

	points  *scene.Points
	bases   []scene.Vec3
	phases  []scene.Vec3
	elapsed float32
}

func newFireflies(host *scene.Group, intensity float32, rng *rand.Rand) *fireflies {
	return &fireflies{base: newBase(host, "fireflies"), rng: rng, intensity: intensity}
}

func (e *fireflies) Init() {
	count := 18 + int(14*e.intensity)
	positions := make([]scene.Vec3, count)
	e.bases = make([]scene.Vec3, count)
	e.phases = make([]scene.Vec3, count)
	for i := range positions {
		angle := e.rng.Float32() * 2 * math32.Pi
		r := 4 + e.rng.Float32()*10
		e.bases[i] = scene.V3(r*math32.Cos(angle), 1+e.rng.Float32()*3, r*math32.Sin(angle))
		e.phases[i] = scene.V3(
			e.rng.Float32()*2*math32.Pi,
			e.rng.Float32()*2*math32.Pi,
			e.rng.Float32()*2*math32.Pi,
		)
		positions[i] = e.bases[i]
	}
	mat := scene.NewPointsMaterial(scene.RGB(0.8, 1, 0.3), 0.1)
	mat.Transparent = true
	mat.Opacity = 0.85
	mat.Blending = scene.AdditiveBlending
	e.points = scene.NewPoints("firefly-points", scene.NewPointsGeometry(positions), mat)
	e.group.Add(e.points)
}

func (e *fireflies) Update(dt float32) {
	e.elapsed += dt
	t := e.elapsed
	for i := range e.points.Geometry.Positions {
		b := e.bases[i]
		ph := e.phases[i]
		e.points.Geometry.Positions[i] = scene.V3(
			b.X+math32.Sin(t*0.7+ph.X)*0.8,
			b.Y+math32.Sin(t*1.1+ph.Y)*0.5,
			b.Z+math32.Cos(t*0.9+ph.Z)*0.8,
		)
	}
	e.points.Material.Opacity = 0.6 + 0.25*math32.Sin(t*2.4)
}
