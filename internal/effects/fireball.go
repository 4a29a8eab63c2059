package effects

import (
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/jmylchreest/atrium/internal/scene"
)

const (
	stageRadius     = 15
	fireballGravity = -9.8
)

// fireball lobs a burning projectile onto a random point inside the stage
// radius. Spawn velocity is solved so the ballistic arc lands on the chosen
// target; crossing below y=0 detonates a short particle burst. The bursts
// are tracked transients advanced by the same Update tick as the
// projectile, then released once spent. Perpetual: a new launch is
// scheduled after each impact.
type fireball struct {
	base
	rng       *rand.Rand
	intensity float32

	ball      *scene.Mesh
	vel       scene.Vec3
	inFlight  bool
	respawnIn float32
	bursts    []*burst
}

type burst struct {
	points *scene.Points
	age    float32
	life   float32
}

func newFireball(host *scene.Group, intensity float32, rng *rand.Rand) *fireball {
	return &fireball{
		base:      newBase(host, "fireball"),
		rng:       rng,
		intensity: intensity,
	}
}

func (e *fireball) Init() {
	mat := scene.NewMaterial(scene.RGB(1, 0.4, 0.1))
	mat.Emissive = scene.RGB(1, 0.35, 0.1)
	mat.EmissiveIntensity = 2.5
	e.ball = scene.NewMesh("fireball-projectile", scene.NewSphereGeometry(0.6, 10, 8), mat)
	e.ball.Visible = false
	e.group.Add(e.ball)
	e.respawnIn = 0.8
}

// launch picks a target inside the stage and solves the arc that reaches it
// in flight time T: vy = (ty - sy - g*T*T/2) / T.
func (e *fireball) launch() {
	angle := e.rng.Float32() * 2 * math32.Pi
	r := e.rng.Float32() * stageRadius
	target := scene.V3(r*math32.Cos(angle), 0, r*math32.Sin(angle))

	start := scene.V3(
		target.X-25-e.rng.Float32()*10,
		30+e.rng.Float32()*10,
		target.Z+(e.rng.Float32()-0.5)*20,
	)
	flight := 2 + e.rng.Float32()

	e.vel = scene.V3(
		(target.X-start.X)/flight,
		(target.Y-start.Y-fireballGravity*flight*flight/2)/flight,
		(target.Z-start.Z)/flight,
	)
	e.ball.Position = start
	e.ball.Visible = true
	e.inFlight = true
}

func (e *fireball) Update(dt float32) {
	e.updateBursts(dt)

	if !e.inFlight {
		e.respawnIn -= dt
		if e.respawnIn <= 0 {
			e.launch()
		}
		return
	}

	e.vel.Y += fireballGravity * dt
	e.ball.Position = e.ball.Position.Add(e.vel.Scale(dt))
	if e.ball.Position.Y < 0 {
		impact := e.ball.Position
		impact.Y = 0
		e.explode(impact)
		e.ball.Visible = false
		e.inFlight = false
		e.respawnIn = (1.5 + e.rng.Float32()*2.5) / (0.5 + e.intensity)
	}
}

func (e *fireball) explode(at scene.Vec3) {
	count := 30 + int(30*e.intensity)
	positions := make([]scene.Vec3, count)
	velocities := make([]scene.Vec3, count)
	for i := range positions {
		positions[i] = at
		angle := e.rng.Float32() * 2 * math32.Pi
		pitch := e.rng.Float32() * math32.Pi / 2
		speed := 3 + e.rng.Float32()*5
		velocities[i] = scene.V3(
			math32.Cos(angle)*math32.Cos(pitch)*speed,
			math32.Sin(pitch)*speed,
			math32.Sin(angle)*math32.Cos(pitch)*speed,
		)
	}
	mat := scene.NewPointsMaterial(scene.RGB(1, 0.55, 0.2), 0.25)
	mat.Transparent = true
	mat.Blending = scene.AdditiveBlending
	pts := scene.NewPoints("fireball-burst", scene.NewPointsGeometry(positions), mat)
	pts.Velocities = velocities
	e.group.Add(pts)
	e.bursts = append(e.bursts, &burst{points: pts, life: 0.9})
}

func (e *fireball) updateBursts(dt float32) {
	alive := e.bursts[:0]
	for _, b := range e.bursts {
		b.age += dt
		if b.age >= b.life {
			scene.DetachAndDispose(b.points)
			continue
		}
		for i := range b.points.Geometry.Positions {
			b.points.Velocities[i].Y += fireballGravity * 0.5 * dt
			b.points.Geometry.Positions[i] = b.points.Geometry.Positions[i].Add(b.points.Velocities[i].Scale(dt))
		}
		b.points.Material.Opacity = 1 - b.age/b.life
		alive = append(alive, b)
	}
	e.bursts = alive
}
