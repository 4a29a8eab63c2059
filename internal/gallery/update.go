package gallery

import (
	"github.com/chewxy/math32"

	"github.com/jmylchreest/atrium/internal/scene"
)

// Update advances every animation by dt seconds. Mood speed scales the
// global clock; wind and cloud multipliers additionally scale the island
// and sky subtrees. Orbit-style animations read the scaled absolute clock
// so a registered node's pose depends only on elapsed time, not on tick
// granularity.
func (g *Gallery) Update(dt float32) {
	if g.disposed {
		return
	}
	sdt := dt * g.moodSpeed
	g.animTime += sdt
	t := g.animTime

	for _, e := range g.animated {
		mult := float32(1)
		switch e.class {
		case speedWind:
			mult = g.windScale
		case speedCloud:
			mult = g.cloudScale
		}
		for _, a := range e.obj.Base().Anims {
			g.applyAnim(e.obj, a, t, sdt, mult)
		}
	}

	g.advancePrecipitation(sdt)
	g.waterMgr.Update(sdt)
	g.fx.Update(sdt)
}

// applyAnim moves one node per one animation descriptor. Continuous
// motions (orbits, swims, bobs) are functions of the absolute clock;
// incremental motions (spins, particle advection) integrate the scaled
// step.
func (g *Gallery) applyAnim(obj scene.Object, a scene.Animation, t, sdt, mult float32) {
	b := obj.Base()
	switch an := a.(type) {
	case scene.Breathing:
		op := scene.Clamp(an.BaseOpacity+math32.Sin(t*an.Speed*mult+an.Phase)*an.Range, 0, 1)
		setOpacity(obj, op)
	case scene.Spin:
		step := sdt * mult
		b.Rotation.X += an.Speed.X * step
		b.Rotation.Y += an.Speed.Y * step
		b.Rotation.Z += an.Speed.Z * step
	case scene.Orbit:
		ang := an.Phase + t*an.AngularSpeed*mult
		b.Position.X = an.Center.X + math32.Cos(ang)*an.Radius
		b.Position.Z = an.Center.Z + math32.Sin(ang)*an.Radius
		b.Position.Y = an.BaseHeight + math32.Sin(t*an.BobSpeed*mult+an.Phase)*an.BobAmplitude
	case scene.FloatBob:
		b.Position.Y = an.BaseY + math32.Sin(t*an.Speed*mult+an.Phase)*an.Amplitude
	case scene.PulseLight:
		v := an.Base + math32.Sin(t*an.Speed*mult+an.Phase)*an.Amplitude
		switch l := obj.(type) {
		case *scene.PointLight:
			l.Intensity = v
		case *scene.SpotLight:
			l.Intensity = v
		}
	case scene.EmissivePulse:
		if m, ok := obj.(*scene.Mesh); ok {
			m.Material.EmissiveIntensity = an.Base + math32.Sin(t*an.Speed*mult+an.Phase)*an.Amplitude
		}
	case scene.Swim:
		ang := an.Phase + t*an.AngularSpeed*mult
		b.Position.X = an.Center.X + math32.Cos(ang)*an.Radius
		b.Position.Z = an.Center.Z + math32.Sin(ang)*an.Radius
		b.Position.Y = an.BaseY + math32.Sin(t*an.VerticalSpeed*mult+an.Phase)*an.VerticalAmp
		// Nose along the tangent; negative angular speed flips the heading.
		heading := -(ang + math32.Pi/2)
		if an.AngularSpeed < 0 {
			heading = -(ang - math32.Pi/2)
		}
		b.Rotation.Y = heading
	case scene.Advect:
		if pts, ok := obj.(*scene.Points); ok {
			advect(pts, an, sdt*mult)
		}
	}
}

// setOpacity writes the breathing opacity to whichever material the node
// carries.
func setOpacity(obj scene.Object, op float32) {
	switch n := obj.(type) {
	case *scene.Mesh:
		n.Material.Opacity = op
	case *scene.Points:
		n.Material.Opacity = op
	}
}

// advect integrates a rising particle column and respawns particles that
// clear the ceiling back at the base with a fresh lateral position.
func advect(pts *scene.Points, an scene.Advect, dt float32) {
	pos := pts.Geometry.Positions
	for i := range pos {
		v := pts.Velocities[i]
		pos[i].X += v.X * dt
		pos[i].Y += v.Y * dt
		pos[i].Z += v.Z * dt
		if pos[i].Y > an.CeilingY {
			pos[i].X = (randFrom(pos[i]) - 0.5) * 2 * an.RespawnRadius
			pos[i].Y = an.RespawnY
			pos[i].Z = (randFrom(pts.Geometry.Positions[(i+1)%len(pos)]) - 0.5) * 2 * an.RespawnRadius
		}
	}
}

// randFrom hashes a particle position into [0,1). Advection respawn only
// needs decorrelated scatter, not a seeded stream, and deriving it from
// the position keeps the column free of shared mutable state.
func randFrom(v scene.Vec3) float32 {
	h := v.X*12.9898 + v.Y*78.233 + v.Z*37.719
	s := math32.Sin(h) * 43758.5453
	return s - math32.Floor(s)
}

// advancePrecipitation integrates the rain or snow field and wraps fallen
// particles back above the stage.
func (g *Gallery) advancePrecipitation(dt float32) {
	if g.precip == nil {
		return
	}
	pos := g.precip.Geometry.Positions
	for i := range pos {
		v := g.precip.Velocities[i]
		pos[i].X += v.X * dt
		pos[i].Y += v.Y * dt
		pos[i].Z += v.Z * dt
		if pos[i].Y < waterLevel {
			pos[i].X = (randFrom(pos[i]) - 0.5) * 60
			pos[i].Y = 20 + randFrom(v)*4
			pos[i].Z = (randFrom(scene.V3(v.Z, v.X, v.Y)) - 0.5) * 60
		}
	}
}
