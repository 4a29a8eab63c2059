// Package water animates a single water surface through five mutually
// exclusive states: a still sheen, concentric ripples, rolling waves,
// turbulent chop with splashes, and a frozen ice sheet. State changes fully
// tear down the previous state's vertex deformers and auxiliary particle
// systems before installing the next.
package water

import (
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/jmylchreest/atrium/internal/scene"
	"github.com/jmylchreest/atrium/internal/weather"
)

// Default surface used when no mesh is supplied at construction.
const (
	defaultSize     = 60
	defaultSegments = 48
)

// Config selects the water state, colour and strength. Zero values keep the
// current setting, so colour and motion pattern stay independent axes.
type Config struct {
	State     weather.WaterState
	Color     string
	Intensity float32
}

// deformer rewrites the mesh's vertex heights for elapsed time t.
type deformer func(t float32)

// Manager owns one water mesh and its state-specific auxiliaries. Not safe
// for concurrent use; the scene tick and state changes are serialized by
// the caller.
type Manager struct {
	mesh     *scene.Mesh
	ownsMesh bool

	base      []scene.Vec3 // rest-pose vertex positions
	baseMat   *scene.Material
	state     weather.WaterState
	intensity float32
	elapsed   float32

	deformers []deformer
	aux       []scene.Object // overlay + particle systems of the active state
	iceMat    *scene.Material

	disposed bool
}

// New wraps mesh as the managed water surface. A nil mesh creates a default
// plane attached to parent; the manager then owns and disposes it.
func New(mesh *scene.Mesh, parent scene.Object) *Manager {
	owns := false
	if mesh == nil {
		geo := scene.NewPlaneGeometry(defaultSize, defaultSize, defaultSegments, defaultSegments)
		mat := scene.NewMaterial(scene.RGB(0.10, 0.42, 0.54))
		mat.Transparent = true
		mat.Opacity = 0.85
		mat.Roughness = 0.15
		mat.Metalness = 0.4
		mesh = scene.NewMesh("water", geo, mat)
		if parent != nil {
			parent.Base().Add(mesh)
		}
		owns = true
	}

	base := make([]scene.Vec3, len(mesh.Geometry.Positions))
	copy(base, mesh.Geometry.Positions)

	return &Manager{
		mesh:      mesh,
		ownsMesh:  owns,
		base:      base,
		baseMat:   mesh.Material,
		state:     weather.WaterCalm,
		intensity: 1,
	}
}

// Mesh returns the managed surface.
func (m *Manager) Mesh() *scene.Mesh { return m.mesh }

// State returns the active water state.
func (m *Manager) State() weather.WaterState { return m.state }

// UpdateEffect replaces the active state per cfg. Previous deformers and
// auxiliary systems are removed and disposed first. Must not be called
// after Dispose.
func (m *Manager) UpdateEffect(cfg Config) {
	if cfg.Intensity > 0 {
		m.intensity = scene.Clamp(cfg.Intensity, 0, 1)
	}
	if cfg.State != "" {
		m.clearState()
		m.state = cfg.State
		switch cfg.State {
		case weather.WaterCalm:
			m.installCalm()
		case weather.WaterRipples:
			m.installRipples()
		case weather.WaterWaves:
			m.installWaves()
		case weather.WaterTurbulent:
			m.installTurbulent()
		case weather.WaterFrozen:
			m.installFrozen()
		}
	}
	if cfg.Color != "" {
		m.mesh.Material.Color = scene.Hex(cfg.Color, m.mesh.Material.Color)
	}
}

// Update advances the active state by dt seconds: vertex deformation is a
// function of accumulated elapsed time, splash and snow particles integrate
// velocity*dt.
func (m *Manager) Update(dt float32) {
	if m.disposed {
		return
	}
	m.elapsed += dt
	for _, d := range m.deformers {
		d(m.elapsed)
	}
	for _, obj := range m.aux {
		switch n := obj.(type) {
		case *scene.Points:
			m.advectParticles(n, dt)
		case *scene.Mesh:
			// Overlay shimmer.
			n.Material.Opacity = 0.25 + 0.08*math32.Sin(m.elapsed*0.8)
		}
	}
}

// Dispose releases everything the manager created. Safe to call twice. The
// wrapped mesh is released only when the manager created it.
func (m *Manager) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	m.clearState()
	if m.ownsMesh {
		scene.DetachAndDispose(m.mesh)
	}
}

// clearState removes deformers, restores the rest pose and base material,
// and disposes auxiliary nodes.
func (m *Manager) clearState() {
	m.deformers = nil
	copy(m.mesh.Geometry.Positions, m.base)
	for _, obj := range m.aux {
		scene.DetachAndDispose(obj)
	}
	m.aux = nil
	if m.iceMat != nil {
		m.mesh.Material = m.baseMat
		m.iceMat.Dispose()
		m.iceMat = nil
	}
}

func (m *Manager) installCalm() {
	pos := m.mesh.Geometry.Positions
	base := m.base
	amp := 0.04 * m.intensity
	m.deformers = append(m.deformers, func(t float32) {
		for i, b := range base {
			pos[i].Y = b.Y + amp*math32.Sin(t*0.5+b.X*0.08+b.Z*0.06)
		}
	})
}

func (m *Manager) installRipples() {
	pos := m.mesh.Geometry.Positions
	base := m.base
	amp := 0.18 * m.intensity
	m.deformers = append(m.deformers, func(t float32) {
		for i, b := range base {
			r := math32.Sqrt(b.X*b.X + b.Z*b.Z)
			pos[i].Y = b.Y + amp*math32.Sin(r*0.9-t*2.2)/(1+r*0.12)
		}
	})
}

func (m *Manager) installWaves() {
	pos := m.mesh.Geometry.Positions
	base := m.base
	amp := 0.45 * m.intensity
	m.deformers = append(m.deformers, func(t float32) {
		for i, b := range base {
			h := math32.Sin(b.X*0.35+t*1.4)*0.5 +
				math32.Sin(b.Z*0.28+t*1.1)*0.3 +
				math32.Sin((b.X+b.Z)*0.2+t*1.9)*0.2
			pos[i].Y = b.Y + amp*h
		}
	})
}

func (m *Manager) installTurbulent() {
	pos := m.mesh.Geometry.Positions
	base := m.base
	amp := 0.8 * m.intensity
	m.deformers = append(m.deformers, func(t float32) {
		for i, b := range base {
			h := math32.Sin(b.X*0.9+t*3.1)*0.4 +
				math32.Sin(b.Z*1.1-t*2.6)*0.35 +
				math32.Sin(b.X*0.3+b.Z*0.5+t*4.2)*0.25
			pos[i].Y = b.Y + amp*h
		}
	})
	m.aux = append(m.aux, m.spawnSplashes())
}

// installFrozen swaps to an ice material, lays a translucent sheet above the
// surface and starts falling snow. No vertex deformer runs while frozen.
func (m *Manager) installFrozen() {
	ice := scene.NewMaterial(scene.RGB(0.66, 0.85, 0.94))
	ice.Roughness = 0.05
	ice.Metalness = 0.1
	ice.Transparent = true
	ice.Opacity = 0.95
	m.iceMat = ice
	m.mesh.Material = ice

	overlayGeo := scene.NewPlaneGeometry(m.extent(), m.extent(), 1, 1)
	overlayMat := scene.NewMaterial(scene.RGB(0.85, 0.93, 1.0))
	overlayMat.Transparent = true
	overlayMat.Opacity = 0.25
	overlay := scene.NewMesh("water-ice-overlay", overlayGeo, overlayMat)
	overlay.Position = scene.V3(0, 0.05, 0)
	m.mesh.Add(overlay)
	m.aux = append(m.aux, overlay, m.spawnSnow())
}

// extent reports the managed surface's width from its rest pose.
func (m *Manager) extent() float32 {
	if len(m.base) == 0 {
		return defaultSize
	}
	minX, maxX := m.base[0].X, m.base[0].X
	for _, b := range m.base {
		if b.X < minX {
			minX = b.X
		}
		if b.X > maxX {
			maxX = b.X
		}
	}
	return maxX - minX
}

func (m *Manager) spawnSnow() *scene.Points {
	ext := m.extent()
	count := int(120 * m.intensity)
	if count < 30 {
		count = 30
	}
	positions := make([]scene.Vec3, count)
	velocities := make([]scene.Vec3, count)
	for i := range positions {
		positions[i] = scene.V3(
			(rand.Float32()-0.5)*ext,
			rand.Float32()*12,
			(rand.Float32()-0.5)*ext,
		)
		velocities[i] = scene.V3((rand.Float32()-0.5)*0.3, -(0.8 + rand.Float32()*0.6), (rand.Float32()-0.5)*0.3)
	}
	mat := scene.NewPointsMaterial(scene.Grey(0.95), 0.12)
	mat.Transparent = true
	mat.Opacity = 0.9
	pts := scene.NewPoints("water-snow", scene.NewPointsGeometry(positions), mat)
	pts.Velocities = velocities
	m.mesh.Add(pts)
	return pts
}

func (m *Manager) spawnSplashes() *scene.Points {
	ext := m.extent()
	count := int(80 * m.intensity)
	if count < 20 {
		count = 20
	}
	positions := make([]scene.Vec3, count)
	velocities := make([]scene.Vec3, count)
	for i := range positions {
		positions[i] = scene.V3((rand.Float32()-0.5)*ext, rand.Float32()*0.5, (rand.Float32()-0.5)*ext)
		velocities[i] = scene.V3((rand.Float32()-0.5)*0.8, 2+rand.Float32()*2, (rand.Float32()-0.5)*0.8)
	}
	mat := scene.NewPointsMaterial(scene.RGB(0.8, 0.9, 0.95), 0.1)
	mat.Transparent = true
	mat.Opacity = 0.7
	mat.Blending = scene.AdditiveBlending
	pts := scene.NewPoints("water-splash", scene.NewPointsGeometry(positions), mat)
	pts.Velocities = velocities
	m.mesh.Add(pts)
	return pts
}

// advectParticles integrates velocities and recycles particles that leave
// the active band: snow respawns at the top, splashes at the surface.
func (m *Manager) advectParticles(p *scene.Points, dt float32) {
	ext := m.extent()
	gravity := float32(0)
	if p.Name == "water-splash" {
		gravity = -6
	}
	for i := range p.Geometry.Positions {
		v := &p.Velocities[i]
		v.Y += gravity * dt
		pos := &p.Geometry.Positions[i]
		*pos = pos.Add(v.Scale(dt))
		if pos.Y < 0 && p.Name == "water-splash" {
			*pos = scene.V3((rand.Float32()-0.5)*ext, 0, (rand.Float32()-0.5)*ext)
			*v = scene.V3((rand.Float32()-0.5)*0.8, 2+rand.Float32()*2, (rand.Float32()-0.5)*0.8)
		}
		if pos.Y < 0.05 && p.Name == "water-snow" {
			*pos = scene.V3((rand.Float32()-0.5)*ext, 12, (rand.Float32()-0.5)*ext)
		}
	}
}
