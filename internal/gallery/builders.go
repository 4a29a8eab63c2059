package gallery

import (
	"fmt"
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/jmylchreest/atrium/internal/scene"
	"github.com/jmylchreest/atrium/internal/theme"
	"github.com/jmylchreest/atrium/internal/weather"
)

// Builders synthesize detached, themed groups for the orchestrator to
// insert into the scene graph. None of them touches the graph it will join,
// so each can be exercised alone: same theme in, visually equivalent group
// out. Scatter placement uses ordinary random draws; only the audience seat
// pool is seeded.

const (
	platformRadius       = 14
	islandStyleThreshold = 100
	waterLevel           = -2
)

type baseHandles struct {
	platform *scene.Mesh   // island-state target
	rim      *scene.Mesh   // neon edge, day/night refresh target
	tiers    []*scene.Mesh // lower tiers, day/night refresh targets
}

func platformMaterial(cfg theme.Config) *scene.Material {
	mat := scene.NewMaterial(cfg.Platform.Color)
	mat.Roughness = cfg.Platform.Roughness
	mat.Metalness = cfg.Platform.Metalness
	mat.Opacity = cfg.Platform.Opacity
	mat.Transparent = cfg.Platform.Opacity < 1
	return mat
}

// buildGeometricBase builds the standard stepped stage: three cylinder
// tiers, a neon rim and a breathing polar grid.
func buildGeometricBase(cfg theme.Config) (*scene.Group, baseHandles) {
	root := scene.NewGroup("base-geometric")
	var h baseHandles

	for i := 0; i < 3; i++ {
		r := platformRadius + float32(i)*1.5
		tier := scene.NewMesh(fmt.Sprintf("platform-tier-%d", i),
			scene.NewCylinderGeometry(r, r*1.03, 0.5, 48), platformMaterial(cfg))
		tier.Position = scene.V3(0, -0.25-0.5*float32(i), 0)
		root.Add(tier)
		if i == 0 {
			h.platform = tier
		} else {
			h.tiers = append(h.tiers, tier)
		}
	}

	rimMat := scene.NewMaterial(cfg.RimColor)
	rimMat.Emissive = cfg.RimColor
	rimMat.EmissiveIntensity = 1
	rimMat.Transparent = true
	rimMat.Opacity = cfg.RimOpacity
	h.rim = scene.NewMesh("platform-rim",
		scene.NewTorusGeometry(platformRadius+0.2, 0.12, 8, 64), rimMat)
	h.rim.Position = scene.V3(0, 0.02, 0)
	root.Add(h.rim)

	root.Add(buildGrid(cfg))
	return root, h
}

// buildGrid lays a polar grid on the stage top: concentric rings plus
// radial spokes, all breathing their opacity.
func buildGrid(cfg theme.Config) *scene.Group {
	grid := scene.NewGroup("grid")
	for i, r := range []float32{3.5, 7, 10.5} {
		mat := scene.NewMaterial(cfg.GridPrimary)
		mat.Emissive = cfg.GridPrimary
		mat.EmissiveIntensity = 0.6
		mat.Transparent = true
		mat.Opacity = cfg.GridOpacity
		ring := scene.NewMesh(fmt.Sprintf("grid-ring-%d", i),
			scene.NewTorusGeometry(r, 0.04, 6, 48), mat)
		ring.Position = scene.V3(0, 0.03, 0)
		ring.Anims = []scene.Animation{scene.Breathing{
			BaseOpacity: cfg.GridOpacity,
			Range:       cfg.GridOpacity * 0.35,
			Speed:       0.9,
			Phase:       float32(i) * 0.7,
		}}
		grid.Add(ring)
	}
	for i := 0; i < 12; i++ {
		angle := float32(i) / 12 * 2 * math32.Pi
		mat := scene.NewMaterial(cfg.GridSecondary)
		mat.Emissive = cfg.GridSecondary
		mat.EmissiveIntensity = 0.4
		mat.Transparent = true
		mat.Opacity = cfg.GridOpacity * 0.8
		spoke := scene.NewMesh(fmt.Sprintf("grid-spoke-%d", i),
			scene.NewBoxGeometry(platformRadius-2, 0.02, 0.06), mat)
		spoke.Position = scene.V3(math32.Cos(angle)*platformRadius/2, 0.03, math32.Sin(angle)*platformRadius/2)
		spoke.Rotation = scene.V3(0, -angle, 0)
		spoke.Anims = []scene.Animation{scene.Breathing{
			BaseOpacity: cfg.GridOpacity * 0.8,
			Range:       cfg.GridOpacity * 0.25,
			Speed:       1.1,
			Phase:       float32(i) * 0.5,
		}}
		grid.Add(spoke)
	}
	return grid
}

// buildIslandBase builds the floating-island stage: a rock underside below
// the platform disc, pulsing crystals and loose debris, with the whole
// island bobbing and slowly turning.
func buildIslandBase(cfg theme.Config) (*scene.Group, baseHandles) {
	root := scene.NewGroup("base-island")
	var h baseHandles

	h.platform = scene.NewMesh("island-platform",
		scene.NewCylinderGeometry(platformRadius, platformRadius*1.02, 0.6, 48),
		platformMaterial(cfg))
	h.platform.Position = scene.V3(0, -0.3, 0)
	root.Add(h.platform)

	rockMat := scene.NewMaterial(scene.RGB(0.35, 0.3, 0.27))
	rockMat.Roughness = 0.95
	rock := scene.NewMesh("island-rock",
		scene.NewCylinderGeometry(platformRadius*0.96, 2.2, 6, 24), rockMat)
	rock.Position = scene.V3(0, -3.6, 0)
	root.Add(rock)
	h.tiers = append(h.tiers, rock)

	rimMat := scene.NewMaterial(cfg.RimColor)
	rimMat.Emissive = cfg.RimColor
	rimMat.EmissiveIntensity = 1
	rimMat.Transparent = true
	rimMat.Opacity = cfg.RimOpacity
	h.rim = scene.NewMesh("island-rim",
		scene.NewTorusGeometry(platformRadius+0.2, 0.12, 8, 64), rimMat)
	h.rim.Position = scene.V3(0, 0.02, 0)
	root.Add(h.rim)

	crystals := scene.NewGroup("island-crystals")
	crystalCount := 8 + rand.Intn(6)
	for i := 0; i < crystalCount; i++ {
		angle := rand.Float32() * 2 * math32.Pi
		r := platformRadius*0.5 + rand.Float32()*platformRadius*0.45
		mat := scene.NewMaterial(cfg.Lights.Accent.Color)
		mat.Emissive = cfg.Lights.Accent.Color
		mat.EmissiveIntensity = 1.2
		mat.Transparent = true
		mat.Opacity = 0.9
		c := scene.NewMesh(fmt.Sprintf("island-crystal-%d", i),
			scene.NewOctahedronGeometry(0.3+rand.Float32()*0.4), mat)
		c.Position = scene.V3(
			math32.Cos(angle)*r,
			-1.2-rand.Float32()*4,
			math32.Sin(angle)*r,
		)
		c.Anims = []scene.Animation{
			scene.EmissivePulse{Base: 1.2, Amplitude: 0.5, Speed: 1.4, Phase: rand.Float32() * 6},
			scene.Spin{Speed: scene.V3(0, 0.6+rand.Float32()*0.5, 0)},
		}
		crystals.Add(c)
	}
	root.Add(crystals)

	debris := scene.NewGroup("island-debris")
	debrisCount := 10 + rand.Intn(8)
	for i := 0; i < debrisCount; i++ {
		angle := rand.Float32() * 2 * math32.Pi
		r := platformRadius + 2 + rand.Float32()*6
		y := -2 - rand.Float32()*5
		mat := scene.NewMaterial(scene.RGB(0.4, 0.36, 0.33))
		mat.Roughness = 0.9
		d := scene.NewMesh(fmt.Sprintf("island-debris-%d", i),
			scene.NewOctahedronGeometry(0.15+rand.Float32()*0.35), mat)
		d.Position = scene.V3(math32.Cos(angle)*r, y, math32.Sin(angle)*r)
		d.Anims = []scene.Animation{
			scene.FloatBob{BaseY: y, Amplitude: 0.2 + rand.Float32()*0.3, Speed: 0.4 + rand.Float32()*0.4, Phase: rand.Float32() * 6},
			scene.Spin{Speed: scene.V3(rand.Float32()*0.4, rand.Float32()*0.4, rand.Float32()*0.4)},
		}
		debris.Add(d)
	}
	root.Add(debris)

	// The island itself drifts: bob plus a slow turn, both scaled by wind.
	root.Anims = []scene.Animation{
		scene.FloatBob{BaseY: 0, Amplitude: 0.3, Speed: 0.4},
		scene.Spin{Speed: scene.V3(0, 0.02, 0)},
	}
	return root, h
}

type lightHandles struct {
	ambient *scene.AmbientLight
	sun     *scene.DirectionalLight
	accent  *scene.PointLight
	spots   []*scene.SpotLight
}

// buildLightRig assembles the five-light stage rig from the theme.
func buildLightRig(cfg theme.Config) (*scene.Group, lightHandles) {
	rig := scene.NewGroup("light-rig")
	var h lightHandles

	h.ambient = scene.NewAmbientLight("light-ambient", cfg.Lights.Ambient.Color, cfg.Lights.Ambient.Intensity)
	rig.Add(h.ambient)

	h.sun = scene.NewDirectionalLight("light-sun", cfg.Lights.Sun.Color, cfg.Lights.Sun.Intensity)
	h.sun.Position = scene.V3(20, 30, 10)
	rig.Add(h.sun)

	h.accent = scene.NewPointLight("light-accent", cfg.Lights.Accent.Color, cfg.Lights.Accent.Intensity, 40)
	h.accent.Position = scene.V3(0, 8, 0)
	h.accent.Anims = []scene.Animation{scene.PulseLight{
		Base:      cfg.Lights.Accent.Intensity,
		Amplitude: cfg.Lights.Accent.Intensity * 0.15,
		Speed:     1.2,
	}}
	rig.Add(h.accent)

	defs := []struct {
		name string
		def  theme.LightDef
		pos  scene.Vec3
	}{
		{"light-stage-left", cfg.Lights.StageLeft, scene.V3(-10, 12, 6)},
		{"light-stage-right", cfg.Lights.StageRight, scene.V3(10, 12, 6)},
	}
	for _, d := range defs {
		spot := scene.NewSpotLight(d.name, d.def.Color, d.def.Intensity, 50, math32.Pi/6)
		spot.Position = d.pos
		spot.Penumbra = 0.3
		rig.Add(spot, spot.Target)
		h.spots = append(h.spots, spot)
	}
	return rig, h
}

// buildHolographicScreen builds the curved display wall behind the stage
// and the flat video mesh a collaborator textures with streamed frames.
func buildHolographicScreen(cfg theme.Config) (*scene.Group, *scene.Mesh) {
	grp := scene.NewGroup("holographic-screen")

	const segments = 7
	arcRadius := float32(10)
	for i := 0; i < segments; i++ {
		angle := (float32(i)/float32(segments-1) - 0.5) * math32.Pi * 0.6
		mat := scene.NewMaterial(cfg.LoadingPrimary)
		mat.Emissive = cfg.LoadingPrimary
		mat.EmissiveIntensity = 0.8
		mat.Transparent = true
		mat.Opacity = 0.5
		mat.Side = scene.DoubleSide
		seg := scene.NewMesh(fmt.Sprintf("holo-segment-%d", i),
			scene.NewPlaneGeometry(1.8, 3.2, 1, 1), mat)
		seg.Rotation = scene.V3(math32.Pi/2, -angle, 0)
		seg.Position = scene.V3(
			math32.Sin(angle)*arcRadius,
			4,
			-math32.Cos(angle)*arcRadius,
		)
		seg.Anims = []scene.Animation{scene.Breathing{
			BaseOpacity: 0.5,
			Range:       0.12,
			Speed:       0.8,
			Phase:       float32(i) * 0.9,
		}}
		grp.Add(seg)
	}

	frameMat := scene.NewMaterial(cfg.RimColor)
	frameMat.Emissive = cfg.RimColor
	frameMat.EmissiveIntensity = 1
	frame := scene.NewMesh("holo-frame", scene.NewBoxGeometry(6.6, 4, 0.15), frameMat)
	frame.Position = scene.V3(0, 4, -arcRadius-0.4)
	grp.Add(frame)

	videoMat := scene.NewMaterial(scene.Grey(0.05))
	videoMat.Emissive = scene.Grey(0.4)
	videoMat.EmissiveIntensity = 0.6
	videoMat.Side = scene.DoubleSide
	video := scene.NewMesh("video-screen", scene.NewPlaneGeometry(6, 3.4, 1, 1), videoMat)
	video.Rotation = scene.V3(math32.Pi/2, 0, 0)
	video.Position = scene.V3(0, 4, -arcRadius-0.3)
	grp.Add(video)

	return grp, video
}

// buildGuardianStones rings the stage with orbiting pulsing monoliths.
func buildGuardianStones(cfg theme.Config) *scene.Group {
	grp := scene.NewGroup("guardian-stones")
	const count = 5
	for i := 0; i < count; i++ {
		mat := scene.NewMaterial(scene.RGB(0.25, 0.28, 0.32))
		mat.Emissive = cfg.RimColor
		mat.EmissiveIntensity = 0.8
		mat.Roughness = 0.6
		stone := scene.NewMesh(fmt.Sprintf("guardian-stone-%d", i),
			scene.NewOctahedronGeometry(0.8), mat)
		stone.Scl = scene.V3(1, 1.8, 1)
		stone.Anims = []scene.Animation{
			scene.Orbit{
				Radius:       16,
				AngularSpeed: 0.15,
				Phase:        float32(i) / count * 2 * math32.Pi,
				BaseHeight:   2.5,
				BobAmplitude: 0.5,
				BobSpeed:     0.9,
			},
			scene.Spin{Speed: scene.V3(0, 0.5, 0.15)},
			scene.EmissivePulse{Base: 0.8, Amplitude: 0.35, Speed: 1.1, Phase: float32(i) * 1.3},
		}
		grp.Add(stone)
	}
	return grp
}

// buildAmbientParticles scatters the theme's decorative motes through the
// air dome, one particle system per palette colour.
func buildAmbientParticles(cfg theme.Config) *scene.Group {
	grp := scene.NewGroup("ambient-particles")
	palette := cfg.Particles.Palette
	if len(palette) == 0 {
		palette = []scene.Color{scene.Grey(1)}
	}
	per := cfg.Particles.Count / len(palette)
	if per < 1 {
		per = 1
	}
	for pi, col := range palette {
		positions := make([]scene.Vec3, per)
		velocities := make([]scene.Vec3, per)
		for i := range positions {
			angle := rand.Float32() * 2 * math32.Pi
			r := rand.Float32() * 24
			positions[i] = scene.V3(r*math32.Cos(angle), 1+rand.Float32()*19, r*math32.Sin(angle))
			velocities[i] = scene.V3((rand.Float32()-0.5)*0.15, (rand.Float32()-0.5)*0.1, (rand.Float32()-0.5)*0.15)
		}
		mat := scene.NewPointsMaterial(col, 0.08)
		mat.Transparent = true
		mat.Opacity = cfg.Particles.Opacity
		if cfg.Particles.Additive {
			mat.Blending = scene.AdditiveBlending
		}
		pts := scene.NewPoints(fmt.Sprintf("ambient-motes-%d", pi),
			scene.NewPointsGeometry(positions), mat)
		pts.Velocities = velocities
		pts.Anims = []scene.Animation{scene.Breathing{
			BaseOpacity: cfg.Particles.Opacity,
			Range:       cfg.Particles.Opacity * 0.3,
			Speed:       0.6,
			Phase:       float32(pi) * 2.1,
		}}
		grp.Add(pts)
	}
	return grp
}

// buildSky hangs the parametric decoration that cloudSpeed scales: three
// halo rings and a handful of cloud puffs.
func buildSky(cfg theme.Config) *scene.Group {
	grp := scene.NewGroup("parametric-sky")

	radii := []float32{8, 11, 14}
	for i, r := range radii {
		mat := scene.NewMaterial(cfg.RimColor)
		mat.Emissive = cfg.RimColor
		mat.EmissiveIntensity = 0.7
		mat.Transparent = true
		mat.Opacity = 0.3
		mat.Blending = scene.AdditiveBlending
		speed := float32(0.1) / (1 + float32(i)*0.5)
		if i%2 == 1 {
			speed = -speed
		}
		ring := scene.NewMesh(fmt.Sprintf("halo-ring-%d", i),
			scene.NewTorusGeometry(r, 0.08, 6, 48), mat)
		ring.Position = scene.V3(0, 16+float32(i)*3, 0)
		ring.Anims = []scene.Animation{scene.Spin{Speed: scene.V3(0, speed, 0)}}
		grp.Add(ring)
	}

	for i := 0; i < 4; i++ {
		angle := float32(i)/4*2*math32.Pi + rand.Float32()*0.5
		r := 18 + rand.Float32()*8
		y := 14 + rand.Float32()*6
		mat := scene.NewMaterial(scene.Grey(0.93))
		mat.Transparent = true
		mat.Opacity = 0.35
		mat.FlatShading = true
		puff := scene.NewMesh(fmt.Sprintf("cloud-puff-%d", i),
			scene.NewSphereGeometry(1.6, 8, 6), mat)
		puff.Scl = scene.V3(2.2, 0.8, 1.6)
		puff.Position = scene.V3(math32.Cos(angle)*r, y, math32.Sin(angle)*r)
		puff.Anims = []scene.Animation{
			scene.FloatBob{BaseY: y, Amplitude: 0.4, Speed: 0.25, Phase: rand.Float32() * 6},
			scene.Spin{Speed: scene.V3(0, 0.05, 0)},
		}
		grp.Add(puff)
	}
	return grp
}

// buildEnergyBeams raises glowing pillars around the stage; opacity and
// pulse amplitude follow the requested intensity.
func buildEnergyBeams(cfg theme.Config, intensity float32) *scene.Group {
	grp := scene.NewGroup("energy-beams")
	const count = 3
	for i := 0; i < count; i++ {
		angle := float32(i) / count * 2 * math32.Pi
		mat := scene.NewMaterial(cfg.LoadingPrimary)
		mat.Emissive = cfg.LoadingPrimary
		mat.EmissiveIntensity = 1.2 * intensity
		mat.Transparent = true
		mat.Opacity = 0.15 + 0.55*intensity
		mat.Blending = scene.AdditiveBlending
		beam := scene.NewMesh(fmt.Sprintf("energy-beam-%d", i),
			scene.NewCylinderGeometry(0.18, 0.18, 26, 10), mat)
		beam.Position = scene.V3(math32.Cos(angle)*9, 13, math32.Sin(angle)*9)
		beam.Anims = []scene.Animation{scene.EmissivePulse{
			Base:      1.2 * intensity,
			Amplitude: 0.5 * intensity,
			Speed:     2.2,
			Phase:     float32(i) * 2.1,
		}}
		grp.Add(beam)
	}
	return grp
}

// buildOrbs spawns count drifting light orbs on individual orbit paths.
func buildOrbs(cfg theme.Config, count int) *scene.Group {
	grp := scene.NewGroup("floating-orbs")
	palette := cfg.Particles.Palette
	if len(palette) == 0 {
		palette = []scene.Color{scene.Grey(1)}
	}
	for i := 0; i < count; i++ {
		col := palette[i%len(palette)]
		mat := scene.NewMaterial(col)
		mat.Emissive = col
		mat.EmissiveIntensity = 1
		mat.Transparent = true
		mat.Opacity = 0.85
		orb := scene.NewMesh(fmt.Sprintf("orb-%d", i),
			scene.NewSphereGeometry(0.35, 10, 8), mat)
		orb.Anims = []scene.Animation{scene.Orbit{
			Radius:       6 + rand.Float32()*8,
			AngularSpeed: 0.2 + rand.Float32()*0.3,
			Phase:        rand.Float32() * 2 * math32.Pi,
			BaseHeight:   3 + rand.Float32()*6,
			BobAmplitude: 0.4 + rand.Float32()*0.5,
			BobSpeed:     0.7 + rand.Float32()*0.6,
		}}
		grp.Add(orb)
	}
	return grp
}

// buildFish spawns count fish circling below the water line.
func buildFish(cfg theme.Config, count int) *scene.Group {
	grp := scene.NewGroup("fish-school")
	palette := cfg.Particles.Palette
	if len(palette) == 0 {
		palette = []scene.Color{scene.RGB(0.9, 0.6, 0.2)}
	}
	for i := 0; i < count; i++ {
		mat := scene.NewMaterial(palette[i%len(palette)])
		mat.Roughness = 0.5
		fish := scene.NewMesh(fmt.Sprintf("fish-%d", i),
			scene.NewConeGeometry(0.12, 0.45, 5), mat)
		fish.Rotation = scene.V3(0, 0, math32.Pi/2)
		speed := 0.3 + rand.Float32()*0.4
		if i%2 == 1 {
			speed = -speed
		}
		fish.Anims = []scene.Animation{scene.Swim{
			Radius:        8 + rand.Float32()*9,
			AngularSpeed:  speed,
			Phase:         rand.Float32() * 2 * math32.Pi,
			BaseY:         waterLevel + 0.3 + rand.Float32()*0.5,
			VerticalAmp:   0.2,
			VerticalSpeed: 1.3 + rand.Float32(),
		}}
		grp.Add(fish)
	}
	return grp
}

// buildSeat assembles one audience seat at its pool slot: bench, back,
// glow ring and a small accent light.
func buildSeat(cfg theme.Config, sp SeatPosition) *scene.Group {
	seat := scene.NewGroup(fmt.Sprintf("seat-%02d", sp.Index))
	seat.Position = sp.Position
	seat.Rotation = scene.V3(0, sp.Rotation, 0)

	bench := scene.NewMesh("seat-bench", scene.NewBoxGeometry(0.9, 0.45, 0.9), platformMaterial(cfg))
	bench.Position = scene.V3(0, 0.225, 0)
	seat.Add(bench)

	back := scene.NewMesh("seat-back", scene.NewBoxGeometry(0.9, 0.7, 0.12), platformMaterial(cfg))
	back.Position = scene.V3(0, 0.8, -0.39)
	seat.Add(back)

	ringMat := scene.NewMaterial(cfg.RimColor)
	ringMat.Emissive = cfg.RimColor
	ringMat.EmissiveIntensity = 0.9
	ringMat.Transparent = true
	ringMat.Opacity = cfg.RimOpacity
	ring := scene.NewMesh("seat-ring", scene.NewRingGeometry(0.5, 0.62, 24), ringMat)
	ring.Position = scene.V3(0, 0.01, 0)
	seat.Add(ring)

	glow := scene.NewPointLight("seat-light", cfg.Lights.Accent.Color, 0.4, 4)
	glow.Position = scene.V3(0, 1.2, 0)
	seat.Add(glow)

	return seat
}

// buildColumn spawns a rising particle column over the platform, recycled
// at ceiling height by the Advect animation.
func buildColumn(name string, col scene.Color, additive bool, count int, ceiling, speed float32) *scene.Points {
	positions := make([]scene.Vec3, count)
	velocities := make([]scene.Vec3, count)
	for i := range positions {
		angle := rand.Float32() * 2 * math32.Pi
		r := rand.Float32() * platformRadius * 0.7
		positions[i] = scene.V3(r*math32.Cos(angle), rand.Float32()*ceiling, r*math32.Sin(angle))
		velocities[i] = scene.V3(
			(rand.Float32()-0.5)*0.3,
			speed*(0.7+rand.Float32()*0.6),
			(rand.Float32()-0.5)*0.3,
		)
	}
	mat := scene.NewPointsMaterial(col, 0.22)
	mat.Transparent = true
	mat.Opacity = 0.6
	if additive {
		mat.Blending = scene.AdditiveBlending
	}
	pts := scene.NewPoints(name, scene.NewPointsGeometry(positions), mat)
	pts.Velocities = velocities
	pts.Anims = []scene.Animation{scene.Advect{
		CeilingY:      ceiling,
		RespawnY:      0.1,
		RespawnRadius: platformRadius * 0.7,
	}}
	return pts
}

// buildWeatherParticles spawns the precipitation layer for the current
// weather type, or nil when the type has none.
func buildWeatherParticles(cond weather.Condition, particleIntensity, windSpeed float32) *scene.Points {
	switch cond {
	case weather.Rainy, weather.Stormy:
		count := 300 + int(500*particleIntensity)
		positions := make([]scene.Vec3, count)
		velocities := make([]scene.Vec3, count)
		for i := range positions {
			positions[i] = scene.V3((rand.Float32()-0.5)*60, rand.Float32()*22, (rand.Float32()-0.5)*60)
			velocities[i] = scene.V3(
				windSpeed*0.3+(rand.Float32()-0.5)*0.5,
				-(9 + rand.Float32()*3),
				(rand.Float32()-0.5)*0.5,
			)
		}
		mat := scene.NewPointsMaterial(scene.RGB(0.6, 0.7, 0.85), 0.07)
		mat.Transparent = true
		mat.Opacity = 0.5
		pts := scene.NewPoints("weather-rain", scene.NewPointsGeometry(positions), mat)
		pts.Velocities = velocities
		return pts
	case weather.Snowy:
		count := 250 + int(350*particleIntensity)
		positions := make([]scene.Vec3, count)
		velocities := make([]scene.Vec3, count)
		for i := range positions {
			positions[i] = scene.V3((rand.Float32()-0.5)*60, rand.Float32()*22, (rand.Float32()-0.5)*60)
			velocities[i] = scene.V3(
				windSpeed*0.15+(rand.Float32()-0.5)*0.4,
				-(1.1 + rand.Float32()*0.7),
				(rand.Float32()-0.5)*0.4,
			)
		}
		mat := scene.NewPointsMaterial(scene.Grey(0.96), 0.13)
		mat.Transparent = true
		mat.Opacity = 0.85
		pts := scene.NewPoints("weather-snow", scene.NewPointsGeometry(positions), mat)
		pts.Velocities = velocities
		return pts
	}
	return nil
}
