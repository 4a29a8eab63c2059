// Package gallery composes the full 3D stage and is the single entry point
// for mutating it: audience seats, weather parameter application, island
// state and the per-frame animation tick. Builders construct the parts;
// the Gallery owns every mutable collection and all retained handles.
package gallery

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jmylchreest/atrium/internal/effects"
	"github.com/jmylchreest/atrium/internal/scene"
	"github.com/jmylchreest/atrium/internal/theme"
	"github.com/jmylchreest/atrium/internal/water"
	"github.com/jmylchreest/atrium/internal/weather"
)

// Config selects the gallery's construction parameters.
type Config struct {
	// Theme names the visual theme; defaults to "dark".
	Theme string
	// SubscriberCount selects the base style at construction.
	SubscriberCount int
	// Seed drives the deterministic audience seat pool.
	Seed int64
	// Rand is the sampling source for seat display sampling and effect
	// randomness. Defaults to a time-seeded source.
	Rand *rand.Rand
}

// speedClass selects which runtime multiplier scales a registered node's
// animations: wind for the floating island, cloud for the parametric sky.
type speedClass uint8

const (
	speedNormal speedClass = iota
	speedWind
	speedCloud
)

type animEntry struct {
	obj   scene.Object
	class speedClass
}

// Gallery is the scene orchestrator. Not safe for concurrent use; weather
// application and the update tick are serialized by the caller.
type Gallery struct {
	scene *scene.Scene
	theme theme.Config
	root  *scene.Group

	lights    lightHandles
	baseGroup *scene.Group
	handles   baseHandles
	holo      *scene.Group
	video     *scene.Mesh
	stones    *scene.Group
	sky       *scene.Group
	motes     *scene.Group

	waterMgr *water.Manager
	fx       *effects.Manager
	fxHost   *scene.Group

	precip *scene.Points
	smoke  *scene.Points
	fire   *scene.Points
	orbs   *scene.Group
	fish   *scene.Group
	beams  *scene.Group

	seatPool   []SeatPosition
	seats      map[int]*scene.Group
	seatsGroup *scene.Group

	animated []animEntry

	subscriberCount int
	islandStyle     bool
	islandState     weather.IslandState
	params          weather.Params

	animTime   float32
	moodSpeed  float32
	moodLight  float32
	windScale  float32
	cloudScale float32

	rng      *rand.Rand
	disposed bool
}

// New builds the complete stage into sc.
func New(sc *scene.Scene, cfg Config) (*Gallery, error) {
	name := cfg.Theme
	if name == "" {
		name = "dark"
	}
	th, err := theme.ByName(name)
	if err != nil {
		return nil, fmt.Errorf("building gallery: %w", err)
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	g := &Gallery{
		scene:           sc,
		theme:           th,
		subscriberCount: cfg.SubscriberCount,
		islandState:     weather.IslandNormal,
		moodSpeed:       1,
		moodLight:       1,
		windScale:       1,
		cloudScale:      1,
		rng:             rng,
		seats:           make(map[int]*scene.Group),
	}

	sc.Background = th.Background
	sc.FogColor = th.Fog
	sc.FogDensity = 0.08

	g.root = scene.NewGroup("gallery")
	sc.Add(g.root)

	rig, lh := buildLightRig(th)
	g.lights = lh
	g.root.Add(rig)
	g.register(rig, speedNormal)

	g.installBase()

	g.holo, g.video = buildHolographicScreen(th)
	g.root.Add(g.holo)
	g.register(g.holo, speedNormal)

	g.stones = buildGuardianStones(th)
	g.root.Add(g.stones)
	g.register(g.stones, speedNormal)

	g.sky = buildSky(th)
	g.root.Add(g.sky)
	g.register(g.sky, speedCloud)

	g.motes = buildAmbientParticles(th)
	g.root.Add(g.motes)
	g.register(g.motes, speedNormal)

	waterMat := scene.NewMaterial(scene.RGB(0.10, 0.42, 0.54))
	waterMat.Transparent = true
	waterMat.Opacity = 0.85
	waterMat.Roughness = 0.15
	waterMat.Metalness = 0.4
	waterMesh := scene.NewMesh("water",
		scene.NewPlaneGeometry(60, 60, 48, 48), waterMat)
	waterMesh.Position = scene.V3(0, waterLevel, 0)
	g.root.Add(waterMesh)
	g.waterMgr = water.New(waterMesh, nil)

	g.fxHost = scene.NewGroup("special-effects")
	g.root.Add(g.fxHost)
	g.fx = effects.NewManager(g.fxHost, effects.WithRand(rng))

	g.seatPool = newSeatPool(cfg.Seed)
	g.seatsGroup = scene.NewGroup("audience")
	g.root.Add(g.seatsGroup)

	return g, nil
}

// installBase builds the base group for the current subscriber count. The
// floating-island style is animated and wind-scaled; the geometric style is
// static.
func (g *Gallery) installBase() {
	island := g.subscriberCount >= islandStyleThreshold
	var grp *scene.Group
	var h baseHandles
	if island {
		grp, h = buildIslandBase(g.theme)
	} else {
		grp, h = buildGeometricBase(g.theme)
	}
	g.baseGroup = grp
	g.handles = h
	g.islandStyle = island
	g.root.Add(grp)
	class := speedNormal
	if island {
		class = speedWind
	}
	g.register(grp, class)
}

// SetSubscriberCount updates the subscriber count. Crossing the style
// threshold fully disposes the current base group before building the
// replacement, then reapplies the active island state to the new platform.
func (g *Gallery) SetSubscriberCount(n int) {
	g.subscriberCount = n
	island := n >= islandStyleThreshold
	if island == g.islandStyle {
		return
	}
	g.unregister(g.baseGroup)
	scene.DetachAndDispose(g.baseGroup)
	g.installBase()
	g.applyIslandState(g.islandState, float32(g.params.EffectIntensity))
}

// register adds every animated node in the subtree to the tick list.
func (g *Gallery) register(root scene.Object, class speedClass) {
	scene.Traverse(root, func(o scene.Object) bool {
		if len(o.Base().Anims) > 0 {
			g.animated = append(g.animated, animEntry{obj: o, class: class})
		}
		return true
	})
}

// unregister drops every node in the subtree from the tick list. Called at
// the same point a subtree leaves the graph so no dangling animation
// references survive.
func (g *Gallery) unregister(root scene.Object) {
	members := make(map[scene.Object]bool)
	scene.Traverse(root, func(o scene.Object) bool {
		members[o] = true
		return true
	})
	kept := g.animated[:0]
	for _, e := range g.animated {
		if !members[e.obj] {
			kept = append(kept, e)
		}
	}
	g.animated = kept
}

// ApplyWeather replaces the entire weather-dependent visual state from a
// fully specified parameter set. Step order matters: later steps read
// state the earlier ones installed.
func (g *Gallery) ApplyWeather(p weather.Params) {
	p.Normalize()

	// 1. Sky and fog.
	g.scene.Background = scene.Hex(p.SkyColor, g.scene.Background)
	g.scene.FogColor = scene.Hex(p.FogColor, g.scene.FogColor)
	g.scene.FogDensity = float32(p.FogDensity)

	// 2. Sun and ambient lights through the retained handles.
	g.lights.sun.Color = scene.Hex(p.SunColor, g.lights.sun.Color)
	g.lights.sun.Intensity = float32(p.SunIntensity)
	g.lights.ambient.Intensity = float32(p.AmbientIntensity)

	// 3. Ambient mote opacity follows effect intensity.
	moteOpacity := g.theme.Particles.Opacity * float32(0.4+0.6*p.EffectIntensity)
	for _, c := range g.motes.Children() {
		pts, ok := c.(*scene.Points)
		if !ok {
			continue
		}
		pts.Material.Opacity = moteOpacity
		for i, a := range pts.Anims {
			if br, ok := a.(scene.Breathing); ok {
				br.BaseOpacity = moteOpacity
				br.Range = moteOpacity * 0.3
				pts.Anims[i] = br
			}
		}
	}

	// 4. Precipitation rebuilt from scratch.
	if g.precip != nil {
		scene.DetachAndDispose(g.precip)
		g.precip = nil
	}
	if p.ParticleIntensity > 0.01 {
		if pts := buildWeatherParticles(p.WeatherType, float32(p.ParticleIntensity), float32(p.WindSpeed)); pts != nil {
			g.precip = pts
			g.root.Add(pts)
		}
	}

	// 5. Mood multipliers over lights and animation speed.
	g.moodLight = float32(weather.MoodLightFactor(p.Mood))
	g.moodSpeed = float32(weather.MoodSpeedFactor(p.Mood))
	g.lights.sun.Intensity *= g.moodLight
	accentBase := g.theme.Lights.Accent.Intensity * g.moodLight
	g.lights.accent.Intensity = accentBase
	for i, a := range g.lights.accent.Anims {
		if pl, ok := a.(scene.PulseLight); ok {
			pl.Base = accentBase
			pl.Amplitude = accentBase * 0.15
			g.lights.accent.Anims[i] = pl
		}
	}
	g.windScale = 0.5 + float32(p.WindSpeed)*0.15
	g.cloudScale = 0.5 + float32(p.CloudSpeed)*0.3

	// 6. Water state and colour.
	g.waterMgr.UpdateEffect(water.Config{
		State:     p.WaterEffect,
		Color:     p.WaterColor,
		Intensity: float32(p.EffectIntensity),
	})

	// 7. Special events and ambient effects swapped wholesale.
	g.fx.ClearAll()
	for _, ev := range p.SpecialEvents {
		g.fx.AddEffect(effects.Type(ev), float32(p.EffectIntensity))
	}
	for _, ae := range p.AmbientEffects {
		g.fx.AddEffect(effects.Type(ae), float32(p.EffectIntensity))
	}

	// 8. Island state.
	g.applyIslandState(p.IslandState, float32(p.EffectIntensity))

	// 9. Fish and orb pools sized to the requested counts.
	g.rebuildFish(p.FishCount)
	g.rebuildOrbs(p.FloatingOrbCount)

	// 10. Day/night refresh of persistent surfaces.
	g.refreshPersistentColors(weather.IsNightHour(p.Timestamp.Hour()))

	// 11. Energy beams sized to intensity.
	g.rebuildBeams(float32(p.EnergyBeamIntensity))

	g.params = p
}

// applyIslandState transitions the platform to the named state. The
// platform material is reset to its canonical themed base on every
// transition before the state's own look is applied, and the smoke/fire
// columns are torn down and respawned per state: smoke accompanies smoking
// and burning, fire only burning.
func (g *Gallery) applyIslandState(state weather.IslandState, intensity float32) {
	mat := g.handles.platform.Material
	mat.Color = g.theme.Platform.Color
	mat.Emissive = scene.Color{}
	mat.EmissiveIntensity = 0
	mat.Metalness = g.theme.Platform.Metalness
	mat.Roughness = g.theme.Platform.Roughness
	mat.Opacity = g.theme.Platform.Opacity

	if g.smoke != nil {
		g.unregister(g.smoke)
		scene.DetachAndDispose(g.smoke)
		g.smoke = nil
	}
	if g.fire != nil {
		g.unregister(g.fire)
		scene.DetachAndDispose(g.fire)
		g.fire = nil
	}

	switch state {
	case weather.IslandGlowing:
		mat.Emissive = g.theme.Lights.Accent.Color
		mat.EmissiveIntensity = 0.8 + 1.2*intensity
	case weather.IslandSmoking:
		g.smoke = buildColumn("island-smoke", scene.Grey(0.45), false,
			80+int(80*intensity), 9, 1.1)
		g.root.Add(g.smoke)
		g.register(g.smoke, speedNormal)
	case weather.IslandFrozen:
		mat.Color = scene.RGB(0.66, 0.85, 0.94)
		mat.Metalness = 0.1
		mat.Roughness = 0.05
	case weather.IslandBurning:
		mat.Emissive = scene.RGB(1, 0.25, 0.05)
		mat.EmissiveIntensity = 1.2 + 1.3*intensity
		g.fire = buildColumn("island-fire", scene.RGB(1, 0.45, 0.1), true,
			100+int(100*intensity), 4, 2.2)
		g.root.Add(g.fire)
		g.register(g.fire, speedNormal)
		g.smoke = buildColumn("island-smoke", scene.Grey(0.35), false,
			80+int(80*intensity), 10, 1.3)
		g.root.Add(g.smoke)
		g.register(g.smoke, speedNormal)
	}
	g.islandState = state
}

func (g *Gallery) rebuildFish(count int) {
	if g.fish != nil {
		g.unregister(g.fish)
		scene.DetachAndDispose(g.fish)
		g.fish = nil
	}
	if count <= 0 {
		return
	}
	g.fish = buildFish(g.theme, count)
	g.root.Add(g.fish)
	g.register(g.fish, speedNormal)
}

func (g *Gallery) rebuildOrbs(count int) {
	if g.orbs != nil {
		g.unregister(g.orbs)
		scene.DetachAndDispose(g.orbs)
		g.orbs = nil
	}
	if count <= 0 {
		return
	}
	g.orbs = buildOrbs(g.theme, count)
	g.root.Add(g.orbs)
	g.register(g.orbs, speedNormal)
}

func (g *Gallery) rebuildBeams(intensity float32) {
	if g.beams != nil {
		g.unregister(g.beams)
		scene.DetachAndDispose(g.beams)
		g.beams = nil
	}
	if intensity <= 0.05 {
		return
	}
	g.beams = buildEnergyBeams(g.theme, intensity)
	g.root.Add(g.beams)
	g.register(g.beams, speedNormal)
}

// refreshPersistentColors retints the long-lived surfaces for day or
// night: neon pops after dark, tiers dim.
func (g *Gallery) refreshPersistentColors(night bool) {
	tierScale := 0.9
	rimBoost := float32(1)
	if night {
		tierScale = 0.55
		rimBoost = 1.6
	}
	for _, tier := range g.handles.tiers {
		tier.Material.Color = scene.ScaleColor(g.theme.Platform.Color, tierScale)
	}
	g.handles.rim.Material.EmissiveIntensity = rimBoost
	for _, c := range g.holo.Children() {
		m, ok := c.(*scene.Mesh)
		if !ok {
			continue
		}
		if m == g.video {
			continue
		}
		m.Material.EmissiveIntensity = 0.8 * rimBoost
	}
}

// Params returns the most recently applied weather parameters.
func (g *Gallery) Params() weather.Params { return g.params }

// IslandState returns the platform's current visual state.
func (g *Gallery) IslandState() weather.IslandState { return g.islandState }

// GetHolographicScreen exposes the curved display wall for external video
// overlay.
func (g *Gallery) GetHolographicScreen() *scene.Group { return g.holo }

// GetVideoScreenMesh exposes the mesh a collaborator textures with video
// frames.
func (g *Gallery) GetVideoScreenMesh() *scene.Mesh { return g.video }

// Effects exposes the special-effects manager.
func (g *Gallery) Effects() *effects.Manager { return g.fx }

// Water exposes the water manager.
func (g *Gallery) Water() *water.Manager { return g.waterMgr }

// Root returns the gallery's top-level group.
func (g *Gallery) Root() *scene.Group { return g.root }

// Dispose tears the gallery down: both managers first, then the whole
// subtree. Safe to call twice.
func (g *Gallery) Dispose() {
	if g.disposed {
		return
	}
	g.disposed = true
	g.waterMgr.Dispose()
	g.fx.Dispose()
	g.animated = nil
	g.seats = make(map[int]*scene.Group)
	scene.DetachAndDispose(g.root)
}
