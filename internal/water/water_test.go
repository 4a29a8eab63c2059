package water

import (
	"testing"

	"github.com/jmylchreest/atrium/internal/scene"
	"github.com/jmylchreest/atrium/internal/weather"
)

func newTestManager() (*Manager, *scene.Scene) {
	sc := scene.NewScene("test")
	return New(nil, sc), sc
}

func TestDefaultMeshCreated(t *testing.T) {
	m, sc := newTestManager()
	if m.Mesh() == nil {
		t.Fatalf("Expected a default mesh to be created")
	}
	if m.Mesh().Parent() == nil {
		t.Errorf("Expected default mesh to be attached to the parent")
	}
	if got := scene.Count(sc); got != 2 {
		t.Errorf("Expected scene + water node, got %d nodes", got)
	}
}

func TestWavesDeformVertices(t *testing.T) {
	m, _ := newTestManager()
	m.UpdateEffect(Config{State: weather.WaterWaves, Intensity: 1})
	m.Update(0.5)

	moved := 0
	for i, p := range m.Mesh().Geometry.Positions {
		if p.Y != m.base[i].Y {
			moved++
		}
	}
	if moved == 0 {
		t.Errorf("Expected wave state to displace vertices")
	}
}

func TestStateSwitchRestoresRestPose(t *testing.T) {
	m, _ := newTestManager()
	m.UpdateEffect(Config{State: weather.WaterTurbulent, Intensity: 1})
	m.Update(1)
	m.UpdateEffect(Config{State: weather.WaterFrozen})

	for i, p := range m.Mesh().Geometry.Positions {
		if p.X != m.base[i].X || p.Z != m.base[i].Z {
			t.Fatalf("Expected rest pose XZ after state switch at vertex %d", i)
		}
	}
	// Frozen installs no deformer, so repeated updates keep the sheet flat.
	m.Update(1)
	for i, p := range m.Mesh().Geometry.Positions {
		if p.Y != m.base[i].Y {
			t.Fatalf("Expected flat frozen surface at vertex %d, got Y=%f", i, p.Y)
		}
	}
}

func TestFrozenSwapsMaterialAndAddsAuxiliaries(t *testing.T) {
	m, _ := newTestManager()
	original := m.Mesh().Material

	m.UpdateEffect(Config{State: weather.WaterFrozen})
	if m.Mesh().Material == original {
		t.Errorf("Expected ice material swap")
	}
	if m.Mesh().Material.Roughness >= original.Roughness {
		t.Errorf("Expected icier (smoother) material, roughness %f vs %f",
			m.Mesh().Material.Roughness, original.Roughness)
	}
	var overlay, snow bool
	for _, c := range m.Mesh().Children() {
		switch c.Base().Name {
		case "water-ice-overlay":
			overlay = true
		case "water-snow":
			snow = true
		}
	}
	if !overlay || !snow {
		t.Errorf("Expected overlay and snow auxiliaries, got overlay=%v snow=%v", overlay, snow)
	}

	// Thawing restores the original material and removes the auxiliaries.
	m.UpdateEffect(Config{State: weather.WaterCalm})
	if m.Mesh().Material != original {
		t.Errorf("Expected original material restored after thaw")
	}
	if n := len(m.Mesh().Children()); n != 0 {
		t.Errorf("Expected auxiliaries removed after thaw, %d children remain", n)
	}
}

func TestColorIndependentOfState(t *testing.T) {
	m, _ := newTestManager()
	m.UpdateEffect(Config{Color: "#ff0000"})
	c := m.Mesh().Material.Color
	if c.R < 0.99 || c.G > 0.01 {
		t.Errorf("Expected pure red, got %+v", c)
	}
	if m.State() != weather.WaterCalm {
		t.Errorf("Expected state untouched by colour-only update, got %s", m.State())
	}

	m.UpdateEffect(Config{State: weather.WaterWaves, Color: "#00ff00"})
	c = m.Mesh().Material.Color
	if c.G < 0.99 {
		t.Errorf("Expected colour applied alongside state change, got %+v", c)
	}
}

func TestSnowParticlesFallAndRespawn(t *testing.T) {
	m, _ := newTestManager()
	m.UpdateEffect(Config{State: weather.WaterFrozen})

	var snow *scene.Points
	for _, c := range m.Mesh().Children() {
		if p, ok := c.(*scene.Points); ok && p.Name == "water-snow" {
			snow = p
		}
	}
	if snow == nil {
		t.Fatalf("Expected snow particle system")
	}
	before := make([]scene.Vec3, len(snow.Geometry.Positions))
	copy(before, snow.Geometry.Positions)

	m.Update(0.5)
	for i, p := range snow.Geometry.Positions {
		if p.Y > 12.01 {
			t.Fatalf("Particle %d above ceiling: %f", i, p.Y)
		}
		if p == before[i] {
			t.Fatalf("Expected particle %d to move", i)
		}
	}
}

func TestDisposeIdempotentAndLeakFree(t *testing.T) {
	m, sc := newTestManager()
	m.UpdateEffect(Config{State: weather.WaterTurbulent, Intensity: 0.8})
	m.Update(0.1)

	m.Dispose()
	m.Dispose()
	if got := scene.Count(sc); got != 1 {
		t.Errorf("Expected only the scene node after dispose, got %d", got)
	}

	// Externally supplied meshes are not the manager's to release.
	sc2 := scene.NewScene("ext")
	mesh := scene.NewMesh("pond", scene.NewPlaneGeometry(10, 10, 4, 4), scene.NewMaterial(scene.Grey(0.5)))
	sc2.Add(mesh)
	m2 := New(mesh, sc2)
	m2.UpdateEffect(Config{State: weather.WaterFrozen})
	m2.Dispose()
	if mesh.Geometry.Disposed() {
		t.Errorf("Expected external mesh geometry untouched by dispose")
	}
	if got := scene.Count(sc2); got != 2 {
		t.Errorf("Expected scene + external mesh after dispose, got %d", got)
	}
}
