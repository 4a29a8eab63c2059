package effects

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"

	"github.com/jmylchreest/atrium/internal/scene"
)

func newTestManager(t *testing.T) (*Manager, *scene.Group) {
	t.Helper()
	host := scene.NewGroup("effects-host")
	return NewManager(host, WithRand(rand.New(rand.NewSource(7)))), host
}

func TestDefaultRegistryComplete(t *testing.T) {
	reg := DefaultRegistry()
	want := []Type{
		TypeMeteorShower, TypeShootingStar, TypeFireball, TypeFireRing,
		TypeAurora, TypeLightning,
		TypeBirds, TypeEmbers, TypeSparkles, TypeSnowfall, TypeFireflies,
	}
	for _, typ := range want {
		if _, ok := reg.Get(typ); !ok {
			t.Errorf("Expected %s to be registered", typ)
		}
	}
	if got := len(reg.List()); got != len(want) {
		t.Errorf("Expected %d registered types, got %d", len(want), got)
	}
}

func TestAddEffectReplacesSameType(t *testing.T) {
	m, host := newTestManager(t)

	if !m.AddEffect(TypeMeteorShower, 1.0) {
		t.Fatalf("Expected meteor shower to start")
	}
	if !m.AddEffect(TypeMeteorShower, 0.5) {
		t.Fatalf("Expected replacement meteor shower to start")
	}

	count := 0
	for _, c := range host.Children() {
		if c.Base().Name == "meteor-shower" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected exactly one meteor-shower instance, got %d", count)
	}
	if got := len(m.ActiveTypes()); got != 1 {
		t.Errorf("Expected one active type, got %d", got)
	}
}

func TestAddEffectUnknownType(t *testing.T) {
	m, _ := newTestManager(t)
	if m.AddEffect(Type("volcano"), 1) {
		t.Errorf("Expected unknown type to be rejected")
	}
}

func TestConcurrentHeterogeneousEffects(t *testing.T) {
	m, _ := newTestManager(t)
	m.AddEffect(TypeAurora, 0.8)
	m.AddEffect(TypeFireRing, 0.8)
	m.AddEffect(TypeBirds, 0.5)
	m.AddEffect(TypeSnowfall, 0.5)

	if got := len(m.ActiveTypes()); got != 4 {
		t.Fatalf("Expected 4 concurrent effects, got %d", got)
	}
	m.Update(0.1)
	if got := len(m.ActiveTypes()); got != 4 {
		t.Errorf("Expected perpetual effects to survive updates, got %d", got)
	}
}

func TestMeteorShowerFinishes(t *testing.T) {
	m, host := newTestManager(t)
	m.AddEffect(TypeMeteorShower, 1)

	for i := 0; i < 200; i++ {
		m.Update(0.05)
	}
	if m.Has(TypeMeteorShower) {
		t.Errorf("Expected meteor shower to finish and be reaped")
	}
	if got := scene.Count(host); got != 1 {
		t.Errorf("Expected no residue after finite effect ended, got %d nodes", got)
	}
}

func TestRemoveEffect(t *testing.T) {
	m, host := newTestManager(t)
	m.AddEffect(TypeAurora, 1)
	if !m.RemoveEffect(TypeAurora) {
		t.Errorf("Expected removal of active effect to succeed")
	}
	if m.RemoveEffect(TypeAurora) {
		t.Errorf("Expected removal of absent effect to fail")
	}
	if got := scene.Count(host); got != 1 {
		t.Errorf("Expected clean host after removal, got %d nodes", got)
	}
}

func TestClearAllLeavesNoResidue(t *testing.T) {
	m, host := newTestManager(t)
	for _, typ := range DefaultRegistry().List() {
		if !m.AddEffect(typ, 0.7) {
			t.Fatalf("Expected %s to start", typ)
		}
	}
	for i := 0; i < 40; i++ {
		m.Update(0.05)
	}

	m.ClearAll()
	m.ClearAll()
	if got := scene.Count(host); got != 1 {
		t.Errorf("Expected only the host node after ClearAll, got %d", got)
	}

	m.Dispose()
	m.Dispose()
	if got := len(m.ActiveTypes()); got != 0 {
		t.Errorf("Expected no active effects after dispose, got %d", got)
	}
}

func TestFireballLandsInsideStage(t *testing.T) {
	host := scene.NewGroup("host")
	rng := rand.New(rand.NewSource(3))

	for trial := 0; trial < 20; trial++ {
		e := newFireball(host, 1, rng)
		e.Init()
		e.launch()

		start := e.ball.Position
		vel := e.vel

		// Closed-form landing point of the launched arc.
		var x, z float32
		landed := false
		for ft := float32(0.001); ft < 10; ft += 0.001 {
			y := start.Y + vel.Y*ft + fireballGravity*ft*ft/2
			if y <= 0 {
				x = start.X + vel.X*ft
				z = start.Z + vel.Z*ft
				landed = true
				break
			}
		}
		if !landed {
			t.Fatalf("Trial %d: arc never came down", trial)
		}
		if d := math32.Sqrt(x*x + z*z); d > stageRadius+0.5 {
			t.Errorf("Trial %d: expected impact inside stage radius %d, landed at %.2f", trial, stageRadius, d)
		}
		e.Dispose()
	}
}

func TestFireballExplodesOnImpact(t *testing.T) {
	m, host := newTestManager(t)
	m.AddEffect(TypeFireball, 1)

	sawBurst := false
	for i := 0; i < 160; i++ {
		m.Update(0.05)
		if scene.FindByName(host, "fireball-burst") != nil {
			sawBurst = true
		}
	}
	if !sawBurst {
		t.Errorf("Expected an impact burst within 8 simulated seconds")
	}

	m.ClearAll()
	if got := scene.Count(host); got != 1 {
		t.Errorf("Expected burst and projectile residue cleared, got %d nodes", got)
	}
}

func TestLightningStrikes(t *testing.T) {
	m, host := newTestManager(t)
	m.AddEffect(TypeLightning, 1)

	sawBolt := false
	for i := 0; i < 120; i++ {
		m.Update(0.05)
		if scene.FindByName(host, "lightning-bolt") != nil {
			sawBolt = true
		}
	}
	if !sawBolt {
		t.Errorf("Expected a bolt within 6 simulated seconds")
	}
}
