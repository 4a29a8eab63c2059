package gallery

import (
	"math/rand"
	"testing"
	"time"

	"github.com/jmylchreest/atrium/internal/scene"
	"github.com/jmylchreest/atrium/internal/weather"
)

func newTestGallery(t *testing.T, cfg Config) (*scene.Scene, *Gallery) {
	t.Helper()
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(1))
	}
	sc := scene.NewScene("root")
	g, err := New(sc, cfg)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	return sc, g
}

func testPreset(t *testing.T, name string) weather.Params {
	t.Helper()
	p, err := weather.Preset(name, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Preset(%q) returned error: %v", name, err)
	}
	return p
}

func TestSeatPoolDeterministic(t *testing.T) {
	_, a := newTestGallery(t, Config{Seed: 7})
	_, b := newTestGallery(t, Config{Seed: 7, Rand: rand.New(rand.NewSource(99))})
	_, c := newTestGallery(t, Config{Seed: 8})

	pa := a.GetAudienceSeatPositions()
	pb := b.GetAudienceSeatPositions()
	if len(pa) != seatPoolSize {
		t.Fatalf("Expected %d pool seats, got %d", seatPoolSize, len(pa))
	}
	for i := range pa {
		if pa[i] != pb[i] {
			t.Errorf("Seed 7 pools diverge at %d: %+v vs %+v", i, pa[i], pb[i])
		}
	}

	pc := c.GetAudienceSeatPositions()
	same := true
	for i := range pa {
		if pa[i] != pc[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("Expected different pools for seeds 7 and 8, got identical layouts")
	}
}

func TestSeatPoolReturnsCopy(t *testing.T) {
	_, g := newTestGallery(t, Config{Seed: 3})
	p := g.GetAudienceSeatPositions()
	p[0].Position.X = 9999
	if g.GetAudienceSeatPositions()[0].Position.X == 9999 {
		t.Error("Expected GetAudienceSeatPositions to return a copy, pool was mutated")
	}
}

func TestAddRemoveAudienceSeat(t *testing.T) {
	_, g := newTestGallery(t, Config{Seed: 3})

	if !g.AddAudienceSeat(5) {
		t.Error("Expected AddAudienceSeat(5) to succeed")
	}
	if g.AddAudienceSeat(5) {
		t.Error("Expected duplicate AddAudienceSeat(5) to return false")
	}
	if g.AddAudienceSeat(-1) {
		t.Error("Expected AddAudienceSeat(-1) to return false")
	}
	if g.AddAudienceSeat(seatPoolSize) {
		t.Errorf("Expected AddAudienceSeat(%d) to return false", seatPoolSize)
	}
	if g.SeatCount() != 1 {
		t.Errorf("Expected 1 seat, got %d", g.SeatCount())
	}
	if scene.FindByName(g.seatsGroup, "seat-05") == nil {
		t.Error("Expected seat-05 in the audience group")
	}

	if !g.RemoveAudienceSeat(5) {
		t.Error("Expected RemoveAudienceSeat(5) to succeed")
	}
	if g.RemoveAudienceSeat(5) {
		t.Error("Expected second RemoveAudienceSeat(5) to return false")
	}
	if scene.FindByName(g.seatsGroup, "seat-05") != nil {
		t.Error("Expected seat-05 removed from the audience group")
	}
}

func TestUpdateAudienceSeatsVisibleCount(t *testing.T) {
	tests := []struct {
		name       string
		count      int
		maxDisplay int
		want       int
	}{
		{"none", 0, 40, 0},
		{"below max", 10, 40, 10},
		{"at max", 40, 40, 40},
		{"above max", 60, 40, 40},
		{"above pool", 500, 40, 40},
		{"max above pool", 150, 200, seatPoolSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, g := newTestGallery(t, Config{Seed: 11})
			g.UpdateAudienceSeats(tt.count, tt.maxDisplay)
			if got := g.SeatCount(); got != tt.want {
				t.Errorf("Expected %d visible seats, got %d", tt.want, got)
			}
		})
	}
}

func TestUpdateAudienceSeatsOrderedBelowMax(t *testing.T) {
	_, g := newTestGallery(t, Config{Seed: 11})
	g.UpdateAudienceSeats(10, 40)
	idx := g.VisibleSeatIndices()
	if len(idx) != 10 {
		t.Fatalf("Expected 10 seats, got %d", len(idx))
	}
	for i, v := range idx {
		if v != i {
			t.Errorf("Expected seat index %d at position %d, got %d", i, i, v)
		}
	}

	// Below the display cap the selection is stable across calls.
	g.UpdateAudienceSeats(10, 40)
	again := g.VisibleSeatIndices()
	for i := range idx {
		if idx[i] != again[i] {
			t.Errorf("Expected stable selection, index %d changed %d -> %d", i, idx[i], again[i])
		}
	}
}

func TestUpdateAudienceSeatsSampleBounds(t *testing.T) {
	_, g := newTestGallery(t, Config{Seed: 11})
	g.UpdateAudienceSeats(60, 40)
	idx := g.VisibleSeatIndices()
	if len(idx) != 40 {
		t.Fatalf("Expected 40 sampled seats, got %d", len(idx))
	}
	seen := make(map[int]bool)
	for _, v := range idx {
		if v < 0 || v >= 60 {
			t.Errorf("Expected sampled index in [0,60), got %d", v)
		}
		if seen[v] {
			t.Errorf("Expected distinct seat indices, %d repeated", v)
		}
		seen[v] = true
	}
}

func TestApplyWeatherIdempotent(t *testing.T) {
	_, g := newTestGallery(t, Config{Seed: 5})
	p := testPreset(t, "stormy")

	g.ApplyWeather(p)
	nodes := scene.Count(g.root)
	mat := *g.handles.platform.Material
	active := g.fx.ActiveTypes()

	g.ApplyWeather(p)
	if got := scene.Count(g.root); got != nodes {
		t.Errorf("Expected %d nodes after reapply, got %d", nodes, got)
	}
	got := *g.handles.platform.Material
	if got.Color != mat.Color || got.Emissive != mat.Emissive ||
		got.EmissiveIntensity != mat.EmissiveIntensity {
		t.Errorf("Expected identical platform material after reapply, got %+v vs %+v", got, mat)
	}
	reActive := g.fx.ActiveTypes()
	if len(reActive) != len(active) {
		t.Fatalf("Expected %d active effects after reapply, got %d", len(active), len(reActive))
	}
	for i := range active {
		if active[i] != reActive[i] {
			t.Errorf("Expected effect %v at slot %d, got %v", active[i], i, reActive[i])
		}
	}
}

func TestApplyWeatherRebuildsCountedPools(t *testing.T) {
	_, g := newTestGallery(t, Config{Seed: 5})
	p := testPreset(t, "sunny")
	p.FishCount = 7
	p.FloatingOrbCount = 9

	g.ApplyWeather(p)
	if got := len(g.fish.Children()); got != 7 {
		t.Errorf("Expected 7 fish, got %d", got)
	}
	if got := len(g.orbs.Children()); got != 9 {
		t.Errorf("Expected 9 orbs, got %d", got)
	}

	p.FishCount = 2
	p.FloatingOrbCount = 60
	g.ApplyWeather(p)
	if got := len(g.fish.Children()); got != 2 {
		t.Errorf("Expected 2 fish after shrink, got %d", got)
	}
	// Normalize clamps the orb count to its ceiling.
	if got := len(g.orbs.Children()); got != 30 {
		t.Errorf("Expected 30 orbs after clamp, got %d", got)
	}
}

func TestWeatherParticlesFollowCondition(t *testing.T) {
	sc, g := newTestGallery(t, Config{Seed: 5})

	g.ApplyWeather(testPreset(t, "rainy"))
	if scene.FindByName(sc, "weather-rain") == nil {
		t.Error("Expected weather-rain particles under rain")
	}

	g.ApplyWeather(testPreset(t, "snowy"))
	if scene.FindByName(sc, "weather-rain") != nil {
		t.Error("Expected rain particles removed after condition change")
	}
	if scene.FindByName(sc, "weather-snow") == nil {
		t.Error("Expected weather-snow particles under snow")
	}

	g.ApplyWeather(testPreset(t, "sunny"))
	if g.precip != nil {
		t.Error("Expected no precipitation under clear weather")
	}
}

func TestIslandStateTransitions(t *testing.T) {
	_, g := newTestGallery(t, Config{Seed: 5})
	base := g.theme.Platform

	g.applyIslandState(weather.IslandBurning, 0.5)
	mat := g.handles.platform.Material
	if g.fire == nil || g.smoke == nil {
		t.Fatal("Expected burning island to carry fire and smoke columns")
	}
	if mat.Emissive != scene.RGB(1, 0.25, 0.05) {
		t.Errorf("Expected burning emissive, got %+v", mat.Emissive)
	}

	g.applyIslandState(weather.IslandFrozen, 0.5)
	if g.fire != nil || g.smoke != nil {
		t.Error("Expected frozen island without fire or smoke")
	}
	if mat.Color != scene.RGB(0.66, 0.85, 0.94) {
		t.Errorf("Expected ice tint, got %+v", mat.Color)
	}
	if mat.Metalness != 0.1 || mat.Roughness != 0.05 {
		t.Errorf("Expected ice surface 0.1/0.05, got %v/%v", mat.Metalness, mat.Roughness)
	}
	if (mat.Emissive != scene.Color{}) || mat.EmissiveIntensity != 0 {
		t.Error("Expected frozen island to drop the burning emissive")
	}

	g.applyIslandState(weather.IslandSmoking, 0.5)
	if g.smoke == nil {
		t.Error("Expected smoking island to carry a smoke column")
	}
	if g.fire != nil {
		t.Error("Expected smoking island without fire")
	}

	g.applyIslandState(weather.IslandGlowing, 0.5)
	if mat.Emissive != g.theme.Lights.Accent.Color {
		t.Errorf("Expected accent glow, got %+v", mat.Emissive)
	}
	if mat.EmissiveIntensity <= 0 {
		t.Error("Expected positive glow intensity")
	}

	g.applyIslandState(weather.IslandNormal, 0.5)
	if mat.Color != base.Color || mat.Metalness != base.Metalness ||
		mat.Roughness != base.Roughness || mat.EmissiveIntensity != 0 {
		t.Errorf("Expected canonical platform material restored, got %+v", *mat)
	}
	if g.smoke != nil || g.fire != nil {
		t.Error("Expected normal island without columns")
	}
	if g.IslandState() != weather.IslandNormal {
		t.Errorf("Expected island state normal, got %s", g.IslandState())
	}
}

func TestStyleSwapPreservesIslandState(t *testing.T) {
	sc, g := newTestGallery(t, Config{Seed: 5, SubscriberCount: 10})
	if scene.FindByName(sc, "base-geometric") == nil {
		t.Fatal("Expected geometric base below the style threshold")
	}
	g.applyIslandState(weather.IslandGlowing, 0.8)

	g.SetSubscriberCount(islandStyleThreshold + 50)
	if scene.FindByName(sc, "base-geometric") != nil {
		t.Error("Expected geometric base disposed after style swap")
	}
	if scene.FindByName(sc, "base-island") == nil {
		t.Error("Expected island base above the style threshold")
	}
	if g.handles.platform.Material.EmissiveIntensity <= 0 {
		t.Error("Expected glow reapplied to the new platform")
	}

	// Same side of the threshold is a no-op.
	before := scene.Count(sc)
	g.SetSubscriberCount(islandStyleThreshold + 60)
	if got := scene.Count(sc); got != before {
		t.Errorf("Expected unchanged graph for same-style update, %d -> %d", before, got)
	}
}

func TestUpdateAdvancesAnimations(t *testing.T) {
	_, g := newTestGallery(t, Config{Seed: 5})
	stone := g.stones.Children()[0]
	start := stone.Base().Position

	for i := 0; i < 10; i++ {
		g.Update(0.1)
	}
	if stone.Base().Position == start {
		t.Error("Expected guardian stone to move over one second of updates")
	}
	if g.animTime <= 0 {
		t.Errorf("Expected positive animation clock, got %v", g.animTime)
	}
}

func TestMoodScalesAnimationClock(t *testing.T) {
	_, fast := newTestGallery(t, Config{Seed: 5})
	_, slow := newTestGallery(t, Config{Seed: 5})

	pf := testPreset(t, "stormy") // chaotic mood, fast clock
	ps := testPreset(t, "foggy")  // mysterious mood, slow clock
	fast.ApplyWeather(pf)
	slow.ApplyWeather(ps)

	fast.Update(1)
	slow.Update(1)
	if fast.animTime <= slow.animTime {
		t.Errorf("Expected chaotic clock ahead of mysterious, got %v vs %v",
			fast.animTime, slow.animTime)
	}
}

func TestDisposeReleasesScene(t *testing.T) {
	sc, g := newTestGallery(t, Config{Seed: 5})
	g.ApplyWeather(testPreset(t, "stormy"))
	g.AddAudienceSeat(3)

	g.Dispose()
	if len(sc.Children()) != 0 {
		t.Errorf("Expected empty scene after dispose, got %d children", len(sc.Children()))
	}
	if got := scene.Count(sc); got != 1 {
		t.Errorf("Expected only the scene root to remain, got %d nodes", got)
	}

	g.Dispose()
	g.Update(1)
}
