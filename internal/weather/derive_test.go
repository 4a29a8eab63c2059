package weather

import (
	"math"
	"testing"
	"time"

	"github.com/jmylchreest/atrium/internal/market"
)

// snapshotFor builds a snapshot whose equal-cap weighted average change,
// volatility and total volume hit the given targets. Changes are mean±vol.
func snapshotFor(change, vol, totalVolumeBillions float64) *market.Snapshot {
	perVolume := totalVolumeBillions / 4 * 1e9
	return &market.Snapshot{
		BTC: market.AssetStats{PriceChange24h: change + vol, Volume24h: perVolume, MarketCap: 1e9},
		ETH: market.AssetStats{PriceChange24h: change - vol, Volume24h: perVolume, MarketCap: 1e9},
		SUI: market.AssetStats{PriceChange24h: change + vol, Volume24h: perVolume, MarketCap: 1e9},
		WAL: market.AssetStats{PriceChange24h: change - vol, Volume24h: perVolume, MarketCap: 1e9},
	}
}

func TestDeriveMarketBands(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		change  float64
		vol     float64
		weather Condition
		mood    Mood
		water   WaterState
	}{
		{"strong gain", 7, 3, Sunny, Energetic, WaterRipples},
		{"mild gain", 3, 2, Cloudy, Calm, WaterCalm},
		{"flat", 0, 1, Cloudy, Calm, WaterCalm},
		{"mild loss", -3, 2, Rainy, Melancholic, WaterWaves},
		{"boundary loss", -5, 2, Rainy, Melancholic, WaterWaves},
		{"crash", -7, 4, Stormy, Chaotic, WaterTurbulent},
		{"volatile overrides gain", 7, 9, Foggy, Mysterious, WaterCalm},
		{"volatile overrides loss", -7, 9, Foggy, Mysterious, WaterCalm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DeriveMarket(snapshotFor(tt.change, tt.vol, 40), now)
			if p.WeatherType != tt.weather {
				t.Errorf("Expected weather %s, got %s", tt.weather, p.WeatherType)
			}
			if p.Mood != tt.mood {
				t.Errorf("Expected mood %s, got %s", tt.mood, p.Mood)
			}
			if p.WaterEffect != tt.water {
				t.Errorf("Expected water %s, got %s", tt.water, p.WaterEffect)
			}
			if p.Timestamp != now {
				t.Errorf("Expected timestamp %v, got %v", now, p.Timestamp)
			}
			if p.Reasoning == "" {
				t.Errorf("Expected non-empty reasoning")
			}
		})
	}
}

func TestDeriveSampleScenario(t *testing.T) {
	// +7% on volatility 3 with 40B volume: sunny, energetic, 20 fish,
	// beam intensity 0.7.
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p := DeriveMarket(snapshotFor(7, 3, 40), now)

	if p.WeatherType != Sunny || p.Mood != Energetic {
		t.Fatalf("Expected sunny/energetic, got %s/%s", p.WeatherType, p.Mood)
	}
	if p.FishCount != 20 {
		t.Errorf("Expected fishCount 20 for 40B volume, got %d", p.FishCount)
	}
	if p.FloatingOrbCount < 5 || p.FloatingOrbCount > 30 {
		t.Errorf("Expected orb count within [5,30], got %d", p.FloatingOrbCount)
	}
	if math.Abs(p.EnergyBeamIntensity-0.7) > 1e-9 {
		t.Errorf("Expected beam intensity 0.7, got %f", p.EnergyBeamIntensity)
	}
}

func TestFishCountFromVolume(t *testing.T) {
	tests := []struct {
		volume float64
		want   int
	}{
		{0, 0},
		{3e9, 1},
		{40e9, 20},
		{200e9, 100},
		{1000e9, 100},
	}
	for _, tt := range tests {
		if got := fishCountFromVolume(tt.volume); got != tt.want {
			t.Errorf("fishCountFromVolume(%g): expected %d, got %d", tt.volume, tt.want, got)
		}
	}
}

func TestOrbCountClamped(t *testing.T) {
	if got := orbCountFromTrending(0); got != 5 {
		t.Errorf("Expected floor of 5 orbs, got %d", got)
	}
	if got := orbCountFromTrending(50); got != 30 {
		t.Errorf("Expected cap of 30 orbs, got %d", got)
	}
}

func TestApplyExtremes(t *testing.T) {
	now := time.Now()

	p := DeriveMarket(snapshotFor(13, 2, 40), now)
	if p.IslandState != IslandGlowing {
		t.Errorf("Expected glowing island on +13%%, got %s", p.IslandState)
	}
	if !p.HasEvent(EventFireRing) {
		t.Errorf("Expected fire_ring event on +13%%")
	}

	p = DeriveMarket(snapshotFor(-13, 4, 40), now)
	if p.IslandState != IslandBurning {
		t.Errorf("Expected burning island on -13%%, got %s", p.IslandState)
	}
	if !p.HasEvent(EventMeteorShower) || !p.HasEvent(EventFireball) {
		t.Errorf("Expected meteor_shower and fireball events on -13%%")
	}
	if !p.HasAmbient(AmbientEmbers) {
		t.Errorf("Expected embers ambient on -13%%")
	}

	p = DeriveMarket(snapshotFor(-9, 4, 40), now)
	if p.IslandState != IslandSmoking {
		t.Errorf("Expected smoking island on -9%%, got %s", p.IslandState)
	}
}

func TestTimeOverridePrecedence(t *testing.T) {
	adverse := []Condition{Rainy, Stormy, Foggy}
	for _, cond := range adverse {
		p := Params{
			WeatherType:      cond,
			SkyColor:         "#101010",
			SunColor:         "#202020",
			SunIntensity:     0.33,
			AmbientIntensity: 0.44,
		}
		for hour := 0; hour < 24; hour++ {
			got := ApplyTimeOverrides(p, hour)
			if got.SkyColor != p.SkyColor || got.SunColor != p.SunColor ||
				got.SunIntensity != p.SunIntensity || got.AmbientIntensity != p.AmbientIntensity {
				t.Fatalf("Expected %s params untouched at hour %d", cond, hour)
			}
		}
	}

	// Benign weather takes the circadian band.
	p := Params{WeatherType: Sunny, SkyColor: "#87ceeb", SunIntensity: 1.4}
	night := ApplyTimeOverrides(p, 2)
	if night.SkyColor == p.SkyColor || night.SunIntensity == p.SunIntensity {
		t.Errorf("Expected deep-night override for sunny weather at 02:00")
	}
	day := ApplyTimeOverrides(p, 12)
	if day.SunIntensity != 1.2 {
		t.Errorf("Expected day band sun intensity 1.2, got %f", day.SunIntensity)
	}
}

func TestBandForHour(t *testing.T) {
	tests := []struct {
		hour int
		band timeBand
	}{
		{23, bandDeepNight},
		{0, bandDeepNight},
		{4, bandDeepNight},
		{5, bandDawn},
		{7, bandDawn},
		{8, bandDay},
		{16, bandDay},
		{17, bandDusk},
		{21, bandDusk},
	}
	for _, tt := range tests {
		if got := bandForHour(tt.hour); got != tt.band {
			t.Errorf("Hour %d: expected band %+v, got %+v", tt.hour, tt.band, got)
		}
	}
}

func TestNormalizeClamps(t *testing.T) {
	p := Params{
		FogDensity:          3,
		SunIntensity:        -1,
		WindSpeed:           99,
		CloudSpeed:          -2,
		FishCount:           500,
		FloatingOrbCount:    1,
		EnergyBeamIntensity: 7,
		SpecialEvents:       []Event{EventNone, EventAurora, ""},
	}
	p.Normalize()

	if p.FogDensity != 1 || p.SunIntensity != 0 {
		t.Errorf("Expected fog/sun clamped, got %f/%f", p.FogDensity, p.SunIntensity)
	}
	if p.WindSpeed != 10 || p.CloudSpeed != 0 {
		t.Errorf("Expected wind/cloud clamped, got %f/%f", p.WindSpeed, p.CloudSpeed)
	}
	if p.FishCount != 100 || p.FloatingOrbCount != 5 {
		t.Errorf("Expected fish/orbs clamped, got %d/%d", p.FishCount, p.FloatingOrbCount)
	}
	if p.EnergyBeamIntensity != 1 {
		t.Errorf("Expected beam clamped to 1, got %f", p.EnergyBeamIntensity)
	}
	if len(p.SpecialEvents) != 1 || p.SpecialEvents[0] != EventAurora {
		t.Errorf("Expected none placeholder stripped, got %v", p.SpecialEvents)
	}
	if p.WeatherType != Cloudy || p.Mood != Calm {
		t.Errorf("Expected enum defaults, got %s/%s", p.WeatherType, p.Mood)
	}
}

func TestPresets(t *testing.T) {
	now := time.Now()
	for _, name := range PresetNames() {
		p, err := Preset(name, now)
		if err != nil {
			t.Fatalf("Unexpected error for preset %s: %v", name, err)
		}
		if string(p.WeatherType) != name {
			t.Errorf("Expected preset %s to carry its condition, got %s", name, p.WeatherType)
		}
	}
	if _, err := Preset("blizzard", now); err == nil {
		t.Errorf("Expected error for unknown preset")
	}

	snowy, _ := Preset("snowy", now)
	if snowy.WaterEffect != WaterFrozen || snowy.IslandState != IslandFrozen {
		t.Errorf("Expected snowy preset to freeze water and island, got %s/%s",
			snowy.WaterEffect, snowy.IslandState)
	}
}
