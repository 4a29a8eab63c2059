package seed

import (
	"testing"
	"time"

	"github.com/jmylchreest/atrium/internal/weather"
)

func testParams() *weather.Params {
	p := weather.Params{
		WeatherType:      weather.Sunny,
		Mood:             weather.Energetic,
		IslandState:      weather.IslandGlowing,
		WaterEffect:      weather.WaterRipples,
		SpecialEvents:    []weather.Event{weather.EventShootingStar},
		AmbientEffects:   []weather.AmbientEffect{weather.AmbientBirds},
		FishCount:        12,
		FloatingOrbCount: 10,
	}
	return &p
}

func TestCalculateWeatherSeedDeterministic(t *testing.T) {
	a, err := CalculateWeatherSeed(testParams())
	if err != nil {
		t.Fatalf("CalculateWeatherSeed failed: %v", err)
	}
	b, err := CalculateWeatherSeed(testParams())
	if err != nil {
		t.Fatalf("CalculateWeatherSeed failed: %v", err)
	}
	if a != b {
		t.Errorf("Expected identical seeds for identical params, got %d and %d", a, b)
	}

	changed := testParams()
	changed.WeatherType = weather.Stormy
	c, err := CalculateWeatherSeed(changed)
	if err != nil {
		t.Fatalf("CalculateWeatherSeed failed: %v", err)
	}
	if c == a {
		t.Errorf("Expected different seed after changing weather type, got %d twice", a)
	}

	counts := testParams()
	counts.FishCount = 20
	d, err := CalculateWeatherSeed(counts)
	if err != nil {
		t.Fatalf("CalculateWeatherSeed failed: %v", err)
	}
	if d == a {
		t.Errorf("Expected different seed after changing fish count, got %d twice", a)
	}
}

func TestCalculateWeatherSeedNil(t *testing.T) {
	if _, err := CalculateWeatherSeed(nil); err == nil {
		t.Error("Expected error for nil params, got nil")
	}
}

func TestCalculateDailySeed(t *testing.T) {
	morning := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 6, 1, 22, 30, 0, 0, time.UTC)
	nextDay := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	if a, b := CalculateDailySeed(morning), CalculateDailySeed(evening); a != b {
		t.Errorf("Expected same seed within one day, got %d and %d", a, b)
	}
	if a, b := CalculateDailySeed(morning), CalculateDailySeed(nextDay); a == b {
		t.Errorf("Expected different seeds on different days, got %d twice", a)
	}
}

func TestCalculateSourceSeed(t *testing.T) {
	a, err := CalculateSourceSeed("https://example.com/weather.json")
	if err != nil {
		t.Fatalf("CalculateSourceSeed failed: %v", err)
	}
	b, err := CalculateSourceSeed("https://example.com/weather.json")
	if err != nil {
		t.Fatalf("CalculateSourceSeed failed: %v", err)
	}
	if a != b {
		t.Errorf("Expected identical seeds for identical source, got %d and %d", a, b)
	}

	c, err := CalculateSourceSeed("https://example.com/other.json")
	if err != nil {
		t.Fatalf("CalculateSourceSeed failed: %v", err)
	}
	if c == a {
		t.Errorf("Expected different seeds for different sources, got %d twice", a)
	}

	if _, err := CalculateSourceSeed(""); err == nil {
		t.Error("Expected error for empty source, got nil")
	}
}

func TestCalculate(t *testing.T) {
	manualValue := int64(42)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		params  *weather.Params
		now     time.Time
		config  Config
		want    int64
		exact   bool
		wantErr bool
	}{
		{
			name:   "weather mode",
			params: testParams(),
			now:    now,
			config: Config{Mode: ModeWeather},
		},
		{
			name:    "weather mode without params",
			now:     now,
			config:  Config{Mode: ModeWeather},
			wantErr: true,
		},
		{
			name:   "daily mode",
			now:    now,
			config: Config{Mode: ModeDaily},
		},
		{
			name:    "daily mode without time",
			config:  Config{Mode: ModeDaily},
			wantErr: true,
		},
		{
			name:   "manual mode",
			now:    now,
			config: Config{Mode: ModeManual, Value: &manualValue},
			want:   42,
			exact:  true,
		},
		{
			name:    "manual mode without value",
			now:     now,
			config:  Config{Mode: ModeManual},
			wantErr: true,
		},
		{
			name:   "random mode",
			now:    now,
			config: Config{Mode: ModeRandom},
		},
		{
			name:    "unknown mode",
			now:     now,
			config:  Config{Mode: "stellar"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Calculate(tt.params, tt.now, tt.config)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Calculate failed: %v", err)
			}
			if tt.exact && got != tt.want {
				t.Errorf("Expected seed %d, got %d", tt.want, got)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range ValidModes() {
		got, err := ParseMode(string(m))
		if err != nil {
			t.Errorf("ParseMode(%q) failed: %v", m, err)
		}
		if got != m {
			t.Errorf("Expected mode %q, got %q", m, got)
		}
	}

	if _, err := ParseMode("content"); err == nil {
		t.Error("Expected error for invalid mode, got nil")
	}
}
