package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmylchreest/atrium/internal/weather"
)

// fakeSource serves canned parameters and counts calls.
type fakeSource struct {
	mu     sync.Mutex
	params weather.Params
	info   Info
	err    error
	calls  int
}

func (f *fakeSource) Current(ctx context.Context) (weather.Params, Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return weather.Params{}, Info{}, f.err
	}
	return f.params, f.info, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestPollerImmediateRefresh(t *testing.T) {
	source := &fakeSource{params: testParams(t, weather.Sunny, weather.Energetic)}
	updates := make(chan weather.Params, 8)

	poller := &Poller{
		Source:   source,
		Interval: time.Hour,
		OnUpdate: func(p weather.Params) { updates <- p },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	select {
	case p := <-updates:
		if p.WeatherType != weather.Sunny {
			t.Errorf("Expected weather type sunny, got %s", p.WeatherType)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected an immediate refresh before the first tick")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestPollerTicks(t *testing.T) {
	source := &fakeSource{params: testParams(t, weather.Rainy, weather.Melancholic)}
	updates := make(chan weather.Params, 8)

	poller := &Poller{
		Source:   source,
		Interval: 10 * time.Millisecond,
		OnUpdate: func(p weather.Params) { updates <- p },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	for i := 0; i < 3; i++ {
		select {
		case <-updates:
		case <-time.After(2 * time.Second):
			t.Fatalf("Expected update %d, poller stalled", i+1)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if source.callCount() < 3 {
		t.Errorf("Expected at least 3 source calls, got %d", source.callCount())
	}
}

func TestPollerSkipsFailedRefresh(t *testing.T) {
	source := &fakeSource{err: errors.New("market feed unreachable")}

	var mu sync.Mutex
	updateCount := 0

	poller := &Poller{
		Source:   source,
		Interval: 10 * time.Millisecond,
		OnUpdate: func(weather.Params) {
			mu.Lock()
			updateCount++
			mu.Unlock()
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	poller.Run(ctx)

	mu.Lock()
	defer mu.Unlock()
	if updateCount != 0 {
		t.Errorf("Expected no updates on failed refresh, got %d", updateCount)
	}
	if source.callCount() < 2 {
		t.Errorf("Expected polling to continue after errors, got %d calls", source.callCount())
	}
}

func TestPollerStopsOnCancel(t *testing.T) {
	source := &fakeSource{params: testParams(t, weather.Cloudy, weather.Calm)}
	poller := &Poller{Source: source, Interval: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return for a cancelled context")
	}
}
