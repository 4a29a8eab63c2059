// Package effects runs transient scene set-pieces (meteor showers, auroras,
// lightning strikes) and lightweight ambient decorations (birds, embers,
// snowfall) through a keyed lifecycle manager. At most one effect per type
// runs at a time; re-adding an active type disposes the running instance
// before installing the replacement.
package effects

import (
	"math/rand"
	"slices"

	"github.com/jmylchreest/atrium/internal/scene"
)

// Type identifies an effect implementation in the registry.
type Type string

const (
	TypeMeteorShower Type = "meteor_shower"
	TypeShootingStar Type = "shooting_star"
	TypeFireball     Type = "fireball"
	TypeFireRing     Type = "fire_ring"
	TypeAurora       Type = "aurora"
	TypeLightning    Type = "lightning"

	TypeBirds     Type = "birds"
	TypeEmbers    Type = "embers"
	TypeSparkles  Type = "sparkles"
	TypeSnowfall  Type = "snowfall"
	TypeFireflies Type = "fireflies"
)

// Effect is one running set-piece. Init builds the owned nodes once, Update
// advances them by dt seconds, and Dispose removes every owned node from
// the scene. Finite effects report Finished once spent; perpetual emitters
// always return false and persist until removed.
type Effect interface {
	Init()
	Update(dt float32)
	Finished() bool
	Dispose()
}

// Factory builds an effect attached under host. Implementations draw all
// randomness from rng.
type Factory func(host *scene.Group, intensity float32, rng *rand.Rand) Effect

// Registry maps effect types to factories.
type Registry struct {
	factories map[Type]Factory
}

// NewRegistry creates an empty effect registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Type]Factory)}
}

// Register adds a factory to the registry, replacing any previous entry for
// the same type.
func (r *Registry) Register(t Type, f Factory) {
	r.factories[t] = f
}

// Get retrieves a factory by type.
func (r *Registry) Get(t Type) (Factory, bool) {
	f, ok := r.factories[t]
	return f, ok
}

// List returns all registered types, sorted.
func (r *Registry) List() []Type {
	types := make([]Type, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// DefaultRegistry returns a registry with every built-in effect installed.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TypeMeteorShower, func(h *scene.Group, i float32, rng *rand.Rand) Effect {
		return newMeteorShower(h, i, rng)
	})
	r.Register(TypeShootingStar, func(h *scene.Group, i float32, rng *rand.Rand) Effect {
		return newShootingStar(h, i, rng)
	})
	r.Register(TypeFireball, func(h *scene.Group, i float32, rng *rand.Rand) Effect {
		return newFireball(h, i, rng)
	})
	r.Register(TypeFireRing, func(h *scene.Group, i float32, rng *rand.Rand) Effect {
		return newFireRing(h, i, rng)
	})
	r.Register(TypeAurora, func(h *scene.Group, i float32, rng *rand.Rand) Effect {
		return newAurora(h, i, rng)
	})
	r.Register(TypeLightning, func(h *scene.Group, i float32, rng *rand.Rand) Effect {
		return newLightning(h, i, rng)
	})
	r.Register(TypeBirds, func(h *scene.Group, i float32, rng *rand.Rand) Effect {
		return newBirds(h, i, rng)
	})
	r.Register(TypeEmbers, func(h *scene.Group, i float32, rng *rand.Rand) Effect {
		return newEmbers(h, i, rng)
	})
	r.Register(TypeSparkles, func(h *scene.Group, i float32, rng *rand.Rand) Effect {
		return newSparkles(h, i, rng)
	})
	r.Register(TypeSnowfall, func(h *scene.Group, i float32, rng *rand.Rand) Effect {
		return newSnowfall(h, i, rng)
	})
	r.Register(TypeFireflies, func(h *scene.Group, i float32, rng *rand.Rand) Effect {
		return newFireflies(h, i, rng)
	})
	return r
}

// Manager owns the running effect instances under one host group. Not safe
// for concurrent use.
type Manager struct {
	host     *scene.Group
	reg      *Registry
	rng      *rand.Rand
	active   map[Type]Effect
	disposed bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithRegistry replaces the default effect registry.
func WithRegistry(r *Registry) Option {
	return func(m *Manager) { m.reg = r }
}

// WithRand sets the random source used by every effect the manager builds.
func WithRand(rng *rand.Rand) Option {
	return func(m *Manager) { m.rng = rng }
}

// NewManager creates a manager attaching all effects under host.
func NewManager(host *scene.Group, opts ...Option) *Manager {
	m := &Manager{
		host:   host,
		reg:    DefaultRegistry(),
		rng:    rand.New(rand.NewSource(rand.Int63())),
		active: make(map[Type]Effect),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddEffect starts an effect of the given type. An already active instance
// of the same type is disposed first. Returns false for unknown types.
func (m *Manager) AddEffect(t Type, intensity float32) bool {
	factory, ok := m.reg.Get(t)
	if !ok {
		return false
	}
	if prev, running := m.active[t]; running {
		prev.Dispose()
		delete(m.active, t)
	}
	e := factory(m.host, scene.Clamp(intensity, 0, 1), m.rng)
	e.Init()
	m.active[t] = e
	return true
}

// RemoveEffect stops and disposes the effect of the given type. Returns
// false when no such effect is active.
func (m *Manager) RemoveEffect(t Type) bool {
	e, ok := m.active[t]
	if !ok {
		return false
	}
	e.Dispose()
	delete(m.active, t)
	return true
}

// Has reports whether an effect of the given type is active.
func (m *Manager) Has(t Type) bool {
	_, ok := m.active[t]
	return ok
}

// ActiveTypes returns the active effect types, sorted.
func (m *Manager) ActiveTypes() []Type {
	types := make([]Type, 0, len(m.active))
	for t := range m.active {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Update advances every active effect and reaps the finished ones.
func (m *Manager) Update(dt float32) {
	for t, e := range m.active {
		e.Update(dt)
		if e.Finished() {
			e.Dispose()
			delete(m.active, t)
		}
	}
}

// ClearAll disposes every active effect. Idempotent.
func (m *Manager) ClearAll() {
	for t, e := range m.active {
		e.Dispose()
		delete(m.active, t)
	}
}

// Dispose clears all effects and marks the manager dead. Safe to call twice.
func (m *Manager) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	m.ClearAll()
}

// base carries the node ownership shared by every effect implementation:
// one group under the host holding all created nodes, released in a single
// idempotent detach.
type base struct {
	group *scene.Group
}

func newBase(host *scene.Group, name string) base {
	g := scene.NewGroup(name)
	host.Add(g)
	return base{group: g}
}

func (b *base) Dispose() {
	if b.group == nil {
		return
	}
	scene.DetachAndDispose(b.group)
	b.group = nil
}

func (b *base) Finished() bool { return false }
