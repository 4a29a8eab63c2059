// Package engine owns the render loop and resource lifecycle around the
// gallery: camera, orbit controls, clock-driven animation, GLB model
// loading with a URL-keyed cache, picking and teardown. All scene mutation
// funnels through one mutex so the loop goroutine and external callers
// never interleave inside the scene graph.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"path"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jmylchreest/atrium/internal/gallery"
	"github.com/jmylchreest/atrium/internal/scene"
	"github.com/jmylchreest/atrium/internal/weather"
)

// Renderer consumes the scene every frame. The render package provides the
// software rasterizer; a nil renderer runs the simulation headless.
type Renderer interface {
	Render(sc *scene.Scene, cam *scene.Camera)
	Dispose()
}

// Config selects the scene manager's construction parameters. Zero values
// give a headless manager with a system clock at 30 frames per second.
type Config struct {
	Theme           string
	SubscriberCount int
	Seed            int64
	FPS             int
	Clock           Clock
	Renderer        Renderer
	Fetcher         ModelFetcher
	Rand            *rand.Rand
}

// ModelState is one serializable placed-model record, consumed by the
// space-configuration persistence layer.
type ModelState struct {
	ID       string     `json:"id"`
	Position scene.Vec3 `json:"position"`
	Rotation scene.Vec3 `json:"rotation"`
	Scale    scene.Vec3 `json:"scale"`
}

// SceneManager composes the scene, camera, controls and gallery, and runs
// the animation loop.
type SceneManager struct {
	mu       sync.Mutex
	scene    *scene.Scene
	camera   *scene.Camera
	controls *OrbitControls
	renderer Renderer
	gallery  *gallery.Gallery
	clock    Clock
	fetcher  ModelFetcher
	fps      int

	modelCache map[string]*scene.Group
	instances  map[string]*scene.Group

	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	disposed bool
}

// NewSceneManager builds the scene and gallery.
func NewSceneManager(cfg Config) (*SceneManager, error) {
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	fps := cfg.FPS
	if fps <= 0 {
		fps = 30
	}
	if fps > 240 {
		fps = 240
	}

	sc := scene.NewScene("atrium")
	cam := scene.NewCamera(55, 16.0/9.0)
	cam.Position = scene.V3(26, 16, 26)
	cam.Target = scene.V3(0, 4, 0)

	g, err := gallery.New(sc, gallery.Config{
		Theme:           cfg.Theme,
		SubscriberCount: cfg.SubscriberCount,
		Seed:            cfg.Seed,
		Rand:            cfg.Rand,
	})
	if err != nil {
		return nil, fmt.Errorf("creating scene manager: %w", err)
	}

	return &SceneManager{
		scene:      sc,
		camera:     cam,
		controls:   NewOrbitControls(cam, scene.V3(0, 4, 0)),
		renderer:   cfg.Renderer,
		gallery:    g,
		clock:      clock,
		fetcher:    cfg.Fetcher,
		fps:        fps,
		modelCache: make(map[string]*scene.Group),
		instances:  make(map[string]*scene.Group),
	}, nil
}

// Scene returns the root scene.
func (s *SceneManager) Scene() *scene.Scene { return s.scene }

// Camera returns the camera.
func (s *SceneManager) Camera() *scene.Camera { return s.camera }

// Controls returns the orbit controls.
func (s *SceneManager) Controls() *OrbitControls { return s.controls }

// Gallery returns the stage orchestrator.
func (s *SceneManager) Gallery() *gallery.Gallery { return s.gallery }

// ApplyWeather applies a parameter set to the gallery, serialized against
// the animation loop.
func (s *SceneManager) ApplyWeather(p weather.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.gallery.ApplyWeather(p)
}

// Step advances one frame: controls, gallery animation, then a render when
// a renderer is attached.
func (s *SceneManager) Step(dt float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.controls.Update(dt)
	s.gallery.Update(dt)
	if s.renderer != nil {
		s.renderer.Render(s.scene, s.camera)
	}
}

// Snapshot renders the current scene into r, serialized against the
// animation loop.
func (s *SceneManager) Snapshot(r Renderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	r.Render(s.scene, s.camera)
}

// StartAnimation launches the frame loop. Repeated calls while running are
// no-ops.
func (s *SceneManager) StartAnimation() {
	s.mu.Lock()
	if s.running || s.disposed {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stop, done := s.stopCh, s.doneCh
	s.mu.Unlock()

	go s.loop(stop, done)
}

func (s *SceneManager) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(time.Second / time.Duration(s.fps))
	defer ticker.Stop()
	last := s.clock.Now()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			now := s.clock.Now()
			dt := float32(now.Sub(last).Seconds())
			last = now
			if dt <= 0 {
				continue
			}
			s.Step(dt)
		}
	}
}

// StopAnimation halts the frame loop and waits for the in-flight frame to
// finish.
func (s *SceneManager) StopAnimation() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, done := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stop)
	<-done
}

// Running reports whether the frame loop is active.
func (s *SceneManager) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LoadGLBModel fetches and decodes a model, returning a detached instance
// tree. Repeat loads of the same URL clone the cached prototype instead of
// refetching; clones share geometry and carry independent materials.
func (s *SceneManager) LoadGLBModel(ctx context.Context, url string) (*scene.Group, error) {
	s.mu.Lock()
	if proto, ok := s.modelCache[url]; ok {
		clone := cloneGroup(proto)
		s.mu.Unlock()
		return clone, nil
	}
	s.mu.Unlock()

	if s.fetcher == nil {
		return nil, fmt.Errorf("loading model %s: no fetcher configured", url)
	}
	data, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("loading model %s: %w", url, err)
	}
	proto, err := decodeGLB(path.Base(url), data)
	if err != nil {
		return nil, fmt.Errorf("loading model %s: %w", url, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.modelCache[url]; ok {
		// A concurrent load won the race; keep its prototype.
		proto = existing
	} else {
		s.modelCache[url] = proto
	}
	return cloneGroup(proto), nil
}

// AddModel loads a model and places it in the scene under the descriptor's
// transform. A blank ID is assigned a fresh one; re-using an existing ID
// replaces that instance. Returns the instance ID.
func (s *SceneManager) AddModel(ctx context.Context, d ModelDescriptor) (string, error) {
	grp, err := s.LoadGLBModel(ctx, d.ModelURL)
	if err != nil {
		return "", err
	}
	grp.Position = d.Position
	grp.Rotation = d.Rotation
	if d.Scale == (scene.Vec3{}) {
		grp.Scl = scene.One()
	} else {
		grp.Scl = d.Scale
	}

	id := d.ID
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.instances[id]; ok {
		s.removeInstanceLocked(id, old)
	}
	s.instances[id] = grp
	s.scene.Add(grp)
	return id, nil
}

// RemoveModel detaches and releases a placed instance. Returns false for an
// unknown ID.
func (s *SceneManager) RemoveModel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	grp, ok := s.instances[id]
	if !ok {
		return false
	}
	s.removeInstanceLocked(id, grp)
	return true
}

// removeInstanceLocked detaches an instance and disposes its cloned
// materials. Geometry belongs to the model cache and stays live for future
// clones.
func (s *SceneManager) removeInstanceLocked(id string, grp *scene.Group) {
	s.scene.Remove(grp)
	scene.Traverse(grp, func(o scene.Object) bool {
		if m, ok := o.(*scene.Mesh); ok {
			m.Material.Dispose()
		}
		return true
	})
	delete(s.instances, id)
}

// GetSceneState returns the placed-model records sorted by ID.
func (s *SceneManager) GetSceneState() []ModelState {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.instances))
	for id := range s.instances {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]ModelState, 0, len(ids))
	for _, id := range ids {
		g := s.instances[id]
		out = append(out, ModelState{
			ID:       id,
			Position: g.Position,
			Rotation: g.Rotation,
			Scale:    g.Scl,
		})
	}
	return out
}

// PickObject casts a ray through normalized device coordinates and returns
// the nearest pickable unit: the scene-direct child containing the hit
// mesh. Lights are never returned.
func (s *SceneManager) PickObject(ndcX, ndcY float32) scene.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	ray := s.camera.Ray(ndcX, ndcY)
	for _, hit := range scene.Raycast(s.scene, ray) {
		top := hit.Object
		for {
			p := top.Base().Parent()
			if p == nil {
				top = nil
				break
			}
			if p == scene.Object(s.scene) {
				break
			}
			top = p
		}
		if top == nil || scene.IsLight(top) {
			continue
		}
		return top
	}
	return nil
}

// Dispose stops the loop and tears everything down: the gallery first so
// its managers release their auxiliaries, then the remaining scene tree,
// the model cache prototypes and the renderer. Safe to call twice.
func (s *SceneManager) Dispose() {
	s.StopAnimation()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.disposed = true
	s.gallery.Dispose()
	scene.DisposeTree(s.scene)
	for _, proto := range s.modelCache {
		scene.DisposeTree(proto)
	}
	s.modelCache = nil
	s.instances = nil
	if s.renderer != nil {
		s.renderer.Dispose()
	}
}
