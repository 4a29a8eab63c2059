package scene

// Blending selects how a material's fragments combine with the framebuffer.
type Blending int

const (
	// NormalBlending is standard alpha compositing.
	NormalBlending Blending = iota
	// AdditiveBlending sums fragment colour onto the framebuffer; used by
	// glows, beams and most particle systems.
	AdditiveBlending
)

// Side selects which faces of a mesh are drawn.
type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

// Material holds surface appearance for meshes. Fields mirror a standard
// physically-based parameter set; the software renderer consumes a subset.
type Material struct {
	Color             Color
	Emissive          Color
	EmissiveIntensity float32
	Metalness         float32
	Roughness         float32
	Opacity           float32
	Transparent       bool
	Blending          Blending
	Side              Side
	FlatShading       bool

	disposed bool
}

// NewMaterial returns an opaque material of the given colour with neutral
// surface parameters.
func NewMaterial(c Color) *Material {
	return &Material{
		Color:     c,
		Roughness: 0.8,
		Opacity:   1,
	}
}

// Dispose releases the material. Safe to call more than once.
func (m *Material) Dispose() {
	if m != nil {
		m.disposed = true
	}
}

// Disposed reports whether Dispose has been called.
func (m *Material) Disposed() bool {
	return m != nil && m.disposed
}

// Clone returns a copy of the material with disposal state reset.
func (m *Material) Clone() *Material {
	c := *m
	c.disposed = false
	return &c
}

// PointsMaterial holds appearance for particle systems.
type PointsMaterial struct {
	Color        Color
	Size         float32
	Opacity      float32
	Transparent  bool
	Blending     Blending
	VertexColors bool

	disposed bool
}

// NewPointsMaterial returns a particle material of the given colour and
// point size.
func NewPointsMaterial(c Color, size float32) *PointsMaterial {
	return &PointsMaterial{
		Color:   c,
		Size:    size,
		Opacity: 1,
	}
}

// Dispose releases the material. Safe to call more than once.
func (m *PointsMaterial) Dispose() {
	if m != nil {
		m.disposed = true
	}
}

// Disposed reports whether Dispose has been called.
func (m *PointsMaterial) Disposed() bool {
	return m != nil && m.disposed
}
