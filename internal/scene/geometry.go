package scene

import (
	"github.com/chewxy/math32"
)

// Geometry holds vertex data shared by meshes and particle systems.
// Positions may be mutated in place by per-frame deformers (the water
// surface does this); index data is immutable after construction.
type Geometry struct {
	Positions []Vec3
	Indices   []uint32 // triangle list; empty for point clouds

	disposed bool
}

// NewPointsGeometry wraps raw positions for a particle system.
func NewPointsGeometry(positions []Vec3) *Geometry {
	return &Geometry{Positions: positions}
}

// Dispose releases the geometry. Safe to call more than once.
func (g *Geometry) Dispose() {
	if g != nil {
		g.disposed = true
	}
}

// Disposed reports whether Dispose has been called.
func (g *Geometry) Disposed() bool {
	return g != nil && g.disposed
}

// TriangleCount returns the number of indexed triangles.
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// BoundingBox returns the axis-aligned bounds of the positions in local
// space. Zero vectors are returned for empty geometry.
func (g *Geometry) BoundingBox() (min, max Vec3) {
	if len(g.Positions) == 0 {
		return Vec3{}, Vec3{}
	}
	min, max = g.Positions[0], g.Positions[0]
	for _, p := range g.Positions[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Z < min.Z {
			min.Z = p.Z
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		if p.Z > max.Z {
			max.Z = p.Z
		}
	}
	return min, max
}

// Bounds returns a bounding sphere (box centre plus max vertex distance).
func (g *Geometry) Bounds() (center Vec3, radius float32) {
	min, max := g.BoundingBox()
	center = min.Add(max).Scale(0.5)
	for _, p := range g.Positions {
		if d := p.DistanceTo(center); d > radius {
			radius = d
		}
	}
	return center, radius
}

// NewBoxGeometry builds an axis-aligned box centred on the origin.
func NewBoxGeometry(width, height, depth float32) *Geometry {
	hw, hh, hd := width/2, height/2, depth/2
	g := &Geometry{
		Positions: []Vec3{
			{-hw, -hh, -hd}, {hw, -hh, -hd}, {hw, hh, -hd}, {-hw, hh, -hd},
			{-hw, -hh, hd}, {hw, -hh, hd}, {hw, hh, hd}, {-hw, hh, hd},
		},
		Indices: []uint32{
			4, 5, 6, 4, 6, 7, // front (+z)
			1, 0, 3, 1, 3, 2, // back (-z)
			3, 7, 6, 3, 6, 2, // top
			0, 1, 5, 0, 5, 4, // bottom
			5, 1, 2, 5, 2, 6, // right
			0, 4, 7, 0, 7, 3, // left
		},
	}
	return g
}

// NewSphereGeometry builds a UV sphere centred on the origin.
func NewSphereGeometry(radius float32, widthSegments, heightSegments int) *Geometry {
	if widthSegments < 3 {
		widthSegments = 3
	}
	if heightSegments < 2 {
		heightSegments = 2
	}
	g := &Geometry{}
	for iy := 0; iy <= heightSegments; iy++ {
		v := float32(iy) / float32(heightSegments)
		phi := v * math32.Pi
		for ix := 0; ix <= widthSegments; ix++ {
			u := float32(ix) / float32(widthSegments)
			theta := u * 2 * math32.Pi
			g.Positions = append(g.Positions, Vec3{
				-radius * math32.Cos(theta) * math32.Sin(phi),
				radius * math32.Cos(phi),
				radius * math32.Sin(theta) * math32.Sin(phi),
			})
		}
	}
	cols := widthSegments + 1
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := uint32(iy*cols + ix)
			b := uint32((iy+1)*cols + ix)
			c := uint32((iy+1)*cols + ix + 1)
			d := uint32(iy*cols + ix + 1)
			if iy != 0 {
				g.Indices = append(g.Indices, a, b, d)
			}
			if iy != heightSegments-1 {
				g.Indices = append(g.Indices, b, c, d)
			}
		}
	}
	return g
}

// NewCylinderGeometry builds a capped cylinder (or cone for a zero top
// radius) along the Y axis, centred on the origin.
func NewCylinderGeometry(radiusTop, radiusBottom, height float32, radialSegments int) *Geometry {
	if radialSegments < 3 {
		radialSegments = 3
	}
	g := &Geometry{}
	hh := height / 2
	cols := radialSegments + 1

	for _, ring := range []struct {
		y, r float32
	}{{hh, radiusTop}, {-hh, radiusBottom}} {
		for ix := 0; ix <= radialSegments; ix++ {
			theta := float32(ix) / float32(radialSegments) * 2 * math32.Pi
			g.Positions = append(g.Positions, Vec3{
				ring.r * math32.Sin(theta),
				ring.y,
				ring.r * math32.Cos(theta),
			})
		}
	}
	for ix := 0; ix < radialSegments; ix++ {
		a := uint32(ix)
		b := uint32(cols + ix)
		c := uint32(cols + ix + 1)
		d := uint32(ix + 1)
		g.Indices = append(g.Indices, a, b, d, b, c, d)
	}

	// Caps: centre vertex fan per ring with a non-zero radius.
	if radiusTop > 0 {
		centre := uint32(len(g.Positions))
		g.Positions = append(g.Positions, Vec3{0, hh, 0})
		for ix := 0; ix < radialSegments; ix++ {
			g.Indices = append(g.Indices, centre, uint32(ix+1), uint32(ix))
		}
	}
	if radiusBottom > 0 {
		centre := uint32(len(g.Positions))
		g.Positions = append(g.Positions, Vec3{0, -hh, 0})
		for ix := 0; ix < radialSegments; ix++ {
			g.Indices = append(g.Indices, centre, uint32(cols+ix), uint32(cols+ix+1))
		}
	}
	return g
}

// NewConeGeometry builds a cone along the Y axis, apex up.
func NewConeGeometry(radius, height float32, radialSegments int) *Geometry {
	return NewCylinderGeometry(0, radius, height, radialSegments)
}

// NewPlaneGeometry builds a subdivided horizontal plane in the XZ plane,
// centred on the origin and facing +Y. Vertices are laid out row-major
// (z-major, then x), which deformers rely on.
func NewPlaneGeometry(width, depth float32, widthSegments, depthSegments int) *Geometry {
	if widthSegments < 1 {
		widthSegments = 1
	}
	if depthSegments < 1 {
		depthSegments = 1
	}
	g := &Geometry{}
	for iz := 0; iz <= depthSegments; iz++ {
		z := (float32(iz)/float32(depthSegments) - 0.5) * depth
		for ix := 0; ix <= widthSegments; ix++ {
			x := (float32(ix)/float32(widthSegments) - 0.5) * width
			g.Positions = append(g.Positions, Vec3{x, 0, z})
		}
	}
	cols := widthSegments + 1
	for iz := 0; iz < depthSegments; iz++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := uint32(iz*cols + ix)
			b := uint32((iz+1)*cols + ix)
			c := uint32((iz+1)*cols + ix + 1)
			d := uint32(iz*cols + ix + 1)
			g.Indices = append(g.Indices, a, b, d, b, c, d)
		}
	}
	return g
}

// NewTorusGeometry builds a torus in the XZ plane around the Y axis.
func NewTorusGeometry(radius, tube float32, radialSegments, tubularSegments int) *Geometry {
	if radialSegments < 3 {
		radialSegments = 3
	}
	if tubularSegments < 3 {
		tubularSegments = 3
	}
	g := &Geometry{}
	for j := 0; j <= radialSegments; j++ {
		v := float32(j) / float32(radialSegments) * 2 * math32.Pi
		for i := 0; i <= tubularSegments; i++ {
			u := float32(i) / float32(tubularSegments) * 2 * math32.Pi
			r := radius + tube*math32.Cos(v)
			g.Positions = append(g.Positions, Vec3{
				r * math32.Cos(u),
				tube * math32.Sin(v),
				r * math32.Sin(u),
			})
		}
	}
	cols := tubularSegments + 1
	for j := 0; j < radialSegments; j++ {
		for i := 0; i < tubularSegments; i++ {
			a := uint32(j*cols + i)
			b := uint32((j+1)*cols + i)
			c := uint32((j+1)*cols + i + 1)
			d := uint32(j*cols + i + 1)
			g.Indices = append(g.Indices, a, b, d, b, c, d)
		}
	}
	return g
}

// NewRingGeometry builds a flat annulus in the XZ plane facing +Y.
func NewRingGeometry(innerRadius, outerRadius float32, thetaSegments int) *Geometry {
	if thetaSegments < 3 {
		thetaSegments = 3
	}
	g := &Geometry{}
	for i := 0; i <= thetaSegments; i++ {
		theta := float32(i) / float32(thetaSegments) * 2 * math32.Pi
		s, c := math32.Sin(theta), math32.Cos(theta)
		g.Positions = append(g.Positions,
			Vec3{innerRadius * c, 0, innerRadius * s},
			Vec3{outerRadius * c, 0, outerRadius * s},
		)
	}
	for i := 0; i < thetaSegments; i++ {
		a := uint32(i * 2)
		b := uint32(i*2 + 1)
		c := uint32(i*2 + 3)
		d := uint32(i*2 + 2)
		g.Indices = append(g.Indices, a, b, c, a, c, d)
	}
	return g
}

// NewCircleGeometry builds a filled disc in the XZ plane facing +Y.
func NewCircleGeometry(radius float32, segments int) *Geometry {
	if segments < 3 {
		segments = 3
	}
	g := &Geometry{Positions: []Vec3{{}}}
	for i := 0; i <= segments; i++ {
		theta := float32(i) / float32(segments) * 2 * math32.Pi
		g.Positions = append(g.Positions, Vec3{
			radius * math32.Cos(theta), 0, radius * math32.Sin(theta),
		})
	}
	for i := 1; i <= segments; i++ {
		g.Indices = append(g.Indices, 0, uint32(i+1), uint32(i))
	}
	return g
}

// NewOctahedronGeometry builds a regular octahedron, used for crystal and
// stone silhouettes.
func NewOctahedronGeometry(radius float32) *Geometry {
	return &Geometry{
		Positions: []Vec3{
			{radius, 0, 0}, {-radius, 0, 0},
			{0, radius, 0}, {0, -radius, 0},
			{0, 0, radius}, {0, 0, -radius},
		},
		Indices: []uint32{
			0, 2, 4, 0, 4, 3, 0, 3, 5, 0, 5, 2,
			1, 4, 2, 1, 3, 4, 1, 5, 3, 1, 2, 5,
		},
	}
}
