// Package render draws a scene into an in-memory image with a small
// software rasterizer: z-buffered triangles with lambert shading from the
// scene's sun and ambient lights, additive and alpha-blended transparency,
// exponential-squared fog and point-sprite particles. Output is
// deterministic for a fixed scene and camera, which the snapshot tests and
// the HTTP snapshot endpoint rely on.
package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"sort"

	"github.com/chewxy/math32"
	xdraw "golang.org/x/image/draw"

	"github.com/jmylchreest/atrium/internal/scene"
)

// Options sizes the output image. Supersample renders at a multiple of the
// output size and downsamples with Catmull-Rom for smoother edges.
type Options struct {
	Width       int
	Height      int
	Supersample int
}

// Software is a CPU renderer targeting an RGBA framebuffer.
type Software struct {
	width, height int
	ss            int
	img           *image.RGBA
	depth         []float32
	disposed      bool
}

// New creates a renderer. Zero dimensions default to 800x450.
func New(opts Options) *Software {
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = 800
	}
	if h <= 0 {
		h = 450
	}
	ss := opts.Supersample
	if ss < 1 {
		ss = 1
	}
	if ss > 4 {
		ss = 4
	}
	return &Software{
		width:  w,
		height: h,
		ss:     ss,
		img:    image.NewRGBA(image.Rect(0, 0, w*ss, h*ss)),
		depth:  make([]float32, w*ss*h*ss),
	}
}

type frameLights struct {
	ambient scene.Color
	sunDir  scene.Vec3
	sunCol  scene.Color
	sunInt  float32
	hasSun  bool
}

// Render rasterizes the scene into the internal framebuffer, replacing the
// previous frame.
func (r *Software) Render(sc *scene.Scene, cam *scene.Camera) {
	if r.disposed {
		return
	}
	w, h := r.img.Bounds().Dx(), r.img.Bounds().Dy()
	r.clear(sc.Background)

	lights := collectLights(sc)

	type surface struct {
		mesh  *scene.Mesh
		world scene.Mat4
		dist  float32
	}
	var opaque, transparent []surface
	var sprites []*scene.Points

	scene.Traverse(sc, func(o scene.Object) bool {
		if !o.Base().Visible {
			return false
		}
		switch n := o.(type) {
		case *scene.Mesh:
			if n.Geometry == nil || len(n.Geometry.Indices) == 0 {
				return true
			}
			world := n.WorldMatrix()
			center, _ := n.Geometry.Bounds()
			s := surface{
				mesh:  n,
				world: world,
				dist:  world.ApplyPoint(center).DistanceTo(cam.Position),
			}
			if n.Material.Transparent || n.Material.Blending == scene.AdditiveBlending {
				transparent = append(transparent, s)
			} else {
				opaque = append(opaque, s)
			}
		case *scene.Points:
			sprites = append(sprites, n)
		}
		return true
	})

	for _, s := range opaque {
		r.drawMesh(s.mesh, s.world, cam, lights, sc, true)
	}
	// Back-to-front so alpha compositing stacks correctly.
	sort.Slice(transparent, func(i, j int) bool {
		return transparent[i].dist > transparent[j].dist
	})
	for _, s := range transparent {
		r.drawMesh(s.mesh, s.world, cam, lights, sc, false)
	}
	for _, p := range sprites {
		r.drawPoints(p, cam, sc, w, h)
	}
}

func (r *Software) clear(bg scene.Color) {
	c := toRGBA(bg, 1)
	b := r.img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r.img.SetRGBA(x, y, c)
		}
	}
	for i := range r.depth {
		r.depth[i] = math32.Inf(1)
	}
}

func collectLights(sc *scene.Scene) frameLights {
	var fl frameLights
	scene.Traverse(sc, func(o scene.Object) bool {
		switch l := o.(type) {
		case *scene.AmbientLight:
			fl.ambient.R += l.Color.R * float64(l.Intensity)
			fl.ambient.G += l.Color.G * float64(l.Intensity)
			fl.ambient.B += l.Color.B * float64(l.Intensity)
		case *scene.DirectionalLight:
			if !fl.hasSun {
				fl.hasSun = true
				fl.sunDir = l.Direction()
				fl.sunCol = l.Color
				fl.sunInt = l.Intensity
			}
		}
		return true
	})
	return fl
}

func (r *Software) drawMesh(m *scene.Mesh, world scene.Mat4, cam *scene.Camera, lights frameLights, sc *scene.Scene, writeDepth bool) {
	w, h := r.img.Bounds().Dx(), r.img.Bounds().Dy()
	geo := m.Geometry
	mat := m.Material

	for t := 0; t < len(geo.Indices); t += 3 {
		a := world.ApplyPoint(geo.Positions[geo.Indices[t]])
		b := world.ApplyPoint(geo.Positions[geo.Indices[t+1]])
		c := world.ApplyPoint(geo.Positions[geo.Indices[t+2]])

		ax, ay, ad, okA := cam.Project(a)
		bx, by, bd, okB := cam.Project(b)
		cx, cy, cd, okC := cam.Project(c)
		if !okA || !okB || !okC {
			continue
		}

		x0, y0 := toPixel(ax, ay, w, h)
		x1, y1 := toPixel(bx, by, w, h)
		x2, y2 := toPixel(cx, cy, w, h)

		normal := b.Sub(a).Cross(c.Sub(a)).Normalize()
		shade := shadeFace(mat, normal, lights)
		avgDepth := (ad + bd + cd) / 3
		col := applyFog(shade, sc, avgDepth)

		r.fillTriangle(x0, y0, ad, x1, y1, bd, x2, y2, cd, col, mat.Opacity,
			mat.Blending == scene.AdditiveBlending, writeDepth)
	}
}

// shadeFace computes a flat-shaded face colour: lambert sun plus ambient,
// with emissive added unlit on top.
func shadeFace(mat *scene.Material, normal scene.Vec3, lights frameLights) scene.Color {
	var out scene.Color
	out.R = mat.Color.R * lights.ambient.R
	out.G = mat.Color.G * lights.ambient.G
	out.B = mat.Color.B * lights.ambient.B
	if lights.hasSun {
		lambert := normal.Dot(lights.sunDir.Scale(-1))
		if lambert < 0 {
			lambert = -lambert // double-sided surfaces light from both faces
		}
		k := float64(lambert * lights.sunInt)
		out.R += mat.Color.R * lights.sunCol.R * k
		out.G += mat.Color.G * lights.sunCol.G * k
		out.B += mat.Color.B * lights.sunCol.B * k
	}
	ei := float64(mat.EmissiveIntensity)
	out.R += mat.Emissive.R * ei
	out.G += mat.Emissive.G * ei
	out.B += mat.Emissive.B * ei
	return clampColor(out)
}

func applyFog(c scene.Color, sc *scene.Scene, depth float32) scene.Color {
	if sc.FogDensity <= 0 {
		return c
	}
	d := float64(sc.FogDensity) * float64(depth) * 0.05
	f := math.Exp(-d * d)
	return scene.Color{
		R: c.R*f + sc.FogColor.R*(1-f),
		G: c.G*f + sc.FogColor.G*(1-f),
		B: c.B*f + sc.FogColor.B*(1-f),
	}
}

func (r *Software) fillTriangle(x0, y0 float32, d0 float32, x1, y1, d1, x2, y2, d2 float32, col scene.Color, opacity float32, additive, writeDepth bool) {
	w, h := r.img.Bounds().Dx(), r.img.Bounds().Dy()

	minX := int(math32.Floor(min3(x0, x1, x2)))
	maxX := int(math32.Ceil(max3(x0, x1, x2)))
	minY := int(math32.Floor(min3(y0, y1, y2)))
	maxY := int(math32.Ceil(max3(y0, y1, y2)))
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > w-1 {
		maxX = w - 1
	}
	if maxY > h-1 {
		maxY = h - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	area := edge(x0, y0, x1, y1, x2, y2)
	if area == 0 {
		return
	}

	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			fx, fy := float32(px)+0.5, float32(py)+0.5
			w0 := edge(x1, y1, x2, y2, fx, fy) / area
			w1 := edge(x2, y2, x0, y0, fx, fy) / area
			w2 := edge(x0, y0, x1, y1, fx, fy) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			d := w0*d0 + w1*d1 + w2*d2
			idx := py*w + px
			if d >= r.depth[idx] {
				continue
			}
			if writeDepth {
				r.depth[idx] = d
			}
			r.blendPixel(px, py, col, opacity, additive)
		}
	}
}

func (r *Software) blendPixel(x, y int, col scene.Color, opacity float32, additive bool) {
	dst := r.img.RGBAAt(x, y)
	sr, sg, sb := col.R*255, col.G*255, col.B*255
	if additive {
		a := float64(opacity)
		r.img.SetRGBA(x, y, color.RGBA{
			R: clamp8(float64(dst.R) + sr*a),
			G: clamp8(float64(dst.G) + sg*a),
			B: clamp8(float64(dst.B) + sb*a),
			A: 255,
		})
		return
	}
	a := float64(opacity)
	r.img.SetRGBA(x, y, color.RGBA{
		R: clamp8(float64(dst.R)*(1-a) + sr*a),
		G: clamp8(float64(dst.G)*(1-a) + sg*a),
		B: clamp8(float64(dst.B)*(1-a) + sb*a),
		A: 255,
	})
}

func (r *Software) drawPoints(p *scene.Points, cam *scene.Camera, sc *scene.Scene, w, h int) {
	if p.Geometry == nil || p.Material == nil {
		return
	}
	world := p.WorldMatrix()
	mat := p.Material
	additive := mat.Blending == scene.AdditiveBlending
	half := int(mat.Size * float32(r.ss) * 1.5)
	if half < 0 {
		half = 0
	}
	if half > 3*r.ss {
		half = 3 * r.ss
	}

	for _, pos := range p.Geometry.Positions {
		wp := world.ApplyPoint(pos)
		nx, ny, depth, ok := cam.Project(wp)
		if !ok {
			continue
		}
		px, py := toPixel(nx, ny, w, h)
		cx, cy := int(px), int(py)
		col := applyFog(mat.Color, sc, depth)
		for dy := -half; dy <= half; dy++ {
			for dx := -half; dx <= half; dx++ {
				x, y := cx+dx, cy+dy
				if x < 0 || y < 0 || x >= w || y >= h {
					continue
				}
				idx := y*w + x
				if depth >= r.depth[idx] {
					continue
				}
				r.blendPixel(x, y, col, mat.Opacity, additive)
			}
		}
	}
}

// Image returns the frame at output resolution; supersampled buffers are
// downscaled with Catmull-Rom.
func (r *Software) Image() *image.RGBA {
	if r.ss == 1 {
		out := image.NewRGBA(r.img.Bounds())
		copy(out.Pix, r.img.Pix)
		return out
	}
	out := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	xdraw.CatmullRom.Scale(out, out.Bounds(), r.img, r.img.Bounds(), xdraw.Src, nil)
	return out
}

// EncodePNG writes the current frame as PNG.
func (r *Software) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.Image())
}

// Dispose releases the framebuffer. Subsequent Render calls are no-ops.
func (r *Software) Dispose() {
	r.disposed = true
	r.img = nil
	r.depth = nil
}

func toPixel(ndcX, ndcY float32, w, h int) (float32, float32) {
	return (ndcX + 1) * 0.5 * float32(w), (1 - ndcY) * 0.5 * float32(h)
}

func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func toRGBA(c scene.Color, alpha float64) color.RGBA {
	return color.RGBA{
		R: clamp8(c.R * 255),
		G: clamp8(c.G * 255),
		B: clamp8(c.B * 255),
		A: clamp8(alpha * 255),
	}
}

func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func clampColor(c scene.Color) scene.Color {
	cl := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		if v > 1 {
			return 1
		}
		return v
	}
	return scene.Color{R: cl(c.R), G: cl(c.G), B: cl(c.B)}
}

func min3(a, b, c float32) float32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func max3(a, b, c float32) float32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
