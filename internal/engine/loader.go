package engine

import (
	"bytes"
	"context"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/jmylchreest/atrium/internal/scene"
)

// ModelFetcher retrieves raw model bytes for a URL. The assets package
// provides the caching implementation; tests inject fixtures.
type ModelFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ModelDescriptor places one loaded model instance in the scene. The shape
// matches the persisted space-configuration records.
type ModelDescriptor struct {
	ID       string     `json:"id"`
	ModelURL string     `json:"modelUrl"`
	Position scene.Vec3 `json:"position"`
	Rotation scene.Vec3 `json:"rotation"`
	Scale    scene.Vec3 `json:"scale"`
}

// decodeGLB parses a binary glTF payload into a detached group tree. Only
// triangle primitives survive; unsupported primitive modes are skipped.
func decodeGLB(name string, data []byte) (*scene.Group, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding glb: %w", err)
	}

	var nodes []uint32
	switch {
	case doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes):
		nodes = doc.Scenes[*doc.Scene].Nodes
	case len(doc.Scenes) > 0:
		nodes = doc.Scenes[0].Nodes
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("decoding glb: no scene nodes")
	}

	root := scene.NewGroup(name)
	for _, idx := range nodes {
		child, err := buildModelNode(doc, idx)
		if err != nil {
			return nil, err
		}
		root.Add(child)
	}
	return root, nil
}

func buildModelNode(doc *gltf.Document, idx uint32) (*scene.Group, error) {
	if int(idx) >= len(doc.Nodes) {
		return nil, fmt.Errorf("decoding glb: node index %d out of range", idx)
	}
	n := doc.Nodes[idx]
	grp := scene.NewGroup(n.Name)
	applyNodeTransform(grp.Base(), n)

	if n.Mesh != nil && int(*n.Mesh) < len(doc.Meshes) {
		for pi, prim := range doc.Meshes[*n.Mesh].Primitives {
			mesh, err := buildModelPrimitive(doc, prim,
				fmt.Sprintf("%s-prim-%d", n.Name, pi))
			if err != nil {
				return nil, err
			}
			if mesh != nil {
				grp.Add(mesh)
			}
		}
	}
	for _, ci := range n.Children {
		child, err := buildModelNode(doc, ci)
		if err != nil {
			return nil, err
		}
		grp.Add(child)
	}
	return grp, nil
}

func buildModelPrimitive(doc *gltf.Document, prim *gltf.Primitive, name string) (*scene.Mesh, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, nil
	}
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok || int(posIdx) >= len(doc.Accessors) {
		return nil, nil
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("decoding glb positions: %w", err)
	}

	geo := &scene.Geometry{Positions: make([]scene.Vec3, len(positions))}
	for i, p := range positions {
		geo.Positions[i] = scene.V3(p[0], p[1], p[2])
	}
	if prim.Indices != nil && int(*prim.Indices) < len(doc.Accessors) {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("decoding glb indices: %w", err)
		}
		geo.Indices = indices
	} else {
		geo.Indices = make([]uint32, len(positions))
		for i := range geo.Indices {
			geo.Indices[i] = uint32(i)
		}
	}

	return scene.NewMesh(name, geo, modelMaterial(doc, prim.Material)), nil
}

func modelMaterial(doc *gltf.Document, idx *uint32) *scene.Material {
	mat := scene.NewMaterial(scene.Grey(0.8))
	if idx == nil || int(*idx) >= len(doc.Materials) {
		return mat
	}
	src := doc.Materials[*idx]
	if pbr := src.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			f := *pbr.BaseColorFactor
			mat.Color = scene.RGB(f[0], f[1], f[2])
			mat.Opacity = float32(f[3])
			mat.Transparent = f[3] < 1
		}
		if pbr.MetallicFactor != nil {
			mat.Metalness = float32(*pbr.MetallicFactor)
		}
		if pbr.RoughnessFactor != nil {
			mat.Roughness = float32(*pbr.RoughnessFactor)
		}
	}
	if src.EmissiveFactor != [3]float64{} {
		mat.Emissive = scene.RGB(src.EmissiveFactor[0],
			src.EmissiveFactor[1], src.EmissiveFactor[2])
		mat.EmissiveIntensity = 1
	}
	return mat
}

// applyNodeTransform writes a glTF node's TRS onto the scene node. Nodes
// authored with a bare matrix contribute translation and scale; rotation
// comes from the quaternion field.
func applyNodeTransform(b *scene.Object3D, n *gltf.Node) {
	b.Position = scene.V3(float32(n.Translation[0]),
		float32(n.Translation[1]), float32(n.Translation[2]))

	s := n.Scale
	if s == ([3]float64{}) {
		s = [3]float64{1, 1, 1}
	}
	b.Scl = scene.V3(float32(s[0]), float32(s[1]), float32(s[2]))

	q := n.Rotation
	if q == ([4]float64{}) {
		q = [4]float64{0, 0, 0, 1}
	}
	b.Rotation = quatToEuler(float32(q[0]), float32(q[1]), float32(q[2]), float32(q[3]))
}

// quatToEuler converts a unit quaternion to the XYZ Euler angles consumed
// by the scene graph's transform composition.
func quatToEuler(x, y, z, w float32) scene.Vec3 {
	return scene.V3(
		math32.Atan2(2*(y*z+w*x), 1-2*(x*x+y*y)),
		math32.Asin(scene.Clamp(2*(w*y-x*z), -1, 1)),
		math32.Atan2(2*(x*y+w*z), 1-2*(y*y+z*z)),
	)
}

// cloneGroup returns an independent copy of a cached model tree. Geometry
// is shared with the cache prototype; materials are cloned so per-instance
// tinting never bleeds between instances.
func cloneGroup(src *scene.Group) *scene.Group {
	dst := scene.NewGroup(src.Name)
	copyBase(dst.Base(), src.Base())
	for _, c := range src.Children() {
		dst.Add(cloneObject(c))
	}
	return dst
}

func cloneObject(o scene.Object) scene.Object {
	switch n := o.(type) {
	case *scene.Group:
		return cloneGroup(n)
	case *scene.Mesh:
		m := scene.NewMesh(n.Name, n.Geometry, n.Material.Clone())
		copyBase(m.Base(), n.Base())
		for _, c := range n.Children() {
			m.Add(cloneObject(c))
		}
		return m
	default:
		g := scene.NewGroup(o.Base().Name)
		copyBase(g.Base(), o.Base())
		return g
	}
}

func copyBase(dst, src *scene.Object3D) {
	dst.Position = src.Position
	dst.Rotation = src.Rotation
	dst.Scl = src.Scl
	dst.Visible = src.Visible
}
