package assetpack

import (
	"archive/tar"
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"testing"
)

// packGLB builds a minimal binary glTF holding a single triangle, with asset
// metadata the inspector is expected to surface.
func packGLB(t *testing.T) []byte {
	t.Helper()

	bin := new(bytes.Buffer)
	for _, v := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		binary.Write(bin, binary.LittleEndian, v)
	}
	for _, i := range []uint16{0, 1, 2} {
		binary.Write(bin, binary.LittleEndian, i)
	}
	for bin.Len()%4 != 0 {
		bin.WriteByte(0)
	}

	doc := fmt.Sprintf(`{"asset":{"version":"2.0","generator":"atrium-bakery","copyright":"CC0-1.0"},`+
		`"scene":0,"scenes":[{"nodes":[0]}],`+
		`"nodes":[{"name":"tri","mesh":0}],`+
		`"meshes":[{"primitives":[{"attributes":{"POSITION":0},"indices":1,"mode":4,"material":0}]}],`+
		`"materials":[{"pbrMetallicRoughness":{"baseColorFactor":[1,0,0,1]}}],`+
		`"accessors":[{"bufferView":0,"componentType":5126,"count":3,"type":"VEC3","min":[0,0,0],"max":[1,1,0]},`+
		`{"bufferView":1,"componentType":5123,"count":3,"type":"SCALAR"}],`+
		`"bufferViews":[{"buffer":0,"byteOffset":0,"byteLength":36},{"buffer":0,"byteOffset":36,"byteLength":6}],`+
		`"buffers":[{"byteLength":%d}]}`, bin.Len())
	jsonBytes := []byte(doc)
	for len(jsonBytes)%4 != 0 {
		jsonBytes = append(jsonBytes, ' ')
	}

	out := new(bytes.Buffer)
	total := 12 + 8 + len(jsonBytes) + 8 + bin.Len()
	binary.Write(out, binary.LittleEndian, uint32(0x46546C67))
	binary.Write(out, binary.LittleEndian, uint32(2))
	binary.Write(out, binary.LittleEndian, uint32(total))
	binary.Write(out, binary.LittleEndian, uint32(len(jsonBytes)))
	binary.Write(out, binary.LittleEndian, uint32(0x4E4F534A))
	out.Write(jsonBytes)
	binary.Write(out, binary.LittleEndian, uint32(bin.Len()))
	binary.Write(out, binary.LittleEndian, uint32(0x004E4942))
	out.Write(bin.Bytes())
	return out.Bytes()
}

func buildTar(t *testing.T, members map[string][]byte) []byte {
	t.Helper()

	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, name := range names {
		hdr := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(members[name]))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("WriteHeader(%s) returned error: %v", name, err)
		}
		if _, err := tw.Write(members[name]); err != nil {
			t.Fatalf("Write(%s) returned error: %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar close returned error: %v", err)
	}
	return buf.Bytes()
}

func TestInspectDataGLB(t *testing.T) {
	info, err := InspectData("atrium-pack-gallery_1.0.0.glb", packGLB(t))
	if err != nil {
		t.Fatalf("InspectData() returned error: %v", err)
	}

	if info.Models != 1 {
		t.Errorf("Expected 1 model, got %d", info.Models)
	}
	if info.Nodes != 1 || info.Meshes != 1 || info.Materials != 1 {
		t.Errorf("Expected 1 node/mesh/material, got %d/%d/%d", info.Nodes, info.Meshes, info.Materials)
	}
	if info.GLTFVersion != "2.0" {
		t.Errorf("Expected glTF version 2.0, got %s", info.GLTFVersion)
	}
	if info.Generator != "atrium-bakery" {
		t.Errorf("Expected generator atrium-bakery, got %s", info.Generator)
	}
	if info.Copyright != "CC0-1.0" {
		t.Errorf("Expected copyright CC0-1.0, got %s", info.Copyright)
	}
}

func TestInspectDataArchive(t *testing.T) {
	glb := packGLB(t)
	archive := buildTar(t, map[string][]byte{
		"models/hall.glb":   glb,
		"models/statue.GLB": glb,
		"LICENSE":           []byte("CC0"),
	})

	info, err := InspectData("atrium-pack-gallery_1.0.0.tar", archive)
	if err != nil {
		t.Fatalf("InspectData() returned error: %v", err)
	}

	if info.Models != 2 {
		t.Errorf("Expected 2 models, got %d", info.Models)
	}
	if info.Nodes != 2 {
		t.Errorf("Expected 2 nodes, got %d", info.Nodes)
	}
	if info.GLTFVersion != "2.0" {
		t.Errorf("Expected glTF version 2.0, got %s", info.GLTFVersion)
	}
}

func TestInspectDataRejectsJunk(t *testing.T) {
	if _, err := InspectData("payload.bin", []byte("not a model")); err == nil {
		t.Error("Expected error for non-pack payload")
	}

	corrupt := append([]byte("glTF"), []byte("garbage")...)
	if _, err := InspectData("bad.glb", corrupt); err == nil {
		t.Error("Expected error for corrupt GLB")
	}

	empty := buildTar(t, map[string][]byte{"README.md": []byte("no models here")})
	if _, err := InspectData("atrium-pack-empty_1.0.0.tar", empty); err == nil {
		t.Error("Expected error for archive without models")
	}
}
