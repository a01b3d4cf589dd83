package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/accumulator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangleBuffer holds three positions (36 bytes) followed by three uint16 indices padded to 8 bytes.
func triangleBuffer() []byte {
	buf := make([]byte, 44)
	positions := []float32{0, 0, 0, 2, 0, 0, 0, 2, 0}
	for i, v := range positions {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	for i, v := range []uint16{0, 1, 2} {
		binary.LittleEndian.PutUint16(buf[36+i*2:], v)
	}
	return buf
}

// triangleDocument returns a glTF JSON document for one indexed triangle without normals. An empty uri leaves
// the buffer to the GLB BIN chunk.
func triangleDocument(uri string, extraPrimitive string) string {
	uriField := ""
	if uri != "" {
		uriField = fmt.Sprintf(`"uri": %q,`, uri)
	}
	return fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "meshes": [{"name": "tri", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1}%s]}],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ],
  "buffers": [{%s "byteLength": 44}]
}`, extraPrimitive, uriField)
}

func dataURI(b []byte) string {
	return "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(b)
}

func buildGLB(jsonDoc string, bin []byte) []byte {
	pad := func(b []byte, with byte) []byte {
		for len(b)%4 != 0 {
			b = append(b, with)
		}
		return b
	}
	jsonChunk := pad([]byte(jsonDoc), ' ')
	binChunk := pad(append([]byte(nil), bin...), 0)

	var out bytes.Buffer
	total := 12 + 8 + len(jsonChunk) + 8 + len(binChunk)
	_ = binary.Write(&out, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(total)})
	_ = binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(jsonChunk)), ChunkType: gltfGLBChunkJSON})
	out.Write(jsonChunk)
	_ = binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(binChunk)), ChunkType: gltfGLBChunkBIN})
	out.Write(binChunk)
	return out.Bytes()
}

func quietLoader(options ...LoaderBuilderOption) Loader {
	return NewLoader(append([]LoaderBuilderOption{WithLogger(log.New(&bytes.Buffer{}, "", 0))}, options...)...)
}

func assertTriangle(t *testing.T, meshes []*ImportedMesh) {
	t.Helper()
	require.Len(t, meshes, 1)
	m := meshes[0]
	assert.Equal(t, "tri", m.Name)
	assert.Equal(t, [3]float32{2, 0, 0}, m.Positions()[1])
	assert.Equal(t, []uint32{0, 1, 2}, m.TriangleIndices())
	require.Len(t, m.Normals(), 3)
	for _, n := range m.Normals() {
		assert.InDelta(t, 1, n[2], 1e-6)
	}
}

func TestLoadReaderGLTFWithDataURI(t *testing.T) {
	doc := triangleDocument(dataURI(triangleBuffer()), "")
	meshes, err := quietLoader().LoadReader(bytes.NewReader([]byte(doc)), false)
	require.NoError(t, err)
	assertTriangle(t, meshes)
}

func TestLoadReaderGLB(t *testing.T) {
	glb := buildGLB(triangleDocument("", ""), triangleBuffer())
	meshes, err := quietLoader().LoadReader(bytes.NewReader(glb), true)
	require.NoError(t, err)
	assertTriangle(t, meshes)
}

func TestLoadFileWithExternalBuffer(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.bin"), triangleBuffer(), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.gltf"), []byte(triangleDocument("tri.bin", "")), 0o644))

	meshes, err := quietLoader().Load(filepath.Join(dir, "tri.gltf"))
	require.NoError(t, err)
	assertTriangle(t, meshes)
}

func TestLoadedMeshIsAccepted(t *testing.T) {
	doc := triangleDocument(dataURI(triangleBuffer()), "")
	meshes, err := quietLoader().LoadReader(bytes.NewReader([]byte(doc)), false)
	require.NoError(t, err)

	acc := accumulator.NewAccumulator(accumulator.WithLogger(log.New(&bytes.Buffer{}, "", 0)))
	defer acc.Close()
	require.NoError(t, acc.Submit(meshes[0], [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}))
	result := acc.Flush()
	assert.Equal(t, 1, result.Packed)
	assert.Equal(t, 3, acc.MaxIndexCount())
}

func TestNonTrianglePrimitivesAreSkipped(t *testing.T) {
	var logs bytes.Buffer
	doc := triangleDocument(dataURI(triangleBuffer()), `, {"attributes": {"POSITION": 0}, "mode": 1}`)
	meshes, err := NewLoader(WithLogger(log.New(&logs, "", 0))).LoadReader(bytes.NewReader([]byte(doc)), false)
	require.NoError(t, err)
	assert.Len(t, meshes, 1)
	assert.Contains(t, logs.String(), "unsupported mode 1")
}

func TestUnitScale(t *testing.T) {
	doc := triangleDocument(dataURI(triangleBuffer()), "")
	meshes, err := quietLoader(WithUnitScale(true)).LoadReader(bytes.NewReader([]byte(doc)), false)
	require.NoError(t, err)

	p := meshes[0].Positions()
	assert.Equal(t, [3]float32{-0.5, -0.5, 0}, p[0])
	assert.Equal(t, [3]float32{0.5, -0.5, 0}, p[1])
	assert.Equal(t, [3]float32{-0.5, 0.5, 0}, p[2])
}

func TestParseErrors(t *testing.T) {
	_, err := quietLoader().LoadReader(bytes.NewReader([]byte(`{"asset": {"version": "1.0"}}`)), false)
	assert.ErrorIs(t, err, errInvalidGLTFVersion)

	_, err = quietLoader().LoadReader(bytes.NewReader(make([]byte, 12)), true)
	assert.ErrorIs(t, err, errInvalidGLBMagic)

	// buffer shorter than the accessor range
	short := triangleDocument(dataURI(triangleBuffer()[:20]), "")
	_, err = quietLoader().LoadReader(bytes.NewReader([]byte(short)), false)
	assert.ErrorIs(t, err, errBufferSizeMismatch)
}

func TestMalformedAccessorsReturnErrors(t *testing.T) {
	valid := triangleDocument(dataURI(triangleBuffer()), "")
	cases := map[string][2]string{
		"negative count": {
			`"count": 3, "type": "VEC3"`,
			`"count": -1, "type": "VEC3"`,
		},
		"negative bufferView offset": {
			`{"buffer": 0, "byteOffset": 36, "byteLength": 6}`,
			`{"buffer": 0, "byteOffset": -40, "byteLength": 6}`,
		},
		"negative accessor offset": {
			`{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}`,
			`{"bufferView": 1, "byteOffset": -2, "componentType": 5123, "count": 3, "type": "SCALAR"}`,
		},
		"stride below element size": {
			`{"buffer": 0, "byteOffset": 0, "byteLength": 36}`,
			`{"buffer": 0, "byteOffset": 0, "byteLength": 36, "byteStride": 4}`,
		},
	}
	for name, edit := range cases {
		t.Run(name, func(t *testing.T) {
			require.Contains(t, valid, edit[0])
			doc := strings.Replace(valid, edit[0], edit[1], 1)

			var meshes []*ImportedMesh
			var err error
			require.NotPanics(t, func() {
				meshes, err = quietLoader().LoadReader(bytes.NewReader([]byte(doc)), false)
			})
			assert.ErrorIs(t, err, errAccessorBounds)
			assert.Empty(t, meshes)
		})
	}
}
