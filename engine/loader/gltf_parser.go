package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-procedural/common"
)

var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.0")
	errInvalidGLBMagic    = errors.New("invalid GLB magic number")
	errInvalidGLBVersion  = errors.New("invalid GLB version: must be 2")
	errMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	errInvalidBufferURI   = errors.New("invalid buffer URI")
	errBufferSizeMismatch = errors.New("buffer size mismatch")
	errAccessorBounds     = errors.New("accessor range lies outside its buffer")
)

// gltfParser holds one parsed document and its loaded buffers.
type gltfParser struct {
	baseDir        string
	document       *gltfDocument
	glbBinaryChunk []byte
}

// parseFile loads a .gltf or .glb file. GLB is detected by extension or magic number.
func parseFile(path string) (*gltfParser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	isGLB := strings.EqualFold(filepath.Ext(path), ".glb") ||
		(len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic)
	return parseBytes(data, isGLB, filepath.Dir(path))
}

// parseBytes parses glTF JSON or GLB data. External buffer URIs are resolved against baseDir.
func parseBytes(data []byte, isGLB bool, baseDir string) (*gltfParser, error) {
	p := &gltfParser{baseDir: baseDir}

	jsonData := data
	if isGLB {
		var err error
		if jsonData, err = p.splitGLB(data); err != nil {
			return nil, err
		}
	}

	var doc gltfDocument
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse glTF JSON: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return nil, errInvalidGLTFVersion
	}
	if err := p.loadBuffers(&doc); err != nil {
		return nil, fmt.Errorf("failed to load buffers: %w", err)
	}

	p.document = &doc
	return p, nil
}

// splitGLB validates the GLB header, keeps the BIN chunk and returns the JSON chunk.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
func (p *gltfParser) splitGLB(data []byte) ([]byte, error) {
	r := bytes.NewReader(data)

	var header gltfGLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read GLB header: %w", err)
	}
	if header.Magic != gltfGLBMagic {
		return nil, errInvalidGLBMagic
	}
	if header.Version != gltfGLBVersion {
		return nil, errInvalidGLBVersion
	}

	var jsonData []byte
	for {
		var chunk gltfGLBChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read chunk header: %w", err)
		}
		if int64(chunk.ChunkLength) > int64(r.Len()) {
			return nil, fmt.Errorf("chunk length %d exceeds remaining %d bytes", chunk.ChunkLength, r.Len())
		}

		body := make([]byte, chunk.ChunkLength)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, fmt.Errorf("failed to read chunk data: %w", err)
		}

		switch chunk.ChunkType {
		case gltfGLBChunkJSON:
			jsonData = body
		case gltfGLBChunkBIN:
			p.glbBinaryChunk = body
		}
	}

	if jsonData == nil {
		return nil, errMissingJSONChunk
	}
	return jsonData, nil
}

// loadBuffers fills every buffer from its URI, or buffer 0 from the GLB BIN chunk.
func (p *gltfParser) loadBuffers(doc *gltfDocument) error {
	for i := range doc.Buffers {
		buf := &doc.Buffers[i]

		switch {
		case buf.URI == "" && i == 0 && p.glbBinaryChunk != nil:
			buf.Data = p.glbBinaryChunk
		case buf.URI == "":
			return fmt.Errorf("buffer %d has no URI and no GLB binary chunk", i)
		default:
			data, err := p.loadBufferURI(buf.URI)
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.Data = data
		}

		if len(buf.Data) < buf.ByteLength {
			return fmt.Errorf("buffer %d: %w", i, errBufferSizeMismatch)
		}
	}
	return nil
}

// loadBufferURI loads a base64 data URI or a file relative to the document.
func (p *gltfParser) loadBufferURI(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, "data:") {
		data, err := os.ReadFile(filepath.Join(p.baseDir, uri))
		if err != nil {
			return nil, fmt.Errorf("failed to load buffer file %q: %w", uri, err)
		}
		return data, nil
	}

	// data:[<mediatype>][;base64],<data>
	header, payload, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok {
		return nil, errInvalidBufferURI
	}
	if !strings.Contains(header, "base64") {
		return nil, fmt.Errorf("unsupported data URI encoding: %s", header)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	return data, nil
}

// accessorElements returns the packed bytes of every element of an accessor, de-interleaving strided views.
func (p *gltfParser) accessorElements(index int, elementSize int) ([]byte, *gltfAccessor, error) {
	if index < 0 || index >= len(p.document.Accessors) {
		return nil, nil, fmt.Errorf("accessor index %d out of range", index)
	}
	acc := &p.document.Accessors[index]
	if acc.Sparse != nil {
		return nil, nil, errors.New("sparse accessors are not supported")
	}
	if acc.BufferView == nil || *acc.BufferView < 0 || *acc.BufferView >= len(p.document.BufferViews) {
		return nil, nil, fmt.Errorf("accessor %d has no valid bufferView", index)
	}

	bv := &p.document.BufferViews[*acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(p.document.Buffers) {
		return nil, nil, fmt.Errorf("bufferView %d references missing buffer %d", *acc.BufferView, bv.Buffer)
	}
	src := p.document.Buffers[bv.Buffer].Data

	stride := elementSize
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	start := bv.ByteOffset + acc.ByteOffset
	if acc.Count < 0 || bv.ByteOffset < 0 || acc.ByteOffset < 0 || stride < elementSize {
		return nil, nil, fmt.Errorf("accessor %d: %w", index, errAccessorBounds)
	}
	if acc.Count > 0 && start+(acc.Count-1)*stride+elementSize > len(src) {
		return nil, nil, fmt.Errorf("accessor %d: %w", index, errAccessorBounds)
	}

	out := make([]byte, acc.Count*elementSize)
	for i := 0; i < acc.Count; i++ {
		from := start + i*stride
		copy(out[i*elementSize:(i+1)*elementSize], src[from:from+elementSize])
	}
	return out, acc, nil
}

// readVec3 reads a VEC3 FLOAT accessor.
func (p *gltfParser) readVec3(index int) ([]common.Vec3, error) {
	data, acc, err := p.accessorElements(index, 12)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltfAccessorTypeVec3 || acc.ComponentType != gltfComponentTypeFloat {
		return nil, fmt.Errorf("accessor %d is not VEC3 FLOAT: type=%s, componentType=%d", index, acc.Type, acc.ComponentType)
	}

	out := make([]common.Vec3, acc.Count)
	for i := range out {
		for c := 0; c < 3; c++ {
			out[i][c] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*12+c*4:]))
		}
	}
	return out, nil
}

// readIndices reads a SCALAR unsigned byte, short or int accessor as uint32.
func (p *gltfParser) readIndices(index int) ([]uint32, error) {
	if index < 0 || index >= len(p.document.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", index)
	}
	acc := &p.document.Accessors[index]
	if acc.Type != gltfAccessorTypeScalar {
		return nil, fmt.Errorf("index accessor %d is not SCALAR: type=%s", index, acc.Type)
	}

	size := gltfComponentTypeSize(acc.ComponentType)
	switch acc.ComponentType {
	case gltfComponentTypeUnsignedByte, gltfComponentTypeUnsignedShort, gltfComponentTypeUnsignedInt:
	default:
		return nil, fmt.Errorf("unsupported index component type: %d", acc.ComponentType)
	}

	data, _, err := p.accessorElements(index, size)
	if err != nil {
		return nil, err
	}

	out := make([]uint32, acc.Count)
	for i := range out {
		switch size {
		case 1:
			out[i] = uint32(data[i])
		case 2:
			out[i] = uint32(binary.LittleEndian.Uint16(data[i*2:]))
		default:
			out[i] = binary.LittleEndian.Uint32(data[i*4:])
		}
	}
	return out, nil
}

// gltfComponentTypeSize returns the byte size of a component type, or 0 if unknown.
func gltfComponentTypeSize(componentType int) int {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4
	default:
		return 0
	}
}
