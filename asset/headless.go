package asset

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image/color"
	"path"

	"github.com/yaelren/3DTrail/material"
	"github.com/yaelren/3DTrail/pool"
)

// HeadlessDecoder checks that a model carries geometry and returns a named
// shape for it without touching the GPU.
type HeadlessDecoder struct {
	Released int
}

// Decode implements Decoder.
func (d *HeadlessDecoder) Decode(src string, format Format, data []byte) (Asset, error) {
	var (
		meshes int
		err    error
	)
	switch format {
	case FormatOBJ:
		meshes = countOBJFaces(data)
	case FormatGLB:
		meshes, err = countGLBMeshes(data)
	case FormatGLTF:
		meshes, err = countGLTFMeshes(data)
	default:
		return Asset{}, newError(KindUnsupported, src, fmt.Errorf("format %s", format))
	}
	if err != nil {
		return Asset{}, newError(KindUnsupported, src, err)
	}
	if meshes == 0 {
		return Asset{}, NoMesh(src)
	}
	name := path.Base(src)
	return Asset{
		Shape:  pool.NamedShape(name),
		Base:   material.Base{Name: name, Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		Source: src,
	}, nil
}

// Release implements Decoder.
func (d *HeadlessDecoder) Release(Asset) { d.Released++ }

func countOBJFaces(data []byte) int {
	n := 0
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if bytes.HasPrefix(bytes.TrimSpace(sc.Bytes()), []byte("f ")) {
			n++
		}
	}
	return n
}

type gltfDoc struct {
	Meshes []json.RawMessage `json:"meshes"`
}

func countGLTFMeshes(data []byte) (int, error) {
	var doc gltfDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("parsing gltf json: %w", err)
	}
	return len(doc.Meshes), nil
}

// countGLBMeshes reads the JSON chunk that follows the 12-byte header.
func countGLBMeshes(data []byte) (int, error) {
	if len(data) < 20 {
		return 0, fmt.Errorf("glb truncated: %d bytes", len(data))
	}
	chunkLen := binary.LittleEndian.Uint32(data[12:16])
	chunkType := binary.LittleEndian.Uint32(data[16:20])
	const jsonChunk = 0x4E4F534A // "JSON"
	if chunkType != jsonChunk {
		return 0, fmt.Errorf("glb first chunk is not JSON")
	}
	end := 20 + int(chunkLen)
	if end > len(data) {
		return 0, fmt.Errorf("glb JSON chunk overruns file")
	}
	return countGLTFMeshes(data[20:end])
}
