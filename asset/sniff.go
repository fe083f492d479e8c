package asset

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
)

// Format is a model encoding the decoder understands.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatGLB
	FormatGLTF
	FormatOBJ
)

var formatNames = [...]string{"unknown", "glb", "gltf", "obj"}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "unknown"
}

// Ext returns the file extension raylib expects for the format.
func (f Format) Ext() string {
	if f == FormatUnknown {
		return ""
	}
	return "." + f.String()
}

var (
	typeGLB  = filetype.AddType("glb", "model/gltf-binary")
	typeGLTF = filetype.AddType("gltf", "model/gltf+json")
	typeOBJ  = filetype.AddType("obj", "model/obj")
)

func init() {
	filetype.AddMatcher(typeGLB, matchGLB)
	filetype.AddMatcher(typeGLTF, matchGLTF)
	filetype.AddMatcher(typeOBJ, matchOBJ)
}

// glb header: magic "glTF", uint32 version 2.
func matchGLB(buf []byte) bool {
	return len(buf) >= 12 && bytes.Equal(buf[:4], []byte("glTF")) && buf[4] == 2
}

func matchGLTF(buf []byte) bool {
	head := bytes.TrimSpace(buf[:min(len(buf), 4096)])
	return len(head) > 0 && head[0] == '{' && bytes.Contains(head, []byte(`"asset"`))
}

func matchOBJ(buf []byte) bool {
	head := buf[:min(len(buf), 4096)]
	if bytes.IndexByte(head, 0) >= 0 {
		return false
	}
	for _, line := range bytes.Split(head, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if bytes.HasPrefix(line, []byte("v ")) || bytes.HasPrefix(line, []byte("f ")) {
			return true
		}
	}
	return false
}

// Sniff identifies the model format of data. The content decides; the name's
// extension is only consulted when the content matches nothing.
func Sniff(data []byte, name string) (Format, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return FormatUnknown, fmt.Errorf("sniffing %s: %w", name, err)
	}
	switch kind {
	case typeGLB:
		return FormatGLB, nil
	case typeGLTF:
		return FormatGLTF, nil
	case typeOBJ:
		return FormatOBJ, nil
	case types.Unknown:
		if f := formatFromExt(name); f != FormatUnknown {
			return f, nil
		}
		return FormatUnknown, fmt.Errorf("%s: unrecognized content", name)
	default:
		return FormatUnknown, fmt.Errorf("%s: %s is not a model", name, kind.MIME.Value)
	}
}

func formatFromExt(name string) Format {
	// Strip URL query strings before looking at the extension.
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".glb":
		return FormatGLB
	case ".gltf":
		return FormatGLTF
	case ".obj":
		return FormatOBJ
	}
	return FormatUnknown
}
