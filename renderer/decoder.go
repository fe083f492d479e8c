package renderer

import (
	"fmt"
	"image/color"
	"os"
	"path"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/yaelren/3DTrail/asset"
	"github.com/yaelren/3DTrail/material"
)

// ModelDecoder loads models with raylib. raylib only reads from disk, so
// fetched bytes are staged in a temporary file unless src already is one.
type ModelDecoder struct{}

// Decode implements asset.Decoder. It must run on the GL thread.
func (ModelDecoder) Decode(src string, format asset.Format, data []byte) (asset.Asset, error) {
	file, cleanup, err := stage(src, format, data)
	if err != nil {
		return asset.Asset{}, &asset.Error{Kind: asset.KindFetch, Source: src, Err: err}
	}
	defer cleanup()

	model := rl.LoadModel(file)
	if model.MeshCount == 0 || !rl.IsModelValid(model) {
		rl.UnloadModel(model)
		return asset.Asset{}, asset.NoMesh(src)
	}

	base := material.Base{Name: path.Base(src), Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}}
	if mats := model.GetMaterials(); len(mats) > 0 {
		base.Color = mats[0].GetMap(rl.MapDiffuse).Color
	}
	return asset.Asset{
		Shape:  &Shape{name: base.Name, model: model},
		Base:   base,
		Source: src,
	}, nil
}

// Release implements asset.Decoder.
func (ModelDecoder) Release(a asset.Asset) {
	if s, ok := a.Shape.(*Shape); ok {
		rl.UnloadModel(s.model)
	}
}

// stage returns a path raylib can open. Local sources whose bytes are on
// disk are used in place so glTF side files resolve.
func stage(src string, format asset.Format, data []byte) (string, func(), error) {
	if st, err := os.Stat(src); err == nil && !st.IsDir() {
		return src, func() {}, nil
	}
	f, err := os.CreateTemp("", "trail-asset-*"+format.Ext())
	if err != nil {
		return "", nil, fmt.Errorf("staging model: %w", err)
	}
	name := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(name)
		return "", nil, fmt.Errorf("staging model: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", nil, fmt.Errorf("staging model: %w", err)
	}
	return name, func() { os.Remove(name) }, nil
}
