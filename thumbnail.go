package kknd2

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/bodgit/kknd2/mapfile"
	"github.com/ericpauley/go-quantize/quantize"
	xdraw "golang.org/x/image/draw"
)

const (
	thumbnailSide   = 128
	thumbnailColors = 256
)

// thumbnail renders the layer to a small paletted PNG for the map index.
func thumbnail(l *mapfile.Layer) ([]byte, error) {
	src := l.Image()
	b := src.Bounds()

	w, h := b.Dx(), b.Dy()
	if w > h {
		w, h = thumbnailSide, h*thumbnailSide/w
	} else {
		w, h = w*thumbnailSide/h, thumbnailSide
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, b, xdraw.Src, nil)

	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(scaled.Bounds(), q.Quantize(make(color.Palette, 0, thumbnailColors), scaled))
	draw.Draw(pm, pm.Bounds(), scaled, image.Point{}, draw.Src)

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, pm); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
