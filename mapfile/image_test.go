package mapfile

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayerImage(t *testing.T) {
	m, err := DecodeSelfContained(bytes.NewReader(buildTiledMap()))
	require.NoError(t, err)

	img := m.Layers[0].Image()
	require.Equal(t, 4, img.Bounds().Dx())
	require.Equal(t, 4, img.Bounds().Dy())

	white := color.RGBA{248, 248, 248, 255}
	red := color.RGBA{248, 0, 0, 255}
	clear := color.RGBA{}

	// Tile A twice across the top, an empty cell bottom-left, tile B
	// bottom-right
	expected := [4][4]color.RGBA{
		{white, red, white, red},
		{white, clear, white, clear},
		{clear, clear, red, red},
		{clear, clear, red, red},
	}

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, expected[y][x], img.RGBAAt(x, y), "pixel (%d,%d)", x, y)
		}
	}
}
