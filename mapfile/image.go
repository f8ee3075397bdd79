package mapfile

import "image"

// Image composes the layer's decoded tiles into a single RGBA image. Empty
// grid cells are left fully transparent.
func (l *Layer) Image() *image.RGBA {
	tw, th := int(l.TileWidth), int(l.TileHeight)

	m := image.NewRGBA(image.Rect(0, 0, int(l.MapWidth)*tw, int(l.MapHeight)*th))

	for ty := 0; ty < int(l.MapHeight); ty++ {
		for tx := 0; tx < int(l.MapWidth); tx++ {
			key := l.TileMap[ty*int(l.MapWidth)+tx]
			if key == 0 {
				continue
			}

			tile := l.Tiles[key]
			for y := 0; y < th; y++ {
				src := tile.Pixels[y*tw*4 : (y+1)*tw*4]
				copy(m.Pix[m.PixOffset(tx*tw, ty*th+y):], src)
			}
		}
	}

	return m
}
