package mapfile

// Color is one palette entry, expanded from a packed 16-bit value.
type Color struct {
	R, G, B uint8
}

// Palette is the indexed color table embedded in the map header. Tile pixel
// bytes are indices into this table. Index 0 is the transparent sentinel and
// is never resolved through the palette, whatever color it holds.
type Palette []Color

// Color is packed as 0RRRRRGG GGGBBBBB; each 5-bit field is shifted to the
// top of its byte, so a channel covers 0 to 248 in steps of 8.
func unpackColor(packed uint16) Color {
	return Color{
		R: uint8(packed & 0x7c00 >> 7),
		G: uint8(packed & 0x03e0 >> 2),
		B: uint8(packed & 0x001f << 3),
	}
}
