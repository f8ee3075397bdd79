/*
Package mapfile implements a decoder for the layered tilemap format used by
the KKnD2 level data.

A map is stored as a small header listing the file offsets of each layer,
followed by a packed 16-bit color palette. Each layer carries its own tile
and grid dimensions and a row-major grid of 32-bit tile codes. A tile code
is the file offset of the tile's raw pixel data with two flag bits packed
into the low bits; clearing those bits yields the tile's identity, so the
same tile referenced from many grid cells is stored (and decoded) once.
Raw tile pixels are 8-bit indices into the palette, with index 0 reserved
to mean "no pixel".

Two on-disk shapes are supported: a self-contained file starting with the
magic value 0xDEADC0DE followed by the base offset the stored offsets are
relative to, and raw map data extracted from a level archive, where the
base offset is the entry's recorded position in that archive.
*/
package mapfile

const (
	// Magic marks a self-contained map file. The four bytes that follow
	// it hold the base offset correction for the stored file offsets.
	Magic = 0xdeadc0de

	// Every layer starts with the bytes "LRCS".
	layerMagic = 0x5343524c

	// The stored offsets are relative to a point dataHeaderSize bytes
	// before the start of the map data proper.
	dataHeaderSize = 8

	// Counts and dimensions are read straight off the wire and used to
	// size allocations, so they are clamped before trusting them.
	maxLayers         = 256
	maxPaletteEntries = 32768
	maxTileSide       = 1024
	maxGridSide       = 4096
)

// Tile is the decoded RGBA pixel data for one tile, TileWidth by TileHeight
// pixels at four bytes per pixel. Grid cells referencing the same tile key
// share one Tile.
type Tile struct {
	Pixels []byte
}

// Layer is one raster plane of the map.
type Layer struct {
	// Grid dimensions, in tiles.
	MapWidth, MapHeight uint32

	// Pixel dimensions of a single tile.
	TileWidth, TileHeight uint32

	// TileMap holds MapWidth*MapHeight normalized tile keys in row-major
	// order. A key of zero means the cell is empty.
	TileMap []uint32

	// Tiles maps each distinct non-zero key in TileMap to its decoded
	// pixels.
	Tiles map[uint32]*Tile
}

// Map is a decoded map. Layers are ordered bottom-up; layer 0 is the ground
// plane.
type Map struct {
	Layers []*Layer
}
