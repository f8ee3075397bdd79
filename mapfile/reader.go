package mapfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrBadMagic is returned when the file or a layer does not start
	// with the expected magic value.
	ErrBadMagic = errors.New("mapfile: bad magic")

	// ErrBadPaletteIndex is returned when a tile references a palette
	// entry beyond the palette read from the header.
	ErrBadPaletteIndex = errors.New("mapfile: palette index out of range")

	// ErrTooLarge is returned when a count or dimension read from the
	// stream exceeds the decoder's allocation limits.
	ErrTooLarge = errors.New("mapfile: value too large")

	// ErrZeroLayer is returned for a layer with a zero tile or grid
	// dimension.
	ErrZeroLayer = errors.New("mapfile: zero-sized layer")
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

type decoder struct {
	r    io.ReadSeeker
	base uint32

	layerOffsets []uint32
	palette      Palette
}

func (d *decoder) readUint32() (uint32, error) {
	var tmp [4]byte
	if err := readFull(d.r, tmp[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(tmp[:]), nil
}

func (d *decoder) readUint16() (uint16, error) {
	var tmp [2]byte
	if err := readFull(d.r, tmp[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(tmp[:]), nil
}

// position reconstructs the stream position of data stored at offset, which
// is recorded relative to a point dataHeaderSize bytes before the start of
// the map data, minus whatever leading bytes the caller stripped.
func (d *decoder) position(offset uint32) int64 {
	return int64(offset) + dataHeaderSize - int64(d.base)
}

func (d *decoder) readHeader() error {
	// Skip an unidentified field, probably a format version.
	if _, err := d.r.Seek(4, io.SeekCurrent); err != nil {
		return err
	}

	layers, err := d.readUint32()
	if err != nil {
		return err
	}
	if layers > maxLayers {
		return fmt.Errorf("mapfile: %d layers: %w", layers, ErrTooLarge)
	}

	d.layerOffsets = make([]uint32, layers)
	for i := range d.layerOffsets {
		if d.layerOffsets[i], err = d.readUint32(); err != nil {
			return err
		}
	}

	return nil
}

func (d *decoder) readPalette() error {
	entries, err := d.readUint32()
	if err != nil {
		return err
	}
	if entries > maxPaletteEntries {
		return fmt.Errorf("mapfile: %d palette entries: %w", entries, ErrTooLarge)
	}

	d.palette = make(Palette, entries)
	for i := range d.palette {
		packed, err := d.readUint16()
		if err != nil {
			return err
		}
		d.palette[i] = unpackColor(packed)
	}

	return nil
}

func (d *decoder) readLayer(index int) (*Layer, error) {
	if _, err := d.r.Seek(d.position(d.layerOffsets[index]), io.SeekStart); err != nil {
		return nil, err
	}

	magic, err := d.readUint32()
	if err != nil {
		return nil, fmt.Errorf("mapfile: layer %d: %w", index, err)
	}
	if magic != layerMagic {
		return nil, fmt.Errorf("mapfile: layer %d: magic %#08x at offset %d: %w",
			index, magic, d.position(d.layerOffsets[index]), ErrBadMagic)
	}

	l := &Layer{}

	for _, v := range []*uint32{&l.TileWidth, &l.TileHeight, &l.MapWidth, &l.MapHeight} {
		if *v, err = d.readUint32(); err != nil {
			return nil, fmt.Errorf("mapfile: layer %d: %w", index, err)
		}
	}

	switch {
	case l.TileWidth == 0 || l.TileHeight == 0 || l.MapWidth == 0 || l.MapHeight == 0:
		return nil, fmt.Errorf("mapfile: layer %d: %dx%d tiles of %dx%d px: %w",
			index, l.MapWidth, l.MapHeight, l.TileWidth, l.TileHeight, ErrZeroLayer)
	case l.TileWidth > maxTileSide || l.TileHeight > maxTileSide,
		l.MapWidth > maxGridSide || l.MapHeight > maxGridSide:
		return nil, fmt.Errorf("mapfile: layer %d: %dx%d tiles of %dx%d px: %w",
			index, l.MapWidth, l.MapHeight, l.TileWidth, l.TileHeight, ErrTooLarge)
	}

	// Skip the layer pixel dimensions and one unidentified field; none of
	// them are needed to reconstruct the raster.
	if _, err := d.r.Seek(12, io.SeekCurrent); err != nil {
		return nil, err
	}

	// First pass: scan the grid, normalizing each tile code to its key by
	// clearing the two flag bits, and collect each distinct non-zero key
	// in first-seen order.
	cells := int(l.MapWidth) * int(l.MapHeight)
	l.TileMap = make([]uint32, 0, cells)
	l.Tiles = make(map[uint32]*Tile)

	keys := make([]uint32, 0, cells)
	for i := 0; i < cells; i++ {
		code, err := d.readUint32()
		if err != nil {
			return nil, fmt.Errorf("mapfile: layer %d: %w", index, err)
		}

		key := code &^ 3
		l.TileMap = append(l.TileMap, key)

		if key == 0 {
			continue
		}
		if _, ok := l.Tiles[key]; !ok {
			l.Tiles[key] = nil
			keys = append(keys, key)
		}
	}

	// Second pass: decode each distinct tile exactly once.
	for _, key := range keys {
		tile, err := d.readTile(index, key, l.TileWidth, l.TileHeight)
		if err != nil {
			return nil, err
		}
		l.Tiles[key] = tile
	}

	return l, nil
}

func (d *decoder) readTile(layer int, key, width, height uint32) (*Tile, error) {
	if _, err := d.r.Seek(d.position(key), io.SeekStart); err != nil {
		return nil, err
	}

	raw := make([]byte, width*height)
	if err := readFull(d.r, raw); err != nil {
		return nil, fmt.Errorf("mapfile: layer %d: tile %#x: %w", layer, key, err)
	}

	return d.rasterize(layer, key, raw)
}

// rasterize resolves raw palette indices to RGBA. Index 0 always yields a
// fully transparent pixel, never palette[0].
func (d *decoder) rasterize(layer int, key uint32, raw []byte) (*Tile, error) {
	pixels := make([]byte, len(raw)*4)

	for i, index := range raw {
		if index == 0 {
			continue
		}
		if int(index) >= len(d.palette) {
			return nil, fmt.Errorf("mapfile: layer %d: tile %#x: palette index %d of %d: %w",
				layer, key, index, len(d.palette), ErrBadPaletteIndex)
		}

		c := d.palette[index]
		pixels[i*4+0] = c.R
		pixels[i*4+1] = c.G
		pixels[i*4+2] = c.B
		pixels[i*4+3] = 0xff
	}

	return &Tile{Pixels: pixels}, nil
}

// Decode reads map data from r into a Map. The reader must be positioned at
// the start of the map data, which itself must begin dataHeaderSize bytes
// into the stream; baseOffset is the correction to apply to the file offsets
// stored in the data, compensating for any leading bytes stripped before r
// was handed over. Any error leaves no partial Map.
func Decode(r io.ReadSeeker, baseOffset uint32) (*Map, error) {
	d := decoder{r: r, base: baseOffset}

	if err := d.readHeader(); err != nil {
		return nil, err
	}
	if err := d.readPalette(); err != nil {
		return nil, err
	}

	m := &Map{Layers: make([]*Layer, 0, len(d.layerOffsets))}
	for i := range d.layerOffsets {
		l, err := d.readLayer(i)
		if err != nil {
			return nil, err
		}
		m.Layers = append(m.Layers, l)
	}

	return m, nil
}

// DecodeSelfContained reads a self-contained map file from r: the Magic
// value, the base offset correction, then the map data.
func DecodeSelfContained(r io.ReadSeeker) (*Map, error) {
	d := decoder{r: r}

	magic, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, fmt.Errorf("mapfile: file magic %#08x: %w", magic, ErrBadMagic)
	}

	base, err := d.readUint32()
	if err != nil {
		return nil, err
	}

	return Decode(r, base)
}

// DecodeExtracted reads map data that was located and extracted from a level
// archive. offset is the position the data was recorded at within that
// archive; the stored file offsets are corrected against it.
func DecodeExtracted(data []byte, offset uint32) (*Map, error) {
	padded := make([]byte, dataHeaderSize+len(data))
	copy(padded[dataHeaderSize:], data)

	r := bytes.NewReader(padded)
	if _, err := r.Seek(dataHeaderSize, io.SeekStart); err != nil {
		return nil, err
	}

	return Decode(r, offset)
}
