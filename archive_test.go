package kknd2

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/kknd2/mapfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type builder struct {
	bytes.Buffer
}

func (b *builder) uint32(v uint32) {
	_ = binary.Write(&b.Buffer, binary.LittleEndian, v)
}

func (b *builder) uint16(v uint16) {
	_ = binary.Write(&b.Buffer, binary.LittleEndian, v)
}

// buildMapData returns raw map data with a three entry palette and one
// layer of 2x2 tiles of 2x2 pixels, with stored offsets biased by base.
func buildMapData(base uint32) []byte {
	var b builder
	b.uint32(0) // version, skipped
	b.uint32(1) // layer count
	b.uint32(base + 22)
	b.uint32(3) // palette entries
	b.uint16(0x7fff)
	b.uint16(0x7fff)
	b.uint16(0x7c00)
	b.uint32(0x5343524c) // "LRCS"
	b.uint32(2)          // tile width
	b.uint32(2)          // tile height
	b.uint32(2)          // map width
	b.uint32(2)          // map height
	b.Write(make([]byte, 12))
	b.uint32(base + 72)
	b.uint32(base + 73)
	b.uint32(0)
	b.uint32(base + 76)
	b.Write(make([]byte, 2))
	b.Write([]byte{1, 2, 1, 0})
	b.Write([]byte{2, 2, 2, 2})
	return b.Bytes()
}

func buildSelfContained() []byte {
	var b builder
	b.uint32(mapfile.Magic)
	b.uint32(0) // base offset
	b.Write(buildMapData(0))
	return b.Bytes()
}

func writeTempFile(t *testing.T, name string, data []byte) (string, func()) {
	dir, err := ioutil.TempDir("", "kknd2")
	require.NoError(t, err)

	file := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(file, data, 0644))

	return file, func() { os.RemoveAll(dir) }
}

type fakeDecompressor struct {
	archive []byte
	err     error
}

func (f *fakeDecompressor) Decompress(string) ([]byte, error) {
	return f.archive, f.err
}

type fakeUnpacker struct {
	entries []Entry
	blobs   map[uint32][]byte
}

func (f *fakeUnpacker) Entries([]byte) ([]Entry, error) {
	return f.entries, nil
}

func (f *fakeUnpacker) Extract(_ []byte, e Entry) ([]byte, error) {
	return f.blobs[e.Offset], nil
}

func TestLoadMapSelfContained(t *testing.T) {
	file, cleanup := writeTempFile(t, "level.lps", buildSelfContained())
	defer cleanup()

	m, err := LoadMap(file, nil, nil)
	require.NoError(t, err)
	require.Len(t, m.Layers, 1)
	assert.Len(t, m.Layers[0].Tiles, 2)
}

func TestLoadMapArchive(t *testing.T) {
	file, cleanup := writeTempFile(t, "level.lpm", []byte("not a self-contained map"))
	defer cleanup()

	const base = 256

	d := &fakeDecompressor{archive: []byte("archive")}
	u := &fakeUnpacker{
		entries: []Entry{
			{Kind: 0x58585858, Offset: 0},
			{Kind: mapDataKind, Offset: base},
		},
		blobs: map[uint32][]byte{base: buildMapData(base)},
	}

	m, err := LoadMap(file, d, u)
	require.NoError(t, err)
	require.Len(t, m.Layers, 1)

	l := m.Layers[0]
	assert.Equal(t, []uint32{base + 72, base + 72, 0, base + 76}, l.TileMap)
	assert.Len(t, l.Tiles, 2)
}

func TestLoadMapNoMapData(t *testing.T) {
	file, cleanup := writeTempFile(t, "level.lpm", []byte("not a self-contained map"))
	defer cleanup()

	d := &fakeDecompressor{archive: []byte("archive")}
	u := &fakeUnpacker{entries: []Entry{{Kind: 0x58585858}}}

	_, err := LoadMap(file, d, u)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoMapData))
	assert.Contains(t, err.Error(), file)
}

func TestLoadMapNoArchiveSupport(t *testing.T) {
	file, cleanup := writeTempFile(t, "level.lpm", []byte("not a self-contained map"))
	defer cleanup()

	_, err := LoadMap(file, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoArchiveSupport))
}
