package kknd2

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bodgit/kknd2/mapfile"
)

// mapDataKind is the archive directory type tag for map data, the bytes
// "MAPD" read little-endian.
const mapDataKind = 0x4450414d

var (
	// ErrNoMapData is returned when a level archive contains no entry
	// tagged as map data.
	ErrNoMapData = errors.New("kknd2: no MAPD entry in archive")

	// ErrNoArchiveSupport is returned for a compressed level file when no
	// decompressor or unpacker was configured.
	ErrNoArchiveSupport = errors.New("kknd2: no archive support configured")
)

// Decompressor strips the compression wrapping from a level file, returning
// the raw archive contents.
type Decompressor interface {
	Decompress(path string) ([]byte, error)
}

// Entry describes one directory entry within an unwrapped level archive.
// Offset is the entry's recorded position within the archive, which doubles
// as the base offset correction when decoding map data.
type Entry struct {
	Kind   uint32
	Offset uint32
	Size   uint32
}

// Unpacker reads the directory of an unwrapped level archive and extracts
// the raw bytes of individual entries.
type Unpacker interface {
	Entries(archive []byte) ([]Entry, error)
	Extract(archive []byte, e Entry) ([]byte, error)
}

// LoadMap decodes the map stored at path. A file starting with the
// mapfile.Magic value is decoded directly; anything else is treated as a
// compressed level archive, which is decompressed, searched for its map
// data entry and decoded from there.
func LoadMap(path string, decompressor Decompressor, unpacker Unpacker) (*mapfile.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tmp [4]byte
	if _, err := io.ReadFull(f, tmp[:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("kknd2: %s: %w", path, err)
	}

	if binary.LittleEndian.Uint32(tmp[:]) == mapfile.Magic {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return mapfile.DecodeSelfContained(f)
	}

	if decompressor == nil || unpacker == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoArchiveSupport, path)
	}

	archive, err := decompressor.Decompress(path)
	if err != nil {
		return nil, err
	}

	entries, err := unpacker.Entries(archive)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.Kind != mapDataKind {
			continue
		}

		data, err := unpacker.Extract(archive, e)
		if err != nil {
			return nil, err
		}

		return mapfile.DecodeExtracted(data, e.Offset)
	}

	return nil, fmt.Errorf("%w: %s", ErrNoMapData, path)
}

// LoadMap decodes the map stored at path using the configured archive
// collaborators.
func (k *KKnD2) LoadMap(path string) (*mapfile.Map, error) {
	return LoadMap(path, k.decompressor, k.unpacker)
}
