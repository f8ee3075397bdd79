package kknd2

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type MapDB struct {
	db *sql.DB
}

func NewMapDB(file string) (*MapDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS map (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, crc TEXT NOT NULL, layers INTEGER NOT NULL, map_width INTEGER NOT NULL, map_height INTEGER NOT NULL, tile_width INTEGER NOT NULL, tile_height INTEGER NOT NULL, thumbnail BLOB)"); err != nil {
		return nil, err
	}

	return &MapDB{
		db: db,
	}, nil
}

func (db *MapDB) Close() error {
	return db.db.Close()
}

// MapRecord is one row of the map index.
type MapRecord struct {
	Path                  string
	CRC                   string
	Layers                int
	MapWidth, MapHeight   uint32
	TileWidth, TileHeight uint32
	Thumbnail             []byte
}

// Add inserts the record, or refreshes the existing row for the same path
// when the file contents have changed.
func (db *MapDB) Add(rec *MapRecord) (int64, error) {
	var id int64
	var crc string
	switch err := db.db.QueryRow("SELECT id, crc FROM map WHERE path = ?", rec.Path).Scan(&id, &crc); err {
	case sql.ErrNoRows:
		result, err := db.db.Exec("INSERT INTO map (path, crc, layers, map_width, map_height, tile_width, tile_height, thumbnail) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			rec.Path, rec.CRC, rec.Layers, rec.MapWidth, rec.MapHeight, rec.TileWidth, rec.TileHeight, rec.Thumbnail)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		if crc != rec.CRC {
			if _, err := db.db.Exec("UPDATE map SET crc = ?, layers = ?, map_width = ?, map_height = ?, tile_width = ?, tile_height = ?, thumbnail = ? WHERE id = ?",
				rec.CRC, rec.Layers, rec.MapWidth, rec.MapHeight, rec.TileWidth, rec.TileHeight, rec.Thumbnail, id); err != nil {
				return 0, err
			}
		}
		return id, nil
	default:
		return 0, err
	}
}

// FindByPath returns the indexed record for path, or nil if the path has
// not been scanned.
func (db *MapDB) FindByPath(path string) (*MapRecord, error) {
	rec := &MapRecord{Path: path}
	switch err := db.db.QueryRow("SELECT crc, layers, map_width, map_height, tile_width, tile_height, thumbnail FROM map WHERE path = ?", path).Scan(&rec.CRC, &rec.Layers, &rec.MapWidth, &rec.MapHeight, &rec.TileWidth, &rec.TileHeight, &rec.Thumbnail); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return rec, nil
	default:
		return nil, err
	}
}

// FindByCRC returns the first indexed record whose contents hash to crc, or
// nil when nothing matches.
func (db *MapDB) FindByCRC(crc string) (*MapRecord, error) {
	rec := &MapRecord{CRC: crc}
	switch err := db.db.QueryRow("SELECT path, layers, map_width, map_height, tile_width, tile_height, thumbnail FROM map WHERE crc = ?", crc).Scan(&rec.Path, &rec.Layers, &rec.MapWidth, &rec.MapHeight, &rec.TileWidth, &rec.TileHeight, &rec.Thumbnail); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return rec, nil
	default:
		return nil, err
	}
}
