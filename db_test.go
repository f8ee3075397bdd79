package kknd2

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapDB(t *testing.T) {
	dir, err := ioutil.TempDir("", "kknd2")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	db, err := NewMapDB(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	defer db.Close()

	rec := &MapRecord{
		Path:       "/maps/level1.lps",
		CRC:        "DEADBEEF",
		Layers:     2,
		MapWidth:   64,
		MapHeight:  48,
		TileWidth:  32,
		TileHeight: 32,
		Thumbnail:  []byte{0x89, 'P', 'N', 'G'},
	}

	id, err := db.Add(rec)
	require.NoError(t, err)

	// Unchanged contents keep the same row
	again, err := db.Add(rec)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	found, err := db.FindByPath(rec.Path)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, rec, found)

	found, err = db.FindByCRC(rec.CRC)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, rec.Path, found.Path)

	// Changed contents refresh the row in place
	rec.CRC = "CAFEF00D"
	rec.Layers = 3
	updated, err := db.Add(rec)
	require.NoError(t, err)
	assert.Equal(t, id, updated)

	found, err = db.FindByPath(rec.Path)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "CAFEF00D", found.CRC)
	assert.Equal(t, 3, found.Layers)

	found, err = db.FindByPath("/maps/absent.lps")
	require.NoError(t, err)
	assert.Nil(t, found)
}
