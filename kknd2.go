/*
Package kknd2 is a library for reading and cataloguing the level data used
by KKnD2: Krossfire.
*/
package kknd2

import "log"

type KKnD2 struct {
	db           *MapDB
	decompressor Decompressor
	unpacker     Unpacker
	logger       *log.Logger
}

func New(db string, decompressor Decompressor, unpacker Unpacker, logger *log.Logger) (*KKnD2, error) {
	mdb, err := NewMapDB(db)
	if err != nil {
		return nil, err
	}

	return &KKnD2{
		db:           mdb,
		decompressor: decompressor,
		unpacker:     unpacker,
		logger:       logger,
	}, nil
}

func (k *KKnD2) Close() error {
	return k.db.Close()
}
