package boltstore

import (
	"bytes"
	"encoding/gob"

	"github.com/crystal-mush/bwho/pkg/perms"
)

func init() {
	gob.Register(perms.AdminRecord{})
	gob.Register(perms.FlagSet{})
}

// encodeAdmin serializes an AdminRecord to bytes using gob.
func encodeAdmin(rec *perms.AdminRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeAdmin deserializes bytes back into an AdminRecord.
func decodeAdmin(data []byte) (*perms.AdminRecord, error) {
	var rec perms.AdminRecord
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
