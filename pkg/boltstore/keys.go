package boltstore

import "encoding/binary"

// Bucket name constants for bbolt storage.
var (
	bucketMeta   = []byte("meta")
	bucketAdmins = []byte("admins")
)

// Meta key constants.
var (
	keySource     = []byte("source")
	keyImportedAt = []byte("imported_at")
)

// idToKey converts a SteamID64 to an 8-byte big-endian key so admins iterate
// in numeric order.
func idToKey(id uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, id)
	return buf
}

// keyToID converts an 8-byte big-endian key back to a SteamID64.
func keyToID(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}
