// Package boltstore keeps admin records in a bbolt file so a host can serve
// lookups without re-parsing the admin files on every start.
package boltstore

import (
	"fmt"
	"log"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/crystal-mush/bwho/pkg/perms"
	"github.com/crystal-mush/bwho/pkg/roster"
	"github.com/crystal-mush/bwho/pkg/steamid"
)

// Store wraps a bbolt database of admin records keyed by SteamID64.
type Store struct {
	bolt *bbolt.DB
}

// Open opens or creates a bbolt database file and ensures all buckets exist.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMeta, bucketAdmins} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("boltstore: create buckets: %w", err)
	}

	return &Store{bolt: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	if s.bolt != nil {
		return s.bolt.Close()
	}
	return nil
}

// Path returns the filesystem path of the underlying bbolt database.
func (s *Store) Path() string {
	if s.bolt != nil {
		return s.bolt.Path()
	}
	return ""
}

func recordID(rec *perms.AdminRecord) (uint64, error) {
	id, err := steamid.Parse(rec.Identity)
	if err != nil {
		return 0, fmt.Errorf("boltstore: record identity: %w", err)
	}
	return uint64(id), nil
}

// PutAdmin persists a single admin record (write-through).
func (s *Store) PutAdmin(rec *perms.AdminRecord) error {
	id, err := recordID(rec)
	if err != nil {
		return err
	}
	data, err := encodeAdmin(rec)
	if err != nil {
		return fmt.Errorf("boltstore: encode admin %d: %w", id, err)
	}
	err = s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketAdmins).Put(idToKey(id), data)
	})
	if err != nil {
		return fmt.Errorf("boltstore: put admin %d: %w", id, err)
	}
	return nil
}

// DeleteAdmin removes an admin record. It reports whether one existed.
func (s *Store) DeleteAdmin(id uint64) (bool, error) {
	found := false
	err := s.bolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketAdmins)
		found = b.Get(idToKey(id)) != nil
		return b.Delete(idToKey(id))
	})
	if err != nil {
		return false, fmt.Errorf("boltstore: delete admin %d: %w", id, err)
	}
	return found, nil
}

// ReplaceAll swaps the stored admin set for recs in one transaction and
// records where the set came from.
func (s *Store) ReplaceAll(source string, recs []*perms.AdminRecord) error {
	err := s.bolt.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketAdmins); err != nil {
			return err
		}
		b, err := tx.CreateBucket(bucketAdmins)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if rec == nil {
				continue
			}
			id, err := recordID(rec)
			if err != nil {
				return err
			}
			data, err := encodeAdmin(rec)
			if err != nil {
				return fmt.Errorf("encode admin %d: %w", id, err)
			}
			if err := b.Put(idToKey(id), data); err != nil {
				return err
			}
		}

		meta := tx.Bucket(bucketMeta)
		if err := meta.Put(keySource, []byte(source)); err != nil {
			return err
		}
		return meta.Put(keyImportedAt, []byte(time.Now().UTC().Format(time.RFC3339)))
	})
	if err != nil {
		return fmt.Errorf("boltstore: replace admins: %w", err)
	}
	log.Printf("boltstore: imported %d admins from %s", len(recs), source)
	return nil
}

// Get returns the admin record for a SteamID64, or nil.
func (s *Store) Get(id uint64) (*perms.AdminRecord, error) {
	var rec *perms.AdminRecord
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketAdmins).Get(idToKey(id))
		if v == nil {
			return nil
		}
		var err error
		rec, err = decodeAdmin(v)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: get admin %d: %w", id, err)
	}
	return rec, nil
}

// LookupAdmin returns p's admin record. Read failures are logged and treated
// as no admin data.
func (s *Store) LookupAdmin(p roster.Player) *perms.AdminRecord {
	if p.SteamID == 0 {
		return nil
	}
	rec, err := s.Get(p.SteamID)
	if err != nil {
		log.Printf("boltstore: %v", err)
		return nil
	}
	return rec
}

// ForEach calls fn for every stored record in SteamID64 order.
func (s *Store) ForEach(fn func(id uint64, rec *perms.AdminRecord) error) error {
	return s.bolt.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketAdmins).ForEach(func(k, v []byte) error {
			rec, err := decodeAdmin(v)
			if err != nil {
				return fmt.Errorf("boltstore: decode admin %d: %w", keyToID(k), err)
			}
			return fn(keyToID(k), rec)
		})
	})
}

// Count returns the number of stored admin records.
func (s *Store) Count() int {
	n := 0
	s.bolt.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketAdmins).Stats().KeyN
		return nil
	})
	return n
}

// Source returns the source and time of the last ReplaceAll, if any.
func (s *Store) Source() (source string, importedAt time.Time) {
	s.bolt.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		source = string(b.Get(keySource))
		if v := b.Get(keyImportedAt); v != nil {
			importedAt, _ = time.Parse(time.RFC3339, string(v))
		}
		return nil
	})
	return source, importedAt
}
