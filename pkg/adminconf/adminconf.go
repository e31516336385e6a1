// Package adminconf loads admin records from the plugin framework's admin
// files: admins.json (per-player flags and groups) and admin_groups.json
// (flags granted by each group). Both files accept // and /* */ comments and
// trailing commas.
package adminconf

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"sync"

	"github.com/tidwall/jsonc"

	"github.com/crystal-mush/bwho/pkg/perms"
	"github.com/crystal-mush/bwho/pkg/roster"
	"github.com/crystal-mush/bwho/pkg/steamid"
)

// ErrBadIdentity is returned when an admin entry's identity is not a SteamID.
var ErrBadIdentity = errors.New("adminconf: bad identity")

// AdminEntry is one entry of admins.json, keyed by a display name.
type AdminEntry struct {
	Identity string   `json:"identity"`
	Flags    []string `json:"flags,omitempty"`
	Groups   []string `json:"groups,omitempty"`
	Immunity uint     `json:"immunity,omitempty"`
}

// GroupEntry is one entry of admin_groups.json, keyed by "#name".
type GroupEntry struct {
	Flags    []string `json:"flags,omitempty"`
	Immunity uint     `json:"immunity,omitempty"`
}

// Document is the decoded content of the two admin files.
type Document struct {
	Admins map[string]AdminEntry
	Groups map[string]GroupEntry
}

// Decode parses the admin files without interpreting them. groupsData may
// be nil.
func Decode(adminsData, groupsData []byte) (*Document, error) {
	doc := &Document{Groups: map[string]GroupEntry{}}
	if err := json.Unmarshal(jsonc.ToJSON(adminsData), &doc.Admins); err != nil {
		return nil, fmt.Errorf("adminconf: parse admins: %w", err)
	}
	if len(groupsData) > 0 {
		if err := json.Unmarshal(jsonc.ToJSON(groupsData), &doc.Groups); err != nil {
			return nil, fmt.Errorf("adminconf: parse groups: %w", err)
		}
	}
	return doc, nil
}

// ReadFiles reads and decodes the admin files. groupsPath may be empty.
func ReadFiles(adminsPath, groupsPath string) (*Document, error) {
	adminsData, err := os.ReadFile(adminsPath)
	if err != nil {
		return nil, fmt.Errorf("adminconf: read %s: %w", adminsPath, err)
	}
	var groupsData []byte
	if groupsPath != "" {
		groupsData, err = os.ReadFile(groupsPath)
		if err != nil {
			return nil, fmt.Errorf("adminconf: read %s: %w", groupsPath, err)
		}
	}
	return Decode(adminsData, groupsData)
}

// WriteAdmins writes the admin entries as indented JSON. Comments in the
// original file are not preserved.
func (doc *Document) WriteAdmins(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc.Admins)
}

// Parse builds admin records keyed by SteamID64. groupsData may be nil.
func Parse(adminsData, groupsData []byte) (map[uint64]*perms.AdminRecord, error) {
	doc, err := Decode(adminsData, groupsData)
	if err != nil {
		return nil, err
	}
	return doc.Records()
}

// Records interprets the document.
//
// Entries are processed in name order. A member's own flags come first,
// followed by the flags of each of its groups in membership order. Two
// entries with the same identity are merged.
func (doc *Document) Records() (map[uint64]*perms.AdminRecord, error) {
	admins, groups := doc.Admins, doc.Groups

	names := make([]string, 0, len(admins))
	for name := range admins {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[uint64]*perms.AdminRecord, len(admins))
	for _, name := range names {
		e := admins[name]
		id, err := steamid.Parse(e.Identity)
		if err != nil {
			return nil, fmt.Errorf("%w: admin %q: %q", ErrBadIdentity, name, e.Identity)
		}

		rec, ok := out[uint64(id)]
		if !ok {
			rec = &perms.AdminRecord{Identity: id.String()}
			out[uint64(id)] = rec
		} else {
			log.Printf("adminconf: admin %q repeats identity %s, merging", name, id)
		}

		rec.AddFlags(e.Flags...)
		rec.Immunity = max(rec.Immunity, e.Immunity)
		for _, g := range e.Groups {
			rec.Groups = append(rec.Groups, g)
			ge, ok := groups[g]
			if !ok {
				log.Printf("adminconf: admin %q is in undefined group %q", name, g)
				continue
			}
			rec.AddFlags(ge.Flags...)
			rec.Immunity = max(rec.Immunity, ge.Immunity)
		}
	}
	return out, nil
}

// Directory serves admin records loaded from disk. It is safe for concurrent
// use; Load replaces the whole record set at once.
type Directory struct {
	AdminsPath string
	GroupsPath string // optional

	mu      sync.RWMutex
	records map[uint64]*perms.AdminRecord
}

// Open loads the admin files into a new Directory.
func Open(adminsPath, groupsPath string) (*Directory, error) {
	d := &Directory{AdminsPath: adminsPath, GroupsPath: groupsPath}
	if err := d.Load(); err != nil {
		return nil, err
	}
	return d, nil
}

// Load re-reads the admin files. On error the previous records are kept.
func (d *Directory) Load() error {
	doc, err := ReadFiles(d.AdminsPath, d.GroupsPath)
	if err != nil {
		return err
	}
	records, err := doc.Records()
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.records = records
	d.mu.Unlock()

	log.Printf("adminconf: loaded %d admins from %s", len(records), d.AdminsPath)
	return nil
}

// Paths returns the files the directory is loaded from.
func (d *Directory) Paths() []string {
	if d.GroupsPath == "" {
		return []string{d.AdminsPath}
	}
	return []string{d.AdminsPath, d.GroupsPath}
}

// LookupAdmin returns a copy of p's admin record, or nil.
func (d *Directory) LookupAdmin(p roster.Player) *perms.AdminRecord {
	if p.SteamID == 0 {
		return nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.records[p.SteamID].Clone()
}

// Records returns copies of all records ordered by SteamID64.
func (d *Directory) Records() []*perms.AdminRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]uint64, 0, len(d.records))
	for id := range d.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*perms.AdminRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, d.records[id].Clone())
	}
	return out
}
