package roster

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/crystal-mush/bwho/pkg/steamid"
	"gopkg.in/yaml.v3"
)

// snapshotDoc is the on-disk layout of a roster snapshot file.
type snapshotDoc struct {
	Players []snapshotEntry `yaml:"players"`
}

type snapshotEntry struct {
	Slot     int    `yaml:"slot"`
	Name     string `yaml:"name"`
	Address  string `yaml:"address"`
	SteamID  string `yaml:"steam_id"` // any SteamID form
	Identity string `yaml:"identity"`
	Bot      bool   `yaml:"bot"`
	Left     bool   `yaml:"disconnected"`
}

// ParseSnapshot decodes a YAML roster snapshot. Bots and disconnected entries
// are dropped. An entry without an explicit identity gets the STEAM_0:Y:Z
// form of its SteamID.
func ParseSnapshot(data []byte) ([]Player, error) {
	var doc snapshotDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("roster: parse snapshot: %w", err)
	}

	players := make([]Player, 0, len(doc.Players))
	for i, e := range doc.Players {
		if e.Bot || e.Left {
			continue
		}
		p := Player{
			Slot:     e.Slot,
			Name:     e.Name,
			Address:  e.Address,
			Identity: e.Identity,
		}
		if e.SteamID != "" {
			id, err := steamid.Parse(e.SteamID)
			if err != nil {
				return nil, fmt.Errorf("roster: entry %d (%q): %w", i, e.Name, err)
			}
			p.SteamID = uint64(id)
			if p.Identity == "" {
				p.Identity = id.SteamID2()
			}
		}
		players = append(players, p)
	}
	return players, nil
}

// SnapshotFile is a Provider backed by a YAML file on disk. Reload swaps the
// whole roster, so readers never see a partial update.
type SnapshotFile struct {
	path string

	mu      sync.RWMutex
	players []Player
}

// OpenSnapshot loads the roster file at path.
func OpenSnapshot(path string) (*SnapshotFile, error) {
	sf := &SnapshotFile{path: path}
	if err := sf.Reload(); err != nil {
		return nil, err
	}
	return sf, nil
}

// Path returns the file backing the roster.
func (sf *SnapshotFile) Path() string {
	return sf.path
}

// Reload re-reads the file. On error the previous roster is kept.
func (sf *SnapshotFile) Reload() error {
	data, err := os.ReadFile(sf.path)
	if err != nil {
		return fmt.Errorf("roster: read %s: %w", sf.path, err)
	}
	players, err := ParseSnapshot(data)
	if err != nil {
		return err
	}

	sf.mu.Lock()
	sf.players = players
	sf.mu.Unlock()

	log.Printf("roster: loaded %d players from %s", len(players), sf.path)
	return nil
}

// ConnectedPlayers returns a copy of the current roster.
func (sf *SnapshotFile) ConnectedPlayers() []Player {
	sf.mu.RLock()
	defer sf.mu.RUnlock()
	out := make([]Player, len(sf.players))
	copy(out, sf.players)
	return out
}
