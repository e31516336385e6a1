// Package roster models the connected-player snapshot and resolves a free-text
// token against it.
package roster

import (
	"strings"

	"github.com/crystal-mush/bwho/pkg/steamid"
)

// UnknownName stands in for a blank display name in match summaries.
const UnknownName = "Unknown"

// Player is a read-only snapshot of one connected player, borrowed for the
// duration of a single command invocation.
type Player struct {
	Slot     int
	Name     string // may be empty
	Address  string // empty when unknown
	SteamID  uint64 // 0 = not authenticated
	Identity string // secondary textual identity, opaque
}

// Provider supplies the current roster, already filtered to valid entries.
type Provider interface {
	ConnectedPlayers() []Player
}

// Static is a fixed roster.
type Static []Player

// ConnectedPlayers returns a copy of the roster.
func (s Static) ConnectedPlayers() []Player {
	out := make([]Player, len(s))
	copy(out, s)
	return out
}

// Authenticated reports whether the player has a persistent identity.
func (p Player) Authenticated() bool {
	return p.SteamID > 0
}

// DisplayName returns the player's name, or UnknownName when it is blank.
func (p Player) DisplayName() string {
	if strings.TrimSpace(p.Name) == "" {
		return UnknownName
	}
	return p.Name
}

// ProfileURL returns the community profile link, or "" when unauthenticated.
func (p Player) ProfileURL() string {
	return steamid.ID(p.SteamID).ProfileURL()
}
