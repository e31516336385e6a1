package roster

import (
	"strconv"
	"strings"

	"github.com/crystal-mush/bwho/pkg/fold"
)

// Outcome classifies a resolution.
type Outcome int

const (
	NoPlayers Outcome = iota // roster was empty
	NoMatch                  // nothing matched the token
	Ambiguous                // more than one player matched
	Unique                   // exactly one player matched
)

// String returns a short label for the outcome.
func (o Outcome) String() string {
	switch o {
	case NoPlayers:
		return "no_players"
	case NoMatch:
		return "no_match"
	case Ambiguous:
		return "ambiguous"
	case Unique:
		return "unique"
	default:
		return "unknown"
	}
}

// Result is the output of Resolve. Matches keeps roster order.
type Result struct {
	Outcome Outcome
	Matches []Player
}

// Player returns the single match of a Unique result.
func (r Result) Player() (Player, bool) {
	if r.Outcome != Unique {
		return Player{}, false
	}
	return r.Matches[0], true
}

// Names returns the display names of all matches in roster order, with blank
// names replaced by UnknownName.
func (r Result) Names() []string {
	names := make([]string, len(r.Matches))
	for i, p := range r.Matches {
		names[i] = p.DisplayName()
	}
	return names
}

// Resolve filters players down to those matching token.
func Resolve(players []Player, token string) Result {
	if len(players) == 0 {
		return Result{Outcome: NoPlayers}
	}

	var matches []Player
	for _, p := range players {
		if Matches(p, token) {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 0:
		return Result{Outcome: NoMatch}
	case 1:
		return Result{Outcome: Unique, Matches: matches}
	default:
		return Result{Outcome: Ambiguous, Matches: matches}
	}
}

// Matches reports whether p is selected by token. The name is matched as a
// case-insensitive substring; the SteamID64 and the identity string must
// match exactly (ignoring case). A blank token matches nothing.
func Matches(p Player, token string) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}

	if strings.TrimSpace(p.Name) != "" && fold.Contains(p.Name, token) {
		return true
	}

	if p.SteamID > 0 && fold.Equal(strconv.FormatUint(p.SteamID, 10), token) {
		return true
	}

	if strings.TrimSpace(p.Identity) != "" && fold.Equal(p.Identity, token) {
		return true
	}

	return false
}
