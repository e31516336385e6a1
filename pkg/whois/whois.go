// Package whois implements the administrative player lookup command: it
// resolves a token against the connected roster, aggregates each match's
// admin permissions and replies with one line per player.
package whois

import (
	"errors"
	"fmt"
	"strings"

	"github.com/crystal-mush/bwho/pkg/perms"
	"github.com/crystal-mush/bwho/pkg/roster"
)

// Defaults for the command surface.
const (
	DefaultName       = "css_bwho"
	DefaultPermission = "@css/admin"
)

// ErrUnknownMode is returned by ParseMode for an unrecognized spelling.
var ErrUnknownMode = errors.New("whois: unknown mode")

// Mode selects how the command treats its argument.
type Mode int

const (
	// Targeted resolves the first argument to a single player.
	Targeted Mode = iota
	// RosterDump ignores arguments and lists every connected player.
	RosterDump
)

// String returns the config spelling of m.
func (m Mode) String() string {
	switch m {
	case Targeted:
		return "targeted"
	case RosterDump:
		return "roster"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a config spelling of a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "targeted", "target", "lookup":
		return Targeted, nil
	case "roster", "dump", "all":
		return RosterDump, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownMode, s)
}

// Replier delivers one message to the invoking caller.
type Replier interface {
	Reply(text string)
}

// ReplyFunc adapts a function to Replier.
type ReplyFunc func(text string)

// Reply calls f(text).
func (f ReplyFunc) Reply(text string) { f(text) }

// AdminProvider looks up the admin record of a player. A nil record means the
// player has no admin data.
type AdminProvider interface {
	LookupAdmin(p roster.Player) *perms.AdminRecord
}

// Gate decides whether a caller may run the command. A nil caller is the
// server console.
type Gate interface {
	IsValidCaller(caller *roster.Player) bool
	HasPrivilege(caller *roster.Player, permission string) bool
}

// AdminGate is the default Gate: callers must be in-game players whose admin
// record grants the permission.
type AdminGate struct {
	Admins AdminProvider
}

// IsValidCaller reports whether caller is an in-game player.
func (g AdminGate) IsValidCaller(caller *roster.Player) bool {
	return caller != nil && caller.Slot >= 0
}

// HasPrivilege checks caller's admin record for permission.
func (g AdminGate) HasPrivilege(caller *roster.Player, permission string) bool {
	if caller == nil || g.Admins == nil {
		return false
	}
	return perms.HasPermission(g.Admins.LookupAdmin(*caller), permission)
}
