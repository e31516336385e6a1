package whois

import (
	"fmt"
	"strings"

	"github.com/crystal-mush/bwho/pkg/roster"
)

// Reply texts.
const (
	MsgInvalidCaller = "This command can only be used by an in-game player."
	MsgDenied        = "You do not have permission to use this command."
	MsgNoPlayers     = "No connected players were found."
)

// Status is the terminal state of one invocation.
type Status int

const (
	StatusInvalidCaller Status = iota
	StatusDenied
	StatusUsage
	StatusNoPlayers
	StatusNoMatch
	StatusAmbiguous
	StatusFound
	StatusListed
)

var statusNames = [...]string{
	StatusInvalidCaller: "invalid_caller",
	StatusDenied:        "denied",
	StatusUsage:         "usage",
	StatusNoPlayers:     "no_players",
	StatusNoMatch:       "no_match",
	StatusAmbiguous:     "ambiguous",
	StatusFound:         "found",
	StatusListed:        "listed",
}

// String returns the metric label for s.
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// Statuses lists every Status in order.
func Statuses() []Status {
	out := make([]Status, len(statusNames))
	for i := range out {
		out[i] = Status(i)
	}
	return out
}

// Command is the player lookup command. Roster and Admins are borrowed per
// invocation and never modified.
type Command struct {
	Name       string // command name shown in the usage line
	Mode       Mode
	Permission string // required caller permission
	Roster     roster.Provider
	Admins     AdminProvider
	Gate       Gate // nil uses AdminGate over Admins
}

// Usage returns the usage line for the command.
func (c *Command) Usage() string {
	name := c.Name
	if name == "" {
		name = DefaultName
	}
	return fmt.Sprintf("Usage: %s <player name or SteamID>", name)
}

func (c *Command) gate() Gate {
	if c.Gate != nil {
		return c.Gate
	}
	return AdminGate{Admins: c.Admins}
}

func (c *Command) permission() string {
	if c.Permission == "" {
		return DefaultPermission
	}
	return c.Permission
}

// Run executes the command for caller. args excludes the command name.
// Every path replies at least once; all paths other than Found and Listed
// reply exactly once.
func (c *Command) Run(caller *roster.Player, args []string, r Replier) Status {
	g := c.gate()
	if !g.IsValidCaller(caller) {
		r.Reply(MsgInvalidCaller)
		return StatusInvalidCaller
	}
	if !g.HasPrivilege(caller, c.permission()) {
		r.Reply(MsgDenied)
		return StatusDenied
	}

	if c.Mode == RosterDump {
		return c.dump(r)
	}
	return c.lookup(args, r)
}

func (c *Command) lookup(args []string, r Replier) Status {
	if len(args) < 1 {
		r.Reply(c.Usage())
		return StatusUsage
	}
	token := strings.TrimSpace(args[0])
	if token == "" {
		r.Reply(c.Usage())
		return StatusUsage
	}

	res := roster.Resolve(c.players(), token)
	switch res.Outcome {
	case roster.NoPlayers:
		r.Reply(MsgNoPlayers)
		return StatusNoPlayers
	case roster.NoMatch:
		r.Reply(fmt.Sprintf("No players match '%s'.", token))
		return StatusNoMatch
	case roster.Ambiguous:
		r.Reply(fmt.Sprintf("Multiple players match '%s': %s.", token, strings.Join(res.Names(), ", ")))
		return StatusAmbiguous
	}

	p, _ := res.Player()
	r.Reply(Format(c.match(p)))
	return StatusFound
}

func (c *Command) dump(r Replier) Status {
	players := c.players()
	if len(players) == 0 {
		r.Reply(MsgNoPlayers)
		return StatusNoPlayers
	}
	for _, p := range players {
		r.Reply(Format(c.match(p)))
	}
	return StatusListed
}

func (c *Command) players() []roster.Player {
	if c.Roster == nil {
		return nil
	}
	return c.Roster.ConnectedPlayers()
}

func (c *Command) match(p roster.Player) Match {
	if c.Admins == nil {
		return NewMatch(p, nil)
	}
	return NewMatch(p, c.Admins.LookupAdmin(p))
}
