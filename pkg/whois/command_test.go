package whois

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/crystal-mush/bwho/pkg/perms"
	"github.com/crystal-mush/bwho/pkg/roster"
)

// fakeAdmins maps SteamID64 to admin records.
type fakeAdmins map[uint64]*perms.AdminRecord

func (f fakeAdmins) LookupAdmin(p roster.Player) *perms.AdminRecord {
	return f[p.SteamID]
}

// countingRoster records how often the roster was read.
type countingRoster struct {
	players []roster.Player
	reads   int
}

func (c *countingRoster) ConnectedPlayers() []roster.Player {
	c.reads++
	return c.players
}

// recorder collects replies.
type recorder struct {
	lines []string
}

func (r *recorder) Reply(text string) { r.lines = append(r.lines, text) }

const adminID = 76561197960265731

type CommandSuite struct {
	suite.Suite
	roster *countingRoster
	admins fakeAdmins
	cmd    *Command
	out    *recorder
	caller *roster.Player
}

func TestCommandSuite(t *testing.T) {
	suite.Run(t, new(CommandSuite))
}

func (s *CommandSuite) SetupTest() {
	admin := &perms.AdminRecord{Identity: "STEAM_0:1:1"}
	admin.AddFlags("@css/admin")

	s.roster = &countingRoster{}
	s.admins = fakeAdmins{adminID: admin}
	s.cmd = &Command{Name: DefaultName, Roster: s.roster, Admins: s.admins}
	s.out = &recorder{}
	s.caller = &roster.Player{Slot: 0, Name: "Op", SteamID: adminID}
}

func (s *CommandSuite) run(args ...string) Status {
	return s.cmd.Run(s.caller, args, s.out)
}

func (s *CommandSuite) TestUniqueMatch() {
	s.roster.players = []roster.Player{{Slot: 1, Name: "Alice", SteamID: 111, Address: "1.2.3.4"}}
	s.admins[111] = &perms.AdminRecord{Groups: []string{"vip"}}

	s.Equal(StatusFound, s.run("ali"))
	s.Equal([]string{"Alice | https://steamcommunity.com/profiles/111 | 1.2.3.4 | vip"}, s.out.lines)
}

func (s *CommandSuite) TestAmbiguousMatch() {
	s.roster.players = []roster.Player{{Name: "Bob"}, {Name: "Bobby"}}

	s.Equal(StatusAmbiguous, s.run("bob"))
	s.Equal([]string{"Multiple players match 'bob': Bob, Bobby."}, s.out.lines)
}

func (s *CommandSuite) TestAmbiguousSubstitutesUnknown() {
	s.roster.players = []roster.Player{{Name: " ", SteamID: 5}, {Name: "x", Identity: "5"}}

	s.Equal(StatusAmbiguous, s.run("5"))
	s.Equal([]string{"Multiple players match '5': Unknown, x."}, s.out.lines)
}

func (s *CommandSuite) TestUniqueKeepsBlankName() {
	s.roster.players = []roster.Player{{Name: "", SteamID: 5}}

	s.Equal(StatusFound, s.run("5"))
	s.Equal([]string{" | https://steamcommunity.com/profiles/5 | N/A | None"}, s.out.lines)
}

func (s *CommandSuite) TestEmptyRoster() {
	s.Equal(StatusNoPlayers, s.run("anyone"))
	s.Equal([]string{"No connected players were found."}, s.out.lines)
}

func (s *CommandSuite) TestNoMatch() {
	s.roster.players = []roster.Player{{Name: "Alice"}}

	s.Equal(StatusNoMatch, s.run("  zed "))
	s.Equal([]string{"No players match 'zed'."}, s.out.lines)
}

func (s *CommandSuite) TestMissingArgument() {
	s.roster.players = []roster.Player{{Name: "Alice"}}

	s.Equal(StatusUsage, s.run())
	s.Equal(StatusUsage, s.run("   "))
	s.Equal([]string{
		"Usage: css_bwho <player name or SteamID>",
		"Usage: css_bwho <player name or SteamID>",
	}, s.out.lines)
	s.Zero(s.roster.reads)
}

func (s *CommandSuite) TestUsageUsesConfiguredName() {
	s.cmd.Name = "bwho"
	s.run()
	s.Equal([]string{"Usage: bwho <player name or SteamID>"}, s.out.lines)
}

func (s *CommandSuite) TestConsoleCallerRejected() {
	s.caller = nil

	s.Equal(StatusInvalidCaller, s.run("alice"))
	s.Equal([]string{MsgInvalidCaller}, s.out.lines)
	s.Zero(s.roster.reads)
}

func (s *CommandSuite) TestNonAdminDenied() {
	s.caller = &roster.Player{Slot: 3, Name: "Pleb", SteamID: 999}

	s.Equal(StatusDenied, s.run("alice"))
	s.Equal([]string{MsgDenied}, s.out.lines)
	s.Zero(s.roster.reads)
}

func (s *CommandSuite) TestCustomPermission() {
	s.cmd.Permission = "@css/ban"
	s.Equal(StatusDenied, s.run("alice"))

	s.admins[adminID].AddFlags("@css/root")
	s.Equal(StatusNoPlayers, s.run("alice"))
}

func (s *CommandSuite) TestRosterDump() {
	s.cmd.Mode = RosterDump
	s.roster.players = []roster.Player{
		{Slot: 1, Name: "Alice", SteamID: 111, Address: "1.2.3.4"},
		{Slot: 2, Name: "Bob"},
	}
	s.admins[111] = &perms.AdminRecord{Groups: []string{"vip"}}

	s.Equal(StatusListed, s.run("ignored", "args"))
	s.Equal([]string{
		"Alice | https://steamcommunity.com/profiles/111 | 1.2.3.4 | vip",
		"Bob | N/A | N/A | None",
	}, s.out.lines)
}

func (s *CommandSuite) TestRosterDumpEmpty() {
	s.cmd.Mode = RosterDump

	s.Equal(StatusNoPlayers, s.run())
	s.Equal([]string{MsgNoPlayers}, s.out.lines)
}

func (s *CommandSuite) TestNilCollaborators() {
	cmd := &Command{Gate: allowAll{}}
	s.Equal(StatusNoPlayers, cmd.Run(nil, []string{"x"}, s.out))
	s.Equal("Usage: css_bwho <player name or SteamID>", cmd.Usage())
}

func (s *CommandSuite) TestStatusLabels() {
	s.Len(Statuses(), 8)
	s.Equal("invalid_caller", StatusInvalidCaller.String())
	s.Equal("listed", StatusListed.String())
	s.Equal("unknown", Status(42).String())
}

type allowAll struct{}

func (allowAll) IsValidCaller(*roster.Player) bool         { return true }
func (allowAll) HasPrivilege(*roster.Player, string) bool { return true }
