package validate

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystal-mush/bwho/pkg/adminconf"
	"github.com/crystal-mush/bwho/pkg/roster"
)

func makeTestDoc(t *testing.T, admins, groups string) *adminconf.Document {
	t.Helper()
	doc, err := adminconf.Decode([]byte(admins), []byte(groups))
	require.NoError(t, err)
	return doc
}

func descriptions(findings []Finding) []string {
	var out []string
	for _, f := range findings {
		out = append(out, f.Subject+": "+f.Description)
	}
	return out
}

func TestIdentityChecker(t *testing.T) {
	doc := makeTestDoc(t, `{
		"a": {"identity": "76561197960265731"},
		"b": {"identity": "STEAM_0:1:1"},
		"c": {"identity": "[U:1:4]"},
		"d": {"identity": "nobody"},
		"e": {"identity": "103582791429521412"},
	}`, "")

	findings := (&IdentityChecker{}).Check(&Data{Admins: doc})
	require.Len(t, findings, 4)

	assert.Equal(t, "b", findings[0].Subject)
	assert.Equal(t, SevWarning, findings[0].Severity)
	assert.Contains(t, findings[0].Description, `same player as "a"`)

	assert.Equal(t, "c", findings[1].Subject)
	assert.True(t, findings[1].Fixable)
	assert.Equal(t, "76561197960265732", findings[1].Proposed)

	assert.Equal(t, "d", findings[2].Subject)
	assert.Equal(t, SevError, findings[2].Severity)

	assert.Equal(t, "e", findings[3].Subject)
	assert.Equal(t, SevWarning, findings[3].Severity)
	assert.Contains(t, findings[3].Description, "not an individual account")
}

func TestGroupChecker(t *testing.T) {
	doc := makeTestDoc(t, `{
		"op":  {"identity": "STEAM_0:1:1", "groups": ["#admins", "mods", "#ghosts"]},
	}`, `{
		"#admins": {"flags": ["@css/admin"]},
		"#mods":   {"flags": ["@css/kick"]},
		"helpers": {},
	}`)

	findings := (&GroupChecker{}).Check(&Data{Admins: doc})
	assert.Equal(t, []string{
		"op: member of undefined group mods; it grants no flags",
		"op: member of undefined group #ghosts; it grants no flags",
		"#mods: group has no members",
		"helpers: group name does not start with '#'",
		"helpers: group has no members",
	}, descriptions(findings))

	assert.True(t, findings[0].Fixable)
	assert.Equal(t, "#mods", findings[0].Proposed)
	assert.False(t, findings[1].Fixable)
}

func TestFlagChecker(t *testing.T) {
	doc := makeTestDoc(t, `{
		"op": {"identity": "STEAM_0:1:1", "flags": ["@css/ban", "css/kick", "@CSS/Ban", "@css/"]},
	}`, `{"#g": {"flags": ["root"]}}`)

	findings := (&FlagChecker{}).Check(&Data{Admins: doc})
	assert.Equal(t, []string{
		"op: flag is not of the form @domain/name",
		"op: flag repeats @css/ban",
		"op: flag is not of the form @domain/name",
		"#g: flag is not of the form @domain/name",
	}, descriptions(findings))
	assert.Equal(t, "@CSS/Ban", findings[1].Current)
}

func TestRosterChecker(t *testing.T) {
	players := []roster.Player{
		{Slot: 1, Name: "Alice", SteamID: 111},
		{Slot: 1, Name: "Bob", SteamID: 222},
		{Slot: 2, Name: " ", SteamID: 111},
		{Slot: 3, Name: "Carol"},
	}

	findings := (&RosterChecker{}).Check(&Data{Players: players})
	assert.Equal(t, []string{
		"slot 1: slot already taken by Alice",
		"slot 2: same SteamID as slot 1",
		`slot 2: blank name; listed as "Unknown" when ambiguous`,
		"slot 3: player is not authenticated; profile and permissions show as N/A and None",
	}, descriptions(findings))
}

func TestRosterCheckerDecomposedName(t *testing.T) {
	players := []roster.Player{{Slot: 1, Name: "Ame\u0301lie", SteamID: 76561197960265731}}

	findings := (&RosterChecker{}).Check(&Data{Players: players})
	require.Len(t, findings, 1)
	assert.Equal(t, "Amélie", findings[0].Proposed)
	assert.False(t, findings[0].Fixable)
}

func TestValidatorRunOrdersBySeverity(t *testing.T) {
	doc := makeTestDoc(t, `{
		"bad": {"identity": "x"},
		"op":  {"identity": "[U:1:3]", "flags": ["@css/a", "@css/A"]},
	}`, "")

	v := New(&Data{Admins: doc, Players: []roster.Player{{Slot: 1, Name: "Alice"}}})
	findings := v.Run()
	require.NotEmpty(t, findings)
	assert.Equal(t, SevError, findings[0].Severity)
	assert.True(t, v.HasErrors())
	for i := 1; i < len(findings); i++ {
		assert.LessOrEqual(t, findings[i-1].Severity, findings[i].Severity)
	}
	assert.Equal(t, map[Category]int{CatIdentity: 2, CatFlags: 1, CatRoster: 1}, v.Summary())
}

func TestApplyFixes(t *testing.T) {
	doc := makeTestDoc(t, `{
		"op": {"identity": "STEAM_0:1:1", "groups": ["mods"], "flags": ["@css/ban", "@CSS/BAN"]},
	}`, `{"#mods": {"flags": ["@css/kick"]}}`)

	v := New(&Data{Admins: doc})
	v.Run()
	assert.Equal(t, 3, v.ApplyAll())
	assert.Zero(t, v.ApplyAll())

	op := doc.Admins["op"]
	assert.Equal(t, "76561197960265731", op.Identity)
	assert.Equal(t, []string{"#mods"}, op.Groups)
	assert.Equal(t, []string{"@css/ban"}, op.Flags)

	// Re-running finds nothing left to fix.
	for _, f := range New(&Data{Admins: doc}).Run() {
		assert.False(t, f.Fixable, f.String())
	}
}

func TestApplyFixErrors(t *testing.T) {
	doc := makeTestDoc(t, `{"op": {"identity": "[U:1:3]"}, "bad": {"identity": ""}}`, "")
	v := New(&Data{Admins: doc})
	findings := v.Run()

	var fixable, broken string
	for _, f := range findings {
		if f.Fixable {
			fixable = f.ID
		} else {
			broken = f.ID
		}
	}
	require.NotEmpty(t, fixable)
	require.NotEmpty(t, broken)

	require.NoError(t, v.ApplyFix(fixable))
	assert.Error(t, v.ApplyFix(fixable))
	assert.Error(t, v.ApplyFix(broken))
	assert.Error(t, v.ApplyFix("nope-0"))
}

func TestReport(t *testing.T) {
	doc := makeTestDoc(t, `{"op": {"identity": "[U:1:3]", "groups": ["#x"]}}`, "")
	v := New(&Data{Admins: doc})
	v.Run()
	v.ApplyAll()

	r := GenerateReport(v)
	assert.Equal(t, 2, r.TotalFindings)
	assert.Equal(t, CategorySum{Total: 1, Fixable: 1, Fixed: 1, Label: "Admin Identities"}, r.Categories["identity"])
	assert.Equal(t, CategorySum{Total: 1, Label: "Group Membership"}, r.Categories["groups"])

	var buf bytes.Buffer
	require.NoError(t, r.WriteJSON(&buf))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.EqualValues(t, 2, decoded["total_findings"])

	buf.Reset()
	require.NoError(t, r.WriteText(&buf))
	assert.Contains(t, buf.String(), "(fixed)")
	assert.Contains(t, buf.String(), "2 finding(s)\n")
}
