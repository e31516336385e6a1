package whois

import (
	"strings"

	"github.com/crystal-mush/bwho/pkg/perms"
	"github.com/crystal-mush/bwho/pkg/roster"
)

// NotAvailable renders a missing profile link or address.
const NotAvailable = "N/A"

// Match is a resolved player together with its derived display fields.
type Match struct {
	Player      roster.Player
	Permissions []string
	Profile     string
}

// NewMatch derives the permission set and profile link for p.
func NewMatch(p roster.Player, admin *perms.AdminRecord) Match {
	profile := NotAvailable
	if p.Authenticated() {
		profile = p.ProfileURL()
	}
	return Match{
		Player:      p,
		Permissions: perms.Aggregate(admin),
		Profile:     profile,
	}
}

// Format renders m as "name | profile | address | permissions". The name is
// used verbatim, even when blank.
func Format(m Match) string {
	addr := m.Player.Address
	if strings.TrimSpace(addr) == "" {
		addr = NotAvailable
	}
	permText := "None"
	if len(m.Permissions) > 0 {
		permText = strings.Join(m.Permissions, ", ")
	}
	profile := m.Profile
	if profile == "" {
		profile = NotAvailable
	}
	return m.Player.Name + " | " + profile + " | " + addr + " | " + permText
}
