package validate

import (
	"fmt"

	"github.com/crystal-mush/bwho/pkg/steamid"
)

// IdentityChecker reports admin entries whose identity is not a SteamID or
// not an individual account, and entries that share one player (they are
// merged on load).
type IdentityChecker struct{}

func (c *IdentityChecker) Name() string { return "identity" }

func (c *IdentityChecker) Check(data *Data) []Finding {
	if data.Admins == nil {
		return nil
	}
	var findings []Finding
	ids := &idSeq{prefix: "identity"}

	owner := make(map[steamid.ID]string)
	for _, name := range sortedKeys(data.Admins.Admins) {
		e := data.Admins.Admins[name]
		id, err := steamid.Parse(e.Identity)
		if err != nil {
			findings = append(findings, Finding{
				ID:          ids.next(),
				Category:    CatIdentity,
				Severity:    SevError,
				Subject:     name,
				Description: "identity is not a SteamID; the admin files will not load",
				Current:     e.Identity,
			})
			continue
		}
		if !id.Valid() {
			findings = append(findings, Finding{
				ID:          ids.next(),
				Category:    CatIdentity,
				Severity:    SevWarning,
				Subject:     name,
				Description: "identity is not an individual account; it never matches a player",
				Current:     e.Identity,
			})
			continue
		}

		if first, ok := owner[id]; ok {
			findings = append(findings, Finding{
				ID:          ids.next(),
				Category:    CatIdentity,
				Severity:    SevWarning,
				Subject:     name,
				Description: fmt.Sprintf("same player as %q (%s); the entries are merged", first, id.SteamID2()),
				Current:     e.Identity,
			})
			continue
		}
		owner[id] = name

		if canon := id.String(); e.Identity != canon {
			findings = append(findings, Finding{
				ID:          ids.next(),
				Category:    CatIdentity,
				Severity:    SevInfo,
				Subject:     name,
				Description: "identity is not in SteamID64 form",
				Current:     e.Identity,
				Proposed:    canon,
				Fixable:     true,
				fixFunc: func() {
					e := data.Admins.Admins[name]
					e.Identity = canon
					data.Admins.Admins[name] = e
				},
			})
		}
	}
	return findings
}
