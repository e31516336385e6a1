package validate

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/crystal-mush/bwho/pkg/roster"
)

// RosterChecker reports roster entries that collide or will render oddly.
type RosterChecker struct{}

func (c *RosterChecker) Name() string { return "roster" }

func (c *RosterChecker) Check(data *Data) []Finding {
	var findings []Finding
	ids := &idSeq{prefix: "roster"}

	slots := make(map[int]string)
	steam := make(map[uint64]string)
	for _, p := range data.Players {
		subject := fmt.Sprintf("slot %d", p.Slot)
		if first, ok := slots[p.Slot]; ok {
			findings = append(findings, Finding{
				ID:          ids.next(),
				Category:    CatRoster,
				Severity:    SevError,
				Subject:     subject,
				Description: fmt.Sprintf("slot already taken by %s", first),
				Current:     p.DisplayName(),
			})
		} else {
			slots[p.Slot] = p.DisplayName()
		}

		if p.SteamID != 0 {
			if first, ok := steam[p.SteamID]; ok {
				findings = append(findings, Finding{
					ID:          ids.next(),
					Category:    CatRoster,
					Severity:    SevWarning,
					Subject:     subject,
					Description: fmt.Sprintf("same SteamID as %s", first),
					Current:     fmt.Sprint(p.SteamID),
				})
			} else {
				steam[p.SteamID] = subject
			}
		} else {
			findings = append(findings, Finding{
				ID:          ids.next(),
				Category:    CatRoster,
				Severity:    SevInfo,
				Subject:     subject,
				Description: "player is not authenticated; profile and permissions show as N/A and None",
				Current:     p.DisplayName(),
			})
		}

		if !norm.NFC.IsNormalString(p.Name) {
			findings = append(findings, Finding{
				ID:          ids.next(),
				Category:    CatRoster,
				Severity:    SevInfo,
				Subject:     subject,
				Description: "name is not in NFC form; a typed token may not match it",
				Current:     p.Name,
				Proposed:    norm.NFC.String(p.Name),
			})
		}

		if strings.TrimSpace(p.Name) == "" {
			findings = append(findings, Finding{
				ID:          ids.next(),
				Category:    CatRoster,
				Severity:    SevInfo,
				Subject:     subject,
				Description: fmt.Sprintf("blank name; listed as %q when ambiguous", roster.UnknownName),
			})
		}
	}
	return findings
}
