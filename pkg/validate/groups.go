package validate

import (
	"slices"
	"strings"
)

// GroupChecker reports memberships of groups that admin_groups.json does not
// define, group names without the '#' prefix, and groups nobody uses.
type GroupChecker struct{}

func (c *GroupChecker) Name() string { return "groups" }

func (c *GroupChecker) Check(data *Data) []Finding {
	if data.Admins == nil {
		return nil
	}
	var findings []Finding
	ids := &idSeq{prefix: "groups"}
	groups := data.Admins.Groups
	used := make(map[string]bool)

	for _, name := range sortedKeys(data.Admins.Admins) {
		for _, g := range data.Admins.Admins[name].Groups {
			used[g] = true
			if _, ok := groups[g]; ok {
				continue
			}
			f := Finding{
				ID:          ids.next(),
				Category:    CatGroups,
				Severity:    SevWarning,
				Subject:     name,
				Description: "member of undefined group " + g + "; it grants no flags",
				Current:     g,
			}
			// A missing '#' is the usual cause; offer the prefixed name when it exists.
			if !strings.HasPrefix(g, "#") {
				if _, ok := groups["#"+g]; ok {
					f.Proposed = "#" + g
					f.Fixable = true
					f.fixFunc = func() { renameGroup(data, name, g, "#"+g) }
				}
			}
			findings = append(findings, f)
		}
	}

	for _, g := range sortedKeys(groups) {
		if !strings.HasPrefix(g, "#") {
			findings = append(findings, Finding{
				ID:          ids.next(),
				Category:    CatGroups,
				Severity:    SevWarning,
				Subject:     g,
				Description: "group name does not start with '#'",
			})
		}
		if !used[g] {
			findings = append(findings, Finding{
				ID:          ids.next(),
				Category:    CatGroups,
				Severity:    SevInfo,
				Subject:     g,
				Description: "group has no members",
			})
		}
	}
	return findings
}

func renameGroup(data *Data, admin, from, to string) {
	e := data.Admins.Admins[admin]
	groups := slices.Clone(e.Groups)
	for i, g := range groups {
		if g == from {
			groups[i] = to
		}
	}
	e.Groups = groups
	data.Admins.Admins[admin] = e
}
