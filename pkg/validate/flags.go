package validate

import (
	"fmt"
	"strings"

	"github.com/crystal-mush/bwho/pkg/fold"
)

// FlagChecker reports flags that are not of the form @domain/name and flags
// an entry lists twice (ignoring case).
type FlagChecker struct{}

func (c *FlagChecker) Name() string { return "flags" }

func (c *FlagChecker) Check(data *Data) []Finding {
	if data.Admins == nil {
		return nil
	}
	var findings []Finding
	ids := &idSeq{prefix: "flags"}

	for _, name := range sortedKeys(data.Admins.Admins) {
		flags := data.Admins.Admins[name].Flags
		seen := make(map[string]string)
		for _, f := range flags {
			if !wellFormed(f) {
				findings = append(findings, Finding{
					ID:          ids.next(),
					Category:    CatFlags,
					Severity:    SevWarning,
					Subject:     name,
					Description: "flag is not of the form @domain/name",
					Current:     f,
				})
			}
			key := fold.Key(f)
			if first, ok := seen[key]; ok {
				findings = append(findings, Finding{
					ID:          ids.next(),
					Category:    CatFlags,
					Severity:    SevInfo,
					Subject:     name,
					Description: fmt.Sprintf("flag repeats %s", first),
					Current:     f,
					Fixable:     true,
					fixFunc:     func() { dropRepeatedFlags(data, name) },
				})
				continue
			}
			seen[key] = f
		}
	}

	for _, g := range sortedKeys(data.Admins.Groups) {
		for _, f := range data.Admins.Groups[g].Flags {
			if !wellFormed(f) {
				findings = append(findings, Finding{
					ID:          ids.next(),
					Category:    CatFlags,
					Severity:    SevWarning,
					Subject:     g,
					Description: "flag is not of the form @domain/name",
					Current:     f,
				})
			}
		}
	}
	return findings
}

func wellFormed(flag string) bool {
	rest, ok := strings.CutPrefix(flag, "@")
	if !ok {
		return false
	}
	domain, name, ok := strings.Cut(rest, "/")
	return ok && domain != "" && name != "" && !strings.ContainsAny(flag, " \t")
}

// dropRepeatedFlags keeps the first spelling of each flag. Running it more
// than once is harmless.
func dropRepeatedFlags(data *Data, admin string) {
	e := data.Admins.Admins[admin]
	seen := make(map[string]bool)
	var kept []string
	for _, f := range e.Flags {
		key := fold.Key(f)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, f)
	}
	e.Flags = kept
	data.Admins.Admins[admin] = e
}
