// Package perms holds admin records and the rules for turning them into a
// displayable permission set or a yes/no privilege answer.
package perms

import (
	"sort"
	"strings"
)

// FlagSet is one category of permission flags, keyed by domain
// (the "css" in "@css/kick").
type FlagSet struct {
	Domain string
	Flags  []string
}

// AdminRecord is the admin data attached to one player. Flags keeps its
// categories in provider order.
type AdminRecord struct {
	Identity string
	Groups   []string
	Flags    []FlagSet
	Immunity uint
}

// FlagsFromMap converts a domain->flags map into FlagSets ordered by domain.
func FlagsFromMap(m map[string][]string) []FlagSet {
	domains := make([]string, 0, len(m))
	for d := range m {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	sets := make([]FlagSet, 0, len(domains))
	for _, d := range domains {
		sets = append(sets, FlagSet{Domain: d, Flags: m[d]})
	}
	return sets
}

// FlagDomain returns the domain of a flag such as "@css/kick" ("css"), or ""
// when the flag is not in @domain/name form.
func FlagDomain(flag string) string {
	if !strings.HasPrefix(flag, "@") {
		return ""
	}
	rest := flag[1:]
	slash := strings.IndexByte(rest, '/')
	if slash <= 0 {
		return ""
	}
	return rest[:slash]
}

// AddFlags appends flags to the record, placing each one in the FlagSet for
// its domain. Categories are created in first-seen order.
func (r *AdminRecord) AddFlags(flags ...string) {
	for _, f := range flags {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		d := FlagDomain(f)
		idx := -1
		for i := range r.Flags {
			if r.Flags[i].Domain == d {
				idx = i
				break
			}
		}
		if idx < 0 {
			r.Flags = append(r.Flags, FlagSet{Domain: d})
			idx = len(r.Flags) - 1
		}
		r.Flags[idx].Flags = append(r.Flags[idx].Flags, f)
	}
}

// Clone returns a deep copy of r.
func (r *AdminRecord) Clone() *AdminRecord {
	if r == nil {
		return nil
	}
	c := &AdminRecord{
		Identity: r.Identity,
		Groups:   append([]string(nil), r.Groups...),
		Immunity: r.Immunity,
	}
	for _, fs := range r.Flags {
		c.Flags = append(c.Flags, FlagSet{Domain: fs.Domain, Flags: append([]string(nil), fs.Flags...)})
	}
	return c
}
