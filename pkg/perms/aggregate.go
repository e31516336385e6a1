package perms

import (
	"slices"

	"github.com/crystal-mush/bwho/pkg/fold"
)

// Aggregate returns the effective permission set of an admin record: every
// group name and every flag of every category, de-duplicated ignoring case
// (first spelling seen wins, groups before flags) and sorted ignoring case.
// A nil record has no permissions.
func Aggregate(rec *AdminRecord) []string {
	if rec == nil {
		return nil
	}

	seen := make(map[string]string)
	add := func(v string) {
		k := fold.Key(v)
		if _, ok := seen[k]; !ok {
			seen[k] = v
		}
	}

	for _, g := range rec.Groups {
		add(g)
	}
	for _, fs := range rec.Flags {
		for _, f := range fs.Flags {
			add(f)
		}
	}

	out := make([]string, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	slices.SortFunc(out, fold.Compare)
	return out
}
