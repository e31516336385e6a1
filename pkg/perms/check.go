package perms

import (
	"strings"

	"github.com/crystal-mush/bwho/pkg/fold"
)

// HasPermission reports whether rec grants perm.
//
// "#group" requirements need membership of that group. "@domain/name"
// requirements are met by the flag itself or by "@domain/root". Anything else
// must appear verbatim among the flags. Comparison ignores case.
func HasPermission(rec *AdminRecord, perm string) bool {
	perm = strings.TrimSpace(perm)
	if rec == nil || perm == "" {
		return false
	}

	if strings.HasPrefix(perm, "#") {
		for _, g := range rec.Groups {
			if fold.Equal(g, perm) {
				return true
			}
		}
		return false
	}

	domain := FlagDomain(perm)
	root := ""
	if domain != "" {
		root = "@" + domain + "/root"
	}
	for _, fs := range rec.Flags {
		for _, f := range fs.Flags {
			if fold.Equal(f, perm) || (root != "" && fold.Equal(f, root)) {
				return true
			}
		}
	}
	return false
}

