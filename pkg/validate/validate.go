// Package validate lints the data the lookup command runs on: the admin
// files and a roster snapshot. It reports entries that load but behave
// surprisingly (undefined groups, malformed flags, duplicate identities,
// colliding slots), with optional auto-fix for the admin entries.
package validate

import (
	"fmt"
	"sort"

	"github.com/crystal-mush/bwho/pkg/adminconf"
	"github.com/crystal-mush/bwho/pkg/roster"
)

// Category classifies the type of finding.
type Category int

const (
	CatIdentity Category = iota // Admin identities that do not resolve to one player
	CatGroups                   // Group membership problems
	CatFlags                    // Malformed or repeated flags
	CatRoster                   // Roster snapshot anomalies
)

func (c Category) String() string {
	switch c {
	case CatIdentity:
		return "identity"
	case CatGroups:
		return "groups"
	case CatFlags:
		return "flags"
	case CatRoster:
		return "roster"
	default:
		return "unknown"
	}
}

// Severity indicates how serious a finding is.
type Severity int

const (
	SevError   Severity = iota // Loading fails or data is lost
	SevWarning                 // Should be reviewed
	SevInfo                    // Informational only
)

func (s Severity) String() string {
	switch s {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	case SevInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Finding represents a single issue detected in the data.
type Finding struct {
	ID          string   `json:"id"`
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	Subject     string   `json:"subject"` // admin entry name, group name or "slot N"
	Description string   `json:"description"`
	Current     string   `json:"current,omitempty"`
	Proposed    string   `json:"proposed,omitempty"`
	Fixable     bool     `json:"fixable"`
	Fixed       bool     `json:"fixed"`
	fixFunc     func()   // run by ApplyFix
}

// String renders the finding on one line.
func (f Finding) String() string {
	s := fmt.Sprintf("%-7s %-8s %s: %s", f.Severity, f.Category, f.Subject, f.Description)
	if f.Fixed {
		s += " (fixed)"
	}
	return s
}

// Data is what the checkers run against. Either part may be empty.
type Data struct {
	Admins  *adminconf.Document
	Players []roster.Player
}

// Checker is the interface that each validation check implements.
type Checker interface {
	Name() string
	Check(data *Data) []Finding
}

// Validator orchestrates running all checkers against the data.
type Validator struct {
	checkers []Checker
	data     *Data
	findings []Finding
}

// New creates a Validator with all built-in checkers registered.
func New(data *Data) *Validator {
	return &Validator{
		data: data,
		checkers: []Checker{
			&IdentityChecker{},
			&GroupChecker{},
			&FlagChecker{},
			&RosterChecker{},
		},
	}
}

// Run executes all checkers and returns findings ordered by severity, then
// category, then subject.
func (v *Validator) Run() []Finding {
	v.findings = nil
	for _, c := range v.checkers {
		v.findings = append(v.findings, c.Check(v.data)...)
	}
	sort.SliceStable(v.findings, func(i, j int) bool {
		a, b := v.findings[i], v.findings[j]
		if a.Severity != b.Severity {
			return a.Severity < b.Severity
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Subject < b.Subject
	})
	return v.findings
}

// Findings returns the current findings (after Run has been called).
func (v *Validator) Findings() []Finding {
	return v.findings
}

// HasErrors reports whether any finding is an error.
func (v *Validator) HasErrors() bool {
	for _, f := range v.findings {
		if f.Severity == SevError {
			return true
		}
	}
	return false
}

// ApplyFix applies a single fix by finding ID. Returns error if not found or not fixable.
func (v *Validator) ApplyFix(id string) error {
	for i := range v.findings {
		if v.findings[i].ID == id {
			if !v.findings[i].Fixable {
				return fmt.Errorf("finding %s is not fixable", id)
			}
			if v.findings[i].Fixed {
				return fmt.Errorf("finding %s is already fixed", id)
			}
			if v.findings[i].fixFunc != nil {
				v.findings[i].fixFunc()
				v.findings[i].Fixed = true
			}
			return nil
		}
	}
	return fmt.Errorf("finding %s not found", id)
}

// ApplyAll applies every fixable finding. Returns count of fixes applied.
func (v *Validator) ApplyAll() int {
	count := 0
	for i := range v.findings {
		f := &v.findings[i]
		if f.Fixable && !f.Fixed && f.fixFunc != nil {
			f.fixFunc()
			f.Fixed = true
			count++
		}
	}
	return count
}

// Summary returns counts of findings per category.
func (v *Validator) Summary() map[Category]int {
	m := make(map[Category]int)
	for _, f := range v.findings {
		m[f.Category]++
	}
	return m
}

// idSeq hands out finding IDs with a per-checker prefix.
type idSeq struct {
	prefix string
	n      int
}

func (s *idSeq) next() string {
	id := fmt.Sprintf("%s-%d", s.prefix, s.n)
	s.n++
	return id
}

// sortedKeys returns the keys of m in order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
