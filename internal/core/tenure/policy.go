// Package tenure maps account age to a target role under a threshold policy
// Pure and deterministic: no I/O, no clocks, no logging
package tenure

import (
	"sort"
	"time"

	perr "rankbot/internal/platform/errors"
)

// yearDur is the fixed length of one tenure year.
// 365.25 days keeps whole-year math stable across leap years
const yearDur = time.Duration(365.25 * 24 * float64(time.Hour))

// Threshold grants a role at a minimum whole-year account age
type Threshold struct {
	Role     string // role name as configured
	MinYears int
}

// Policy is the validated, immutable threshold set for one run.
// Thresholds are held sorted by MinYears descending so classification is a
// single forward scan for the highest qualifying role
type Policy struct {
	thresholds []Threshold
	wildcard   string
}

// NewPolicy validates and freezes a threshold set.
// Rejects empty role names, negative years, duplicate year values, and an
// empty wildcard. Input order does not matter
func NewPolicy(thresholds []Threshold, wildcard string) (*Policy, error) {
	if wildcard == "" {
		return nil, perr.Validationf("wildcard role is required")
	}
	seen := make(map[int]string, len(thresholds))
	sorted := make([]Threshold, len(thresholds))
	copy(sorted, thresholds)
	for _, th := range sorted {
		if th.Role == "" {
			return nil, perr.Validationf("threshold with %d years has an empty role", th.MinYears)
		}
		if th.MinYears < 0 {
			return nil, perr.Validationf("role %q has negative minimum years %d", th.Role, th.MinYears)
		}
		if prev, dup := seen[th.MinYears]; dup {
			return nil, perr.Validationf("roles %q and %q share minimum years %d", prev, th.Role, th.MinYears)
		}
		seen[th.MinYears] = th.Role
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinYears > sorted[j].MinYears })
	return &Policy{thresholds: sorted, wildcard: wildcard}, nil
}

// Wildcard returns the fallback role
func (p *Policy) Wildcard() string { return p.wildcard }

// Thresholds returns the thresholds sorted by MinYears descending
func (p *Policy) Thresholds() []Threshold {
	out := make([]Threshold, len(p.thresholds))
	copy(out, p.thresholds)
	return out
}

// Roles returns every role the policy can assign, wildcard included
func (p *Policy) Roles() []string {
	out := make([]string, 0, len(p.thresholds)+1)
	for _, th := range p.thresholds {
		out = append(out, th.Role)
	}
	return append(out, p.wildcard)
}

// Age computes the whole elapsed tenure years between createdAt and now.
// Floor division by the fixed year length, UTC on both sides; never negative
func Age(createdAt, now time.Time) int {
	elapsed := now.UTC().Sub(createdAt.UTC())
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / yearDur)
}

// Classify returns the highest role whose minimum years is at or below the
// account's age, or the wildcard when none qualifies
func (p *Policy) Classify(createdAt, now time.Time) string {
	age := Age(createdAt, now)
	for _, th := range p.thresholds {
		if th.MinYears <= age {
			return th.Role
		}
	}
	return p.wildcard
}
