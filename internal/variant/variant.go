// Package variant resolves a set of named BuildSpecs and checks that variants
// only differ along the axes their owners intend.
package variant

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"buildplan/internal/diagnostic"
	"buildplan/internal/plan"
	"buildplan/internal/spec"
	"buildplan/internal/version"
)

// Drift diagnostic codes.
const (
	CodeDrift    = "drift"
	CodeExpected = "expected_change"
)

// DefaultAxes are the plan paths variants are expected to differ along.
var DefaultAxes = []string{plan.PathBaseImageRef, plan.PathSystemPackages}

// Entry pairs a spec with its resolved plan.
type Entry struct {
	Spec spec.BuildSpec
	Plan plan.BuildPlan
	// Notes holds what the resolver normalised in Spec.
	Notes diagnostic.Diagnostics
}

// Name returns the variant name.
func (e Entry) Name() string {
	return e.Spec.VariantName
}

// ResolveAll resolves every spec concurrently. Entries come back in input
// order, and the failure of the earliest failing spec is returned so the
// result does not depend on scheduling. A cancelled ctx stops specs that
// have not started yet.
func ResolveAll(ctx context.Context, r *plan.Resolver, specs []spec.BuildSpec) ([]Entry, error) {
	entries := make([]Entry, len(specs))
	errs := make([]error, len(specs))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, s := range specs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return err
			}

			p, notes, err := r.ResolveWithDiagnostics(s)
			if err != nil {
				errs[i] = fmt.Errorf("resolve variant %q: %w", s.VariantName, err)
				return errs[i]
			}

			entries[i] = Entry{Spec: s.Clone(), Plan: p, Notes: notes}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, e := range errs {
			if e != nil {
				return nil, e
			}
		}

		return nil, err
	}

	return entries, nil
}

// Plans returns the plans of entries in order.
func Plans(entries []Entry) []plan.BuildPlan {
	out := make([]plan.BuildPlan, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Plan)
	}

	return out
}

// SortByRuntime orders entries by runtime version, then name. Entries whose
// version does not parse sort last.
func SortByRuntime(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		va, errA := version.Parse(a.Spec.RuntimeVersion)
		vb, errB := version.Parse(b.Spec.RuntimeVersion)

		switch {
		case errA != nil && errB != nil:
		case errA != nil:
			return 1
		case errB != nil:
			return -1
		default:
			if c := version.Compare(va, vb); c != 0 {
				return c
			}
		}

		return strings.Compare(a.Name(), b.Name())
	})
}

// Find returns the entry named name.
func Find(entries []Entry, name string) (Entry, bool) {
	for _, e := range entries {
		if e.Name() == name {
			return e, true
		}
	}

	return Entry{}, false
}

// CheckDrift compares base with other. Changes along an allowed path are
// recorded as infos; anything else is a drift warning. The variant name is
// never considered drift.
func CheckDrift(base, other Entry, allowed []string) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	pair := base.Name() + "->" + other.Name()

	for change := range plan.DiffContent(base.Plan, other.Plan) {
		if slices.Contains(allowed, change.Path) {
			res.AddInfo(CodeExpected, change.String(), pair, change.Path)
			continue
		}

		res.AddWarning(CodeDrift, change.String(), pair, change.Path)
	}

	return res
}

// CheckAll runs CheckDrift of every entry against the first one.
func CheckAll(entries []Entry, allowed []string) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if len(entries) < 2 {
		return res
	}

	for _, e := range entries[1:] {
		res.Merge(*CheckDrift(entries[0], e, allowed))
	}

	return res
}
