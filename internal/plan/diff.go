package plan

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Field paths used in FieldChange.Path.
const (
	PathVariantName    = "variantName"
	PathBaseImageRef   = "baseImageRef"
	PathSystemPackages = "installSteps.systemPackages.packages"
	PathManifestPath   = "installSteps.dependencyInstall.manifestPath"
	PathEntrypoint     = "entrypoint"
)

// FieldChange is one structural difference between two plans.
//
// For package list changes Old or New holds the single package string and
// the other side is nil. Entrypoint changes carry the whole []string on both
// sides. Everything else carries strings.
type FieldChange struct {
	Path string
	Kind ChangeKind
	Old  any
	New  any
}

// String renders the change on one line.
func (c FieldChange) String() string {
	switch c.Kind {
	case ChangeAdded:
		return fmt.Sprintf("+ %s: %s", c.Path, formatValue(c.New))
	case ChangeRemoved:
		return fmt.Sprintf("- %s: %s", c.Path, formatValue(c.Old))
	default:
		return fmt.Sprintf("~ %s: %s -> %s", c.Path, formatValue(c.Old), formatValue(c.New))
	}
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "<none>"
	case string:
		return fmt.Sprintf("%q", t)
	case []string:
		quoted := make([]string, len(t))
		for i, s := range t {
			quoted[i] = fmt.Sprintf("%q", s)
		}

		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return fmt.Sprint(t)
	}
}

// Diff yields the differences from a to b in a fixed order: variant name,
// base image, removed packages (in a's order), added packages (in b's
// order), manifest path, entrypoint. The sequence is computed lazily and may
// be ranged over any number of times.
func Diff(a, b BuildPlan) iter.Seq[FieldChange] {
	return diff(a.Clone(), b.Clone(), true)
}

// DiffContent is Diff without the variant name, for comparing what two
// variants build rather than what they are called.
func DiffContent(a, b BuildPlan) iter.Seq[FieldChange] {
	return diff(a.Clone(), b.Clone(), false)
}

// Changes collects a change sequence.
func Changes(seq iter.Seq[FieldChange]) []FieldChange {
	return slices.Collect(seq)
}

func diff(a, b BuildPlan, withName bool) iter.Seq[FieldChange] {
	return func(yield func(FieldChange) bool) {
		if withName && a.VariantName != b.VariantName {
			if !yield(FieldChange{Path: PathVariantName, Kind: ChangeModified, Old: a.VariantName, New: b.VariantName}) {
				return
			}
		}

		if a.BaseImageRef != b.BaseImageRef {
			if !yield(FieldChange{Path: PathBaseImageRef, Kind: ChangeModified, Old: a.BaseImageRef, New: b.BaseImageRef}) {
				return
			}
		}

		if !diffPackages(a.SystemPackages(), b.SystemPackages(), yield) {
			return
		}

		if am, bm := a.ManifestPath(), b.ManifestPath(); am != bm {
			if !yield(FieldChange{Path: PathManifestPath, Kind: ChangeModified, Old: am, New: bm}) {
				return
			}
		}

		if !slices.Equal(a.Entrypoint, b.Entrypoint) {
			yield(FieldChange{Path: PathEntrypoint, Kind: ChangeModified, Old: a.Entrypoint, New: b.Entrypoint})
		}
	}
}

// diffPackages compares package sets. Order-only differences are not reported.
func diffPackages(a, b []string, yield func(FieldChange) bool) bool {
	for _, pkg := range a {
		if !slices.Contains(b, pkg) {
			if !yield(FieldChange{Path: PathSystemPackages, Kind: ChangeRemoved, Old: pkg}) {
				return false
			}
		}
	}

	for _, pkg := range b {
		if !slices.Contains(a, pkg) {
			if !yield(FieldChange{Path: PathSystemPackages, Kind: ChangeAdded, New: pkg}) {
				return false
			}
		}
	}

	return true
}
