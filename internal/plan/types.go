package plan

import (
	"fmt"

	"buildplan/internal/common"
)

// BuildPlan is the canonical, ordered output of resolution.
// Values returned by the resolver own their slices; Clone before mutating a
// plan that is shared.
type BuildPlan struct {
	// VariantName is carried over from the spec for reporting.
	VariantName string
	// BaseImageRef is derived from the runtime version and the distribution tag.
	BaseImageRef string
	// InstallSteps run in order; SystemPackages always precedes DependencyInstall.
	InstallSteps []InstallStep
	// Entrypoint is the spec's startup command, unchanged.
	Entrypoint []string
}

// InstallStep is one atomic unit of environment construction.
type InstallStep struct {
	// Kind selects which of the payload fields is meaningful.
	Kind StepKind
	// Packages is set for StepSystemPackages.
	Packages []string
	// ManifestPath is set for StepDependencyInstall.
	ManifestPath string
}

// Step returns the first step of kind k.
func (p BuildPlan) Step(k StepKind) (InstallStep, bool) {
	for _, s := range p.InstallSteps {
		if s.Kind == k {
			return s, true
		}
	}

	return InstallStep{}, false
}

// SystemPackages returns the resolved OS packages, or nil when the plan installs none.
func (p BuildPlan) SystemPackages() []string {
	s, ok := p.Step(StepSystemPackages)
	if !ok {
		return nil
	}

	return s.Packages
}

// ManifestPath returns the dependency manifest of the DependencyInstall step.
func (p BuildPlan) ManifestPath() string {
	s, _ := p.Step(StepDependencyInstall)
	return s.ManifestPath
}

// Clone returns a deep copy of the plan.
func (p BuildPlan) Clone() BuildPlan {
	out := p
	out.Entrypoint = common.Clone(p.Entrypoint)

	if p.InstallSteps != nil {
		out.InstallSteps = make([]InstallStep, len(p.InstallSteps))
		for i, s := range p.InstallSteps {
			s.Packages = common.Clone(s.Packages)
			out.InstallSteps[i] = s
		}
	}

	return out
}

// CheckInvariants verifies the properties every resolved plan must hold.
func (p BuildPlan) CheckInvariants() error {
	if p.BaseImageRef == "" {
		return &AssertionError{Invariant: "baseImageRef is empty"}
	}

	if len(p.Entrypoint) == 0 {
		return &AssertionError{Invariant: "entrypoint is empty"}
	}

	depIdx := -1
	sysIdx := -1

	for i, s := range p.InstallSteps {
		switch s.Kind {
		case StepSystemPackages:
			if sysIdx >= 0 {
				return &AssertionError{Invariant: "more than one SystemPackages step"}
			}

			if len(s.Packages) == 0 {
				return &AssertionError{Invariant: "SystemPackages step without packages"}
			}

			if _, dropped := common.StableDedup(s.Packages); len(dropped) > 0 {
				return &AssertionError{Invariant: fmt.Sprintf("duplicate package %q in SystemPackages", dropped[0])}
			}

			sysIdx = i
		case StepDependencyInstall:
			if depIdx >= 0 {
				return &AssertionError{Invariant: "more than one DependencyInstall step"}
			}

			depIdx = i
		default:
			return &AssertionError{Invariant: fmt.Sprintf("unknown step kind %s at index %d", s.Kind, i)}
		}
	}

	if depIdx < 0 {
		return &AssertionError{Invariant: "missing DependencyInstall step"}
	}

	if sysIdx > depIdx {
		return &AssertionError{Invariant: "SystemPackages placed after DependencyInstall"}
	}

	return nil
}
