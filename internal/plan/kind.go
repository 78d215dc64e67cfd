package plan

//go:generate go tool stringer -type=StepKind,ChangeKind -linecomment -output=kind_string.go

// StepKind tags an InstallStep.
type StepKind int

const (
	_ StepKind = iota // zero value is invalid

	// StepSystemPackages installs OS-level packages.
	StepSystemPackages // SystemPackages
	// StepDependencyInstall installs language-level dependencies from a manifest.
	StepDependencyInstall // DependencyInstall
)

// ChangeKind classifies a FieldChange.
type ChangeKind int

const (
	_ ChangeKind = iota

	ChangeAdded    // added
	ChangeRemoved  // removed
	ChangeModified // modified
)

func parseStepKind(s string) (StepKind, bool) {
	for k := StepSystemPackages; k <= StepDependencyInstall; k++ {
		if k.String() == s {
			return k, true
		}
	}

	return 0, false
}
