package spec

import "buildplan/internal/common"

// DefaultVariantName names the spec of a document that declares no variants.
const DefaultVariantName = "default"

// BuildSpec is the declarative, pre-validation description of one environment.
type BuildSpec struct {
	// VariantName distinguishes alternative specs of the same document.
	VariantName string
	// RuntimeVersion is the interpreter version tag, e.g. "3.8.3".
	RuntimeVersion string
	// OSPackages lists system-level packages in declaration order.
	// Nil means the field was never supplied; an empty slice means none.
	OSPackages []string
	// DependencyManifestPath points at the language-level dependency file.
	// It is passed through, never opened.
	DependencyManifestPath string
	// Entrypoint is the startup command.
	Entrypoint []string
}

// Clone returns a deep copy so callers can mutate the result freely.
func (s BuildSpec) Clone() BuildSpec {
	s.OSPackages = common.Clone(s.OSPackages)
	s.Entrypoint = common.Clone(s.Entrypoint)

	return s
}

// Find returns the spec named name.
func Find(specs []BuildSpec, name string) (BuildSpec, bool) {
	for _, s := range specs {
		if s.VariantName == name {
			return s.Clone(), true
		}
	}

	return BuildSpec{}, false
}

// Names returns the variant names in document order.
func Names(specs []BuildSpec) []string {
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.VariantName)
	}

	return names
}
