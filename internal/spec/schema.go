package spec

// SchemaVersion is the only document version this loader understands.
const SchemaVersion = "1"

// Document is the root of a spec YAML file.
type Document struct {
	// Version of the document schema.
	Version string `yaml:"version,omitempty"`

	// Fields holds the spec of a single-spec document.
	Fields `yaml:",inline"`

	// Defaults are shared by every entry of Variants.
	Defaults *Fields `yaml:"defaults,omitempty"`

	// Variants lists named alternatives built on top of Defaults.
	Variants []Variant `yaml:"variants,omitempty"`
}

// Fields are the BuildSpec fields as they appear in YAML.
type Fields struct {
	// Name of the spec. Required for variants, optional at top level.
	Name string `yaml:"name,omitempty"`

	// RuntimeVersion is the interpreter version, e.g. "3.8.3".
	RuntimeVersion string `yaml:"runtime_version,omitempty"`

	// OSPackages are system packages installed before dependencies.
	OSPackages PackageList `yaml:"os_packages,omitempty"`

	// DependencyManifest is the path of the dependency file (e.g. requirements.txt).
	DependencyManifest string `yaml:"dependency_manifest,omitempty"`

	// Entrypoint is the startup command, either a string or a list.
	Entrypoint StringOrArray `yaml:"entrypoint,omitempty"`
}

// Variant is a named override of the document defaults.
type Variant struct {
	Fields `yaml:",inline"`

	// OSPackagesAdd is appended to the inherited package list.
	OSPackagesAdd []string `yaml:"os_packages_add,omitempty"`

	// OSPackagesRemove is filtered out of the inherited package list.
	OSPackagesRemove []string `yaml:"os_packages_remove,omitempty"`
}

// PackageList is a package list that keeps an explicit empty list apart from
// an absent one. Only nil counts as zero for omitempty, so `os_packages: []`
// survives a Marshal round trip.
type PackageList []string

// IsZero reports whether the list was absent.
func (l PackageList) IsZero() bool {
	return l == nil
}

// StringOrArray accepts either a single string or a list of strings.
type StringOrArray []string

// IsZero reports whether the field was absent, for omitempty.
func (f Fields) IsZero() bool {
	return f.Name == "" && f.RuntimeVersion == "" && f.OSPackages == nil &&
		f.DependencyManifest == "" && f.Entrypoint == nil
}
