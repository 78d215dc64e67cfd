package plan

import (
	"fmt"
	"strings"
	"unicode"

	"buildplan/internal/common"
	"buildplan/internal/diagnostic"
	"buildplan/internal/spec"
	"buildplan/internal/version"
)

// Defaults for Config.
const (
	DefaultRepository   = "python"
	DefaultDistribution = "slim-buster"
)

// Config holds the fixed parts of base image derivation.
type Config struct {
	// Repository prefixes the image reference ("python" gives python:3.8.3-slim-buster).
	// Empty yields a bare tag such as 3.8.3-slim-buster.
	Repository string
	// Distribution is the fixed tag suffix appended to the runtime version.
	Distribution string
}

// DefaultConfig returns the default resolution configuration.
func DefaultConfig() Config {
	return Config{
		Repository:   DefaultRepository,
		Distribution: DefaultDistribution,
	}
}

// Resolver turns BuildSpecs into BuildPlans. It holds no mutable state and
// is safe for concurrent use.
type Resolver struct {
	config Config
}

// NewResolver creates a new Resolver. An empty Distribution falls back to DefaultDistribution.
func NewResolver(config Config) *Resolver {
	if config.Distribution == "" {
		config.Distribution = DefaultDistribution
	}

	return &Resolver{config: config}
}

// Config returns the configuration the resolver was built with.
func (r *Resolver) Config() Config {
	return r.config
}

// Resolve resolves s with DefaultConfig.
func Resolve(s spec.BuildSpec) (BuildPlan, error) {
	return NewResolver(DefaultConfig()).Resolve(s)
}

// Resolve validates s and returns its canonical plan.
func (r *Resolver) Resolve(s spec.BuildSpec) (BuildPlan, error) {
	p, _, err := r.ResolveWithDiagnostics(s)
	return p, err
}

// ResolveWithDiagnostics is Resolve plus notes about normalisations applied
// to the input, such as dropped duplicate packages.
func (r *Resolver) ResolveWithDiagnostics(s spec.BuildSpec) (BuildPlan, diagnostic.Diagnostics, error) {
	var diags diagnostic.Diagnostics

	if err := validate(s); err != nil {
		return BuildPlan{}, diags, err
	}

	packages, dropped := common.StableDedup(s.OSPackages)
	for _, pkg := range dropped {
		diags.AddInfo("duplicate_package",
			fmt.Sprintf("package %q declared more than once, keeping first occurrence", pkg),
			s.VariantName, FieldOSPackages)
	}

	steps := make([]InstallStep, 0, 2)
	if !common.IsEmpty(packages) {
		steps = append(steps, InstallStep{Kind: StepSystemPackages, Packages: packages})
	}

	steps = append(steps, InstallStep{Kind: StepDependencyInstall, ManifestPath: s.DependencyManifestPath})

	p := BuildPlan{
		VariantName:  s.VariantName,
		BaseImageRef: r.BaseImageRef(s.RuntimeVersion),
		InstallSteps: steps,
		Entrypoint:   common.Clone(s.Entrypoint),
	}

	if err := p.CheckInvariants(); err != nil {
		return BuildPlan{}, diags, err
	}

	return p, diags, nil
}

// BaseImageRef maps a runtime version to an image reference. It is total
// over all version strings; callers validate the version first.
func (r *Resolver) BaseImageRef(runtimeVersion string) string {
	tag := runtimeVersion + "-" + r.config.Distribution
	if r.config.Repository == "" {
		return tag
	}

	return r.config.Repository + ":" + tag
}

func validate(s spec.BuildSpec) error {
	fail := func(field, rule, detail string) error {
		return &InvalidSpecError{Variant: s.VariantName, Field: field, Rule: rule, Detail: detail}
	}

	if !version.IsValid(s.RuntimeVersion) {
		return fail(FieldRuntimeVersion, RuleSemver, fmt.Sprintf("got %q", s.RuntimeVersion))
	}

	if s.OSPackages == nil {
		return fail(FieldOSPackages, RuleNonNull, "")
	}

	for i, pkg := range s.OSPackages {
		if pkg == "" || strings.IndexFunc(pkg, unicode.IsSpace) >= 0 {
			return fail(FieldOSPackages, RuleNonBlank, fmt.Sprintf("entry %d is %q", i, pkg))
		}
	}

	exe, ok := common.First(s.Entrypoint)
	if !ok {
		return fail(FieldEntrypoint, RuleNonEmpty, "")
	}

	if !isExecutableName(exe) {
		return fail(FieldEntrypoint, RuleExecutable, fmt.Sprintf("got %q", exe))
	}

	if s.DependencyManifestPath == "" {
		return fail(FieldDependencyManifestPath, RuleNonEmpty, "")
	}

	return nil
}

// isExecutableName accepts a bare program name or path: no surrounding
// whitespace, not blank, and not a flag.
func isExecutableName(s string) bool {
	if strings.TrimSpace(s) != s || s == "" {
		return false
	}

	return !strings.HasPrefix(s, "-")
}
