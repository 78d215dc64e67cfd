package spec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"buildplan/internal/common"
)

// ParseError reports a document that could not be read or understood at all.
// It never carries a domain rule violation; those come from the resolver.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse spec: %v", e.Err)
	}

	return fmt.Sprintf("parse spec %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LoadFile loads and parses a YAML spec document from the given path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	doc, err := Parse(data)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}

		return nil, err
	}

	return doc, nil
}

// Load reads path and expands it into one BuildSpec per variant.
func Load(path string) ([]BuildSpec, error) {
	doc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	specs, err := doc.Expand()
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	return specs, nil
}

// Parse decodes YAML data into a Document. Unknown keys are rejected.
func Parse(data []byte) (*Document, error) {
	var doc Document

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err := dec.Decode(&doc)
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Err: errors.New("empty document")}
	}

	if err != nil {
		return nil, &ParseError{Err: err}
	}

	applyDefaults(&doc)

	if doc.Version != SchemaVersion {
		return nil, &ParseError{Err: fmt.Errorf("unsupported version %q", doc.Version)}
	}

	return &doc, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(doc *Document) {
	if doc.Version == "" {
		doc.Version = SchemaVersion
	}

	if len(doc.Variants) == 0 && doc.Name == "" {
		doc.Name = DefaultVariantName
	}
}

// Expand merges defaults into each variant and returns the specs in document order.
func (d *Document) Expand() ([]BuildSpec, error) {
	if len(d.Variants) == 0 {
		if d.Defaults != nil {
			return nil, errors.New("defaults declared without variants")
		}

		return []BuildSpec{fieldsToSpec(d.Fields)}, nil
	}

	if !d.Fields.IsZero() {
		return nil, errors.New("top-level spec fields cannot be combined with variants, use defaults")
	}

	base := Fields{}
	if d.Defaults != nil {
		base = *d.Defaults
	}

	seen := make(map[string]int, len(d.Variants))
	specs := make([]BuildSpec, 0, len(d.Variants))

	for i, v := range d.Variants {
		if v.Name == "" {
			return nil, fmt.Errorf("variant %d has no name", i)
		}

		if prev, ok := seen[v.Name]; ok {
			return nil, fmt.Errorf("variant %q declared twice (entries %d and %d)", v.Name, prev, i)
		}

		seen[v.Name] = i

		specs = append(specs, fieldsToSpec(merge(base, v)))
	}

	return specs, nil
}

func merge(base Fields, v Variant) Fields {
	out := Fields{
		Name:               v.Name,
		RuntimeVersion:     base.RuntimeVersion,
		OSPackages:         common.Clone(base.OSPackages),
		DependencyManifest: base.DependencyManifest,
		Entrypoint:         common.Clone(base.Entrypoint),
	}

	if v.RuntimeVersion != "" {
		out.RuntimeVersion = v.RuntimeVersion
	}

	if v.DependencyManifest != "" {
		out.DependencyManifest = v.DependencyManifest
	}

	if v.OSPackages != nil {
		out.OSPackages = common.Clone(v.OSPackages)
	}

	if v.Entrypoint != nil {
		out.Entrypoint = common.Clone(v.Entrypoint)
	}

	if len(v.OSPackagesRemove) > 0 && out.OSPackages != nil {
		out.OSPackages = common.Without(out.OSPackages, PackageList(v.OSPackagesRemove))
	}

	if len(v.OSPackagesAdd) > 0 {
		if out.OSPackages == nil {
			out.OSPackages = []string{}
		}

		out.OSPackages = append(out.OSPackages, v.OSPackagesAdd...)
	}

	return out
}

func fieldsToSpec(f Fields) BuildSpec {
	var entrypoint []string
	if f.Entrypoint != nil {
		entrypoint = append([]string{}, f.Entrypoint...)
	}

	return BuildSpec{
		VariantName:            f.Name,
		RuntimeVersion:         f.RuntimeVersion,
		OSPackages:             common.Clone([]string(f.OSPackages)),
		DependencyManifestPath: f.DependencyManifest,
		Entrypoint:             entrypoint,
	}
}

// Marshal serializes a Document to YAML.
func Marshal(doc *Document) ([]byte, error) {
	return yaml.Marshal(doc)
}

// WriteFile writes a Document to the given path.
func WriteFile(doc *Document, path string) error {
	data, err := Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal spec: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write spec file %s: %w", path, err)
	}

	return nil
}
