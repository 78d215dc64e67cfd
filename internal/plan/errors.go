package plan

import (
	"errors"
	"fmt"
)

// Field names reported by InvalidSpecError.
const (
	FieldRuntimeVersion         = "runtimeVersion"
	FieldOSPackages             = "osPackages"
	FieldEntrypoint             = "entrypoint"
	FieldDependencyManifestPath = "dependencyManifestPath"
)

// Rules reported by InvalidSpecError.
const (
	// RuleSemver requires MAJOR.MINOR.PATCH.
	RuleSemver = "semver"
	// RuleNonNull requires the field to be supplied at all.
	RuleNonNull = "non-null"
	// RuleNonBlank requires every list entry to be a bare, non-blank token.
	RuleNonBlank = "non-blank"
	// RuleNonEmpty requires at least one element or character.
	RuleNonEmpty = "non-empty"
	// RuleExecutable requires the first entrypoint element to name a program.
	RuleExecutable = "executable"
)

// InvalidSpecError is the only failure Resolve returns for bad input.
// Retrying with the same spec fails identically.
type InvalidSpecError struct {
	// Variant is the spec's variant name, if it had one. It is not part of
	// the message; callers that resolve many variants add it when wrapping.
	Variant string
	// Field is the offending BuildSpec field.
	Field string
	// Rule is the violated rule.
	Rule string
	// Detail optionally narrows down the offending value.
	Detail string
}

func (e *InvalidSpecError) Error() string {
	msg := fmt.Sprintf("invalid spec: field %s violates rule %s", e.Field, e.Rule)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}

	return msg
}

// ErrInvariant marks a resolved plan that breaks its own invariants.
var ErrInvariant = errors.New("build plan invariant violated")

// AssertionError reports an internal defect: validation passed but the plan
// is malformed. It is never caused by caller input alone.
type AssertionError struct {
	Invariant string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvariant, e.Invariant)
}

func (e *AssertionError) Unwrap() error {
	return ErrInvariant
}

// IsInvalidSpec reports whether err is an InvalidSpecError and returns it.
func IsInvalidSpec(err error) (*InvalidSpecError, bool) {
	var ise *InvalidSpecError
	if errors.As(err, &ise) {
		return ise, true
	}

	return nil, false
}
