// Package cli implements the resolve and fmt commands: it loads spec files,
// resolves and compares their variants, and prints the results.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"buildplan/internal/diagnostic"
	"buildplan/internal/plan"
	"buildplan/internal/render"
	"buildplan/internal/spec"
	"buildplan/internal/variant"
)

// axisDefault in --allow expands to variant.DefaultAxes.
const axisDefault = "default"

// Run executes args (without the program name) and returns the exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	inv, err := ParseInvocation(args, stderr)
	if err != nil {
		var ie *InvocationError
		if errors.As(err, &ie) {
			if ie.Message != "" {
				fmt.Fprintln(stderr, ie.Message)
			}

			return ie.ExitCode
		}

		fmt.Fprintln(stderr, err)

		return ExitMalformedInput
	}

	return Execute(ctx, inv, stdout, stderr, NewLogger(stderr, inv.Verbose))
}

// NewLogger returns the stderr logger used by the command. Warnings are
// always shown; -v adds info and debug records.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Execute runs a parsed invocation.
func Execute(ctx context.Context, inv Invocation, stdout, stderr io.Writer, logger *slog.Logger) int {
	if inv.Command == CommandFmt {
		if err := runFmt(inv, stdout, logger); err != nil {
			return fail(stderr, err)
		}

		return ExitSuccess
	}

	resolver := plan.NewResolver(plan.Config{Repository: inv.Repository, Distribution: inv.Distribution})

	cfg := resolver.Config()
	logger.Debug("resolver config", "repository", cfg.Repository, "distribution", cfg.Distribution)

	left, err := loadEntries(ctx, resolver, inv.SpecPath, inv, logger)
	if err != nil {
		return fail(stderr, err)
	}

	if inv.ComparePath == "" {
		err = runResolve(inv, left, stdout, logger)
	} else {
		var right []variant.Entry

		right, err = loadEntries(ctx, resolver, inv.ComparePath, inv, logger)
		if err == nil {
			err = runCompare(inv, left, right, stdout, logger)
		}
	}

	if err != nil {
		return fail(stderr, err)
	}

	return ExitSuccess
}

// DriftError is returned under --strict when variants drift.
type DriftError struct {
	Err error
}

func (e *DriftError) Error() string {
	return "drift check failed: " + e.Err.Error()
}

func (e *DriftError) Unwrap() error {
	return e.Err
}

func runFmt(inv Invocation, stdout io.Writer, logger *slog.Logger) error {
	doc, err := spec.LoadFile(inv.SpecPath)
	if err != nil {
		return err
	}

	specs, err := doc.Expand()
	if err != nil {
		return &spec.ParseError{Path: inv.SpecPath, Err: err}
	}

	if inv.Write {
		if err := spec.WriteFile(doc, inv.SpecPath); err != nil {
			return err
		}

		logger.Info("formatted spec", "file", inv.SpecPath, "variants", len(specs))

		return nil
	}

	data, err := spec.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal spec: %w", err)
	}

	_, err = stdout.Write(data)

	return err
}

// isSavedPlan reports whether path holds JSON plans written by --format json.
func isSavedPlan(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func loadSavedPlans(path string) ([]variant.Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &spec.ParseError{Path: path, Err: err}
	}

	plans, err := plan.UnmarshalPlansJSON(raw)
	if err != nil {
		return nil, &spec.ParseError{Path: path, Err: err}
	}

	entries := make([]variant.Entry, 0, len(plans))
	for _, p := range plans {
		entries = append(entries, variant.Entry{Spec: spec.BuildSpec{VariantName: p.VariantName}, Plan: p})
	}

	return entries, nil
}

func loadEntries(
	ctx context.Context,
	resolver *plan.Resolver,
	path string,
	inv Invocation,
	logger *slog.Logger,
) ([]variant.Entry, error) {
	if isSavedPlan(path) {
		entries, err := loadSavedPlans(path)
		if err != nil {
			return nil, err
		}

		if inv.Variant != "" {
			e, ok := variant.Find(entries, inv.Variant)
			if !ok {
				return nil, invalidInvocationf("variant %q not found in %s", inv.Variant, path)
			}

			entries = []variant.Entry{e}
		}

		logger.Debug("loaded saved plans", "file", path, "count", len(entries))

		return entries, nil
	}

	specs, err := spec.Load(path)
	if err != nil {
		return nil, err
	}

	if inv.Variant != "" {
		s, ok := spec.Find(specs, inv.Variant)
		if !ok {
			return nil, invalidInvocationf("variant %q not found in %s (have: %s)",
				inv.Variant, path, strings.Join(spec.Names(specs), ", "))
		}

		specs = []spec.BuildSpec{s}
	}

	entries, err := variant.ResolveAll(ctx, resolver, specs)
	if err != nil {
		return nil, err
	}

	if inv.SortRuntime {
		variant.SortByRuntime(entries)
	}

	for _, e := range entries {
		for _, note := range e.Notes.Infos {
			logger.Info("normalised spec", "file", path, "note", note.String())
		}

		logger.Debug("resolved variant",
			"file", path,
			"variant", e.Name(),
			"baseImage", e.Plan.BaseImageRef,
			"steps", len(e.Plan.InstallSteps),
			"digest", plan.Digest(e.Plan))
	}

	return entries, nil
}

func runResolve(inv Invocation, entries []variant.Entry, stdout io.Writer, logger *slog.Logger) error {
	var drift *diagnostic.Diagnostics
	if inv.CheckDrift {
		drift = variant.CheckAll(entries, expandAxes(inv.Allow))
		logDrift(logger, drift)
	}

	plans := variant.Plans(entries)

	if inv.OutputDir != "" {
		files, err := render.DockerfilesFor(plans, render.DefaultOptions())
		if err != nil {
			return err
		}

		if err := render.WriteFiles(files, inv.OutputDir); err != nil {
			return err
		}

		logger.Info("wrote dockerfiles", "dir", inv.OutputDir, "count", len(files))
	}

	if err := writePlans(stdout, inv.Format, plans); err != nil {
		return err
	}

	return driftFailure(inv, drift)
}

func runCompare(inv Invocation, left, right []variant.Entry, stdout io.Writer, logger *slog.Logger) error {
	pairs := pairEntries(left, right, logger)
	if len(pairs) == 0 {
		return invalidInvocationf("%s and %s share no variant names to compare", inv.SpecPath, inv.ComparePath)
	}

	var drift *diagnostic.Diagnostics
	if inv.CheckDrift {
		drift = &diagnostic.Diagnostics{}
	}

	comparisons := make([]plan.Comparison, 0, len(pairs))
	for _, p := range pairs {
		comparisons = append(comparisons, plan.Comparison{
			From:    label(inv.SpecPath, p[0]),
			To:      label(inv.ComparePath, p[1]),
			Changes: plan.Changes(plan.Diff(p[0].Plan, p[1].Plan)),
		})

		if drift != nil {
			drift.Merge(*variant.CheckDrift(p[0], p[1], expandAxes(inv.Allow)))
		}
	}

	if drift != nil {
		logDrift(logger, drift)
	}

	var err error
	if inv.Format == FormatDockerfile {
		err = writeDockerfileDiffs(stdout, pairs, comparisons)
	} else {
		err = writeComparisons(stdout, inv.Format, comparisons)
	}

	if err != nil {
		return err
	}

	return driftFailure(inv, drift)
}

// pairEntries matches variants by name. Two single-variant files are always
// paired, whatever their names.
func pairEntries(left, right []variant.Entry, logger *slog.Logger) [][2]variant.Entry {
	if len(left) == 1 && len(right) == 1 {
		return [][2]variant.Entry{{left[0], right[0]}}
	}

	var pairs [][2]variant.Entry

	for _, l := range left {
		r, ok := variant.Find(right, l.Name())
		if !ok {
			logger.Warn("variant only in spec", "variant", l.Name())
			continue
		}

		pairs = append(pairs, [2]variant.Entry{l, r})
	}

	for _, r := range right {
		if _, ok := variant.Find(left, r.Name()); !ok {
			logger.Warn("variant only in compared spec", "variant", r.Name())
		}
	}

	return pairs
}

func logDrift(logger *slog.Logger, diags *diagnostic.Diagnostics) {
	for _, d := range diags.All() {
		if d.Code == variant.CodeDrift {
			logger.Warn("variant drift", "pair", d.Variant, "path", d.FieldPath, "change", d.Message)
			continue
		}

		logger.Info("expected variant change", "pair", d.Variant, "path", d.FieldPath, "change", d.Message)
	}

	if diags.HasWarnings() {
		logger.Warn("drift check found unexpected changes", "drift", len(diags.Warnings), "expected", len(diags.Infos))
		return
	}

	logger.Info("drift check passed", "expected", len(diags.Infos))
}

// driftFailure escalates drift warnings to errors under --strict.
func driftFailure(inv Invocation, drift *diagnostic.Diagnostics) error {
	if !inv.Strict || drift == nil {
		return nil
	}

	var failures diagnostic.Diagnostics
	for _, w := range drift.Warnings {
		failures.AddError(w.Code, w.Message, w.Variant, w.FieldPath)
	}

	if failures.IsValid() {
		return nil
	}

	return &DriftError{Err: failures.Error()}
}

func expandAxes(allow []string) []string {
	out := make([]string, 0, len(allow))
	for _, a := range allow {
		if a == axisDefault {
			out = append(out, variant.DefaultAxes...)
			continue
		}

		out = append(out, a)
	}

	return out
}

func label(path string, e variant.Entry) string {
	return filepath.Base(path) + ":" + e.Name()
}

// fail prints err and maps it to an exit code.
func fail(stderr io.Writer, err error) int {
	fmt.Fprintln(stderr, err)

	return exitCode(err)
}

func exitCode(err error) int {
	var (
		ie *InvocationError
		de *DriftError
		pe *spec.ParseError
	)

	switch {
	case errors.As(err, &ie):
		return ie.ExitCode
	case errors.As(err, &de):
		return ExitDrift
	case errors.As(err, &pe):
		return ExitMalformedInput
	case isInvalidSpec(err):
		return ExitInvalidSpec
	default:
		return ExitInternalError
	}
}

func isInvalidSpec(err error) bool {
	_, ok := plan.IsInvalidSpec(err)
	return ok
}
