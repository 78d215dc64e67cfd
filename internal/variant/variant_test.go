package variant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buildplan/internal/plan"
	"buildplan/internal/spec"
)

const threeVariants = `
version: "1"
defaults:
  runtime_version: 3.8.3
  os_packages: [libpq-dev, gcc, libxml2-dev, libxslt-dev]
  dependency_manifest: requirements.txt
  entrypoint: [python, main.py]
variants:
  - name: a
    os_packages_add: [zlib1g-dev]
  - name: b
    runtime_version: 3.12.3
    os_packages_add: [zlib1g-dev]
  - name: c
`

func loadSpecs(t *testing.T, yaml string) []spec.BuildSpec {
	t.Helper()

	doc, err := spec.Parse([]byte(yaml))
	require.NoError(t, err)

	specs, err := doc.Expand()
	require.NoError(t, err)

	return specs
}

func TestResolveAll_KeepsInputOrder(t *testing.T) {
	specs := loadSpecs(t, threeVariants)

	entries, err := ResolveAll(context.Background(), plan.NewResolver(plan.DefaultConfig()), specs)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "a", entries[0].Name())
	assert.Equal(t, "b", entries[1].Name())
	assert.Equal(t, "c", entries[2].Name())
	assert.Equal(t, "python:3.12.3-slim-buster", entries[1].Plan.BaseImageRef)
	assert.Len(t, Plans(entries), 3)
	assert.Empty(t, entries[0].Notes.Infos)
}

func TestResolveAll_CollectsNotes(t *testing.T) {
	specs := loadSpecs(t, threeVariants)
	specs[2].OSPackages = append(specs[2].OSPackages, "gcc")

	entries, err := ResolveAll(context.Background(), plan.NewResolver(plan.DefaultConfig()), specs)
	require.NoError(t, err)

	require.Len(t, entries[2].Notes.Infos, 1)
	assert.Equal(t, "c", entries[2].Notes.Infos[0].Variant)
	assert.Equal(t, []string{"libpq-dev", "gcc", "libxml2-dev", "libxslt-dev"}, entries[2].Plan.SystemPackages())
}

func TestResolveAll_EarliestFailureWins(t *testing.T) {
	specs := loadSpecs(t, threeVariants)
	specs[1].Entrypoint = []string{}
	specs[2].RuntimeVersion = "3.8"

	_, err := ResolveAll(context.Background(), plan.NewResolver(plan.DefaultConfig()), specs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `resolve variant "b"`)

	ise, ok := plan.IsInvalidSpec(err)
	require.True(t, ok)
	assert.Equal(t, plan.FieldEntrypoint, ise.Field)
	assert.Equal(t, plan.RuleNonEmpty, ise.Rule)
}

func TestResolveAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ResolveAll(ctx, plan.NewResolver(plan.DefaultConfig()), loadSpecs(t, threeVariants))
	require.ErrorIs(t, err, context.Canceled)
}

func TestSortByRuntime(t *testing.T) {
	entries := []Entry{
		{Spec: spec.BuildSpec{VariantName: "z", RuntimeVersion: "3.12.3"}},
		{Spec: spec.BuildSpec{VariantName: "bad", RuntimeVersion: "latest"}},
		{Spec: spec.BuildSpec{VariantName: "b", RuntimeVersion: "3.8.3"}},
		{Spec: spec.BuildSpec{VariantName: "a", RuntimeVersion: "3.8.3"}},
		{Spec: spec.BuildSpec{VariantName: "m", RuntimeVersion: "3.9.0"}},
	}

	SortByRuntime(entries)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	assert.Equal(t, []string{"a", "b", "m", "z", "bad"}, names)
}

func TestCheckDrift_ThreeVariants(t *testing.T) {
	entries, err := ResolveAll(context.Background(), plan.NewResolver(plan.DefaultConfig()), loadSpecs(t, threeVariants))
	require.NoError(t, err)

	a, _ := Find(entries, "a")
	b, _ := Find(entries, "b")
	c, okC := Find(entries, "c")
	require.True(t, okC)

	ab := CheckDrift(a, b, DefaultAxes)
	assert.False(t, ab.HasWarnings())
	require.Len(t, ab.Infos, 1)
	assert.Equal(t, plan.PathBaseImageRef, ab.Infos[0].FieldPath)

	ac := CheckDrift(a, c, []string{plan.PathBaseImageRef})
	require.Len(t, ac.Warnings, 1)
	assert.Equal(t, CodeDrift, ac.Warnings[0].Code)
	assert.Equal(t, "a->c", ac.Warnings[0].Variant)
	assert.Contains(t, ac.Warnings[0].Message, "zlib1g-dev")

	all := CheckAll(entries, []string{plan.PathBaseImageRef})
	assert.Len(t, all.Warnings, 1)
	assert.Len(t, all.Infos, 1)
}

func TestCheckAll_SingleEntry(t *testing.T) {
	assert.True(t, CheckAll([]Entry{{}}, nil).IsValid())
	assert.False(t, CheckAll(nil, nil).HasWarnings())
}
