package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const variantsSpec = `
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

func writeSpec(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer

	code := Run(context.Background(), args, &stdout, &stderr)

	return code, stdout.String(), stderr.String()
}

func TestRun_ResolveSingleVariantYAML(t *testing.T) {
	path := writeSpec(t, "spec.yaml", variantsSpec)

	code, stdout, stderr := run("resolve", "--spec", path, "--variant", "c")
	require.Equal(t, ExitSuccess, code, stderr)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "c", got["variantName"])
	assert.Equal(t, "python:3.8.3-slim-buster", got["baseImageRef"])
}

func TestRun_ResolveAllVariantsJSON(t *testing.T) {
	path := writeSpec(t, "spec.yaml", variantsSpec)

	code, stdout, stderr := run("resolve", "--spec", path, "--format", "json")
	require.Equal(t, ExitSuccess, code, stderr)

	var got []struct {
		VariantName  string `json:"variantName"`
		BaseImageRef string `json:"baseImageRef"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "python:3.12.3-slim-buster", got[1].BaseImageRef)
}

func TestRun_StableOutput(t *testing.T) {
	path := writeSpec(t, "spec.yaml", variantsSpec)

	_, first, _ := run("resolve", "--spec", path)
	_, second, _ := run("resolve", "--spec", path)

	assert.Equal(t, first, second)
}

func TestRun_InvalidSpecExitsOne(t *testing.T) {
	path := writeSpec(t, "spec.yaml", `
runtime_version: 3.8.3
os_packages: [gcc]
dependency_manifest: requirements.txt
entrypoint: []
`)

	code, stdout, stderr := run("resolve", "--spec", path)
	assert.Equal(t, ExitInvalidSpec, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "entrypoint")
	assert.Contains(t, stderr, "non-empty")
}

func TestRun_MalformedInputExitsTwo(t *testing.T) {
	path := writeSpec(t, "spec.yaml", "variants: [\n")

	code, _, stderr := run("resolve", "--spec", path)
	assert.Equal(t, ExitMalformedInput, code)
	assert.Contains(t, stderr, "parse spec")
}

func TestRun_MissingFileExitsTwo(t *testing.T) {
	code, _, _ := run("resolve", "--spec", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Equal(t, ExitMalformedInput, code)
}

func TestRun_InvocationErrors(t *testing.T) {
	path := writeSpec(t, "spec.yaml", variantsSpec)

	tests := map[string][]string{
		"no command":      {},
		"unknown command": {"build"},
		"missing spec":    {"resolve"},
		"bad format":      {"resolve", "--spec", path, "--format", "xml"},
		"text no compare": {"resolve", "--spec", path, "--format", "text"},
		"unknown variant": {"resolve", "--spec", path, "--variant", "nope"},
		"positional":      {"resolve", "--spec", path, "extra"},
		"unknown flag":    {"resolve", "--spec", path, "--nope"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			code, _, stderr := run(args...)
			assert.Equal(t, ExitMalformedInput, code, stderr)
			assert.NotEmpty(t, stderr)
		})
	}
}

func TestRun_Help(t *testing.T) {
	code, _, stderr := run("resolve", "-h")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stderr, "buildplan resolve --spec")
}

func TestRun_HelpCommand(t *testing.T) {
	code, stdout, stderr := run("help")
	assert.Equal(t, ExitSuccess, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "-spec")
}

func TestRun_CompareSingleSpecs(t *testing.T) {
	full := writeSpec(t, "full.yaml", `
name: a
runtime_version: 3.8.3
os_packages: [libpq-dev, gcc, libxml2-dev, libxslt-dev, zlib1g-dev]
dependency_manifest: requirements.txt
entrypoint: [python, main.py]
`)
	lean := writeSpec(t, "lean.yaml", `
name: a
runtime_version: 3.8.3
os_packages: [libpq-dev, gcc, libxml2-dev, libxslt-dev]
dependency_manifest: requirements.txt
entrypoint: [python, main.py]
`)

	code, stdout, stderr := run("resolve", "--spec", full, "--compare", lean)
	require.Equal(t, ExitSuccess, code, stderr)

	assert.Equal(t, "=== full.yaml:a -> lean.yaml:a ===\n"+
		"  - installSteps.systemPackages.packages: \"zlib1g-dev\"\n"+
		"1 change(s)\n", stdout)
}

func TestRun_CompareByVariantNameJSON(t *testing.T) {
	left := writeSpec(t, "left.yaml", variantsSpec)
	right := writeSpec(t, "right.yaml", strings.Replace(variantsSpec, "runtime_version: 3.12.3", "runtime_version: 3.12.4", 1))

	code, stdout, stderr := run("resolve", "--spec", left, "--compare", right, "--format", "json")
	require.Equal(t, ExitSuccess, code, stderr)

	var got []struct {
		From    string           `json:"from"`
		Changes []map[string]any `json:"changes"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got, 3)

	assert.Empty(t, got[0].Changes)
	require.Len(t, got[1].Changes, 1)
	assert.Equal(t, "baseImageRef", got[1].Changes[0]["path"])
	assert.Equal(t, "python:3.12.4-slim-buster", got[1].Changes[0]["new"])
}

func TestRun_CompareInvalidSideExitsOne(t *testing.T) {
	left := writeSpec(t, "left.yaml", variantsSpec)
	right := writeSpec(t, "right.yaml", strings.Replace(variantsSpec, "runtime_version: 3.12.3", "runtime_version: latest", 1))

	code, _, stderr := run("resolve", "--spec", left, "--compare", right)
	assert.Equal(t, ExitInvalidSpec, code)
	assert.Contains(t, stderr, `resolve variant "b"`)
	assert.Contains(t, stderr, "runtimeVersion")
	assert.Contains(t, stderr, "semver")
}

func TestRun_CompareDockerfileDiff(t *testing.T) {
	left := writeSpec(t, "left.yaml", variantsSpec)
	right := writeSpec(t, "right.yaml", variantsSpec)

	code, stdout, stderr := run("resolve", "--spec", left, "--compare", right, "--variant", "a", "--format", "dockerfile")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "=== left.yaml:a -> right.yaml:a ===\nno differences\n", stdout)
}

func TestRun_DriftWarnings(t *testing.T) {
	path := writeSpec(t, "spec.yaml", variantsSpec)

	code, _, stderr := run("resolve", "--spec", path, "--allow", "baseImageRef")
	require.Equal(t, ExitSuccess, code)

	assert.Contains(t, stderr, "variant drift")
	assert.Contains(t, stderr, "pair=a->c")
	assert.NotContains(t, stderr, "pair=a->b")
}

func TestRun_DriftDefaultAxesQuiet(t *testing.T) {
	path := writeSpec(t, "spec.yaml", variantsSpec)

	code, _, stderr := run("resolve", "--spec", path, "--allow", "default")
	require.Equal(t, ExitSuccess, code)
	assert.NotContains(t, stderr, "variant drift")
}

func TestRun_WritesDockerfiles(t *testing.T) {
	path := writeSpec(t, "spec.yaml", variantsSpec)
	out := filepath.Join(t.TempDir(), "docker")

	code, _, stderr := run("resolve", "--spec", path, "--out", out, "-v")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stderr, "wrote dockerfiles")
	assert.Contains(t, stderr, "resolved variant")

	for _, name := range []string{"Dockerfile.a", "Dockerfile.b", "Dockerfile.c"} {
		content, err := os.ReadFile(filepath.Join(out, name))
		require.NoError(t, err)
		assert.Contains(t, string(content), "FROM python:")
	}
}

func TestRun_DockerfileAndDumpFormats(t *testing.T) {
	path := writeSpec(t, "spec.yaml", variantsSpec)

	code, stdout, _ := run("resolve", "--spec", path, "--variant", "b", "--format", "dockerfile")
	require.Equal(t, ExitSuccess, code)
	assert.True(t, strings.HasPrefix(stdout, "# syntax=docker/dockerfile:1\n# variant: b\nFROM python:3.12.3-slim-buster\n"))

	code, stdout, _ = run("resolve", "--spec", path, "--format", "dockerfile")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "=== Dockerfile.c ===\n")

	code, stdout, _ = run("resolve", "--spec", path, "--variant", "a", "--format", "dump")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "BaseImageRef: (string)")
}

func TestRun_CustomDistribution(t *testing.T) {
	path := writeSpec(t, "spec.yaml", variantsSpec)

	code, stdout, _ := run("resolve", "--spec", path, "--variant", "a", "--distribution", "bookworm", "--repository", "")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "baseImageRef: 3.8.3-bookworm")
}

func TestRun_NormalisationNotesNeedVerbose(t *testing.T) {
	path := writeSpec(t, "spec.yaml", `
runtime_version: 3.8.3
os_packages: [gcc, gcc]
dependency_manifest: requirements.txt
entrypoint: python main.py
`)

	code, _, stderr := run("resolve", "--spec", path)
	require.Equal(t, ExitSuccess, code)
	assert.Empty(t, stderr)

	code, _, stderr = run("resolve", "--spec", path, "-v")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stderr, "duplicate_package")
}

func TestRun_SortByRuntime(t *testing.T) {
	path := writeSpec(t, "spec.yaml", variantsSpec)

	code, stdout, stderr := run("resolve", "--spec", path, "--sort")
	require.Equal(t, ExitSuccess, code, stderr)

	var plans []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &plans))

	names := make([]any, 0, len(plans))
	for _, p := range plans {
		names = append(names, p["variantName"])
	}

	assert.Equal(t, []any{"a", "c", "b"}, names)
}

func TestRun_StrictFailsOnDrift(t *testing.T) {
	path := writeSpec(t, "spec.yaml", variantsSpec)

	code, stdout, stderr := run("resolve", "--spec", path, "--allow", "baseImageRef", "--strict")
	assert.Equal(t, ExitDrift, code)
	assert.Contains(t, stdout, "variantName: c")
	assert.Contains(t, stderr, "drift check failed")
	assert.Contains(t, stderr, "[a->c] installSteps.systemPackages.packages: [drift]")
}

func TestRun_StrictDefaultAxesPass(t *testing.T) {
	path := writeSpec(t, "spec.yaml", variantsSpec)

	code, _, stderr := run("resolve", "--spec", path, "--strict")
	assert.Equal(t, ExitSuccess, code, stderr)
	assert.NotContains(t, stderr, "drift check")
}

func TestRun_CompareStrict(t *testing.T) {
	left := writeSpec(t, "left.yaml", `
runtime_version: 3.8.3
os_packages: [gcc, zlib1g-dev]
dependency_manifest: requirements.txt
entrypoint: [python, main.py]
`)
	right := writeSpec(t, "right.yaml", `
runtime_version: 3.8.3
os_packages: [gcc]
dependency_manifest: requirements.txt
entrypoint: [python, main.py]
`)

	code, stdout, _ := run("resolve", "--spec", left, "--compare", right, "--allow", "baseImageRef", "--strict")
	assert.Equal(t, ExitDrift, code)
	assert.Contains(t, stdout, "1 change(s)")
}

func TestRun_CompareAgainstSavedPlans(t *testing.T) {
	path := writeSpec(t, "spec.yaml", variantsSpec)

	code, saved, stderr := run("resolve", "--spec", path, "--format", "json")
	require.Equal(t, ExitSuccess, code, stderr)

	plans := filepath.Join(t.TempDir(), "plans.json")
	require.NoError(t, os.WriteFile(plans, []byte(saved), 0o644))

	code, stdout, stderr := run("resolve", "--spec", plans, "--compare", path)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, 3, strings.Count(stdout, "no differences"))
	assert.Contains(t, stdout, "=== plans.json:b -> spec.yaml:b ===")

	code, stdout, stderr = run("resolve", "--spec", plans, "--variant", "b", "--format", "dockerfile")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "FROM python:3.12.3-slim-buster")
}

func TestRun_BrokenSavedPlanExitsTwo(t *testing.T) {
	plans := writeSpec(t, "plans.json", `{"baseImageRef":"python:3.8.3-slim-buster","installSteps":[],"entrypoint":[]}`)

	code, _, stderr := run("resolve", "--spec", plans)
	assert.Equal(t, ExitMalformedInput, code)
	assert.Contains(t, stderr, "plans.json")
}

func TestRun_RemoveWithoutInheritedPackagesExitsOne(t *testing.T) {
	path := writeSpec(t, "spec.yaml", `
defaults:
  runtime_version: 3.8.3
  dependency_manifest: requirements.txt
  entrypoint: [python, main.py]
variants:
  - name: lean
    os_packages_remove: [gcc]
`)

	code, _, stderr := run("resolve", "--spec", path)
	assert.Equal(t, ExitInvalidSpec, code)
	assert.Contains(t, stderr, "non-null")
}

func TestRun_FmtPrintsCanonicalDocument(t *testing.T) {
	path := writeSpec(t, "spec.yaml", `
runtime_version: 3.8.3
os_packages: []
dependency_manifest: requirements.txt
entrypoint: python main.py
`)

	code, stdout, stderr := run("fmt", "--spec", path)
	require.Equal(t, ExitSuccess, code, stderr)

	assert.Contains(t, stdout, `version: "1"`)
	assert.Contains(t, stdout, "name: default")
	assert.Contains(t, stdout, "os_packages: []")
	assert.Contains(t, stdout, "- main.py")
}

func TestRun_FmtWritesInPlace(t *testing.T) {
	path := writeSpec(t, "spec.yaml", variantsSpec)

	code, before, stderr := run("resolve", "--spec", path, "--format", "json")
	require.Equal(t, ExitSuccess, code, stderr)

	code, stdout, stderr := run("fmt", "--spec", path, "-w")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Empty(t, stdout)

	code, after, stderr := run("resolve", "--spec", path, "--format", "json")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, before, after)
}

func TestRun_FmtRejectsStructuralErrors(t *testing.T) {
	path := writeSpec(t, "spec.yaml", `
defaults:
  runtime_version: 3.8.3
`)

	code, _, stderr := run("fmt", "--spec", path)
	assert.Equal(t, ExitMalformedInput, code)
	assert.Contains(t, stderr, "defaults declared without variants")

	code, _, _ = run("fmt")
	assert.Equal(t, ExitMalformedInput, code)
}
