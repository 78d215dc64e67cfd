// Package plan resolves a BuildSpec into a canonical, immutable BuildPlan and
// compares plans field by field.
//
// Resolution pipeline:
//  1. Validate the spec; the first violated rule is returned as *InvalidSpecError
//  2. Stable-dedup the OS package list (first occurrence wins)
//  3. Derive the base image reference from the runtime version
//  4. Emit install steps: SystemPackages (only when non-empty), then DependencyInstall
//  5. Copy the entrypoint
//  6. Check the plan's own invariants; a failure here is a defect (*AssertionError)
//
// Resolution is pure: no file, network, clock, or shared state is touched, so
// identical specs always resolve to identical plans and any number of
// goroutines may resolve concurrently.
package plan
