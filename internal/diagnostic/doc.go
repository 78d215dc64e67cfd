// Package diagnostic provides coded errors, warnings, and infos produced
// while resolving and comparing build plans.
//
// Key capabilities:
//   - Notes about input the resolver normalised (dropped duplicate packages)
//   - Drift reports when two variants differ outside their intended axes
//   - Compact one-line formatting for CLI output
package diagnostic
