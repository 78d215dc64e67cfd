// Package main provides the CLI entrypoint for buildplan.
//
// buildplan resolves declarative build specs into canonical build plans:
//   - Validates runtime version, OS packages, dependency manifest, and entrypoint
//   - Deduplicates packages and orders install steps deterministically
//   - Compares variants field by field and flags drift
//   - Renders Dockerfiles from resolved plans
package main

import (
	"context"
	"os"

	"buildplan/internal/cli"
)

func main() {
	os.Exit(cli.Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
