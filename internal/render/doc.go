// Package render serializes a BuildPlan into a Dockerfile and writes the
// rendered artifacts to disk.
//
// Rendering uses text/template over a small view of the plan. The output is
// a pure function of the plan, so identical plans render byte-identical files.
package render
