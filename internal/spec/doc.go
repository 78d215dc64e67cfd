// Package spec defines the BuildSpec value and the YAML loader that turns a
// spec document into one BuildSpec per variant.
//
// The loader is structural only. It decodes, applies defaults, and merges
// variant overrides, but leaves every domain rule (version syntax, duplicate
// packages, entrypoint shape) to the resolver in package plan.
//
// # Document Overview
//
// A single-spec document:
//
//	version: "1"
//	name: scanner
//	runtime_version: 3.8.3
//	os_packages: [libpq-dev, gcc]
//	dependency_manifest: requirements.txt
//	entrypoint: [python, main.py]
//
// A multi-variant document shares defaults and overrides a few axes:
//
//	version: "1"
//	defaults:
//	  runtime_version: 3.8.3
//	  os_packages: [libpq-dev, gcc, libxml2-dev, libxslt-dev]
//	  dependency_manifest: requirements.txt
//	  entrypoint: python main.py
//	variants:
//	  - name: full
//	    os_packages_add: [zlib1g-dev]
//	  - name: py312
//	    runtime_version: 3.12.3
//	  - name: lean
//	    os_packages_remove: [gcc]
//
// # Merge Order
//
// For each variant, starting from the defaults:
//  1. Scalar fields (runtime_version, dependency_manifest) replace when set
//  2. os_packages and entrypoint replace when present (an explicit [] clears)
//  3. os_packages_remove filters the inherited list
//  4. os_packages_add appends
package spec
