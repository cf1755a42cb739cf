// Package build provides the canonical build execution pipeline for the
// style guide builder.
//
// A build resets the template registry, loads the style guide, compiles the
// page templates, resolves every section's templates, assembles pages and
// finally renders and writes each page. All execution paths (the one-shot
// CLI build, the watch loop, tests) route through BuildService.
package build
