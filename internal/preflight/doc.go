// Package preflight validates the environment before an index build.
//
// The checks cover:
//   - the source corpus exists and is readable
//   - the output directory is writable
//   - free disk space for the copied corpus and its indexes
//   - the embedder answers
//
// Use the Checker type to run all validations:
//
//	checker := preflight.New()
//	results := checker.RunAll(ctx, preflight.Target{Source: src, OutDir: dir, Embedder: e})
//	if checker.HasCriticalFailures(results) {
//	    return checker.Err(results)
//	}
package preflight
