// Package errors provides the classified error primitives used across bookbuilder.
//
// Errors carry a category (structure, render, cache, filesystem, ...), a severity and a
// retry strategy so the CLI can decide between printing a diagnostic and failing the build.
// The fluent ErrorBuilder keeps construction uniform:
//
//	err := errors.NewError(errors.CategoryCache, "cached artifact missing").
//		WithRetry(errors.RetryUserAction).
//		WithContext("path", rel).
//		WithCause(ioErr).
//		Build()
//
// Non-fatal errors are grouped into Diagnostics and printed as a count-prefixed list after
// the step that produced them.
package errors
