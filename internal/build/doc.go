// Package build provides the canonical build execution pipeline for bookbuilder.
//
// A build loads the book, snapshots the source tree, renders stale documents,
// assembles the site and saves the cache. The CLI build command, watch mode and
// tests all route through BuildService.
//
// The package also defines sentinel errors naming the stage a hard failure
// happened in. They are wrapped with the underlying cause at the call site.
package build
