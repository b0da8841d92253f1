// Package walk renders the documents of a book concurrently.
//
// Documents whose cached output is still valid are read back from the artifact
// mirror; the rest are rendered on a bounded pool of workers, each with its own
// forked Renderer. A failing document never stops the others.
package walk
