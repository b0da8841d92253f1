// Package book loads a book project: book.yaml plus the document tree described by
// one index.yaml per source directory.
package book
