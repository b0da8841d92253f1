// Package site assembles the published site directory after a build: rendered
// outputs, includes, copies and the bundled theme. It then mirrors fresh outputs
// into the build cache and saves the cache index, in that order, so an
// interrupted assembly never records documents as built.
package site
