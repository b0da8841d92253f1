package walk

import "git.home.luguber.info/inful/bookbuilder/internal/book"

// Flatten lists every document of the project in build order: depth-first over the
// tree (a directory's summary before its children), then the convert-only documents.
// A path that appears more than once is kept at its first position.
func Flatten(p *book.Project) []string {
	seen := make(map[string]struct{})
	var paths []string
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}
	if p.Tree != nil {
		p.Tree.Walk(func(n *book.Node) { add(n.Path) })
	}
	for _, path := range p.ConvertPaths() {
		add(path)
	}
	return paths
}
