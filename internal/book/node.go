package book

// Node is a file or a directory of the document tree.
//
// For a file, Path is the document. For a directory, Path is its summary document and Dir
// the directory itself; Children keep the declaration order of its index.yaml.
type Node struct {
	Name     string
	Path     string
	Dir      string
	Children []*Node
}

// IsDir reports whether n is a directory node.
func (n *Node) IsDir() bool { return n.Dir != "" }

// Walk visits n and its descendants depth-first, parents before children.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
