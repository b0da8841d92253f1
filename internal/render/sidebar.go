package render

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/bookbuilder/internal/book"
	"git.home.luguber.info/inful/bookbuilder/internal/cache"
)

// SidebarItem is one navigation entry handed to page templates.
type SidebarItem struct {
	Name     string
	URL      string
	Active   bool
	Open     bool
	Depth    int
	Children []SidebarItem
}

// Sidebar is the navigation tree of a book.
type Sidebar struct {
	items     []SidebarItem
	foldLevel *int
}

// BuildSidebar creates the navigation from the document tree. Empty names are replaced by
// the document title; documents that cannot be read are listed under their file name and
// reported.
func BuildSidebar(p *book.Project) (*Sidebar, []error) {
	b := sidebarBuilder{project: p}
	s := &Sidebar{foldLevel: p.Config.FoldLevel}
	if p.Tree == nil {
		return s, nil
	}

	// The root summary is listed first, followed by the root's children at the same depth.
	s.items = append(s.items, b.file(p.Tree.Name, p.Tree.Path, 0))
	for _, child := range p.Tree.Children {
		s.items = append(s.items, b.item(child, 0))
	}
	return s, b.errs
}

type sidebarBuilder struct {
	project *book.Project
	errs    []error
}

func (b *sidebarBuilder) item(n *book.Node, depth int) SidebarItem {
	it := b.file(n.Name, n.Path, depth)
	if !n.IsDir() {
		return it
	}
	it.Children = []SidebarItem{}
	for _, child := range n.Children {
		it.Children = append(it.Children, b.item(child, depth+1))
	}
	return it
}

func (b *sidebarBuilder) file(name, path string, depth int) SidebarItem {
	if name == "" {
		title, err := ReadTitle(path)
		if err != nil {
			b.errs = append(b.errs, err)
		}
		name = title
	}
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	url, err := PageURL(b.project, path)
	if err != nil {
		b.errs = append(b.errs, err)
	}
	return SidebarItem{Name: name, URL: url, Depth: depth}
}

// PageURL returns the published URL of the source document path:
// {base_url}/{relative path with the output extension}.
func PageURL(p *book.Project, path string) (string, error) {
	rel, err := p.Rel(path)
	if err != nil {
		return "", err
	}
	return p.Config.BaseURL + "/" + cache.OutputRel(rel, p.Config.OutputExt), nil
}

// ForURL returns a copy of the items with the entry for url marked active. Items deeper
// than the fold level start closed unless they lead to the active entry.
func (s *Sidebar) ForURL(url string) []SidebarItem {
	out, _ := s.mark(s.items, url)
	return out
}

func (s *Sidebar) mark(items []SidebarItem, url string) ([]SidebarItem, bool) {
	if items == nil {
		return nil, false
	}
	out := make([]SidebarItem, len(items))
	found := false
	for i, it := range items {
		children, below := s.mark(it.Children, url)
		it.Children = children
		it.Active = it.URL == url
		it.Open = s.foldLevel == nil || it.Depth < *s.foldLevel || below
		if it.Active || below {
			found = true
		}
		out[i] = it
	}
	return out, found
}

// Clone deep-copies the sidebar.
func (s *Sidebar) Clone() *Sidebar {
	return &Sidebar{items: copyItems(s.items), foldLevel: s.foldLevel}
}

func copyItems(items []SidebarItem) []SidebarItem {
	if items == nil {
		return nil
	}
	out := make([]SidebarItem, len(items))
	for i, it := range items {
		it.Children = copyItems(it.Children)
		out[i] = it
	}
	return out
}
