package render

import (
	"strings"

	"golang.org/x/net/html"
)

// ExtractTitle returns the text of the first <h1> of an HTML document, falling back
// to its <title>. It returns "" when neither exists.
func ExtractTitle(htmlText string) string {
	doc, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return ""
	}

	var h1, title string
	var find func(*html.Node)
	find = func(n *html.Node) {
		if h1 != "" {
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h1":
				h1 = textContent(n)
				return
			case "title":
				if title == "" {
					title = textContent(n)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)

	if h1 != "" {
		return h1
	}
	return title
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
