package transfermarkt

import (
	"strings"

	"github.com/valyala/bytebufferpool"
	"golang.org/x/net/html"
)

func attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func isElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

// findAll walks the subtree depth first and collects nodes matching pred. It does not
// descend into matches.
func findAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if pred(c) {
				out = append(out, c)
				continue
			}
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

func findFirst(root *html.Node, pred func(*html.Node) bool) *html.Node {
	if found := findAll(root, pred); len(found) > 0 {
		return found[0]
	}
	return nil
}

func byTagClass(tag, class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return isElement(n, tag) && (class == "" || hasClass(n, class))
	}
}

func children(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, tag) {
			out = append(out, c)
		}
	}
	return out
}

// text returns the node's text content with whitespace runs collapsed.
func text(n *html.Node) string {
	if n == nil {
		return ""
	}
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			_, _ = buf.WriteString(node.Data)
			_ = buf.WriteByte(' ')
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}
