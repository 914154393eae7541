package wikipedia

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// parseDisambiguation lists the text of the first link inside every list
// item of a rendered disambiguation page, untrimmed and in page order.
// Table-of-contents items and items without a link are skipped.
func parseDisambiguation(fragment string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var options []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Li && !isTOCSection(n) {
			if a := firstDescendant(n, atom.A); a != nil {
				options = append(options, textContent(a))
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return options, nil
}

func isTOCSection(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			return strings.Contains(strings.Join(strings.Fields(attr.Val), ""), "tocsection")
		}
	}
	return false
}

func firstDescendant(n *html.Node, a atom.Atom) *html.Node {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.DataAtom == a {
			return child
		}
		if found := firstDescendant(child, a); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	collect(n)
	return b.String()
}
