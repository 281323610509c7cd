package parser

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Tree is one DOM tree. Shadow roots serialized as <template shadowrootmode>
// are detached from it and kept as nested trees keyed by their host, so
// selectors never cross a shadow boundary implicitly. Other templates are
// inert content and dropped.
type Tree struct {
	Doc    *goquery.Document
	hosts  []*html.Node
	nested map[*html.Node]*Tree
}

// ParseTree parses a serialized document snapshot.
func ParseTree(r io.Reader) (*Tree, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return buildTree(root), nil
}

func buildTree(root *html.Node) *Tree {
	t := &Tree{
		Doc:    goquery.NewDocumentFromNode(root),
		nested: map[*html.Node]*Tree{},
	}
	t.detachShadowRoots(root)
	return t
}

func (t *Tree) detachShadowRoots(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case isShadowTemplate(c):
			n.RemoveChild(c)
			if _, exists := t.nested[n]; !exists {
				frag := &html.Node{Type: html.DocumentNode}
				for gc := c.FirstChild; gc != nil; {
					after := gc.NextSibling
					c.RemoveChild(gc)
					frag.AppendChild(gc)
					gc = after
				}
				t.hosts = append(t.hosts, n)
				t.nested[n] = buildTree(frag)
			}
		case isTemplate(c):
			n.RemoveChild(c)
		default:
			t.detachShadowRoots(c)
		}
		c = next
	}
}

func isTemplate(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "template"
}

func isShadowTemplate(n *html.Node) bool {
	if !isTemplate(n) {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == "shadowrootmode" || a.Key == "shadowroot" {
			return true
		}
	}
	return false
}

// ShadowRoots returns the number of nested trees directly under this one.
func (t *Tree) ShadowRoots() int {
	return len(t.hosts)
}

// DeepQuery matches every selector against this tree and, recursively, every
// nested shadow tree. Results keep discovery order and hold each node once.
func (t *Tree) DeepQuery(selectors []string) []*goquery.Selection {
	var out []*goquery.Selection
	t.deepQuery(selectors, map[*html.Node]struct{}{}, &out)
	return out
}

func (t *Tree) deepQuery(selectors []string, seen map[*html.Node]struct{}, out *[]*goquery.Selection) {
	for _, sel := range selectors {
		t.Doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			node := s.Get(0)
			if _, dup := seen[node]; dup {
				return
			}
			seen[node] = struct{}{}
			*out = append(*out, s)
		})
	}
	for _, host := range t.hosts {
		t.nested[host].deepQuery(selectors, seen, out)
	}
}
