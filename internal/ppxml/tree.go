package ppxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
)

// node is a generic element of the decoded document.
type node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
	Nodes   []node     `xml:",any"`
}

func decodeTree(r io.Reader) (*node, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	var root node
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}
	return &root, nil
}

// charsetReader transcodes documents that declare a non UTF-8 encoding.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported xml encoding %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported xml encoding %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

// child returns the first direct child called name.
func (n *node) child(name string) *node {
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == name {
			return &n.Nodes[i]
		}
	}
	return nil
}

// childText returns the trimmed text of the first direct child called name.
func (n *node) childText(name string) string {
	c := n.child(name)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text)
}

func (n *node) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// walk visits n and its descendants in document order. parent is nil for n.
func (n *node) walk(parent *node, visit func(n, parent *node)) {
	visit(n, parent)
	for i := range n.Nodes {
		n.Nodes[i].walk(n, visit)
	}
}

// descendants returns every element below n matching parentName/name in
// document order. An empty parentName matches any parent.
func (n *node) descendants(parentName, name string) []*node {
	var found []*node
	for i := range n.Nodes {
		n.Nodes[i].walk(n, func(c, parent *node) {
			if c.XMLName.Local != name {
				return
			}
			if parentName == "" || parent.XMLName.Local == parentName {
				found = append(found, c)
			}
		})
	}
	return found
}
