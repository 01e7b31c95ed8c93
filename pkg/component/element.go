package component

import (
	"html"
	"sort"
	"strings"
)

// Element is a materialized, renderable UI element.
type Element interface {
	// SetAttr sets an attribute on the element.
	SetAttr(name, value string)

	// Attr returns an attribute value.
	Attr(name string) (string, bool)

	// HTML renders the element.
	HTML() string
}

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement Kind = iota // <div>, <user-card>, etc.
	KindText                // Escaped text
	KindRaw                 // Raw HTML (trusted templates only)
)

// Node is the default Element implementation.
type Node struct {
	Kind     Kind
	Tag      string
	Attrs    map[string]string
	Children []*Node
	Text     string
}

// El creates an element node.
func El(tag string, children ...*Node) *Node {
	return &Node{Kind: KindElement, Tag: tag, Children: children}
}

// Text creates an escaped text node.
func Text(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// Raw creates a raw HTML node. The content is emitted without escaping.
func Raw(html string) *Node {
	return &Node{Kind: KindRaw, Text: html}
}

// SetAttr implements Element.
func (n *Node) SetAttr(name, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[name] = value
}

// Attr implements Element.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// HTML implements Element.
func (n *Node) HTML() string {
	var b strings.Builder
	n.render(&b)
	return b.String()
}

func (n *Node) render(b *strings.Builder) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindText:
		b.WriteString(html.EscapeString(n.Text))
		return
	case KindRaw:
		b.WriteString(n.Text)
		return
	}

	b.WriteByte('<')
	b.WriteString(n.Tag)

	// Sorted for deterministic output.
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(html.EscapeString(n.Attrs[k])))
		b.WriteByte('"')
	}
	b.WriteByte('>')

	if voidElements[n.Tag] {
		return
	}
	for _, child := range n.Children {
		child.render(b)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

// attrEscaper keeps line breaks and tabs in attribute values intact through
// an HTML parser.
var attrEscaper = strings.NewReplacer("\n", "&#10;", "\r", "&#13;", "\t", "&#9;")

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}
