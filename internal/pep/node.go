package pep

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Attr is a single node attribute. Attribute order is preserved so encoded
// fragments are stable.
type Attr struct {
	Name  string
	Value string
}

// Node is one element of the property tree.
type Node struct {
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// NewNode builds a node from alternating attribute name/value pairs.
func NewNode(tag string, attrs ...string) *Node {
	n := &Node{Tag: tag}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attrs = append(n.Attrs, Attr{Name: attrs[i], Value: attrs[i+1]})
	}
	return n
}

// WithText sets the text content and returns the node.
func (n *Node) WithText(text string) *Node {
	n.Text = text
	return n
}

// Append adds children and returns the node.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Attr returns the named attribute value.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr updates or appends an attribute.
func (n *Node) SetAttr(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// Name returns the node's name attribute.
func (n *Node) Name() string {
	name, _ := n.Attr("name")
	return name
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Tag: n.Tag, Text: n.Text, Attrs: append([]Attr(nil), n.Attrs...)}
	for _, child := range n.Children {
		out.Children = append(out.Children, child.Clone())
	}
	return out
}

// XML encodes the node as an XML fragment.
func (n *Node) XML() string {
	var buf bytes.Buffer
	n.encode(&buf)
	return buf.String()
}

func (n *Node) encode(buf *bytes.Buffer) {
	buf.WriteByte('<')
	buf.WriteString(n.Tag)
	for _, a := range n.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.Name)
		buf.WriteString(`="`)
		_ = xml.EscapeText(buf, []byte(a.Value))
		buf.WriteByte('"')
	}
	if n.Text == "" && len(n.Children) == 0 {
		buf.WriteString("/>")
		return
	}
	buf.WriteByte('>')
	_ = xml.EscapeText(buf, []byte(n.Text))
	for _, child := range n.Children {
		child.encode(buf)
	}
	buf.WriteString("</")
	buf.WriteString(n.Tag)
	buf.WriteByte('>')
}

// ParseFragment decodes a single-rooted XML fragment.
func ParseFragment(fragment string) (*Node, error) {
	dec := xml.NewDecoder(strings.NewReader(fragment))
	var (
		root  *Node
		stack []*Node
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse fragment: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{Tag: t.Name.Local}
			for _, a := range t.Attr {
				node.Attrs = append(node.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("parse fragment: multiple root elements")
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			node := stack[len(stack)-1]
			if strings.TrimSpace(node.Text) == "" {
				node.Text = ""
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}
	if root == nil {
		return nil, errors.New("parse fragment: no root element")
	}
	return root, nil
}
