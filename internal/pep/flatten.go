package pep

import (
	"strconv"
	"strings"
)

// Entry is the flattened form of a Node: attributes and children are
// addressable by key instead of position.
type Entry struct {
	Name     string
	Tag      string
	Value    string
	Attrs    map[string]string
	Children map[string]*Entry
	Keys     []string
}

// Flatten collapses a node and its descendants into entries.
//
// A child is keyed by its name attribute, else by its tag when no sibling
// shares the tag, else by its position among siblings ("0", "1", ...).
// Unnamed repeated children such as playlist <ref> records therefore key by
// index. A duplicate key falls back to the positional key, prefixed with
// "#" until it no longer collides with an earlier key.
func Flatten(n *Node) *Entry {
	if n == nil {
		return nil
	}
	e := &Entry{
		Tag:   n.Tag,
		Value: strings.TrimSpace(n.Text),
		Attrs: make(map[string]string, len(n.Attrs)),
	}
	for _, a := range n.Attrs {
		e.Attrs[a.Name] = a.Value
	}
	e.Name = n.Name()
	if e.Name == "" {
		e.Name = n.Tag
	}
	if len(n.Children) == 0 {
		return e
	}

	tagCount := make(map[string]int, len(n.Children))
	for _, child := range n.Children {
		tagCount[child.Tag]++
	}
	e.Children = make(map[string]*Entry, len(n.Children))
	for i, child := range n.Children {
		key := child.Name()
		if key == "" && tagCount[child.Tag] == 1 {
			key = child.Tag
		}
		if _, taken := e.Children[key]; key == "" || taken {
			key = strconv.Itoa(i)
			for {
				if _, taken := e.Children[key]; !taken {
					break
				}
				key = "#" + key
			}
		}
		e.Children[key] = Flatten(child)
		e.Keys = append(e.Keys, key)
	}
	return e
}

// Child returns the child stored under key.
func (e *Entry) Child(key string) *Entry {
	if e == nil || e.Children == nil {
		return nil
	}
	return e.Children[key]
}

// Attr returns the attribute stored under key.
func (e *Entry) Attr(key string) (string, bool) {
	if e == nil || e.Attrs == nil {
		return "", false
	}
	v, ok := e.Attrs[key]
	return v, ok
}

// Get returns the attribute stored under key, else the value of the child
// stored under key.
func (e *Entry) Get(key string) string {
	if v, ok := e.Attr(key); ok {
		return v
	}
	if child := e.Child(key); child != nil {
		return child.Value
	}
	return ""
}

// SetAttr records an attribute on the entry.
func (e *Entry) SetAttr(key, value string) {
	if e.Attrs == nil {
		e.Attrs = make(map[string]string)
	}
	e.Attrs[key] = value
}

// ChildKeys returns child keys in document order.
func (e *Entry) ChildKeys() []string {
	if e == nil {
		return nil
	}
	return append([]string(nil), e.Keys...)
}

// Values returns the child values keyed by child key. It is meant for
// entries whose children are leaf data fields.
func (e *Entry) Values() map[string]string {
	if e == nil {
		return nil
	}
	out := make(map[string]string, len(e.Keys))
	for _, key := range e.Keys {
		out[key] = e.Children[key].Value
	}
	return out
}
