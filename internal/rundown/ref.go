package rundown

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Kind distinguishes element namespaces.
type Kind int

const (
	// KindInternal elements are stored under the show and addressed by name.
	KindInternal Kind = iota
	// KindExternal elements are numeric references into the external
	// element database, listed in the playlist.
	KindExternal
)

func (k Kind) String() string {
	if k == KindExternal {
		return "external"
	}
	return "internal"
}

// ElementRef identifies an element in either namespace.
type ElementRef struct {
	Kind  Kind
	Name  string
	VCPID int
}

// Internal references a show element by name.
func Internal(name string) ElementRef {
	return ElementRef{Kind: KindInternal, Name: name}
}

// External references a playlist element by VCP id.
func External(vcpid int) ElementRef {
	return ElementRef{Kind: KindExternal, VCPID: vcpid}
}

// ParseRef maps an all-digit string to an external reference and anything
// else to an internal one.
func ParseRef(s string) ElementRef {
	s = strings.TrimSpace(s)
	if isDigits(s) {
		if id, err := strconv.Atoi(s); err == nil {
			return External(id)
		}
	}
	return Internal(s)
}

func (r ElementRef) IsExternal() bool { return r.Kind == KindExternal }

func (r ElementRef) String() string {
	if r.Kind == KindExternal {
		return strconv.Itoa(r.VCPID)
	}
	return r.Name
}

// MarshalJSON renders internal references as strings and external ones as
// numbers, the shape listings have always used.
func (r ElementRef) MarshalJSON() ([]byte, error) {
	if r.Kind == KindExternal {
		return json.Marshal(r.VCPID)
	}
	return json.Marshal(r.Name)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
