package pep

import (
	"context"
	"fmt"

	"vizmse/internal/services"
)

// Location positions an inserted fragment relative to the addressed node.
type Location int

const (
	LocationLast Location = iota
	LocationFirst
	LocationBefore
	LocationAfter
)

func (l Location) String() string {
	switch l {
	case LocationFirst:
		return "first"
	case LocationBefore:
		return "before"
	case LocationAfter:
		return "after"
	default:
		return "last"
	}
}

// Result is the reply to a single property-tree request.
type Result struct {
	ID   int64
	Tree *Node
}

// Client is the property-tree protocol surface used by the coordinator.
// Implementations return *InexistentError when the addressed node is absent.
type Client interface {
	// GetJS reads the subtree at path. depth limits how many levels of
	// children are returned; a negative depth returns the full subtree.
	GetJS(ctx context.Context, path string, depth int) (*Result, error)
	Insert(ctx context.Context, path, fragment string, loc Location) (*Result, error)
	Set(ctx context.Context, path, attribute, value string) (*Result, error)
	Replace(ctx context.Context, path, fragment string) (*Result, error)
	Delete(ctx context.Context, path string) (*Result, error)
	Ping(ctx context.Context) error
}

// InexistentError reports a request addressed at a node that does not exist.
type InexistentError struct {
	RequestID int64
	Path      string
}

func (e *InexistentError) Error() string {
	return fmt.Sprintf("inexistent: request %d: %s", e.RequestID, e.Path)
}

// Is lets errors.Is match services.ErrNotFound.
func (e *InexistentError) Is(target error) bool {
	return target == services.ErrNotFound
}
