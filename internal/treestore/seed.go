package treestore

import (
	"context"
	"database/sql"
	"strings"

	"vizmse/internal/logging"
	"vizmse/internal/pep"
	"vizmse/internal/services"
)

// Seed creates the container at path, along with any missing ancestors, and
// appends fragment to it as the last child. An empty fragment only creates
// the containers.
//
// Missing segments that are valid XML names become elements of that tag;
// anything else (braced identifiers, numbers) becomes <entry name="seg">.
func (s *Store) Seed(ctx context.Context, path, fragment string) (*pep.Result, error) {
	reqID := s.requestID()
	var node *pep.Node
	if strings.TrimSpace(fragment) != "" {
		parsed, err := pep.ParseFragment(fragment)
		if err != nil {
			return nil, services.Wrap(services.ErrUsage, "treestore", "seed", "invalid fragment", err)
		}
		node = parsed
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := rootID(ctx, tx)
		if err != nil {
			return err
		}
		for _, seg := range splitPath(path) {
			next, ok, err := childOf(ctx, tx, id, seg)
			if err != nil {
				return err
			}
			if !ok {
				if err := appendChild(ctx, tx, id, containerFor(seg), pep.LocationLast); err != nil {
					return err
				}
				if next, _, err = childOf(ctx, tx, id, seg); err != nil {
					return err
				}
			}
			id = next
		}
		if node == nil {
			return nil
		}
		return appendChild(ctx, tx, id, node, pep.LocationLast)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("tree seed", logging.Int64("request_id", reqID), logging.String("path", path))
	return &pep.Result{ID: reqID}, nil
}

func containerFor(segment string) *pep.Node {
	if isXMLName(segment) {
		return pep.NewNode(segment)
	}
	return pep.NewNode("entry", "name", segment)
}

func isXMLName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && (r == '-' || r == '.' || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return true
}
