package treestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"vizmse/internal/logging"
	"vizmse/internal/pep"
	"vizmse/internal/services"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// GetJS returns the subtree at path, limited to depth levels of children.
func (s *Store) GetJS(ctx context.Context, path string, depth int) (*pep.Result, error) {
	reqID := s.requestID()
	var tree *pep.Node
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := s.mustResolve(ctx, tx, reqID, path)
		if err != nil {
			return err
		}
		tree, err = loadSubtree(ctx, tx, id, depth)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &pep.Result{ID: reqID, Tree: tree}, nil
}

// Insert adds fragment relative to path.
//
// A path ending in "/" addresses the container itself and the fragment is
// placed first or last among its children. Any other path names the new
// node: the fragment goes into the parent of path and takes the last path
// segment as its name when it has none. Before and After treat path as the
// reference sibling.
func (s *Store) Insert(ctx context.Context, path, fragment string, loc pep.Location) (*pep.Result, error) {
	reqID := s.requestID()
	node, err := pep.ParseFragment(fragment)
	if err != nil {
		return nil, services.Wrap(services.ErrUsage, "treestore", "insert", "invalid fragment", err)
	}

	segments := splitPath(path)
	into := strings.HasSuffix(path, "/")
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		switch {
		case into:
			if loc == pep.LocationBefore || loc == pep.LocationAfter {
				return services.Wrap(services.ErrUsage, "treestore", "insert",
					fmt.Sprintf("location %s needs a sibling path, got container %q", loc, path), nil)
			}
			parent, err := s.mustResolve(ctx, tx, reqID, path)
			if err != nil {
				return err
			}
			return appendChild(ctx, tx, parent, node, loc)
		case loc == pep.LocationFirst || loc == pep.LocationLast:
			if len(segments) == 0 {
				return services.Wrap(services.ErrUsage, "treestore", "insert", "cannot insert a sibling of the root", nil)
			}
			parentSegments := segments[:len(segments)-1]
			parent, ok, err := resolve(ctx, tx, parentSegments)
			if err != nil {
				return err
			}
			if !ok {
				return &pep.InexistentError{RequestID: reqID, Path: "/" + strings.Join(parentSegments, "/")}
			}
			if node.Name() == "" {
				node.SetAttr("name", segments[len(segments)-1])
			}
			return appendChild(ctx, tx, parent, node, loc)
		default:
			ref, err := s.mustResolve(ctx, tx, reqID, path)
			if err != nil {
				return err
			}
			parent, seq, err := position(ctx, tx, ref)
			if err != nil {
				return err
			}
			if !parent.Valid {
				return services.Wrap(services.ErrUsage, "treestore", "insert", "cannot insert a sibling of the root", nil)
			}
			if loc == pep.LocationAfter {
				seq++
			}
			if _, err := tx.ExecContext(ctx,
				"UPDATE nodes SET seq = seq + 1 WHERE parent_id = ? AND seq >= ?", parent.Int64, seq); err != nil {
				return fmt.Errorf("shift siblings: %w", err)
			}
			return insertTree(ctx, tx, parent.Int64, seq, node)
		}
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("tree insert",
		logging.Int64("request_id", reqID),
		logging.String("path", path),
		logging.String("location", loc.String()),
	)
	return &pep.Result{ID: reqID}, nil
}

// Set writes a single attribute on the node at path.
func (s *Store) Set(ctx context.Context, path, attribute, value string) (*pep.Result, error) {
	reqID := s.requestID()
	attribute = strings.TrimSpace(attribute)
	if attribute == "" {
		return nil, services.Wrap(services.ErrUsage, "treestore", "set", "attribute name is required", nil)
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := s.mustResolve(ctx, tx, reqID, path)
		if err != nil {
			return err
		}
		var raw string
		if err := tx.QueryRowContext(ctx, "SELECT attrs FROM nodes WHERE id = ?", id).Scan(&raw); err != nil {
			return fmt.Errorf("read attributes: %w", err)
		}
		attrs, err := decodeAttrs(raw)
		if err != nil {
			return err
		}
		holder := &pep.Node{Attrs: attrs}
		holder.SetAttr(attribute, value)
		encoded, err := encodeAttrs(holder.Attrs)
		if err != nil {
			return err
		}
		if attribute == "name" {
			_, err = tx.ExecContext(ctx, "UPDATE nodes SET attrs = ?, name = ? WHERE id = ?", encoded, value, id)
		} else {
			_, err = tx.ExecContext(ctx, "UPDATE nodes SET attrs = ? WHERE id = ?", encoded, id)
		}
		if err != nil {
			return fmt.Errorf("update attributes: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("tree set",
		logging.Int64("request_id", reqID),
		logging.String("path", path),
		logging.String("attribute", attribute),
	)
	return &pep.Result{ID: reqID}, nil
}

// Replace swaps the node at path for fragment, keeping its position. The
// replaced node's name carries over when the fragment has none.
func (s *Store) Replace(ctx context.Context, path, fragment string) (*pep.Result, error) {
	reqID := s.requestID()
	node, err := pep.ParseFragment(fragment)
	if err != nil {
		return nil, services.Wrap(services.ErrUsage, "treestore", "replace", "invalid fragment", err)
	}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := s.mustResolve(ctx, tx, reqID, path)
		if err != nil {
			return err
		}
		parent, seq, err := position(ctx, tx, id)
		if err != nil {
			return err
		}
		if !parent.Valid {
			return services.Wrap(services.ErrUsage, "treestore", "replace", "cannot replace the root", nil)
		}
		var oldName string
		if err := tx.QueryRowContext(ctx, "SELECT name FROM nodes WHERE id = ?", id).Scan(&oldName); err != nil {
			return fmt.Errorf("read node name: %w", err)
		}
		if node.Name() == "" && oldName != "" {
			node.SetAttr("name", oldName)
		}
		if err := deleteSubtree(ctx, tx, id); err != nil {
			return err
		}
		return insertTree(ctx, tx, parent.Int64, seq, node)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("tree replace", logging.Int64("request_id", reqID), logging.String("path", path))
	return &pep.Result{ID: reqID}, nil
}

// Delete removes the node at path and everything beneath it.
func (s *Store) Delete(ctx context.Context, path string) (*pep.Result, error) {
	reqID := s.requestID()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		id, err := s.mustResolve(ctx, tx, reqID, path)
		if err != nil {
			return err
		}
		parent, _, err := position(ctx, tx, id)
		if err != nil {
			return err
		}
		if !parent.Valid {
			return services.Wrap(services.ErrUsage, "treestore", "delete", "cannot delete the root", nil)
		}
		return deleteSubtree(ctx, tx, id)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("tree delete", logging.Int64("request_id", reqID), logging.String("path", path))
	return &pep.Result{ID: reqID}, nil
}

func splitPath(path string) []string {
	raw := strings.Split(path, "/")
	segments := make([]string, 0, len(raw))
	for _, seg := range raw {
		if seg = strings.TrimSpace(seg); seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

func (s *Store) mustResolve(ctx context.Context, q querier, reqID int64, path string) (int64, error) {
	id, ok, err := resolve(ctx, q, splitPath(path))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &pep.InexistentError{RequestID: reqID, Path: path}
	}
	return id, nil
}

func rootID(ctx context.Context, q querier) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, "SELECT id FROM nodes WHERE parent_id IS NULL ORDER BY id LIMIT 1").Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("read root node: %w", err)
	}
	return id, nil
}

func resolve(ctx context.Context, q querier, segments []string) (int64, bool, error) {
	id, err := rootID(ctx, q)
	if err != nil {
		return 0, false, err
	}
	for _, seg := range segments {
		next, ok, err := childOf(ctx, q, id, seg)
		if err != nil || !ok {
			return 0, false, err
		}
		id = next
	}
	return id, true, nil
}

func childOf(ctx context.Context, q querier, parent int64, segment string) (int64, bool, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		"SELECT id FROM nodes WHERE parent_id = ? AND name = ? ORDER BY seq LIMIT 1",
		parent, segment,
	).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("resolve %q: %w", segment, err)
	}
	err = q.QueryRowContext(ctx,
		"SELECT id FROM nodes WHERE parent_id = ? AND tag = ? ORDER BY seq LIMIT 1",
		parent, segment,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("resolve %q: %w", segment, err)
	}
	return id, true, nil
}

func position(ctx context.Context, q querier, id int64) (sql.NullInt64, int64, error) {
	var (
		parent sql.NullInt64
		seq    int64
	)
	err := q.QueryRowContext(ctx, "SELECT parent_id, seq FROM nodes WHERE id = ?", id).Scan(&parent, &seq)
	if err != nil {
		return parent, 0, fmt.Errorf("read node position: %w", err)
	}
	return parent, seq, nil
}

func appendChild(ctx context.Context, q querier, parent int64, node *pep.Node, loc pep.Location) error {
	if loc == pep.LocationFirst {
		if _, err := q.ExecContext(ctx, "UPDATE nodes SET seq = seq + 1 WHERE parent_id = ?", parent); err != nil {
			return fmt.Errorf("shift children: %w", err)
		}
		return insertTree(ctx, q, parent, 0, node)
	}
	var next int64
	err := q.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq) + 1, 0) FROM nodes WHERE parent_id = ?", parent,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("read next position: %w", err)
	}
	return insertTree(ctx, q, parent, next, node)
}

func insertTree(ctx context.Context, q querier, parent, seq int64, node *pep.Node) error {
	attrs, err := encodeAttrs(node.Attrs)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx,
		"INSERT INTO nodes (parent_id, seq, tag, name, value, attrs) VALUES (?, ?, ?, ?, ?, ?)",
		parent, seq, node.Tag, node.Name(), node.Text, attrs,
	)
	if err != nil {
		return fmt.Errorf("insert node %s: %w", node.Tag, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read inserted id: %w", err)
	}
	for i, child := range node.Children {
		if err := insertTree(ctx, q, id, int64(i), child); err != nil {
			return err
		}
	}
	return nil
}

func deleteSubtree(ctx context.Context, q querier, id int64) error {
	_, err := q.ExecContext(ctx, `
		WITH RECURSIVE sub(id) AS (
			SELECT ?
			UNION ALL
			SELECT n.id FROM nodes n JOIN sub ON n.parent_id = sub.id
		)
		DELETE FROM nodes WHERE id IN (SELECT id FROM sub)`, id)
	if err != nil {
		return fmt.Errorf("delete subtree: %w", err)
	}
	return nil
}

func loadSubtree(ctx context.Context, q querier, id int64, depth int) (*pep.Node, error) {
	rows, err := q.QueryContext(ctx, `
		WITH RECURSIVE sub(id, parent_id, seq, tag, value, attrs, lvl) AS (
			SELECT id, parent_id, seq, tag, value, attrs, 0 FROM nodes WHERE id = ?
			UNION ALL
			SELECT n.id, n.parent_id, n.seq, n.tag, n.value, n.attrs, sub.lvl + 1
			FROM nodes n JOIN sub ON n.parent_id = sub.id
			WHERE ? < 0 OR sub.lvl < ?
		)
		SELECT id, parent_id, tag, value, attrs, lvl FROM sub ORDER BY lvl, seq`,
		id, depth, depth,
	)
	if err != nil {
		return nil, fmt.Errorf("load subtree: %w", err)
	}
	defer rows.Close()

	nodes := make(map[int64]*pep.Node)
	var root *pep.Node
	for rows.Next() {
		var (
			nodeID   int64
			parentID sql.NullInt64
			tag      string
			value    string
			rawAttrs string
			level    int
		)
		if err := rows.Scan(&nodeID, &parentID, &tag, &value, &rawAttrs, &level); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		attrs, err := decodeAttrs(rawAttrs)
		if err != nil {
			return nil, err
		}
		node := &pep.Node{Tag: tag, Text: value, Attrs: attrs}
		nodes[nodeID] = node
		if level == 0 {
			root = node
			continue
		}
		if parent := nodes[parentID.Int64]; parent != nil {
			parent.Children = append(parent.Children, node)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}
	if root == nil {
		return nil, fmt.Errorf("load subtree: node %d vanished", id)
	}
	return root, nil
}

func encodeAttrs(attrs []pep.Attr) (string, error) {
	if len(attrs) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("encode attributes: %w", err)
	}
	return string(data), nil
}

func decodeAttrs(raw string) ([]pep.Attr, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var attrs []pep.Attr
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		return nil, fmt.Errorf("decode attributes: %w", err)
	}
	return attrs, nil
}
