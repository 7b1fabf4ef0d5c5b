// Package treestore keeps a property tree in SQLite and serves it through the
// pep.Client contract.
//
// Every node is one row keyed by its parent and sibling position. Paths are
// resolved one segment at a time: a segment matches the child whose name
// attribute equals it, else the first child with that tag. The store backs
// local rehearsal of rundowns and the package tests; it does not speak the
// engine's wire protocol.
package treestore
