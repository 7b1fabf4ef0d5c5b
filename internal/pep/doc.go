// Package pep describes the property-tree collaborator the rundown
// coordinator talks to: paths into a hierarchical engine store whose nodes
// carry a tag, attributes, text and children.
//
// The Client interface mirrors the engine's typed read and mutation verbs
// (get, insert, set, replace, delete). Node is the decoded form of a subtree
// and doubles as a builder for XML fragments sent on insert and replace.
// Flatten collapses a Node into name-keyed Entry records, which is the only
// shape the coordinator inspects.
package pep
