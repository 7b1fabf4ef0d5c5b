// Package mse models the engine-wide session a rundown runs against: the
// property-tree connection, playlist state, and the addresses of the engine.
package mse
