// Package main hosts the vizmse CLI entrypoint and command graph.
//
// Commands resolve a rundown from the registry or from --show/--playlist
// flags, bind it to the local property tree and the engine's HTTP command
// interface, and render results as tables or JSON. Element, command and
// lifecycle behavior lives in internal/rundown; this package only wires
// configuration, storage and output.
package main
