// Package rundown coordinates one show and one playlist on a Vizrt Media
// Sequencer Engine.
//
// A Rundown keeps the property tree and the HTTP command interface in step.
// Internal elements live under the show and are addressed by name; external
// elements are numeric VCP references listed in the playlist. Before a play-out
// command is sent for an external element, its output channel is resolved
// through the ChannelMap and written to the element's viz_program attribute so
// the engine routes it correctly.
//
// Identifiers are normalized once at construction: callers may pass
// "/storage/shows/{ID}", "{ID}" or "ID" and all addressing uses the bare form.
package rundown
