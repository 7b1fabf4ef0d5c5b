// Package registry stores named rundown definitions so the CLI can address a
// show/playlist/profile triple by a short name.
package registry
