// Package msehttp issues play-out commands to the engine's HTTP command
// interface.
//
// Every command is a POST to /profiles/{profile}/{verb} whose text body is the
// property-tree path of the addressed element, playlist, or show. The client
// is stateless; connection reuse comes from the underlying http.Client.
package msehttp
