package rundown

import (
	"fmt"
	"strings"

	"vizmse/internal/msehttp"
)

const (
	showPrefix     = "/storage/shows/"
	playlistPrefix = "/storage/playlists/"
	profilePrefix  = "/config/profiles/"
)

// NormalizeShow reduces a show reference to its bare identifier.
func NormalizeShow(s string) string {
	return stripBraces(strings.TrimPrefix(s, showPrefix))
}

// NormalizePlaylist reduces a playlist reference to its bare identifier.
func NormalizePlaylist(s string) string {
	return stripBraces(strings.TrimPrefix(s, playlistPrefix))
}

// NormalizeProfile reduces a profile reference to its bare name.
func NormalizeProfile(s string) string {
	return strings.TrimPrefix(s, profilePrefix)
}

func stripBraces(s string) string {
	s = strings.TrimPrefix(s, "{")
	return strings.TrimSuffix(s, "}")
}

func (r *Rundown) showPath() string {
	return msehttp.ShowPath(r.show)
}

func (r *Rundown) showElementsPath() string {
	return r.showPath() + "/elements"
}

func (r *Rundown) showElementPath(name string) string {
	return r.showElementsPath() + "/" + name
}

func (r *Rundown) templatesPath() string {
	return r.showPath() + "/mastertemplates"
}

func (r *Rundown) templatePath(name string) string {
	return r.templatesPath() + "/" + name
}

func (r *Rundown) playlistPath() string {
	return msehttp.PlaylistPath(r.playlist)
}

// playlistElementsPath addresses the playlist's element collection. Inserts
// use the trailing-slash form to land inside it.
func (r *Rundown) playlistElementsPath() string {
	return r.playlistPath() + "/elements"
}

func externalElementPath(vcpid int) string {
	return fmt.Sprintf("/external/pilotdb/elements/%d", vcpid)
}
