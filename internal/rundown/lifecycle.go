package rundown

import (
	"context"

	"vizmse/internal/logging"
	"vizmse/internal/msehttp"
	"vizmse/internal/services"
)

// PurgeResult reports a completed purge.
type PurgeResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Activate initializes the playlist on the profile. Re-activating an active
// playlist is allowed and logged.
func (r *Rundown) Activate(ctx context.Context) (*msehttp.CommandResult, error) {
	logger := r.opLogger(ctx, "activate")
	playlist, err := r.engine.GetPlaylist(ctx, r.playlist)
	if err != nil {
		return nil, err
	}
	if playlist.Active() {
		logging.WarnWithContext(logger, "re-activating an already active playlist", "playlist_reactivate",
			logging.String("playlist", r.playlist),
			logging.String("active_profile", playlist.ActiveProfile),
			logging.String(logging.FieldErrorHint, "deactivate first to start from a clean state"),
			logging.String(logging.FieldImpact, "playlist is initialized again"),
		)
	}
	res, err := r.commands.InitializePlaylist(ctx, r.playlist)
	if err != nil {
		return nil, err
	}
	logger.Info("playlist activated", logging.String("playlist", r.playlist))
	return res, nil
}

// Deactivate cleans up the playlist on the profile.
func (r *Rundown) Deactivate(ctx context.Context) (*msehttp.CommandResult, error) {
	res, err := r.commands.CleanupPlaylist(ctx, r.playlist)
	if err != nil {
		return nil, err
	}
	r.opLogger(ctx, "deactivate").Info("playlist deactivated", logging.String("playlist", r.playlist))
	return res, nil
}

// Cleanup clears the show's graphics from the profile.
func (r *Rundown) Cleanup(ctx context.Context) (*msehttp.CommandResult, error) {
	res, err := r.commands.CleanupShow(ctx, r.show)
	if err != nil {
		return nil, err
	}
	r.opLogger(ctx, "cleanup").Info("show cleaned up", logging.String("show", r.show))
	return res, nil
}

// Purge empties the show's and the playlist's element collections. It
// refuses while the playlist is active and then changes nothing.
func (r *Rundown) Purge(ctx context.Context) (*PurgeResult, error) {
	playlist, err := r.engine.GetPlaylist(ctx, r.playlist)
	if err != nil {
		return nil, err
	}
	if playlist.Active() {
		return nil, services.Wrap(services.ErrConflict, "rundown", "purge", "cannot purge an active profile", nil)
	}
	if _, err := r.pep().Replace(ctx, r.showElementsPath(), "<elements/>"); err != nil {
		return nil, err
	}
	if _, err := r.pep().Replace(ctx, r.playlistElementsPath(), "<elements/>"); err != nil {
		return nil, err
	}
	r.channels.Reset()
	r.opLogger(ctx, "purge").Info("rundown purged")
	return &PurgeResult{ID: "*", Status: "ok"}, nil
}

// IsActive reports whether the playlist is initialized on a profile.
func (r *Rundown) IsActive(ctx context.Context) (bool, error) {
	playlist, err := r.engine.GetPlaylist(ctx, r.playlist)
	if err != nil {
		return false, err
	}
	return playlist.Active(), nil
}
