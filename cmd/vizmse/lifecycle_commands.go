package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"vizmse/internal/msehttp"
	"vizmse/internal/rundown"
)

func newActivateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "activate",
		Short: "Initialize the playlist on the engine profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLockedRundown(cmd, func(c context.Context, rd *rundown.Rundown) error {
				result, err := rd.Activate(c)
				return emitLifecycle(cmd, ctx, "activate", rd, result, err)
			})
		},
	}
}

func newDeactivateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate",
		Short: "Clean up the playlist on the engine profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLockedRundown(cmd, func(c context.Context, rd *rundown.Rundown) error {
				result, err := rd.Deactivate(c)
				return emitLifecycle(cmd, ctx, "deactivate", rd, result, err)
			})
		},
	}
}

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Clear the show's graphics from the engine profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRundown(cmd, func(c context.Context, rd *rundown.Rundown) error {
				result, err := rd.Cleanup(c)
				return emitLifecycle(cmd, ctx, "cleanup", rd, result, err)
			})
		},
	}
}

func newPurgeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove every element from an inactive show and playlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLockedRundown(cmd, func(c context.Context, rd *rundown.Rundown) error {
				result, err := rd.Purge(c)
				if err != nil {
					return err
				}
				return emit(cmd, ctx, result, func() string {
					return fmt.Sprintf("Purged show %s and playlist %s: %s", rd.Show(), rd.Playlist(), result.Status)
				})
			})
		},
	}
}

// withLockedRundown runs fn while holding the playlist's lifecycle lock.
func (c *commandContext) withLockedRundown(cmd *cobra.Command, fn func(context.Context, *rundown.Rundown) error) error {
	return c.withRundown(cmd, func(ctx context.Context, rd *rundown.Rundown) error {
		return c.withPlaylistLock(rd.Playlist(), func() error {
			return fn(ctx, rd)
		})
	})
}

func emitLifecycle(cmd *cobra.Command, ctx *commandContext, op string, rd *rundown.Rundown, result *msehttp.CommandResult, err error) error {
	if err != nil {
		return err
	}
	return emit(cmd, ctx, result, func() string {
		return formatCommandResult(op, rd.Show()+"/"+rd.Playlist(), result)
	})
}
