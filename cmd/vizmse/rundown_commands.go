package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vizmse/internal/registry"
	"vizmse/internal/services"
)

func newRundownCommand(ctx *commandContext) *cobra.Command {
	rundownCmd := &cobra.Command{
		Use:   "rundown",
		Short: "Manage registered rundowns",
	}

	rundownCmd.AddCommand(newRundownAddCommand(ctx))
	rundownCmd.AddCommand(newRundownListCommand(ctx))
	rundownCmd.AddCommand(newRundownRemoveCommand(ctx))

	return rundownCmd
}

func newRundownAddCommand(ctx *commandContext) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a rundown under a name (uses --show, --playlist and --profile)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			show := strings.TrimSpace(ctx.flags.show)
			playlist := strings.TrimSpace(ctx.flags.playlist)
			if show == "" || playlist == "" {
				return services.Wrap(services.ErrUsage, "cli", "rundown add", "--show and --playlist are required", nil)
			}
			profile := strings.TrimSpace(ctx.flags.profile)
			if profile == "" {
				profile = cfg.Engine.Profile
			}
			return ctx.withRegistry(func(reg *registry.Registry) error {
				entry, err := reg.Put(cmd.Context(), registry.Entry{
					Name:        args[0],
					Show:        show,
					Playlist:    playlist,
					Profile:     profile,
					Description: description,
				})
				if err != nil {
					return err
				}
				return emit(cmd, ctx, entry, func() string {
					return fmt.Sprintf("Registered rundown %s (show %s, playlist %s, profile %s)", entry.Name, entry.Show, entry.Playlist, entry.Profile)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Human-readable description")
	return cmd
}

func newRundownListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered rundowns",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRegistry(func(reg *registry.Registry) error {
				entries, err := reg.List(cmd.Context())
				if err != nil {
					return err
				}
				return emit(cmd, ctx, entries, func() string {
					if len(entries) == 0 {
						return "No rundowns registered"
					}
					rows := make([][]string, 0, len(entries))
					for _, e := range entries {
						rows = append(rows, []string{e.Name, e.Show, e.Playlist, e.Profile, e.Description})
					}
					return renderTable([]string{"Name", "Show", "Playlist", "Profile", "Description"}, rows)
				})
			})
		},
	}
}

func newRundownRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a registered rundown",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRegistry(func(reg *registry.Registry) error {
				if err := reg.Remove(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed rundown %s\n", args[0])
				return nil
			})
		},
	}
}
