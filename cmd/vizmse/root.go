package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var flags globalFlags

	ctx := newCommandContext(&flags)

	rootCmd := &cobra.Command{
		Use:           "vizmse",
		Short:         "Vizrt Media Sequencer rundown coordinator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&flags.rundown, "rundown", "r", "", "Registered rundown name")
	rootCmd.PersistentFlags().StringVar(&flags.show, "show", "", "Show identifier (overrides the registered rundown)")
	rootCmd.PersistentFlags().StringVar(&flags.playlist, "playlist", "", "Playlist identifier (overrides the registered rundown)")
	rootCmd.PersistentFlags().StringVar(&flags.profile, "profile", "", "Engine profile (defaults to engine.profile)")
	rootCmd.PersistentFlags().BoolVar(&flags.json, "json", false, "Output JSON instead of tables")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newRawCommandCommand(ctx))
	rootCmd.AddCommand(newRundownCommand(ctx))
	rootCmd.AddCommand(newTemplatesCommand(ctx))
	rootCmd.AddCommand(newTemplateCommand(ctx))
	rootCmd.AddCommand(newElementsCommand(ctx))
	for _, cmd := range newPlayoutCommands(ctx) {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(newActivateCommand(ctx))
	rootCmd.AddCommand(newDeactivateCommand(ctx))
	rootCmd.AddCommand(newCleanupCommand(ctx))
	rootCmd.AddCommand(newPurgeCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newChannelsCommand(ctx))
	rootCmd.AddCommand(newApplyCommand(ctx))
	rootCmd.AddCommand(newTreeCommand(ctx))

	return rootCmd
}
