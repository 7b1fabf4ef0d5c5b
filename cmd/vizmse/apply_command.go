package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vizmse/internal/manifest"
	"vizmse/internal/rundown"
)

func newApplyCommand(ctx *commandContext) *cobra.Command {
	var register string

	cmd := &cobra.Command{
		Use:   "apply <manifest.yaml>",
		Short: "Create the elements listed in a rundown manifest",
		Long: "Elements are created in document order and the run stops at the first failure.\n" +
			"The manifest's show, playlist and profile override the selected rundown; --show, --playlist and --profile still win.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(args[0])
			if err != nil {
				return err
			}
			opts, err := ctx.manifestOptions(cmd.Context(), m)
			if err != nil {
				return err
			}
			if name := strings.TrimSpace(register); name != "" {
				if err := ctx.registerManifest(cmd.Context(), name, opts); err != nil {
					return err
				}
			}
			return ctx.openRundown(cmd.Context(), opts, func(c context.Context, rd *rundown.Rundown) error {
				results, err := m.Apply(c, rd)
				if ctx.jsonMode() {
					if werr := writeJSON(cmd, results); werr != nil {
						return werr
					}
					return err
				}
				out := cmd.OutOrStdout()
				for _, res := range results {
					fmt.Fprintf(out, "%d. %s\n", res.Index+1, renderCreated(res.Created))
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Applied %d elements to %s/%s\n", len(results), rd.Show(), rd.Playlist())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&register, "register", "", "Also register the manifest's rundown under this name")
	return cmd
}
