package main

import (
	"context"

	"github.com/spf13/cobra"

	"vizmse/internal/rundown"
)

type playoutSpec struct {
	use     string
	aliases []string
	short   string
	verb    rundown.Verb
}

var playoutSpecs = []playoutSpec{
	{use: "cue", short: "Cue an element", verb: rundown.VerbCue},
	{use: "take", short: "Take an element on air", verb: rundown.VerbTake},
	{use: "continue", short: "Continue an element to its next stop", verb: rundown.VerbContinue},
	{use: "reverse", aliases: []string{"continue-reverse"}, short: "Continue an element backwards", verb: rundown.VerbContinueReverse},
	{use: "out", short: "Take an element off air", verb: rundown.VerbOut},
}

func newPlayoutCommands(ctx *commandContext) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(playoutSpecs))
	for _, spec := range playoutSpecs {
		cmds = append(cmds, newPlayoutCommand(ctx, spec))
	}
	return cmds
}

func newPlayoutCommand(ctx *commandContext, spec playoutSpec) *cobra.Command {
	return &cobra.Command{
		Use:     spec.use + " <name|vcpid>",
		Aliases: spec.aliases,
		Short:   spec.short,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := rundown.ParseRef(args[0])
			return ctx.withRundown(cmd, func(c context.Context, rd *rundown.Rundown) error {
				result, err := rd.Run(c, spec.verb, ref)
				if err != nil {
					return err
				}
				return emit(cmd, ctx, result, func() string {
					return formatCommandResult(string(spec.verb), ref.String(), result)
				})
			})
		},
	}
}
