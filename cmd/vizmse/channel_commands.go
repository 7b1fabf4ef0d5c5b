package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"vizmse/internal/rundown"
)

func newChannelsCommand(ctx *commandContext) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "channels",
		Short: "Show the output channel of every external element",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRundown(cmd, func(c context.Context, rd *rundown.Rundown) error {
				if err := rd.WaitReady(c); err != nil {
					return err
				}
				channels := rd.Channels()
				if refresh {
					channels.Reset()
				}
				if err := channels.EnsureAll(c); err != nil {
					return err
				}
				bindings := channels.Snapshot()
				return emit(cmd, ctx, bindings, func() string {
					if len(bindings) == 0 {
						return "No external elements"
					}
					rows := make([][]string, 0, len(bindings))
					for _, b := range bindings {
						channel := b.Channel
						if !b.Known {
							channel = "(none)"
						}
						rows = append(rows, []string{strconv.Itoa(b.VCPID), channel})
					}
					return renderTable([]string{"VCPID", "Channel"}, rows, 0)
				})
			})
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Discard bindings resolved during prefetch and fetch every channel again")
	return cmd
}
