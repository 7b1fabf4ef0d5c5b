package main

import (
	"context"

	"github.com/spf13/cobra"

	"vizmse/internal/msehttp"
	"vizmse/internal/rundown"
)

type statusReport struct {
	Show        string `json:"show"`
	Playlist    string `json:"playlist"`
	Profile     string `json:"profile"`
	Tree        bool   `json:"tree"`
	TreeError   string `json:"tree_error,omitempty"`
	Active      bool   `json:"active"`
	Engine      bool   `json:"engine"`
	EngineError string `json:"engine_error,omitempty"`
	EngineURL   string `json:"engine_url"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report tree, playlist and engine reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRundown(cmd, func(c context.Context, rd *rundown.Rundown) error {
				report := collectStatus(c, ctx, rd)
				return emit(cmd, ctx, report, func() string {
					return renderStatus(report, shouldColorize(cmd.OutOrStdout()))
				})
			})
		},
	}
}

func collectStatus(c context.Context, ctx *commandContext, rd *rundown.Rundown) statusReport {
	endpoint := ctx.engineEndpoint()
	client := msehttp.New(rd.Profile(), endpoint.CommandHost(), endpoint.RESTPort, msehttp.WithLogger(ctx.log()))
	report := statusReport{
		Show:      rd.Show(),
		Playlist:  rd.Playlist(),
		Profile:   rd.Profile(),
		EngineURL: client.BaseURL(),
	}

	active, err := rd.IsActive(c)
	if err != nil {
		report.TreeError = err.Error()
	} else {
		report.Tree = true
		report.Active = active
	}
	if err := client.Ping(c); err != nil {
		report.EngineError = err.Error()
	} else {
		report.Engine = true
	}
	return report
}
