package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"vizmse/internal/rundown"
)

func newTemplatesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the show's master templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRundown(cmd, func(c context.Context, rd *rundown.Rundown) error {
				names, err := rd.ListTemplates(c)
				if err != nil {
					return err
				}
				return emit(cmd, ctx, names, func() string {
					if len(names) == 0 {
						return "No templates"
					}
					rows := make([][]string, 0, len(names))
					for _, name := range names {
						rows = append(rows, []string{name})
					}
					return renderTable([]string{"Template"}, rows)
				})
			})
		},
	}
}

func newTemplateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "template <name>",
		Short: "Show a master template's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRundown(cmd, func(c context.Context, rd *rundown.Rundown) error {
				tmpl, err := rd.GetTemplate(c, args[0])
				if err != nil {
					return err
				}
				return emit(cmd, ctx, tmpl, func() string {
					// Values passed to "elements create" fill fields in sorted order.
					rows := make([][]string, 0, len(tmpl.Fields))
					for i, field := range tmpl.SortedFields() {
						rows = append(rows, []string{strconv.Itoa(i + 1), field})
					}
					return renderTable([]string{"#", "Field"}, rows, 0)
				})
			})
		},
	}
}
