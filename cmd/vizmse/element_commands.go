package main

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"vizmse/internal/rundown"
	"vizmse/internal/services"
)

func newElementsCommand(ctx *commandContext) *cobra.Command {
	elementsCmd := &cobra.Command{
		Use:     "elements",
		Aliases: []string{"element"},
		Short:   "Inspect and manage rundown elements",
	}

	elementsCmd.AddCommand(newElementsListCommand(ctx))
	elementsCmd.AddCommand(newElementsGetCommand(ctx))
	elementsCmd.AddCommand(newElementsCreateCommand(ctx))
	elementsCmd.AddCommand(newElementsDeleteCommand(ctx))

	return elementsCmd
}

func newElementsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List internal and external elements",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRundown(cmd, func(c context.Context, rd *rundown.Rundown) error {
				refs, err := rd.ListElements(c)
				if err != nil {
					return err
				}
				return emit(cmd, ctx, refs, func() string {
					if len(refs) == 0 {
						return "No elements"
					}
					rows := make([][]string, 0, len(refs))
					for _, ref := range refs {
						rows = append(rows, []string{ref.String(), ref.Kind.String()})
					}
					return renderTable([]string{"Element", "Kind"}, rows)
				})
			})
		},
	}
}

type elementView struct {
	Ref     rundown.ElementRef `json:"ref"`
	Kind    string             `json:"kind"`
	Channel string             `json:"channel,omitempty"`
	Attrs   map[string]string  `json:"attrs,omitempty"`
	Values  map[string]string  `json:"values,omitempty"`
}

func newElementsGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get <ref>",
		Short: "Show one element (digits select an external element by vcpid)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := rundown.ParseRef(args[0])
			return ctx.withRundown(cmd, func(c context.Context, rd *rundown.Rundown) error {
				el, err := rd.GetElement(c, ref)
				if err != nil {
					return err
				}
				view := elementView{Ref: el.Ref, Kind: el.Ref.Kind.String(), Channel: el.Channel}
				if el.Entry != nil {
					view.Attrs = el.Entry.Attrs
					view.Values = el.Entry.Values()
				}
				return emit(cmd, ctx, view, func() string {
					pairs := [][2]string{{"ref", view.Ref.String()}, {"kind", view.Kind}}
					if view.Channel != "" {
						pairs = append(pairs, [2]string{"channel", view.Channel})
					}
					for _, key := range slices.Sorted(maps.Keys(view.Attrs)) {
						pairs = append(pairs, [2]string{"@" + key, view.Attrs[key]})
					}
					for _, key := range slices.Sorted(maps.Keys(view.Values)) {
						pairs = append(pairs, [2]string{key, view.Values[key]})
					}
					return renderFields(pairs)
				})
			})
		},
	}
}

func newElementsCreateCommand(ctx *commandContext) *cobra.Command {
	var template string
	var fields []string
	var channel string

	cmd := &cobra.Command{
		Use:   "create <name|vcpid>",
		Short: "Create an internal element from a template, or reference an external one",
		Long: "A name creates an internal element from --template, assigning --field values to the template's fields in ascending field-name order.\n" +
			"A numeric vcpid adds an external element reference to the playlist.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := rundown.ElementSpec{
				Ref:      rundown.ParseRef(args[0]),
				Template: strings.TrimSpace(template),
				Fields:   fields,
				Channel:  strings.TrimSpace(channel),
			}
			if !spec.Ref.IsExternal() && spec.Template == "" {
				return services.Wrap(services.ErrUsage, "cli", "elements create", "--template is required for internal elements", nil)
			}
			return ctx.withRundown(cmd, func(c context.Context, rd *rundown.Rundown) error {
				created, err := rd.Create(c, spec)
				if err != nil {
					return err
				}
				return emit(cmd, ctx, created, func() string {
					return renderCreated(created)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "", "Master template for internal elements")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Field value (repeat in field-name order)")
	cmd.Flags().StringVar(&channel, "channel", "", "Output channel")
	return cmd
}

func renderCreated(created *rundown.Created) string {
	if created.Ref.IsExternal() {
		if created.Channel == "" {
			return fmt.Sprintf("Referenced external element %s", created.Ref)
		}
		return fmt.Sprintf("Referenced external element %s on channel %s", created.Ref, created.Channel)
	}
	rows := make([][]string, 0, len(created.Data))
	for _, key := range slices.Sorted(maps.Keys(created.Data)) {
		rows = append(rows, []string{key, created.Data[key]})
	}
	header := fmt.Sprintf("Created element %s from template %s", created.Ref, created.Template)
	if len(rows) == 0 {
		return header
	}
	return header + "\n" + renderTable([]string{"Field", "Value"}, rows)
}

func newElementsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete an internal element",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := rundown.ParseRef(args[0])
			return ctx.withRundown(cmd, func(c context.Context, rd *rundown.Rundown) error {
				if err := rd.DeleteElement(c, ref); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted element %s\n", ref)
				return nil
			})
		},
	}
}
