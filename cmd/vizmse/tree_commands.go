package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vizmse/internal/pep"
	"vizmse/internal/treestore"
)

func newTreeCommand(ctx *commandContext) *cobra.Command {
	treeCmd := &cobra.Command{
		Use:   "tree",
		Short: "Inspect and seed the local property tree",
	}

	treeCmd.AddCommand(newTreeGetCommand(ctx))
	treeCmd.AddCommand(newTreeSeedCommand(ctx))

	return treeCmd
}

type treeView struct {
	RequestID int64      `json:"request_id"`
	Path      string     `json:"path"`
	Entry     *treeEntry `json:"entry"`
}

type treeEntry struct {
	Tag      string            `json:"tag"`
	Value    string            `json:"value,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children map[string]any    `json:"children,omitempty"`
}

func newTreeGetCommand(ctx *commandContext) *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Print the subtree at path as XML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withTree(func(store *treestore.Store) error {
				res, err := store.GetJS(cmd.Context(), args[0], depth)
				if err != nil {
					return err
				}
				view := treeView{RequestID: res.ID, Path: args[0], Entry: toTreeEntry(pep.Flatten(res.Tree))}
				return emit(cmd, ctx, view, func() string {
					return res.Tree.XML()
				})
			})
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", -1, "Levels below path to include (-1 for all)")
	return cmd
}

func toTreeEntry(e *pep.Entry) *treeEntry {
	if e == nil {
		return nil
	}
	out := &treeEntry{Tag: e.Tag, Value: e.Value}
	if len(e.Attrs) > 0 {
		out.Attrs = e.Attrs
	}
	if len(e.Keys) > 0 {
		out.Children = make(map[string]any, len(e.Keys))
		for _, key := range e.Keys {
			out.Children[key] = toTreeEntry(e.Children[key])
		}
	}
	return out
}

func newTreeSeedCommand(ctx *commandContext) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed <path> [fragment]",
		Short: "Create path (and missing ancestors) and append an XML fragment to it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fragment := ""
			if len(args) == 2 {
				fragment = args[1]
			}
			if path := strings.TrimSpace(file); path != "" {
				if fragment != "" {
					return fmt.Errorf("pass the fragment either inline or with --file, not both")
				}
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read fragment: %w", err)
				}
				fragment = string(data)
			}
			return ctx.withTree(func(store *treestore.Store) error {
				if _, err := store.Seed(cmd.Context(), args[0], fragment); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the fragment from a file")
	return cmd
}
