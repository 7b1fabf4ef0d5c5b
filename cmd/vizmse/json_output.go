package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emit writes v as JSON in --json mode, otherwise runs render.
func emit(cmd *cobra.Command, ctx *commandContext, v any, render func() string) error {
	if ctx.jsonMode() {
		return writeJSON(cmd, v)
	}
	fmt.Fprintln(cmd.OutOrStdout(), render())
	return nil
}
