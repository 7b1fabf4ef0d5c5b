package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vizmse/internal/msehttp"
	"vizmse/internal/services"
)

const (
	rawDefaultProfile = "MOSART"
	rawDefaultHost    = "localhost"
	rawDefaultPort    = 8580
)

// newRawCommandCommand sends one HTTP command without loading configuration
// or resolving a rundown.
func newRawCommandCommand(ctx *commandContext) *cobra.Command {
	var host string
	var port int
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:         "command <verb> <target>",
		Short:       "Send a raw HTTP command to an engine profile",
		Long:        "Send a verb (cue, take, continue, continue_reverse, out, initialize, cleanup) with a target path such as /storage/playlists/{ID}.",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			verb := strings.ToLower(strings.TrimSpace(args[0]))
			if !knownRawVerb(verb) {
				return services.Wrap(services.ErrUsage, "cli", "command", fmt.Sprintf("unknown verb %q", args[0]), nil)
			}
			profile := strings.TrimSpace(ctx.flags.profile)
			if profile == "" {
				profile = rawDefaultProfile
			}
			client := msehttp.New(profile, host, port, msehttp.WithTimeout(timeout))
			result, err := client.Command(cmd.Context(), verb, args[1])
			if err != nil {
				return err
			}
			return emit(cmd, ctx, result, func() string {
				return formatCommandResult(verb, args[1], result)
			})
		},
	}

	cmd.Flags().StringVar(&host, "host", rawDefaultHost, "Engine command host")
	cmd.Flags().IntVar(&port, "port", rawDefaultPort, "Engine command port")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	return cmd
}

func knownRawVerb(verb string) bool {
	switch verb {
	case msehttp.VerbCue, msehttp.VerbTake, msehttp.VerbContinue, msehttp.VerbContinueReverse,
		msehttp.VerbOut, msehttp.VerbInitialize, msehttp.VerbCleanup:
		return true
	}
	return false
}

func formatCommandResult(verb, target string, result *msehttp.CommandResult) string {
	reply := strings.TrimSpace(result.Response)
	if reply == "" {
		return fmt.Sprintf("%s %s: %d", verb, target, result.Status)
	}
	return fmt.Sprintf("%s %s: %d %s", verb, target, result.Status, reply)
}
