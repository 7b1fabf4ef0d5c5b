package rundown

import (
	"context"
	"fmt"
	"strings"

	"vizmse/internal/logging"
	"vizmse/internal/msehttp"
	"vizmse/internal/services"
)

// Verb is a play-out transition.
type Verb string

const (
	VerbCue             Verb = msehttp.VerbCue
	VerbTake            Verb = msehttp.VerbTake
	VerbContinue        Verb = msehttp.VerbContinue
	VerbContinueReverse Verb = msehttp.VerbContinueReverse
	VerbOut             Verb = msehttp.VerbOut
)

// ParseVerb accepts a verb name as typed on a command line.
func ParseVerb(s string) (Verb, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cue":
		return VerbCue, nil
	case "take":
		return VerbTake, nil
	case "continue":
		return VerbContinue, nil
	case "continue_reverse", "continue-reverse", "reverse":
		return VerbContinueReverse, nil
	case "out":
		return VerbOut, nil
	default:
		return "", services.Wrap(services.ErrUsage, "rundown", "parse verb", fmt.Sprintf("unknown verb %q", s), nil)
	}
}

func (r *Rundown) Cue(ctx context.Context, ref ElementRef) (*msehttp.CommandResult, error) {
	return r.Run(ctx, VerbCue, ref)
}

func (r *Rundown) Take(ctx context.Context, ref ElementRef) (*msehttp.CommandResult, error) {
	return r.Run(ctx, VerbTake, ref)
}

func (r *Rundown) Continue(ctx context.Context, ref ElementRef) (*msehttp.CommandResult, error) {
	return r.Run(ctx, VerbContinue, ref)
}

func (r *Rundown) ContinueReverse(ctx context.Context, ref ElementRef) (*msehttp.CommandResult, error) {
	return r.Run(ctx, VerbContinueReverse, ref)
}

func (r *Rundown) Out(ctx context.Context, ref ElementRef) (*msehttp.CommandResult, error) {
	return r.Run(ctx, VerbOut, ref)
}

// Run issues verb against ref. For external elements the channel is
// resolved first and, when known, written to the element's viz_program
// attribute before the command is sent. A failed resolution does not stop
// the command; a failed write does.
func (r *Rundown) Run(ctx context.Context, verb Verb, ref ElementRef) (*msehttp.CommandResult, error) {
	logger := r.opLogger(ctx, string(verb))
	var target string
	if ref.IsExternal() {
		if err := r.propagateChannel(ctx, ref.VCPID); err != nil {
			return nil, err
		}
		target = externalElementPath(ref.VCPID)
	} else {
		if ref.Name == "" {
			return nil, services.Wrap(services.ErrUsage, "rundown", string(verb), "element name is required", nil)
		}
		target = r.showElementPath(ref.Name)
	}

	res, err := r.commands.Command(ctx, string(verb), target)
	if err != nil {
		return nil, err
	}
	logger.Info("command sent",
		logging.String("element", ref.String()),
		logging.String("target", target),
		logging.Int("status", res.Status),
	)
	return res, nil
}

func (r *Rundown) propagateChannel(ctx context.Context, vcpid int) error {
	logger := r.opLogger(ctx, "resolve channel")
	resolved, err := r.channels.Ensure(ctx, vcpid)
	if err != nil {
		logging.WarnWithContext(logger, "channel resolution failed", "channel_resolution",
			logging.Int("vcpid", vcpid),
			logging.Error(err),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.String(logging.FieldImpact, "command sent without updating viz_program"),
		)
		return nil
	}
	if !resolved {
		logger.Debug("no channel for external element", logging.Int("vcpid", vcpid))
		return nil
	}
	channel, _ := r.channels.Get(vcpid)
	if _, err := r.pep().Set(ctx, externalElementPath(vcpid), "viz_program", channel); err != nil {
		return err
	}
	return nil
}
