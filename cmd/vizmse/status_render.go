package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var statusKinds = map[statusKind]struct{ label, color string }{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

// statusCheck is one line of the status report.
type statusCheck struct {
	label   string
	kind    statusKind
	message string
}

// checks lists the report lines in display order. The playlist line is only
// meaningful when the property tree answered.
func (r statusReport) checks() []statusCheck {
	checks := []statusCheck{{"Profile", statusInfo, r.Profile}}
	switch {
	case !r.Tree:
		checks = append(checks, statusCheck{"Property tree", statusError, r.TreeError})
	case r.Active:
		checks = append(checks, statusCheck{"Property tree", statusOK, "reachable"}, statusCheck{"Playlist", statusOK, "active"})
	default:
		checks = append(checks, statusCheck{"Property tree", statusOK, "reachable"}, statusCheck{"Playlist", statusWarn, "inactive"})
	}
	if r.Engine {
		return append(checks, statusCheck{"Engine", statusOK, r.EngineURL})
	}
	return append(checks, statusCheck{"Engine", statusError, r.EngineError})
}

func renderStatus(report statusReport, colorize bool) string {
	title := fmt.Sprintf("== Rundown %s/%s ==", report.Show, report.Playlist)
	checks := report.checks()
	width := 0
	for _, c := range checks {
		width = max(width, len(c.label)+1)
	}

	lines := []string{paint(title, ansiBlue, colorize), paint(strings.Repeat("-", len(title)), ansiBlue, colorize)}
	for _, c := range checks {
		lines = append(lines, c.render(width, colorize))
	}
	return strings.Join(lines, "\n")
}

// render pads the label to width so the bracketed states line up.
func (c statusCheck) render(width int, colorize bool) string {
	kind := statusKinds[c.kind]
	line := fmt.Sprintf("  %-*s [%s]", width, c.label+":", kind.label)
	if c.message != "" {
		line += " " + c.message
	}
	return paint(line, kind.color, colorize)
}

func paint(s, color string, colorize bool) string {
	if !colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
