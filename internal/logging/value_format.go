package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// timestampLayout matches the millisecond UTC stamps written on elements, so
// log lines and tree records can be lined up.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// attrString renders v without quoting, for subject fields.
func attrString(v slog.Value) string {
	return renderValue(v.Resolve())
}

// formatValue renders v for key=value output, quoting text that would
// otherwise split or merge with neighbouring pairs. Tree paths such as
// /storage/shows/{S}/elements stay bare.
func formatValue(v slog.Value) string {
	v = v.Resolve()
	s := renderValue(v)
	switch v.Kind() {
	case slog.KindString, slog.KindAny:
		if needsQuotes(s) {
			return strconv.Quote(s)
		}
	}
	return s
}

func renderValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindTime:
		return formatTimestamp(v.Time())
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func needsQuotes(s string) bool {
	return s == "" || strings.ContainsFunc(s, func(r rune) bool {
		return r <= ' ' || r == '=' || r == '"'
	})
}
