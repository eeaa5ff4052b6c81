// Package prompt builds the coloured "(lsst-cfht) > " prompt string for
// each supported shell.
package prompt

import (
	"strings"

	"github.com/lsst-cfht/cfhtenv/internal/termcap"
)

// markers returns the shell's non-printing delimiters.
// The sequences between them do not count toward the prompt width.
func markers(shellType string) (open, close string) {
	switch shellType {
	case "zsh":
		return "%{", "%}"
	case "fish", "sh":
		// POSIX sh has no non-printing markers
		return "", ""
	default: // bash
		return `\[`, `\]`
	}
}

// Build returns "(<on>label<off>) > " with the control sequences wrapped in
// the shell's non-printing markers. With empty colours the markers are
// omitted as well.
func Build(shellType, label string, colors termcap.Colors) string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(wrap(shellType, colors.On))
	b.WriteString(escapeLabel(shellType, label))
	b.WriteString(wrap(shellType, colors.Off))
	b.WriteString(") > ")
	return b.String()
}

// Strip removes the non-printing markers, leaving the raw prompt text with
// control sequences in place.
func Strip(shellType, s string) string {
	open, close := markers(shellType)
	if open == "" {
		return s
	}
	s = strings.ReplaceAll(s, open, "")
	s = strings.ReplaceAll(s, close, "")
	return unescapeLabel(shellType, s)
}

// Plain removes markers and the given control sequences.
func Plain(shellType, s string, colors termcap.Colors) string {
	s = Strip(shellType, s)
	for _, seq := range []string{colors.On, colors.Off} {
		if seq != "" {
			s = strings.ReplaceAll(s, seq, "")
		}
	}
	return s
}

func wrap(shellType, seq string) string {
	if seq == "" {
		return ""
	}
	open, close := markers(shellType)
	return open + seq + close
}

// escapeLabel keeps prompt-expansion characters in a label literal.
func escapeLabel(shellType, label string) string {
	switch shellType {
	case "zsh":
		return strings.ReplaceAll(label, "%", "%%")
	case "fish", "sh":
		return label
	default:
		return strings.ReplaceAll(label, `\`, `\\`)
	}
}

func unescapeLabel(shellType, s string) string {
	switch shellType {
	case "zsh":
		return strings.ReplaceAll(s, "%%", "%")
	default:
		return strings.ReplaceAll(s, `\\`, `\`)
	}
}
