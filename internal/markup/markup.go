// Package markup parses the lightweight inline markup used in task
// descriptions: bullet lines, numbered lines, checkboxes, and
// leading-emoji headers.
package markup

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/text"
)

type LineKind int

const (
	Plain LineKind = iota
	Header
	Bullet
	Numbered
	CheckboxOpen
	CheckboxDone
)

// Line is one parsed description line.
type Line struct {
	Kind   LineKind
	Number int // set for Numbered lines
	Text   string
}

// Parse splits a description into typed lines. Unrecognized lines come
// back as Plain with their text untouched.
func Parse(description string) []Line {
	if description == "" {
		return nil
	}
	var out []Line
	for _, raw := range strings.Split(description, "\n") {
		out = append(out, parseLine(raw))
	}
	return out
}

func parseLine(raw string) Line {
	line := strings.TrimRight(raw, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	switch {
	case strings.HasPrefix(trimmed, "• "):
		return Line{Kind: Bullet, Text: strings.TrimPrefix(trimmed, "• ")}
	case strings.HasPrefix(trimmed, "☐ "):
		return Line{Kind: CheckboxOpen, Text: strings.TrimPrefix(trimmed, "☐ ")}
	case strings.HasPrefix(trimmed, "✓ "):
		return Line{Kind: CheckboxDone, Text: strings.TrimPrefix(trimmed, "✓ ")}
	}
	if n, rest, ok := splitNumbered(trimmed); ok {
		return Line{Kind: Numbered, Number: n, Text: rest}
	}
	if startsWithEmoji(trimmed) {
		return Line{Kind: Header, Text: trimmed}
	}
	return Line{Kind: Plain, Text: line}
}

// splitNumbered matches "N. text".
func splitNumbered(s string) (int, string, bool) {
	dot := strings.Index(s, ". ")
	if dot <= 0 {
		return 0, "", false
	}
	n, err := strconv.Atoi(s[:dot])
	if err != nil {
		return 0, "", false
	}
	return n, s[dot+2:], true
}

// startsWithEmoji reports whether the line opens with a pictographic
// rune, the convention the app uses for section headers.
func startsWithEmoji(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return false
	}
	// the common emoji blocks plus misc symbols; bullets and checkboxes
	// are matched earlier so they never land here
	return r >= 0x1F300 || (r >= 0x2600 && r <= 0x27BF && unicode.IsSymbol(r))
}

// Render formats a description for the terminal: bold headers, dimmed
// completed checkboxes, indented list items.
func Render(description string) string {
	lines := Parse(description)
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch l.Kind {
		case Header:
			b.WriteString(text.Bold.Sprint(l.Text))
		case Bullet:
			b.WriteString("  • " + l.Text)
		case Numbered:
			b.WriteString("  " + strconv.Itoa(l.Number) + ". " + l.Text)
		case CheckboxOpen:
			b.WriteString("  ☐ " + l.Text)
		case CheckboxDone:
			b.WriteString("  " + text.FgGreen.Sprint("✓ "+l.Text))
		default:
			b.WriteString(l.Text)
		}
	}
	return b.String()
}
