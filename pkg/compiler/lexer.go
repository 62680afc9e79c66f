package compiler

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/matzehuels/wardley/pkg/errors"
	"github.com/matzehuels/wardley/pkg/position"
)

// line is one non-blank, non-comment statement of the source.
type line struct {
	num     int    // 1-based line number
	text    string // trimmed statement text
	keyword string // first whitespace-delimited word
	rest    string // text after the keyword, trimmed
}

const commentPrefix = "//"

// splitLines returns the statements of text in order.
func splitLines(text string) []line {
	raw := strings.Split(text, "\n")
	out := make([]line, 0, len(raw))
	for i, r := range raw {
		t := strings.TrimSpace(strings.TrimSuffix(r, "\r"))
		if t == "" || strings.HasPrefix(t, commentPrefix) {
			continue
		}
		kw, rest := t, ""
		if j := strings.IndexFunc(t, unicode.IsSpace); j >= 0 {
			kw, rest = t[:j], t[j:]
		}
		out = append(out, line{
			num:     i + 1,
			text:    t,
			keyword: kw,
			rest:    strings.TrimSpace(rest),
		})
	}
	return out
}

// Link arrow shapes, most specific first.
var (
	valueFlowRe = regexp.MustCompile(`^(.+?)\+'([^']*)'(<>|<|>)(.+)$`)
	flowRe      = regexp.MustCompile(`^(.+?)\+(<>|<|>)(.+)$`)
	plainLinkRe = regexp.MustCompile(`^(.+?)->(.+)$`)
)

// looksLikeLink reports whether s has a link arrow.
func looksLikeLink(s string) bool {
	return strings.Contains(s, "->") || strings.Contains(s, "+<") ||
		strings.Contains(s, "+>") || strings.Contains(s, "+'")
}

// bracket splits s at its first top-level [...] group and returns the text
// before it, the contents and the text after it.
func bracket(s string, ln int) (before, inner, after string, err error) {
	open := strings.IndexByte(s, '[')
	if open < 0 {
		return "", "", "", errors.AtLine(errors.ErrCodeLexical, ln, "expected [visibility, maturity]")
	}
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[:open]), s[open+1 : i], strings.TrimSpace(s[i+1:]), nil
			}
		}
	}
	return "", "", "", errors.AtLine(errors.ErrCodeLexical, ln, "unterminated bracket")
}

// splitTopLevel splits s on commas that are not nested inside brackets.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}

// number parses a finite real number for the named field.
func number(s, field string, ln int) (float64, error) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.AtLine(errors.ErrCodeNumeric, ln, "invalid %s %q", field, s)
	}
	return f, nil
}

// pair parses "a, b" into two numbers named first and second.
func pair(inner, first, second string, ln int) (float64, float64, error) {
	parts := splitTopLevel(inner)
	if len(parts) != 2 {
		return 0, 0, errors.AtLine(errors.ErrCodeLexical, ln, "expected [%s, %s], got [%s]", first, second, inner)
	}
	a, err := number(parts[0], first, ln)
	if err != nil {
		return 0, 0, err
	}
	b, err := number(parts[1], second, ln)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// coordinates parses "[visibility, maturity]" contents.
func coordinates(inner string, ln int) (visibility, maturity float64, err error) {
	return pair(inner, "visibility", "maturity", ln)
}

// offset parses "[x, y]" contents of a label position.
func offset(inner string, ln int) (position.Point, error) {
	x, y, err := pair(inner, "label x", "label y", ln)
	if err != nil {
		return position.Point{}, err
	}
	return position.Point{X: x, Y: y}, nil
}

// name validates a declared or referenced element name.
func name(s string, ln int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.AtLine(errors.ErrCodeLexical, ln, "missing element name")
	}
	return s, nil
}
