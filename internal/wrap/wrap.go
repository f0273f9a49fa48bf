// Package wrap breaks message text into fixed-width lines.
//
// Width is measured in characters, never in glyph advances: the layout has
// to agree line for line with the on-chain renderer, which assumes a
// monospace face and does not hyphenate. Words are separated by single
// spaces; runs of spaces produce empty words, as on-chain.
package wrap

import (
	"strings"
	"unicode/utf8"
)

// Role distinguishes the username label from message text on a line.
type Role int

const (
	RoleBody Role = iota
	RoleLabel
)

func (r Role) String() string {
	if r == RoleLabel {
		return "label"
	}
	return "body"
}

// Segment is a run of text rendered with a single role.
type Segment struct {
	Text string
	Role Role
}

// Line is one rendered row.
type Line struct {
	Segments []Segment
}

// Text concatenates the line's segments.
func (l Line) Text() string {
	var b strings.Builder
	for _, s := range l.Segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Block is a wrapped paragraph. Truncated reports that content was
// dropped because the line cap was reached.
type Block struct {
	Lines     []Line
	Truncated bool
}

// Budget returns the character budget for the line at index i.
type Budget func(i int) int

// Fixed gives every line the same budget.
func Fixed(n int) Budget {
	return func(int) int { return n }
}

// FirstLine gives line 0 its own budget and every later line rest.
func FirstLine(first, rest int) Budget {
	return func(i int) int {
		if i == 0 {
			return first
		}
		return rest
	}
}

// Lines is the greedy wrapping primitive shared by every layout. A word is
// appended to the current line while the result fits the budget of that
// line; otherwise the line is flushed. Words longer than the budget are
// split into budget-sized chunks. Once maxLines lines exist the remaining
// text is discarded and truncated is true.
func Lines(text string, budget Budget, maxLines int) (lines []string, truncated bool) {
	if maxLines <= 0 {
		return nil, text != ""
	}
	width := func(i int) int {
		if n := budget(i); n > 0 {
			return n
		}
		return 1
	}

	words := strings.Split(text, " ")
	current := ""
	for i, word := range words {
		if len(lines) >= maxLines {
			truncated = current != "" || anyNonEmpty(words[i:])
			current = ""
			break
		}

		test := word
		if current != "" {
			test = current + " " + word
		}
		if runeLen(test) <= width(len(lines)) {
			current = test
			continue
		}

		if current != "" {
			lines = append(lines, current)
			current = ""
			if len(lines) >= maxLines {
				truncated = anyNonEmpty(words[i:])
				break
			}
		}

		if runeLen(word) > width(len(lines)) {
			remaining := word
			for remaining != "" && len(lines) < maxLines {
				head, tail := splitAt(remaining, width(len(lines)))
				lines = append(lines, head)
				remaining = tail
			}
			current = remaining
		} else {
			current = word
		}
	}

	if current != "" {
		if len(lines) < maxLines {
			lines = append(lines, current)
		} else {
			truncated = true
		}
	}
	return lines, truncated
}

// LabelWidth is the number of characters "<username> " occupies.
func LabelWidth(username string) int {
	return runeLen(username) + 3
}

// Labeled wraps text behind a "<username> " prefix on the first line. The
// prefix consumes part of the first line's budget; at least minFirst
// characters of text are always allowed there.
func Labeled(username, text string, width, minFirst, maxLines int) Block {
	first := width - LabelWidth(username)
	if first < minFirst {
		first = minFirst
	}
	lines, truncated := Lines(text, FirstLine(first, width), maxLines)

	block := Block{Truncated: truncated}
	firstBody := ""
	if len(lines) > 0 {
		firstBody = lines[0]
	}
	block.Lines = append(block.Lines, Line{Segments: []Segment{
		{Text: "<" + username + "> ", Role: RoleLabel},
		{Text: firstBody, Role: RoleBody},
	}})
	for _, l := range lines[min(1, len(lines)):] {
		block.Lines = append(block.Lines, Line{Segments: []Segment{{Text: l, Role: RoleBody}}})
	}
	return block
}

// Feed wraps "<username> text" as one string with a uniform budget. The
// label is split back out of the first line so it can be colored.
func Feed(username, text string, width, maxLines int) Block {
	lines, truncated := Lines("<"+username+"> "+text, Fixed(width), maxLines)

	block := Block{Truncated: truncated}
	for i, l := range lines {
		if i > 0 {
			block.Lines = append(block.Lines, Line{Segments: []Segment{{Text: l, Role: RoleBody}}})
			continue
		}
		label, body := splitAt(l, runeLen(username)+2)
		line := Line{Segments: []Segment{{Text: label, Role: RoleLabel}}}
		if body != "" {
			line.Segments = append(line.Segments, Segment{Text: body, Role: RoleBody})
		}
		block.Lines = append(block.Lines, line)
	}
	return block
}

// Clip shortens s to n characters followed by "...", leaving shorter
// strings untouched.
func Clip(s string, n int) string {
	if runeLen(s) <= n {
		return s
	}
	head, _ := splitAt(s, n)
	return head + "..."
}

func splitAt(s string, n int) (string, string) {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], s[pos:]
		}
		i++
	}
	return s, ""
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func anyNonEmpty(words []string) bool {
	for _, w := range words {
		if w != "" {
			return true
		}
	}
	return false
}
