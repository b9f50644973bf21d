// Package loc has routines for tracking source file locations.
package loc

import (
	"fmt"
	"strings"
)

// A Source is a single loaded source text.
type Source struct {
	Origin string
	Text   string

	// Byte offsets of newlines, computed once on load.
	nls []int
}

// NewSource returns a Source for text loaded from origin.
func NewSource(origin, text string) *Source {
	src := &Source{Origin: origin, Text: text}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			src.nls = append(src.nls, i)
		}
	}
	return src
}

// lineCol returns the 1-based line and column of a byte offset.
func (src *Source) lineCol(offs int) (int, int) {
	line, start := 1, 0
	for _, nl := range src.nls {
		if nl >= offs {
			break
		}
		start = nl + 1
		line++
	}
	return line, offs - start + 1
}

// lineAt returns the text of the line containing a byte offset,
// without its trailing newline, and the offset of its first byte.
func (src *Source) lineAt(offs int) (string, int) {
	start, end := 0, len(src.Text)
	for _, nl := range src.nls {
		if nl >= offs {
			end = nl
			break
		}
		start = nl + 1
	}
	return src.Text[start:end], start
}

// A Loc identifies a span of text in a source as a half-open byte range.
// The zero value indicates no location.
type Loc struct {
	Src        *Source
	Start, End int
}

// Text returns the source text the location spans.
func (l Loc) Text() string {
	if l.Src == nil {
		return ""
	}
	return l.Src.Text[l.Start:l.End]
}

// Extend widens the location's end to cover other.
func (l *Loc) Extend(other Loc) {
	if l.Src == nil {
		*l = other
		return
	}
	if other.Src == l.Src && other.End > l.End {
		l.End = other.End
	}
}

// Range returns a location spanning from l's start to other's end.
func (l Loc) Range(other Loc) Loc {
	r := l
	r.Extend(other)
	return r
}

func (l Loc) String() string {
	if l.Src == nil {
		return ""
	}
	line, col := l.Src.lineCol(l.Start)
	return fmt.Sprintf("%s:%d:%d", l.Src.Origin, line, col)
}

// Excerpt renders the first source line the location spans,
// underlined, for use in diagnostics. It is empty for the zero Loc.
func (l Loc) Excerpt() string {
	if l.Src == nil {
		return ""
	}
	text, start := l.Src.lineAt(l.Start)
	col := l.Start - start
	n := l.End - l.Start
	if max := len(text) - col; n > max {
		n = max
	}
	if n < 1 {
		n = 1
	}
	var s strings.Builder
	s.WriteString("\n  ")
	s.WriteString(text)
	s.WriteString("\n  ")
	for i := 0; i < col; i++ {
		if i < len(text) && text[i] == '\t' {
			s.WriteByte('\t')
		} else {
			s.WriteByte(' ')
		}
	}
	s.WriteByte('^')
	for i := 1; i < n; i++ {
		s.WriteByte('~')
	}
	return s.String()
}
