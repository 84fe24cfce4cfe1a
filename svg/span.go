// Package svg locates and rewrites parts of SVG markup without parsing it into a tree.
// It finds the root <svg> element, its opening tag and named sub-elements by scanning the bytes,
// and rewrites only the spans it touches. Everything else is kept byte-for-byte.
package svg

import (
	"bytes"

	"github.com/tdewolff/parse/v2"
)

const rootName = "svg"

// Span is a byte range [Start,End) in a document. An empty span means nothing was found.
type Span struct {
	Start, End int
}

// Empty returns true if the span does not cover any bytes.
func (s Span) Empty() bool {
	return s.End <= s.Start
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	if s.Empty() {
		return 0
	}
	return s.End - s.Start
}

// Bytes returns the bytes of b covered by the span.
func (s Span) Bytes(b []byte) []byte {
	if s.Empty() {
		return nil
	}
	return b[s.Start:s.End]
}

////////////////////////////////////////////////////////////////

// FindRoot returns the span of the first <svg> element including its closing </svg> tag.
// Nested <svg> elements are balanced, and a self-closing <svg/> is an element by itself.
func FindRoot(b []byte) Span {
	return FindElement(b, Span{0, len(b)}, rootName, 0)
}

// FindOpeningTag returns the span of the opening tag of the element at root, without its children.
func FindOpeningTag(b []byte, root Span) Span {
	if root.Empty() || len(b) < root.End {
		return Span{}
	}
	end, _ := tagEnd(b[:root.End], root.Start)
	if end == -1 {
		return Span{}
	}
	return Span{root.Start, end}
}

// Content returns the span between the opening and the closing tag of the element at elem.
// It is empty but positioned after the opening tag for self-closing elements.
func Content(b []byte, elem Span) Span {
	open := FindOpeningTag(b, elem)
	if open.Empty() {
		return Span{}
	} else if open.End == elem.End {
		return Span{open.End, open.End}
	}
	end := elem.Start + bytes.LastIndexByte(b[elem.Start:elem.End], '<')
	if end < open.End {
		end = open.End
	}
	return Span{open.End, end}
}

// FindElement returns the first element named name that starts at or after from and lies within the given span.
// Nested elements of the same name are balanced by depth. Unclosed elements are skipped.
func FindElement(b []byte, within Span, name string, from int) Span {
	if name == "" || within.Empty() {
		return Span{}
	}
	end := within.End
	if len(b) < end {
		end = len(b)
	}
	if from < within.Start {
		from = within.Start
	}

	b = b[:end]
	for from < end {
		start := indexStartTag(b, from, name)
		if start == -1 {
			return Span{}
		}

		openEnd, void := tagEnd(b, start)
		if openEnd == -1 {
			return Span{} // unterminated tag, nothing after it can be closed
		} else if void {
			return Span{start, openEnd}
		}
		if closeEnd := matchEndTag(b, openEnd, name); closeEnd != -1 {
			return Span{start, closeEnd}
		}
		from = openEnd
	}
	return Span{}
}

// FindElements returns all top-level elements named name within the given span, left to right.
func FindElements(b []byte, within Span, name string) []Span {
	var spans []Span
	from := within.Start
	for {
		s := FindElement(b, within, name, from)
		if s.Empty() {
			return spans
		}
		spans = append(spans, s)
		from = s.End
	}
}

////////////////////////////////////////////////////////////////

// indexStartTag returns the position of the next <name start tag, where name is followed by whitespace, > or /.
func indexStartTag(b []byte, from int, name string) int {
	for from < len(b) {
		i := bytes.IndexByte(b[from:], '<')
		if i == -1 {
			return -1
		}
		i += from
		if isTagName(b, i+1, name) {
			return i
		}
		from = i + 1
	}
	return -1
}

// isTagName returns true if b contains name at position i, followed by a delimiter of tag names.
func isTagName(b []byte, i int, name string) bool {
	if len(b) < i+len(name)+1 || string(b[i:i+len(name)]) != name {
		return false
	}
	c := b[i+len(name)]
	return c == '>' || c == '/' || parse.IsWhitespace(c)
}

// tagEnd returns the position after the > that closes the tag starting at start.
// A > inside a quoted attribute value does not end the tag. It returns -1 if the tag is not terminated.
func tagEnd(b []byte, start int) (int, bool) {
	var quote, prev byte
	for i := start + 1; i < len(b); i++ {
		c := b[i]
		if quote != 0 {
			if c == quote {
				quote = 0
				prev = c
			}
			continue
		}
		switch c {
		case '"', '\'':
			if prev == '=' {
				quote = c
			}
		case '>':
			return i + 1, b[i-1] == '/'
		}
		if !parse.IsWhitespace(c) {
			prev = c
		}
	}
	return -1, false
}

// matchEndTag returns the position after the </name> that closes an element whose content starts at from.
// It returns -1 if the element is not closed.
func matchEndTag(b []byte, from int, name string) int {
	depth := 1
	for from < len(b) {
		i := bytes.IndexByte(b[from:], '<')
		if i == -1 {
			return -1
		}
		i += from

		if i+1 < len(b) && b[i+1] == '/' {
			if end := endTagEnd(b, i+2, name); end != -1 {
				depth--
				if depth == 0 {
					return end
				}
				from = end
				continue
			}
		} else if isTagName(b, i+1, name) {
			end, void := tagEnd(b, i)
			if end == -1 {
				return -1
			} else if !void {
				depth++
			}
			from = end
			continue
		}
		from = i + 1
	}
	return -1
}

// endTagEnd returns the position after the > of an end tag whose name starts at i, or -1 if it isn't name.
func endTagEnd(b []byte, i int, name string) int {
	if len(b) < i+len(name) || string(b[i:i+len(name)]) != name {
		return -1
	}
	for i += len(name); i < len(b); i++ {
		if b[i] == '>' {
			return i + 1
		} else if !parse.IsWhitespace(b[i]) {
			return -1
		}
	}
	return -1
}
