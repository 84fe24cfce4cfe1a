package svg

import "github.com/tdewolff/parse/v2"

// SizeAttributes are the attributes removed by StripSizeAttributes.
var SizeAttributes = []string{"width", "height"}

// StripSizeAttributes removes the width and height attributes, including their leading whitespace, from the opening tag of the root element.
func StripSizeAttributes(b []byte) []byte {
	root := FindRoot(b)
	if root.Empty() {
		return b
	}
	open := FindOpeningTag(b, root)
	if open.Empty() {
		return b
	}

	for _, name := range SizeAttributes {
		for {
			s := findAttribute(b, open, name)
			if s.Empty() {
				break
			}
			b = replace(b, s, nil)
			open.End -= s.Len()
		}
	}
	return b
}

// StripAttributes removes the named attributes from the opening tag of the root element, which is then rewritten with double-quoted values.
// Attributes without a value are dropped from the rewritten tag as well.
// It returns b unchanged when there is no root element or none of the names is present.
func StripAttributes(b []byte, names []string) []byte {
	root := FindRoot(b)
	if root.Empty() || len(names) == 0 {
		return b
	}
	open := FindOpeningTag(b, root)
	if open.Empty() {
		return b
	}

	tag := open.Bytes(b)
	attrs := ExtractAttributes(tag)
	removed := false
	for _, name := range names {
		if attrs.Delete(name) {
			removed = true
		}
	}
	if !removed {
		return b
	}

	repl := attrs.Tag(rootName)
	if 1 < len(tag) && tag[len(tag)-2] == '/' {
		repl = append(repl[:len(repl)-1], voidBytes...)
	}
	return replace(b, open, repl)
}

// StripElements removes all sub-elements with the given names, including their content, from the root element.
// Names are processed in order and elements left to right, scanning again after each removal.
func StripElements(b []byte, names []string) []byte {
	root := FindRoot(b)
	if root.Empty() {
		return b
	}
	content := Content(b, root)
	for _, name := range names {
		from := content.Start
		for {
			s := FindElement(b, content, name, from)
			if s.Empty() {
				break
			}
			b = replace(b, s, nil)
			content.End -= s.Len()
			from = s.Start
		}
	}
	return b
}

////////////////////////////////////////////////////////////////

// findAttribute returns the span of the attribute name in the tag at open, up to the end of its value.
// The span includes the leading whitespace only when a separator follows the value, so that the tag name and the next attribute stay apart.
func findAttribute(b []byte, open Span, name string) Span {
	tag := open.Bytes(b)
	for _, a := range lexAttributes(tag) {
		if a.hasVal && string(a.key.Bytes(tag)) == name {
			start := a.start
			if a.end < len(tag) && tag[a.end] != '>' && tag[a.end] != '/' && !parse.IsWhitespace(tag[a.end]) {
				start = a.key.Start
			}
			return Span{open.Start + start, open.Start + a.end}
		}
	}
	return Span{}
}

// replace returns a copy of b where the span s is replaced by repl.
func replace(b []byte, s Span, repl []byte) []byte {
	dst := make([]byte, 0, len(b)-s.Len()+len(repl))
	dst = append(dst, b[:s.Start]...)
	dst = append(dst, repl...)
	return append(dst, b[s.End:]...)
}
