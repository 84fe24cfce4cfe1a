package svg

import (
	"bytes"

	"github.com/tdewolff/parse/v2"
)

var (
	ltBytes                 = []byte("<")
	gtBytes                 = []byte(">")
	voidBytes               = []byte("/>")
	isQuoteBytes            = []byte("=\"")
	quoteBytes              = []byte("\"")
	spaceBytes              = []byte(" ")
	escapedDoubleQuoteBytes = []byte("&#34;")
)

// Attr is an attribute of a tag with its raw, unescaped value.
type Attr struct {
	Key, Val []byte
}

// Attrs is an ordered list of attributes with unique keys.
type Attrs []Attr

// ExtractAttributes returns the attributes of the opening tag in the order of their first occurrence.
// A repeated key keeps its first position but takes the last value. Attributes without a value are omitted.
func ExtractAttributes(tag []byte) Attrs {
	var attrs Attrs
	for _, a := range lexAttributes(tag) {
		if a.hasVal {
			attrs.Set(a.key.Bytes(tag), a.val.Bytes(tag))
		}
	}
	return attrs
}

// Index returns the position of key, or -1 if it isn't present.
func (attrs Attrs) Index(key string) int {
	for i, attr := range attrs {
		if string(attr.Key) == key {
			return i
		}
	}
	return -1
}

// Has returns true if key is present.
func (attrs Attrs) Has(key string) bool {
	return attrs.Index(key) != -1
}

// Get returns the value of key.
func (attrs Attrs) Get(key string) ([]byte, bool) {
	if i := attrs.Index(key); i != -1 {
		return attrs[i].Val, true
	}
	return nil, false
}

// Set sets the value of key, appending it when it isn't present yet.
func (attrs *Attrs) Set(key, val []byte) {
	if i := attrs.Index(string(key)); i != -1 {
		(*attrs)[i].Val = val
		return
	}
	*attrs = append(*attrs, Attr{key, val})
}

// Delete removes key and returns true if it was present.
func (attrs *Attrs) Delete(key string) bool {
	i := attrs.Index(key)
	if i == -1 {
		return false
	}
	*attrs = append((*attrs)[:i:i], (*attrs)[i+1:]...)
	return true
}

// AppendTag appends the opening tag <name key="val" ...> to dst.
// Values are always double quoted, double quotes inside values are escaped.
func (attrs Attrs) AppendTag(dst []byte, name string) []byte {
	dst = append(dst, ltBytes...)
	dst = append(dst, name...)
	for _, attr := range attrs {
		dst = append(dst, spaceBytes...)
		dst = append(dst, attr.Key...)
		dst = append(dst, isQuoteBytes...)
		dst = appendEscapedAttrVal(dst, attr.Val)
		dst = append(dst, quoteBytes...)
	}
	return append(dst, gtBytes...)
}

// Tag returns the opening tag <name key="val" ...>.
func (attrs Attrs) Tag(name string) []byte {
	n := len(name) + 2
	for _, attr := range attrs {
		n += len(attr.Key) + len(attr.Val) + 4
	}
	return attrs.AppendTag(make([]byte, 0, n), name)
}

func appendEscapedAttrVal(dst, val []byte) []byte {
	for {
		i := bytes.IndexByte(val, '"')
		if i == -1 {
			return append(dst, val...)
		}
		dst = append(dst, val[:i]...)
		dst = append(dst, escapedDoubleQuoteBytes...)
		val = val[i+1:]
	}
}

////////////////////////////////////////////////////////////////

// attrToken is an attribute found in a tag. Start includes the whitespace preceding the key, if any.
type attrToken struct {
	start  int
	key    Span
	val    Span
	hasVal bool
	end    int
}

// lexAttributes returns the attributes of the opening tag. Key and value positions are relative to tag.
func lexAttributes(tag []byte) []attrToken {
	i := 0
	if 0 < len(tag) && tag[0] == '<' {
		i++
	}
	for i < len(tag) && tag[i] != '>' && tag[i] != '/' && !parse.IsWhitespace(tag[i]) {
		i++ // tag name
	}

	var attrs []attrToken
	quoted := false // an attribute may directly follow a closing quote
	for i < len(tag) {
		start := i
		for i < len(tag) && parse.IsWhitespace(tag[i]) {
			i++
		}
		if i == len(tag) || tag[i] == '>' {
			break
		} else if start == i && !quoted || tag[i] == '/' || tag[i] == '=' || tag[i] == '"' || tag[i] == '\'' {
			quoted = false
			i++ // skip stray characters
			continue
		}
		quoted = false

		a := attrToken{start: start}
		a.key.Start = i
		for i < len(tag) && tag[i] != '=' && tag[i] != '>' && tag[i] != '/' && !parse.IsWhitespace(tag[i]) {
			i++
		}
		a.key.End = i

		j := i
		for j < len(tag) && parse.IsWhitespace(tag[j]) {
			j++
		}
		if j == len(tag) || tag[j] != '=' {
			a.end = i
			attrs = append(attrs, a)
			continue
		}
		j++
		for j < len(tag) && parse.IsWhitespace(tag[j]) {
			j++
		}
		if j == len(tag) {
			break
		}

		if quote := tag[j]; quote == '"' || quote == '\'' {
			k := bytes.IndexByte(tag[j+1:], quote)
			if k == -1 {
				break // unterminated value
			}
			a.val = Span{j + 1, j + 1 + k}
			i = j + k + 2
			quoted = true
		} else {
			i = j
			for i < len(tag) && tag[i] != '>' && !parse.IsWhitespace(tag[i]) {
				i++
			}
			if j < i && tag[i-1] == '/' && i < len(tag) && tag[i] == '>' {
				i-- // self-closing tag
			}
			a.val = Span{j, i}
		}
		a.hasVal = true
		a.end = i
		attrs = append(attrs, a)
	}
	return attrs
}
