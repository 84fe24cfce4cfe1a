package inlinesvg

var (
	modulePrefix = []byte("export default '")
	moduleSuffix = []byte("'")
)

// Quote appends b to dst, escaped to be the content of a JavaScript string literal delimited by quote.
// Backslashes, quote characters, line breaks and the line and paragraph separators are escaped.
func Quote(dst, b []byte, quote byte) []byte {
	start := 0
	for i := 0; i < len(b); i++ {
		var esc string
		switch c := b[i]; c {
		case '\\':
			esc = `\\`
		case '\n':
			esc = `\n`
		case '\r':
			esc = `\r`
		case quote:
			esc = `\` + string(quote)
		case 0xE2:
			// U+2028 and U+2029 end a line in string literals before ES2019
			if i+2 < len(b) && b[i+1] == 0x80 && (b[i+2] == 0xA8 || b[i+2] == 0xA9) {
				esc = `\u2028`
				if b[i+2] == 0xA9 {
					esc = `\u2029`
				}
				dst = append(dst, b[start:i]...)
				dst = append(dst, esc...)
				i += 2
				start = i + 1
			}
			continue
		default:
			continue
		}
		dst = append(dst, b[start:i]...)
		dst = append(dst, esc...)
		start = i + 1
	}
	return append(dst, b[start:]...)
}

// Module returns an ES module whose default export is b as a single-quoted string.
func Module(b []byte) string {
	dst := make([]byte, 0, len(modulePrefix)+len(b)+len(moduleSuffix)+8)
	dst = append(dst, modulePrefix...)
	dst = Quote(dst, b, '\'')
	dst = append(dst, moduleSuffix...)
	return string(dst)
}
