package inlinesvg

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"

	"github.com/tdewolff/test"
)

func helperTransformer(t *testing.T, c Config) *Transformer {
	tr, err := New(c)
	test.Error(t, err)
	return tr
}

func TestTransform(t *testing.T) {
	removeTitle := DefaultConfig()
	removeTitle.RemoveElements = true
	removeTitle.ElementsToRemove = []string{"title"}

	removeClass := DefaultConfig()
	removeClass.AttributesToRemove = []string{"class"}

	removeDefault := DefaultConfig()
	removeDefault.RemoveElements = true

	keepSize := DefaultConfig()
	keepSize.RemoveSizeAttributes = false

	var tests = []struct {
		name     string
		config   Config
		svg      string
		expected string
	}{
		{"remove title", removeTitle, `<svg width="10" height="10"><title>x</title><path d="M0 0"/></svg>`, `<svg><path d="M0 0"/></svg>`},
		{"flatten", DefaultConfig(), "<svg>\n<rect/>\n</svg>", `<svg><rect/></svg>`},
		{"flatten crlf", DefaultConfig(), "<svg>\r\n<rect/>\r</svg>", `<svg><rect/></svg>`},
		{"no root", removeDefault, "  <g><rect/></g>\n", `<g><rect/></g>`},
		{"remove class", removeClass, `<svg class="icon" viewBox="0 0 1 1"></svg>`, `<svg viewBox="0 0 1 1"></svg>`},
		{"remove defaults", removeDefault, `<svg><title>a</title><desc>b</desc><defs><g/></defs><style>c{}</style><path/></svg>`, `<svg><path/></svg>`},
		{"elements off", DefaultConfig(), `<svg><title>a</title></svg>`, `<svg><title>a</title></svg>`},
		{"keep size", keepSize, `<svg width="10"></svg>`, `<svg width="10"></svg>`},
		{"prolog", DefaultConfig(), "<?xml version=\"1.0\"?>\n<svg height=\"1\">\n</svg>\n", `<?xml version="1.0"?><svg></svg>`},
		{"empty", DefaultConfig(), "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, warnings := helperTransformer(t, tt.config).Transform("icon.svg", []byte(tt.svg))
			test.String(t, string(out), tt.expected)
			test.T(t, len(warnings), 0)
		})
	}
}

func TestTransformWarnings(t *testing.T) {
	c := DefaultConfig()
	c.AttributesToWarn = []string{"fill", "id"}
	c.ElementsToWarn = []string{"script", "style", "title"}

	buf := &bytes.Buffer{}
	tr := helperTransformer(t, c)
	tr.Logger = log.New(buf, "", 0)

	out, warnings := tr.Transform("icon.svg", []byte(`<svg fill="red" width="1"><title>x</title><style/></svg>`))
	test.String(t, string(out), `<svg fill="red"><title>x</title><style/></svg>`)
	test.T(t, len(warnings), 2)
	test.T(t, warnings[0].Kind, ForbiddenAttrs)
	test.T(t, fmt.Sprint(warnings[0].Names), "[fill]")
	test.T(t, warnings[1].Kind, ForbiddenNodes)
	test.T(t, fmt.Sprint(warnings[1].Names), "[style title]")
	test.String(t, buf.String(), "icon.svg has forbidden attrs: fill\nicon.svg has forbidden nodes: style, title\n")

	buf.Reset()
	_, warnings = tr.Transform("plain.svg", []byte(`<svg><path fill="red"/></svg>`))
	test.T(t, len(warnings), 0)
	test.String(t, buf.String(), "")
}

func TestTransformWarningsBeforeRemoval(t *testing.T) {
	c := DefaultConfig()
	c.AttributesToWarn = []string{"class"}
	c.AttributesToRemove = []string{"class"}
	c.ElementsToWarn = []string{"title"}
	c.RemoveElements = true

	out, warnings := helperTransformer(t, c).Transform("icon.svg", []byte(`<svg class="x"><title>x</title></svg>`))
	test.String(t, string(out), `<svg></svg>`)
	test.T(t, len(warnings), 2)
	test.String(t, warnings[0].String(), "icon.svg has forbidden attrs: class")
	test.String(t, warnings[1].String(), "icon.svg has forbidden nodes: title")
}

func TestTransformMinify(t *testing.T) {
	c := DefaultConfig()
	c.Minify = true

	out, _ := helperTransformer(t, c).Transform("icon.svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="200" height="100">
	<path d="M 0,0 L 10, 0 z"/>
</svg>`))
	test.String(t, string(out), `<svg xmlns="http://www.w3.org/2000/svg"><path d="M0 0H10z"/></svg>`)
}

func TestTransformConcurrent(t *testing.T) {
	c := DefaultConfig()
	c.RemoveElements = true
	tr := helperTransformer(t, c)

	var wg sync.WaitGroup
	outs := make([]string, 8)
	for i := range outs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, _ := tr.Transform("icon.svg", []byte(fmt.Sprintf(`<svg width="%d"><title>%d</title><path/></svg>`, i, i)))
			outs[i] = string(out)
		}(i)
	}
	wg.Wait()
	for _, out := range outs {
		test.String(t, out, `<svg><path/></svg>`)
	}
}

func TestNew(t *testing.T) {
	c := DefaultConfig()
	c.ElementsToWarn = []string{"ti tle"}
	_, err := New(c)
	test.That(t, errors.Is(err, ErrBadName), "must return ErrBadName for names with whitespace")
}

func TestNewDefaultElements(t *testing.T) {
	tr := helperTransformer(t, Config{RemoveElements: true})
	test.T(t, tr.ElementsToRemove, DefaultElementsToRemove)
	b, _ := tr.Transform("a.svg", []byte(`<svg><title>x</title><desc>y</desc><path/></svg>`))
	test.String(t, string(b), `<svg><path/></svg>`)

	tr.ElementsToRemove[0] = "g"
	test.String(t, DefaultElementsToRemove[0], "title", "defaults must not be shared")

	tr = helperTransformer(t, Config{RemoveElements: true, ElementsToRemove: []string{}})
	b, _ = tr.Transform("a.svg", []byte(`<svg><title>x</title></svg>`))
	test.String(t, string(b), `<svg><title>x</title></svg>`, "empty list must remove nothing")
}

func TestTransformByteOrderMark(t *testing.T) {
	tr := helperTransformer(t, DefaultConfig())
	b, _ := tr.Transform("a.svg", []byte("\xEF\xBB\xBF\n<svg width=\"1\"></svg>\n"))
	test.String(t, string(b), `<svg></svg>`)

	res, err := tr.Handle("a.svg", []byte("\uFEFF<svg/>"))
	test.Error(t, err)
	test.String(t, res.Code, `export default '<svg/>'`)
}

func TestHandle(t *testing.T) {
	tr := helperTransformer(t, DefaultConfig())

	var tests = []struct {
		id       string
		svg      string
		expected string
	}{
		{"icon.svg", `<svg width="1"></svg>`, `export default '<svg></svg>'`},
		{"dir/icon.svg", "<svg>\n<text>it's</text>\n</svg>", `export default '<svg><text>it\'s</text></svg>'`},
		{"/abs/icon.svg", `<svg><text>a\b</text></svg>`, `export default '<svg><text>a\\b</text></svg>'`},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			res, err := tr.Handle(tt.id, []byte(tt.svg))
			test.Error(t, err)
			test.String(t, res.Code, tt.expected)
		})
	}

	_, err := tr.Handle("icon.png", []byte(`<svg></svg>`))
	test.T(t, err, ErrNotSVG)
	_, err = tr.Handle("icon.svg.js", []byte(`<svg></svg>`))
	test.T(t, err, ErrNotSVG)
}

func TestMatch(t *testing.T) {
	tr := helperTransformer(t, DefaultConfig())
	test.That(t, tr.Match("a.svg"))
	test.That(t, tr.Match("dir.x/a.svg"))
	test.That(t, !tr.Match("a.SVG"))
	test.That(t, !tr.Match("svg"))
	test.That(t, !tr.Match("a.svg/b"))
}

func TestStripLineBreaks(t *testing.T) {
	test.String(t, string(stripLineBreaks([]byte("a\r\nb\nc\rd"))), "abcd")
	test.String(t, string(stripLineBreaks([]byte("abcd"))), "abcd")
}

func TestWarningKind(t *testing.T) {
	test.String(t, ForbiddenAttrs.String(), "attrs")
	test.String(t, ForbiddenNodes.String(), "nodes")
	test.String(t, WarningKind(5).String(), "Invalid(5)")
}

////////////////////////////////////////////////////////////////

func ExampleTransformer_Handle() {
	c := DefaultConfig()
	c.RemoveElements = true
	c.ElementsToWarn = []string{"script"}

	t, err := New(c)
	if err != nil {
		panic(err)
	}
	t.Logger = log.New(os.Stdout, "", 0)

	res, err := t.Handle("icon.svg", []byte(`<svg width="24" height="24">
  <title>Icon</title>
  <script>alert(1)</script>
  <path d="M0 0h24v24H0z"/>
</svg>`))
	if err != nil {
		panic(err)
	}
	fmt.Println(res.Code)
	// Output:
	// icon.svg has forbidden nodes: script
	// export default '<svg>    <script>alert(1)</script>  <path d="M0 0h24v24H0z"/></svg>'
}
