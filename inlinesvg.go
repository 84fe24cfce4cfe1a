// Package inlinesvg transforms SVG files into ES modules that export the markup as a string.
// The transformation strips sizing attributes, removes or warns about configured attributes and elements,
// and flattens the result into a single line.
package inlinesvg

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/tdewolff/inlinesvg/svg"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	svgMinify "github.com/tdewolff/minify/v2/svg"
	"github.com/tdewolff/parse/v2"
)

// ErrNotSVG is returned by Handle when the identifier doesn't refer to an SVG file.
var ErrNotSVG = errors.New("not an SVG file")

const svgMimetype = "image/svg+xml"

var bomBytes = []byte("\xEF\xBB\xBF")

// WarningKind is the kind of forbidden content a Warning reports.
type WarningKind int

// WarningKind values.
const (
	ForbiddenAttrs WarningKind = iota
	ForbiddenNodes
)

func (k WarningKind) String() string {
	switch k {
	case ForbiddenAttrs:
		return "attrs"
	case ForbiddenNodes:
		return "nodes"
	}
	return "Invalid(" + fmt.Sprint(int(k)) + ")"
}

// Warning reports the forbidden attributes or elements present in a file.
type Warning struct {
	ID    string
	Kind  WarningKind
	Names []string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s has forbidden %v: %s", w.ID, w.Kind, strings.Join(w.Names, ", "))
}

// Result is the output of Handle.
type Result struct {
	Code     string
	Warnings []Warning
}

////////////////////////////////////////////////////////////////

// Transformer applies a Config to SVG files. It is safe for concurrent use.
type Transformer struct {
	Config

	// Logger receives the warnings, they are discarded when nil.
	Logger *log.Logger

	m *minify.M
}

// New returns a Transformer for the given configuration.
func New(c Config) (*Transformer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.ElementsToRemove == nil {
		c.ElementsToRemove = append([]string{}, DefaultElementsToRemove...)
	}

	t := &Transformer{Config: c}
	if c.Minify {
		t.m = minify.New()
		t.m.AddFunc("text/css", css.Minify)
		t.m.AddFunc(svgMimetype, svgMinify.Minify)
	}
	return t, nil
}

// Match returns true if the identifier refers to an SVG file.
func (t *Transformer) Match(id string) bool {
	return strings.HasSuffix(path.Ext(id), ".svg")
}

// Handle transforms the content of the SVG file id and returns it as an ES module.
// It returns ErrNotSVG if the identifier doesn't refer to an SVG file.
func (t *Transformer) Handle(id string, content []byte) (Result, error) {
	if !t.Match(id) {
		return Result{}, ErrNotSVG
	}
	b, warnings := t.Transform(id, content)
	return Result{Module(b), warnings}, nil
}

// Transform applies the configuration to the SVG markup in b and returns the result as a single line.
// Content without an <svg> element is only trimmed and flattened, a leading byte order mark is removed as well. The identifier is used for warnings.
func (t *Transformer) Transform(id string, b []byte) ([]byte, []Warning) {
	b = parse.TrimWhitespace(bytes.TrimPrefix(b, bomBytes))

	var warnings []Warning
	if 0 < len(t.AttributesToWarn) {
		if names := svg.PresentAttributes(b, t.AttributesToWarn); 0 < len(names) {
			warnings = append(warnings, t.warn(Warning{id, ForbiddenAttrs, names}))
		}
	}
	if 0 < len(t.ElementsToWarn) {
		if names := svg.PresentElements(b, t.ElementsToWarn); 0 < len(names) {
			warnings = append(warnings, t.warn(Warning{id, ForbiddenNodes, names}))
		}
	}

	if t.RemoveSizeAttributes {
		b = svg.StripSizeAttributes(b)
	}
	if 0 < len(t.AttributesToRemove) {
		b = svg.StripAttributes(b, t.AttributesToRemove)
	}
	if t.RemoveElements {
		b = svg.StripElements(b, t.ElementsToRemove)
	}
	if t.m != nil {
		if out, err := t.m.Bytes(svgMimetype, b); err != nil {
			if t.Logger != nil {
				t.Logger.Printf("%s: cannot minify: %v", id, err)
			}
		} else {
			b = out
		}
	}
	return stripLineBreaks(b), warnings
}

func (t *Transformer) warn(w Warning) Warning {
	if t.Logger != nil {
		t.Logger.Println(w)
	}
	return w
}

// stripLineBreaks returns b without CR and LF characters.
func stripLineBreaks(b []byte) []byte {
	if bytes.IndexAny(b, "\r\n") == -1 {
		return b
	}
	dst := make([]byte, 0, len(b))
	for _, c := range b {
		if c != '\r' && c != '\n' {
			dst = append(dst, c)
		}
	}
	return dst
}
