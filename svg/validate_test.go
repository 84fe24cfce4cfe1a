package svg

import (
	"strings"
	"testing"

	"github.com/tdewolff/test"
)

func TestPresentAttributes(t *testing.T) {
	var tests = []struct {
		svg        string
		candidates []string
		expected   string
	}{
		{`<svg fill="red"><path/></svg>`, []string{"fill", "id"}, `fill`},
		{`<svg fill="red" id="a"></svg>`, []string{"id", "fill"}, `id,fill`},
		{`<svg><path fill="red"/></svg>`, []string{"fill"}, ``},
		{`<svg stroke-width="1"></svg>`, []string{"width"}, ``},
		{`<svg width="1"height="2"></svg>`, []string{"width", "height"}, `width,height`},
		{`<svg fill="red"></svg>`, nil, ``},
		{`<g fill="red"></g>`, []string{"fill"}, ``},
		{``, []string{"fill"}, ``},
	}
	for _, tt := range tests {
		t.Run(tt.svg, func(t *testing.T) {
			test.String(t, strings.Join(PresentAttributes([]byte(tt.svg), tt.candidates), ","), tt.expected)
		})
	}
}

func TestPresentElements(t *testing.T) {
	var tests = []struct {
		svg        string
		candidates []string
		expected   string
	}{
		{`<svg><title>x</title><style/></svg>`, []string{"style", "title", "desc"}, `style,title`},
		{`<svg><g><desc>x</desc></g></svg>`, []string{"desc"}, `desc`},
		{`<title>x</title><svg></svg>`, []string{"title"}, ``},
		{`<svg><title>x</svg>`, []string{"title"}, ``},
		{`<svg/>`, []string{"svg"}, ``},
		{`<g><title>x</title></g>`, []string{"title"}, ``},
	}
	for _, tt := range tests {
		t.Run(tt.svg, func(t *testing.T) {
			test.String(t, strings.Join(PresentElements([]byte(tt.svg), tt.candidates), ","), tt.expected)
		})
	}
}
