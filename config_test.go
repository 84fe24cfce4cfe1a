package inlinesvg

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func helperConfigFile(t *testing.T, name, content string) string {
	filename := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.True(t, c.RemoveSizeAttributes, "width and height must be removed by default")
	assert.False(t, c.RemoveElements, "elements must not be removed by default")
	assert.Equal(t, []string{"title", "desc", "defs", "style"}, c.ElementsToRemove)
	assert.Empty(t, c.AttributesToWarn)
	assert.Empty(t, c.ElementsToWarn)
	assert.Empty(t, c.AttributesToRemove)
	assert.Nil(t, c.Validate())

	c.ElementsToRemove[0] = "g"
	assert.Equal(t, "title", DefaultElementsToRemove[0], "defaults must not be shared")
}

func TestValidate(t *testing.T) {
	var tests = []struct {
		name  string
		names []string
		ok    bool
	}{
		{"plain", []string{"title", "xlink:href", "data-x"}, true},
		{"empty", []string{""}, false},
		{"space", []string{"a b"}, false},
		{"tag", []string{"<title>"}, false},
		{"quote", []string{`a"`}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			c.AttributesToRemove = tt.names
			err := c.Validate()
			if tt.ok {
				assert.Nil(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrBadName), "must return ErrBadName")
			}
		})
	}
}

func TestLoadConfigYAML(t *testing.T) {
	filename := helperConfigFile(t, "inlinesvg.yaml", `
removeElements: true
elementsToRemove: [title, metadata]
attributesToWarn:
  - fill
attributesToRemove: [class]
`)
	c, err := LoadConfig(filename)
	assert.Nil(t, err)
	assert.True(t, c.RemoveSizeAttributes, "unset options must keep their default")
	assert.True(t, c.RemoveElements)
	assert.Equal(t, []string{"title", "metadata"}, c.ElementsToRemove)
	assert.Equal(t, []string{"fill"}, c.AttributesToWarn)
	assert.Equal(t, []string{"class"}, c.AttributesToRemove)
	assert.Empty(t, c.ElementsToWarn)
}

func TestLoadConfigTOML(t *testing.T) {
	filename := helperConfigFile(t, "inlinesvg.toml", `
removeSizeAttributes = false
elementsToWarn = ["script"]
minify = true
`)
	c, err := LoadConfig(filename)
	assert.Nil(t, err)
	assert.False(t, c.RemoveSizeAttributes)
	assert.True(t, c.Minify)
	assert.Equal(t, []string{"script"}, c.ElementsToWarn)
	assert.Equal(t, DefaultElementsToRemove, c.ElementsToRemove)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "must return error for missing file")

	_, err = LoadConfig(helperConfigFile(t, "inlinesvg.json", `{}`))
	assert.NotNil(t, err, "must return error for unknown format")

	_, err = LoadConfig(helperConfigFile(t, "bad.yaml", `removeElements: [`))
	assert.NotNil(t, err, "must return error for bad YAML")

	_, err = LoadConfig(helperConfigFile(t, "bad.toml", `elementsToRemove = ["a b"]`))
	assert.True(t, errors.Is(err, ErrBadName), "must validate names")
}
