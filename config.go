package inlinesvg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tdewolff/parse/v2"
	"gopkg.in/yaml.v3"
)

// ErrBadName is returned by Validate for attribute or element names that cannot occur in markup.
var ErrBadName = errors.New("bad attribute or element name")

// DefaultElementsToRemove are the elements removed when RemoveElements is set.
var DefaultElementsToRemove = []string{"title", "desc", "defs", "style"}

// Config is the transformation policy. Start from DefaultConfig, since the zero value of RemoveSizeAttributes is not its default.
type Config struct {
	// RemoveSizeAttributes removes width and height from the <svg> tag.
	RemoveSizeAttributes bool `yaml:"removeSizeAttributes" toml:"removeSizeAttributes"`

	// RemoveElements removes the ElementsToRemove from the <svg> element.
	// A nil ElementsToRemove is replaced by DefaultElementsToRemove in New, an empty one removes nothing.
	RemoveElements   bool     `yaml:"removeElements" toml:"removeElements"`
	ElementsToRemove []string `yaml:"elementsToRemove" toml:"elementsToRemove"`

	AttributesToWarn   []string `yaml:"attributesToWarn" toml:"attributesToWarn"`
	ElementsToWarn     []string `yaml:"elementsToWarn" toml:"elementsToWarn"`
	AttributesToRemove []string `yaml:"attributesToRemove" toml:"attributesToRemove"`

	// Minify minifies the markup before it is flattened.
	Minify bool `yaml:"minify" toml:"minify"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		RemoveSizeAttributes: true,
		ElementsToRemove:     append([]string{}, DefaultElementsToRemove...),
	}
}

// Validate returns an error when any of the names contains whitespace or markup characters.
func (c Config) Validate() error {
	lists := []struct {
		option string
		names  []string
	}{
		{"elementsToRemove", c.ElementsToRemove},
		{"attributesToWarn", c.AttributesToWarn},
		{"elementsToWarn", c.ElementsToWarn},
		{"attributesToRemove", c.AttributesToRemove},
	}
	for _, list := range lists {
		for _, name := range list.names {
			if !validName(name) {
				return fmt.Errorf("%s: %w: %q", list.option, ErrBadName, name)
			}
		}
	}
	return nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if c := name[i]; parse.IsWhitespace(c) || c == '<' || c == '>' || c == '/' || c == '=' || c == '"' || c == '\'' {
			return false
		}
	}
	return true
}

// LoadConfig reads a YAML or TOML configuration file, depending on its extension.
// Options that are not in the file keep their default value.
func LoadConfig(filename string) (Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, err
	}

	c := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &c)
	case ".toml":
		err = toml.Unmarshal(b, &c)
	default:
		return Config{}, fmt.Errorf("unknown configuration format %q", ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", filename, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", filename, err)
	}
	return c, nil
}
