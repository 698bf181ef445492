package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/RefFinder/core/scripture"
)

// AliasFile is the on-disk form of extra book aliases:
//
//	books:
//	  John: [jhn, jno]
//	  Song of Solomon: ["song of songs", canticles]
type AliasFile struct {
	Books map[string][]string `yaml:"books"`
}

// ParseAliases decodes an alias file. Unknown keys are rejected.
func ParseAliases(data []byte) (map[string]string, error) {
	var f AliasFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("aliases: %w", err)
	}
	out := make(map[string]string)
	for book, aliases := range f.Books {
		for _, alias := range aliases {
			if prev, ok := out[alias]; ok && prev != book {
				return nil, fmt.Errorf("aliases: %q maps to both %q and %q", alias, prev, book)
			}
			out[alias] = book
		}
		// A canonical name always resolves to itself.
		out[book] = book
	}
	return out, nil
}

// LoadAliases builds the alias table for path. An empty path returns the
// built-in table.
func LoadAliases(path string) (*scripture.AliasTable, error) {
	if path == "" {
		return scripture.DefaultAliases(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("aliases: %w", err)
	}
	extra, err := ParseAliases(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scripture.NewAliasTable(extra)
}
