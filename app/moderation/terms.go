package moderation

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed terms.yaml
var defaultTermsYAML []byte

// Category groups banned terms under a label.
type Category struct {
	Name  string   `yaml:"name"`
	Terms []string `yaml:"terms"`
}

// TermList is the on-disk shape of a banned-term file.
type TermList struct {
	Categories []Category `yaml:"categories"`
}

// Terms flattens the list into normalized, de-duplicated terms in file order.
func (l *TermList) Terms() []string {
	seen := make(map[string]struct{})
	var terms []string
	for _, c := range l.Categories {
		for _, t := range c.Terms {
			t = strings.ToLower(strings.TrimSpace(t))
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			terms = append(terms, t)
		}
	}
	return terms
}

// ParseTerms decodes a YAML term list.
func ParseTerms(r io.Reader) (*TermList, error) {
	var list TermList
	if err := yaml.NewDecoder(r).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode term list: %w", err)
	}
	return &list, nil
}

// DefaultTerms returns the term list bundled with the binary.
func DefaultTerms() *TermList {
	list, err := ParseTerms(strings.NewReader(string(defaultTermsYAML)))
	if err != nil {
		panic(err)
	}
	return list
}

// LoadTerms reads the term list at path, or the bundled one when path is empty.
func LoadTerms(path string) (*TermList, error) {
	if path == "" {
		return DefaultTerms(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open term list: %w", err)
	}
	defer f.Close()
	return ParseTerms(f)
}
