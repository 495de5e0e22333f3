package placeholder

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed layouts.yaml
var defaultLayoutsYAML []byte

// Layout is the ordered loading state of one page.
type Layout struct {
	Page  string `json:"page"`
	Specs []Spec `json:"specs"`
}

// Layouts maps page names to their layouts.
type Layouts map[string]Layout

// Get returns the layout for page.
func (l Layouts) Get(page string) (Layout, bool) {
	layout, ok := l[page]
	return layout, ok
}

// Pages returns the page names in sorted order.
func (l Layouts) Pages() []string {
	out := make([]string, 0, len(l))
	for page := range l {
		out = append(out, page)
	}
	sort.Strings(out)
	return out
}

// MaxLayoutCount bounds the count of a spec read from a layout file or
// JSON. Larger counts are rejected when loading instead of at render time.
const MaxLayoutCount = 100

// describeBounded is Describe plus the MaxLayoutCount limit for specs that
// come from outside the program.
func describeBounded(kind Kind, count int) (Spec, error) {
	if count > MaxLayoutCount {
		return Spec{}, &InvalidSpecError{Kind: string(kind), Count: count, Reason: "count too large"}
	}
	return Describe(kind, count)
}

type layoutFile struct {
	Pages map[string][]layoutEntry `yaml:"pages"`
}

type layoutEntry struct {
	Kind  string `yaml:"kind"`
	Count *int   `yaml:"count"`
}

// LoadLayouts parses a YAML layout document. Every entry is validated; the
// first invalid one aborts loading with an error matching ErrInvalidSpec.
func LoadLayouts(r io.Reader) (Layouts, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f layoutFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("placeholder: empty layout document")
		}
		return nil, fmt.Errorf("placeholder: decode layouts: %w", err)
	}

	out := make(Layouts, len(f.Pages))
	for page, entries := range f.Pages {
		page = strings.TrimSpace(page)
		if page == "" {
			return nil, errors.New("placeholder: layout with empty page name")
		}

		specs := make([]Spec, 0, len(entries))
		for i, e := range entries {
			kind, err := ParseKind(e.Kind)
			if err != nil {
				return nil, fmt.Errorf("placeholder: page %q entry %d: %w", page, i, err)
			}
			count := 1
			if e.Count != nil {
				count = *e.Count
			}
			spec, err := describeBounded(kind, count)
			if err != nil {
				return nil, fmt.Errorf("placeholder: page %q entry %d: %w", page, i, err)
			}
			specs = append(specs, spec)
		}
		out[page] = Layout{Page: page, Specs: specs}
	}
	return out, nil
}

// DefaultLayouts returns the built-in layouts.
func DefaultLayouts() Layouts {
	l, err := LoadLayouts(bytes.NewReader(defaultLayoutsYAML))
	if err != nil {
		panic(err)
	}
	return l
}

// LoadLayoutsFile reads layouts from path, or returns DefaultLayouts when
// path is empty.
func LoadLayoutsFile(path string) (Layouts, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultLayouts(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadLayouts(f)
}
