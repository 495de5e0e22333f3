package placeholder

import (
	"encoding/json"
	"strings"
)

// Kind selects the skeleton shape.
type Kind string

const (
	KindPageHeader     Kind = "page-header"
	KindCardList       Kind = "card-list"
	KindCategoriesGrid Kind = "categories-grid"
	KindBlock          Kind = "block"
)

var kinds = []Kind{KindPageHeader, KindCardList, KindCategoriesGrid, KindBlock}

// Kinds returns the supported kinds in a stable order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind maps textual input (case-insensitive, surrounding space
// ignored) onto a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", &InvalidSpecError{Kind: s, Reason: "unknown kind"}
	}
	return k, nil
}

// Spec describes one skeleton: a kind repeated Count times.
// The zero value is not a valid Spec; use Describe.
type Spec struct {
	kind  Kind
	count int
}

// Describe validates kind and count and returns the matching Spec.
func Describe(kind Kind, count int) (Spec, error) {
	if !kind.Valid() {
		return Spec{}, &InvalidSpecError{Kind: string(kind), Count: count, Reason: "unknown kind"}
	}
	if count < 0 {
		return Spec{}, &InvalidSpecError{Kind: string(kind), Count: count, Reason: "negative count"}
	}
	return Spec{kind: kind, count: count}, nil
}

// MustDescribe is Describe for package-level layouts; it panics on error.
func MustDescribe(kind Kind, count int) Spec {
	s, err := Describe(kind, count)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Spec) Kind() Kind { return s.kind }
func (s Spec) Count() int { return s.count }

// Item is a single repeated placeholder within a Spec.
type Item struct {
	Kind  Kind `json:"kind"`
	Index int  `json:"index"`
}

// Items returns exactly Count items, indexed from zero.
func (s Spec) Items() []Item {
	items := make([]Item, s.count)
	for i := range items {
		items[i] = Item{Kind: s.kind, Index: i}
	}
	return items
}

type specJSON struct {
	Kind  Kind   `json:"kind"`
	Count int    `json:"count"`
	Items []Item `json:"items"`
}

func (s Spec) MarshalJSON() ([]byte, error) {
	return json.Marshal(specJSON{Kind: s.kind, Count: s.count, Items: s.Items()})
}

// UnmarshalJSON accepts {"kind": ..., "count": ...} and validates it like
// Describe, with count capped at MaxLayoutCount. Items are derived, so any
// "items" field is ignored.
func (s *Spec) UnmarshalJSON(data []byte) error {
	var in specJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	parsed, err := describeBounded(in.Kind, in.Count)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
