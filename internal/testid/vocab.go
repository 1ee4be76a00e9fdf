// Package testid holds the vocabulary of symbolic testid keys and the literal
// data-testid values they resolve to in rendered markup.
package testid

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDuplicateValue indicates two keys share one literal data-testid value.
var ErrDuplicateValue = errors.New("duplicate testid value")

// Key is the stable symbolic name of one required UI affordance, e.g.
// authEmailInput. Keys are defined at config time and immutable afterwards.
type Key string

// Vocabulary maps keys to literal data-testid attribute values. Literal
// values are globally unique: the verifier relies on one key resolving to at
// most one element per page.
type Vocabulary struct {
	values map[Key]string
	keys   []Key
}

// NewVocabulary validates and builds a vocabulary from a flat key/value map.
func NewVocabulary(entries map[Key]string) (*Vocabulary, error) {
	values := make(map[Key]string, len(entries))
	seen := make(map[string]Key, len(entries))
	keys := make([]Key, 0, len(entries))
	for k, v := range entries {
		if v == "" {
			return nil, fmt.Errorf("testid key %q: empty value", k)
		}
		if prev, ok := seen[v]; ok {
			return nil, fmt.Errorf("%w: %q shared by keys %q and %q", ErrDuplicateValue, v, prev, k)
		}
		seen[v] = k
		values[k] = v
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return &Vocabulary{values: values, keys: keys}, nil
}

// Value resolves a key to its literal data-testid value.
func (v *Vocabulary) Value(k Key) (string, bool) {
	val, ok := v.values[k]
	return val, ok
}

// Has reports whether the key exists in the vocabulary.
func (v *Vocabulary) Has(k Key) bool {
	_, ok := v.values[k]
	return ok
}

// Keys returns all keys in sorted order.
func (v *Vocabulary) Keys() []Key {
	out := make([]Key, len(v.keys))
	copy(out, v.keys)
	return out
}

// Len returns the number of keys.
func (v *Vocabulary) Len() int { return len(v.values) }
