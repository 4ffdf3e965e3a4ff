package record

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"

	"github.com/cordata/datakit/pkg/cell"
	"github.com/cordata/datakit/pkg/encoding"
)

// ErrHashUnavailable is returned when the content digest cannot be
// computed. The hash is an identity substitute: a failure must surface to
// the caller instead of silently degrading to a random token.
var ErrHashUnavailable = errors.New("record: hash unavailable")

// fieldSep separates the streamed fields of one item inside the digest so
// that ("ab","c") and ("a","bc") hash differently.
const fieldSep = "\x1f"

// ContentHash returns a deterministic digest over the record's items in
// insertion order, encoded as a raw-URL base64 string safe for use as a
// store key segment.
//
// Per item the digest covers name, type, title, optionally the features
// (in sorted key order), and the collapsed value. Reordering items changes
// the hash: insertion order is part of the record's identity.
func (r *Record) ContentHash(includeFeatures bool) (string, error) {
	h := sha256.New()
	write := func(s string) error {
		if _, err := h.Write([]byte(s)); err != nil {
			return fmt.Errorf("%w: %v", ErrHashUnavailable, err)
		}
		return nil
	}
	for _, name := range r.order {
		c := r.items[name]
		parts := []string{c.Name(), string(c.Type()), c.Title()}
		if includeFeatures {
			parts = append(parts, sortedFeatures(c)...)
		}
		parts = append(parts, c.Collapsed())
		for _, p := range parts {
			if err := write(p); err != nil {
				return "", err
			}
			if err := write(fieldSep); err != nil {
				return "", err
			}
		}
	}
	return encoding.RawURLData(h.Sum(nil)).String(), nil
}

// sortedFeatures renders a cell's features as "k=v" strings in sorted key
// order. Feature maps have no insertion order, so sorting is the only way
// to keep the digest deterministic.
func sortedFeatures(c *cell.Cell) []string {
	feats := c.Features()
	if len(feats) == 0 {
		return nil
	}
	keys := make([]string, 0, len(feats))
	for k := range feats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k + "=" + feats[k]
	}
	return out
}
