package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxSafeInteger is the largest integer a float64 id can carry without loss.
const maxSafeInteger = 1<<53 - 1

// ID is an entity identifier as it was found in storage. Stored documents
// carry ids either as JSON numbers or as string-encoded numbers, and older
// tooling produced opaque string tokens, so the raw text is kept and every
// comparison goes through SameID.
//
// The zero ID means "no reference" and marshals as JSON null.
type ID string

// NewID returns the ID for a numeric identifier.
func NewID(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}

// IsZero reports whether the id is unset.
func (id ID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

// String returns the raw identifier text.
func (id ID) String() string {
	return string(id)
}

// Int64 coerces the id to its canonical numeric form. Integral floats
// ("1.7e12", "5.0") are accepted; anything else fails coercion.
func (id ID) Int64() (int64, bool) {
	s := strings.TrimSpace(string(id))
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f != math.Trunc(f) || math.Abs(f) > maxSafeInteger {
		return 0, false
	}
	return int64(f), true
}

// Canonical returns the numeric form of the id when it has one and the id
// unchanged otherwise.
func (id ID) Canonical() ID {
	if n, ok := id.Int64(); ok {
		return NewID(n)
	}
	return id
}

// SameID reports whether two identifiers refer to the same entity. Both
// sides are coerced to their numeric form first; when either side is not
// numeric the raw tokens are compared. A zero ID never matches anything.
func SameID(a, b ID) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	if na, ok := a.Int64(); ok {
		if nb, ok := b.Int64(); ok {
			return na == nb
		}
	}
	return a == b
}

// MarshalJSON writes numeric ids as JSON numbers and other ids as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	if n, ok := id.Int64(); ok {
		return strconv.AppendInt(nil, n, 10), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Identifiable is implemented by every entity that can be looked up by id.
type Identifiable interface {
	Identifier() ID
}

// Resolve returns the index of the item whose identifier matches id under
// SameID, or ErrNotFound.
func Resolve[T Identifiable](items []T, id ID) (int, error) {
	for i, item := range items {
		if SameID(item.Identifier(), id) {
			return i, nil
		}
	}
	return -1, ErrNotFound
}
