package models

import (
	"encoding/json"
)

// NullString is a string that may be absent. The history API sends money and
// timestamps as loosely formatted strings that can also be null; keeping the
// raw text next to a validity flag lets display code tell "no value" apart
// from a value that happens to read as zero.
type NullString struct {
	String string
	Valid  bool
}

// Some wraps a present value.
func Some(s string) NullString {
	return NullString{String: s, Valid: true}
}

// None returns an absent value.
func None() NullString {
	return NullString{}
}

// Ptr returns nil for an absent value.
func (n NullString) Ptr() *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}

// OrElse returns the raw string or def when absent.
func (n NullString) OrElse(def string) string {
	if !n.Valid {
		return def
	}
	return n.String
}

func (n NullString) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.String)
}

func (n *NullString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullString{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*n = Some(s)
	return nil
}
