// Package mode names the three ways a hybrid query can be executed.
package mode

import (
	"fmt"
	"strings"
)

// Mode selects the hybrid search path.
type Mode string

const (
	// Manual runs FTS first and merges KNN results in-process when FTS falls short.
	Manual Mode = "manual"
	// Native delegates fusion to FT.HYBRID through the typed store client.
	Native Mode = "native"
	// Raw builds FT.HYBRID by hand and parses the untyped reply.
	Raw Mode = "raw"
)

// Default is the path used when a caller names none.
const Default = Manual

var all = []Mode{Manual, Native, Raw}

// All lists every mode in documentation order.
func All() []Mode {
	return append([]Mode(nil), all...)
}

// Names is All joined for flag help and error messages: "manual, native, raw".
func Names() string {
	names := make([]string, len(all))
	for i, m := range all {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	for _, v := range all {
		if m == v {
			return true
		}
	}
	return false
}

// Parse accepts a mode name in any case, surrounded by whitespace or not.
// An empty string yields Default.
func Parse(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Default, nil
	}
	if m := Mode(s); m.IsValid() {
		return m, nil
	}
	return "", fmt.Errorf("unknown search mode %q (want one of %s)", s, Names())
}
