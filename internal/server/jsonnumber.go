package server

import (
	"strconv"
	"strings"
)

// jsonNumber accepts a numeric JSON field sent either as a number or
// as a quoted string. A malformed value is kept as invalid rather than
// failing the whole bind, so handlers can report a field-level error.
type jsonNumber struct {
	value float64
	valid bool
}

func (n *jsonNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	s = strings.Trim(s, `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	n.value = v
	n.valid = true
	return nil
}

// Parse returns the value and whether a well-formed number was given.
func (n jsonNumber) Parse() (float64, bool) { return n.value, n.valid }

// Float64 returns the value, zero when absent or malformed.
func (n jsonNumber) Float64() float64 { return n.value }
