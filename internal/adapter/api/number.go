package api

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Int accepts a JSON number or a numeric string holding a whole number ("70", 30.0).
// Anything else decodes without error and is reported by the validator on its field.
type Int struct {
	value int
	ok    bool
}

func (n *Int) UnmarshalJSON(b []byte) error {
	f, ok := parseNumber(b)
	n.ok = ok && f == math.Trunc(f) && math.Abs(f) <= 1<<53
	if n.ok {
		n.value = int(f)
	}
	return nil
}

func (n *Int) Get() int {
	return n.value
}

func (n *Int) Ptr() *int {
	if n == nil {
		return nil
	}
	return &n.value
}

// Float accepts a JSON number or a numeric string.
type Float struct {
	value float64
	ok    bool
}

func (n *Float) UnmarshalJSON(b []byte) error {
	f, ok := parseNumber(b)
	n.ok = ok && !math.IsInf(f, 0) && !math.IsNaN(f)
	if n.ok {
		n.value = f
	}
	return nil
}

func (n *Float) Get() float64 {
	return n.value
}

func (n *Float) Ptr() *float64 {
	if n == nil {
		return nil
	}
	return &n.value
}

func parseNumber(b []byte) (float64, bool) {
	s := string(b)
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return 0, false
		}
		s = strings.TrimSpace(unquoted)
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// numberValue hands the decoded value to the validator. A value that failed
// to decode becomes nil, which fails every tag on the field.
func numberValue(field reflect.Value) interface{} {
	switch n := field.Interface().(type) {
	case Int:
		if n.ok {
			return n.value
		}
	case Float:
		if n.ok {
			return n.value
		}
	}
	return nil
}
