package ir

import (
	"slices"
	"unicode/utf16"
)

// IRValue is a value of the canonical trace. There is no float variant:
// times travel as integer microseconds and positions as thousandths.
type IRValue interface {
	irValue()
}

// IRString is a string value.
type IRString string

func (IRString) irValue() {}

// IRInt is an integer value.
type IRInt int64

func (IRInt) irValue() {}

// IRBool is a boolean value.
type IRBool bool

func (IRBool) irValue() {}

// IRArray is an ordered list of values.
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject maps string keys to values. Use SortedKeys for deterministic iteration.
type IRObject map[string]IRValue

func (IRObject) irValue() {}

// Int returns the integer at key.
func (obj IRObject) Int(key string) (int64, bool) {
	v, ok := obj[key].(IRInt)
	return int64(v), ok
}

// Str returns the string at key.
func (obj IRObject) Str(key string) (string, bool) {
	v, ok := obj[key].(IRString)
	return string(v), ok
}

// Time returns the microsecond integer at key as milliseconds.
func (obj IRObject) Time(key string) (float64, bool) {
	us, ok := obj.Int(key)
	return FromMicros(us), ok
}

// IsRevert reports whether obj is a revert event of a trace.
func (obj IRObject) IsRevert() bool {
	ev, _ := obj.Str("event")
	return ev == "revert"
}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 orders by UTF-16 code units. Byte order of the UTF-8
// encoding differs for characters outside the BMP.
func compareKeysRFC8785(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}
