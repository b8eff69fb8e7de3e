// Package script models the argument surface of the embedding script runtime:
// dynamically typed values, positional argument lists, the numeric narrowing
// the runtime applies to identifiers, and the runtime-native exception that
// crosses back into the caller.
//
// The runtime itself is external. Bindings (an embedded engine, the HTTP
// ingestion endpoint, the stdin JSON-lines reader) translate their native
// values into Value and translate a returned *Exception into a thrown one.
package script

import (
	"encoding/json"
	"strconv"
	"unicode/utf16"
)

// Kind is the dynamic type tag of a Value.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	default:
		return "undefined"
	}
}

// Value is a single dynamically typed runtime value.
type Value interface {
	Kind() Kind
	// Float is the numeric value. Only meaningful for KindNumber.
	Float() float64
	// Text is the string value. Only meaningful for KindString.
	Text() string
}

// Number is a runtime number (IEEE 754 double).
type Number float64

func (n Number) Kind() Kind     { return KindNumber }
func (n Number) Float() float64 { return float64(n) }
func (n Number) Text() string   { return strconv.FormatFloat(float64(n), 'g', -1, 64) }

// String is a runtime string.
type String string

func (s String) Kind() Kind     { return KindString }
func (s String) Float() float64 { return 0 }
func (s String) Text() string   { return string(s) }

// FromUTF16 builds a String from UTF-16 code units as handed out by engines
// that store strings as two-byte sequences. Unpaired surrogates become U+FFFD.
func FromUTF16(units []uint16) String {
	return String(utf16.Decode(units))
}

// Bool is a runtime boolean.
type Bool bool

func (b Bool) Kind() Kind { return KindBool }
func (b Bool) Float() float64 {
	if b {
		return 1
	}
	return 0
}
func (b Bool) Text() string { return strconv.FormatBool(bool(b)) }

// Object is any non-primitive value (object, array). Only its JSON form is kept.
type Object json.RawMessage

func (o Object) Kind() Kind     { return KindObject }
func (o Object) Float() float64 { return 0 }
func (o Object) Text() string   { return string(o) }

type nullValue struct{}

func (nullValue) Kind() Kind     { return KindNull }
func (nullValue) Float() float64 { return 0 }
func (nullValue) Text() string   { return "null" }

type undefinedValue struct{}

func (undefinedValue) Kind() Kind     { return KindUndefined }
func (undefinedValue) Float() float64 { return 0 }
func (undefinedValue) Text() string   { return "undefined" }

var (
	// Null is the runtime null.
	Null Value = nullValue{}
	// Undefined is the runtime undefined, also returned for missing positions.
	Undefined Value = undefinedValue{}
)
