package script

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Args is the positional argument list of one callback invocation.
type Args []Value

// Len is the call arity.
func (a Args) Len() int { return len(a) }

// At returns the i-th argument, or Undefined past the end.
func (a Args) At(i int) Value {
	if i < 0 || i >= len(a) {
		return Undefined
	}
	return a[i]
}

// Kinds lists the dynamic type tag of every argument, in order.
func (a Args) Kinds() []Kind {
	kinds := make([]Kind, len(a))
	for i, v := range a {
		kinds[i] = v.Kind()
	}
	return kinds
}

// DecodeArgs reads a JSON array into Args. Numbers, strings, booleans and
// null map onto their runtime counterparts; objects and arrays become Object.
func DecodeArgs(data []byte) (Args, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("script: decode args: %w", err)
	}
	args := make(Args, 0, len(raw))
	for i, r := range raw {
		v, err := decodeValue(r)
		if err != nil {
			return nil, fmt.Errorf("script: decode args[%d]: %w", i, err)
		}
		args = append(args, v)
	}
	return args, nil
}

func decodeValue(r json.RawMessage) (Value, error) {
	r = bytes.TrimSpace(r)
	if len(r) == 0 {
		return Undefined, nil
	}
	switch r[0] {
	case 'n':
		return Null, nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(r, &b); err != nil {
			return nil, err
		}
		return Bool(b), nil
	case '"':
		var s string
		if err := json.Unmarshal(r, &s); err != nil {
			return nil, err
		}
		return String(s), nil
	case '{', '[':
		return Object(append(json.RawMessage(nil), r...)), nil
	default:
		var f float64
		if err := json.Unmarshal(r, &f); err != nil {
			return nil, err
		}
		return Number(f), nil
	}
}

// ToInt32 narrows a number the way the runtime's Int32 conversion does:
// NaN and infinities become 0, the value is truncated toward zero and then
// wrapped modulo 2^32 into the signed range.
func ToInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	t := math.Trunc(f)
	m := math.Mod(t, 1<<32)
	if m < 0 {
		m += 1 << 32
	}
	return int32(uint32(m))
}

// ExactInt32 reports whether f is an integer inside the int32 range.
func ExactInt32(f float64) (int32, bool) {
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int32(f), true
}
