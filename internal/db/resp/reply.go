// Package resp holds a self-describing representation of a raw Redis reply.
//
// A Reply is either a scalar (nil, integer, float, text, binary), an ordered
// sequence of replies, or an association list stored as a flat alternating
// key/value sequence. Nothing about the command that produced it is assumed.
package resp

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/redis/rueidis"
)

// Kind tags the variant held by a Reply.
type Kind uint8

// Reply kinds.
const (
	KindNil Kind = iota
	KindInt
	KindFloat
	KindText
	KindBytes
	KindArray
	KindPairs
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBytes:
		return "bytes"
	case KindArray:
		return "array"
	case KindPairs:
		return "pairs"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Reply is a tagged variant over the shapes a server reply can take.
type Reply struct {
	kind  Kind
	num   int64
	flt   float64
	str   string
	items []Reply // Array elements, or k0 v0 k1 v1 ... for Pairs
}

// Nil returns the nil reply.
func Nil() Reply { return Reply{kind: KindNil} }

// Int wraps an integer scalar.
func Int(v int64) Reply { return Reply{kind: KindInt, num: v} }

// Float wraps a floating point scalar.
func Float(v float64) Reply { return Reply{kind: KindFloat, flt: v} }

// Text wraps a textual scalar.
func Text(s string) Reply { return Reply{kind: KindText, str: s} }

// Bytes wraps a binary scalar.
func Bytes(b []byte) Reply { return Reply{kind: KindBytes, str: string(b)} }

// Array wraps an ordered sequence.
func Array(items ...Reply) Reply { return Reply{kind: KindArray, items: items} }

// Pairs wraps an association list given as k0, v0, k1, v1, ...
// A trailing key without a value is dropped.
func Pairs(kv ...Reply) Reply {
	if len(kv)%2 != 0 {
		kv = kv[:len(kv)-1]
	}
	return Reply{kind: KindPairs, items: kv}
}

// Kind reports the variant.
func (r Reply) Kind() Kind { return r.kind }

// IsNil reports whether r is the nil reply.
func (r Reply) IsNil() bool { return r.kind == KindNil }

// IsScalar reports whether r holds a single value.
func (r Reply) IsScalar() bool { return r.kind != KindArray && r.kind != KindPairs }

// Int64 returns the integer value. Text scalars holding a decimal integer are accepted.
func (r Reply) Int64() (int64, bool) {
	switch r.kind {
	case KindInt:
		return r.num, true
	case KindText, KindBytes:
		v, err := strconv.ParseInt(r.str, 10, 64)
		return v, err == nil
	default:
		return 0, false
	}
}

// Float64 returns the floating point value of a numeric or numeric-text scalar.
func (r Reply) Float64() (float64, bool) {
	switch r.kind {
	case KindFloat:
		return r.flt, true
	case KindInt:
		return float64(r.num), true
	case KindText, KindBytes:
		v, err := strconv.ParseFloat(r.str, 64)
		return v, err == nil
	default:
		return 0, false
	}
}

// Str decodes a text or binary scalar into its canonical string form.
func (r Reply) Str() (string, bool) {
	if r.kind == KindText || r.kind == KindBytes {
		return r.str, true
	}
	return "", false
}

// Items returns the sequence elements of an Array, or the flattened
// key/value list of Pairs.
func (r Reply) Items() []Reply {
	if r.kind == KindArray || r.kind == KindPairs {
		return r.items
	}
	return nil
}

// Len is the number of direct children.
func (r Reply) Len() int { return len(r.Items()) }

// String renders r for diagnostics. Binary payloads are summarized by length.
func (r Reply) String() string {
	var sb strings.Builder
	r.write(&sb)
	return sb.String()
}

func (r Reply) write(sb *strings.Builder) {
	switch r.kind {
	case KindNil:
		sb.WriteString("(nil)")
	case KindInt:
		sb.WriteString(strconv.FormatInt(r.num, 10))
	case KindFloat:
		sb.WriteString(strconv.FormatFloat(r.flt, 'g', -1, 64))
	case KindText:
		sb.WriteString(strconv.Quote(r.str))
	case KindBytes:
		fmt.Fprintf(sb, "<%d bytes>", len(r.str))
	case KindArray, KindPairs:
		open, sep, closing := "[", ", ", "]"
		if r.kind == KindPairs {
			open, closing = "{", "}"
		}
		sb.WriteString(open)
		for i, it := range r.items {
			if i > 0 {
				if r.kind == KindPairs && i%2 == 1 {
					sb.WriteString(": ")
				} else {
					sb.WriteString(sep)
				}
			}
			it.write(sb)
		}
		sb.WriteString(closing)
	}
}

// FromMessage converts a rueidis message tree into a Reply without
// interpreting it. RESP3 maps become Pairs with keys in sorted order since
// the client exposes them unordered.
func FromMessage(m rueidis.RedisMessage) (Reply, error) {
	switch {
	case m.IsNil():
		return Nil(), nil
	case m.IsInt64():
		v, err := m.AsInt64()
		if err != nil {
			return Reply{}, fmt.Errorf("decode int: %w", err)
		}
		return Int(v), nil
	case m.IsFloat64():
		v, err := m.AsFloat64()
		if err != nil {
			return Reply{}, fmt.Errorf("decode float: %w", err)
		}
		return Float(v), nil
	case m.IsBool():
		v, err := m.AsBool()
		if err != nil {
			return Reply{}, fmt.Errorf("decode bool: %w", err)
		}
		if v {
			return Int(1), nil
		}
		return Int(0), nil
	case m.IsString():
		s, err := m.ToString()
		if err != nil {
			return Reply{}, fmt.Errorf("decode string: %w", err)
		}
		if utf8.ValidString(s) {
			return Text(s), nil
		}
		return Bytes([]byte(s)), nil
	case m.IsMap():
		return fromMap(m)
	case m.IsArray():
		elems, err := m.ToArray()
		if err != nil {
			return Reply{}, fmt.Errorf("decode array: %w", err)
		}
		items := make([]Reply, len(elems))
		for i := range elems {
			if items[i], err = FromMessage(elems[i]); err != nil {
				return Reply{}, fmt.Errorf("element %d: %w", i, err)
			}
		}
		return Array(items...), nil
	}

	if err := m.Error(); err != nil {
		return Reply{}, err //nolint:wrapcheck // server error surfaced as-is
	}
	return Reply{}, errors.New("unsupported reply type")
}

func fromMap(m rueidis.RedisMessage) (Reply, error) {
	mm, err := m.ToMap()
	if err != nil {
		return Reply{}, fmt.Errorf("decode map: %w", err)
	}
	keys := make([]string, 0, len(mm))
	for k := range mm {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]Reply, 0, 2*len(keys))
	for _, k := range keys {
		v, err := FromMessage(mm[k])
		if err != nil {
			return Reply{}, fmt.Errorf("value of %q: %w", k, err)
		}
		kv = append(kv, Text(k), v)
	}
	return Pairs(kv...), nil
}
