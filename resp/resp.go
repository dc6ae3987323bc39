package resp

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Type is the wire prefix of a RESP value.
type Type byte

const (
	SimpleString Type = '+'
	Error        Type = '-'
	Integer      Type = ':'
	BulkString   Type = '$'
	Array        Type = '*'
)

func (t Type) String() string {
	switch t {
	case SimpleString:
		return "simple-string"
	case Error:
		return "error"
	case Integer:
		return "integer"
	case BulkString:
		return "bulk-string"
	case Array:
		return "array"
	}
	return "unknown(" + strconv.Quote(string(t)) + ")"
}

// Value is a decoded RESP value.
//
// Null marks a null bulk string ($-1) or a null array (*-1). A non-null
// bulk string always carries a non-nil Text and a non-null array a non-nil
// Array, so empty and null stay distinguishable.
type Value struct {
	Type Type
	Null bool

	Int   int64
	Text  []byte
	Array []Value
}

func NewError(s string) *Value {
	return &Value{
		Type: Error,
		Text: []byte(s),
	}
}

func NewSimpleString(s string) *Value {
	return &Value{
		Type: SimpleString,
		Text: []byte(s),
	}
}

func NewBulkString(s string) *Value {
	return &Value{
		Type: BulkString,
		Text: []byte(s),
	}
}

// NewBulkBytes returns a bulk string holding b. A nil b is treated as empty,
// use NewNullBulkString for the null value.
func NewBulkBytes(b []byte) *Value {
	if b == nil {
		b = []byte{}
	}
	return &Value{
		Type: BulkString,
		Text: b,
	}
}

func NewNullBulkString() *Value {
	return &Value{Type: BulkString, Null: true}
}

func NewInteger(i int64) *Value {
	return &Value{
		Type: Integer,
		Int:  i,
	}
}

func NewArray(array []Value) *Value {
	if array == nil {
		array = []Value{}
	}
	return &Value{
		Type:  Array,
		Array: array,
	}
}

func NewNullArray() *Value {
	return &Value{Type: Array, Null: true}
}

// IsNull reports whether v is a null bulk string or a null array.
func (v *Value) IsNull() bool {
	return v.Null && (v.Type == BulkString || v.Type == Array)
}

// IsError reports whether v is a server-reported error.
func (v *Value) IsError() bool {
	return v.Type == Error
}

// Equal compares two values deeply. Null and empty are never equal.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case Integer:
		return v.Int == o.Int
	case SimpleString, Error:
		return bytes.Equal(v.Text, o.Text)
	case BulkString:
		if v.Null || o.Null {
			return v.Null == o.Null
		}
		return bytes.Equal(v.Text, o.Text)
	case Array:
		if v.Null || o.Null {
			return v.Null == o.Null
		}
		if len(v.Array) != len(o.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(&o.Array[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders v the way redis-cli prints replies.
func (v *Value) String() string {
	var b strings.Builder
	v.format(&b, "")
	return b.String()
}

func (v *Value) format(b *strings.Builder, indent string) {
	switch v.Type {
	case SimpleString:
		b.Write(v.Text)
	case Error:
		b.WriteString("(error) ")
		b.Write(v.Text)
	case Integer:
		fmt.Fprintf(b, "(integer) %d", v.Int)
	case BulkString:
		if v.Null {
			b.WriteString("(nil)")
			return
		}
		b.WriteString(strconv.Quote(string(v.Text)))
	case Array:
		if v.Null {
			b.WriteString("(nil)")
			return
		}
		if len(v.Array) == 0 {
			b.WriteString("(empty array)")
			return
		}
		for i := range v.Array {
			if i > 0 {
				b.WriteByte('\n')
				b.WriteString(indent)
			}
			prefix := strconv.Itoa(i+1) + ") "
			b.WriteString(prefix)
			v.Array[i].format(b, indent+strings.Repeat(" ", len(prefix)))
		}
	default:
		fmt.Fprintf(b, "(%s)", v.Type)
	}
}
