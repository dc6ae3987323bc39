package resp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewError(t *testing.T) {
	v := NewError("unknown error")
	assert.Equal(t, Error, v.Type)
	assert.NotEmpty(t, v.Text)
	assert.True(t, v.IsError())
}

func TestNewSimpleString(t *testing.T) {
	v := NewSimpleString("ping")
	assert.Equal(t, SimpleString, v.Type)
	assert.NotEmpty(t, v.Text)
}

func TestNewBulkString(t *testing.T) {
	v := NewBulkString("get")
	assert.Equal(t, BulkString, v.Type)
	assert.NotEmpty(t, v.Text)
	assert.False(t, v.IsNull())
}

func TestNewBulkBytesNil(t *testing.T) {
	v := NewBulkBytes(nil)
	assert.False(t, v.IsNull())
	assert.NotNil(t, v.Text)
	assert.Len(t, v.Text, 0)
}

func TestNewNullBulkString(t *testing.T) {
	v := NewNullBulkString()
	assert.Equal(t, BulkString, v.Type)
	assert.Nil(t, v.Text)
	assert.True(t, v.IsNull())
}

func TestNewInteger(t *testing.T) {
	v := NewInteger(10)
	assert.Equal(t, Integer, v.Type)
	assert.Equal(t, int64(10), v.Int)
}

func TestNewArray(t *testing.T) {
	v := NewArray([]Value{
		*NewBulkString("get"),
		*NewBulkString("a"),
	})
	assert.Equal(t, Array, v.Type)
	assert.Equal(t, 2, len(v.Array))
	assert.False(t, v.IsNull())

	empty := NewArray(nil)
	assert.NotNil(t, empty.Array)
	assert.False(t, empty.IsNull())
	assert.True(t, NewNullArray().IsNull())
}

func TestValueEqual(t *testing.T) {
	cases := []struct {
		name  string
		a, b  *Value
		equal bool
	}{
		{"same simple", NewSimpleString("OK"), NewSimpleString("OK"), true},
		{"simple vs error", NewSimpleString("OK"), NewError("OK"), false},
		{"simple vs bulk", NewSimpleString("OK"), NewBulkString("OK"), false},
		{"integers", NewInteger(-3), NewInteger(-3), true},
		{"different integers", NewInteger(1), NewInteger(2), false},
		{"null vs empty bulk", NewNullBulkString(), NewBulkString(""), false},
		{"null bulks", NewNullBulkString(), NewNullBulkString(), true},
		{"null vs empty array", NewNullArray(), NewArray(nil), false},
		{"nested", NewArray([]Value{*NewArray([]Value{*NewInteger(1)})}),
			NewArray([]Value{*NewArray([]Value{*NewInteger(1)})}), true},
		{"nested differs", NewArray([]Value{*NewArray([]Value{*NewInteger(1)})}),
			NewArray([]Value{*NewArray([]Value{*NewInteger(2)})}), false},
		{"length differs", NewArray([]Value{*NewInteger(1)}), NewArray(nil), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.equal, c.a.Equal(c.b))
			assert.Equal(t, c.equal, c.b.Equal(c.a))
		})
	}
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "PONG", NewSimpleString("PONG").String())
	assert.Equal(t, "(error) ERR wrong type", NewError("ERR wrong type").String())
	assert.Equal(t, "(integer) 42", NewInteger(42).String())
	assert.Equal(t, `"a\r\nb"`, NewBulkString("a\r\nb").String())
	assert.Equal(t, "(nil)", NewNullBulkString().String())
	assert.Equal(t, "(nil)", NewNullArray().String())
	assert.Equal(t, "(empty array)", NewArray(nil).String())

	v := NewArray([]Value{
		*NewBulkString("foo"),
		*NewArray([]Value{*NewInteger(1), *NewNullBulkString()}),
	})
	assert.Equal(t, "1) \"foo\"\n2) 1) (integer) 1\n   2) (nil)", v.String())
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "bulk-string", BulkString.String())
	assert.Equal(t, "array", Array.String())
	assert.Equal(t, `unknown("X")`, Type('X').String())
}
