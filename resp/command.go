package resp

import "strconv"

// Command is a request sent to a RESP server: a name followed by opaque
// binary arguments.
type Command struct {
	Name string
	Args [][]byte
}

// NewCommand returns a command whose Args is never nil, so a command built
// here compares equal to the same command read back by CommandFromValue.
func NewCommand(name string, args ...[]byte) *Command {
	if args == nil {
		args = [][]byte{}
	}
	return &Command{Name: name, Args: args}
}

func NewStringCommand(name string, args ...string) *Command {
	cmd := &Command{Name: name, Args: make([][]byte, len(args))}
	for i, arg := range args {
		cmd.Args[i] = []byte(arg)
	}
	return cmd
}

// Encode returns the request frame of c. It never fails.
func (c *Command) Encode() []byte {
	return AppendCommand(nil, c)
}

// Value returns c as an array of bulk strings.
func (c *Command) Value() *Value {
	array := make([]Value, 0, len(c.Args)+1)
	array = append(array, *NewBulkString(c.Name))
	for _, arg := range c.Args {
		array = append(array, *NewBulkBytes(arg))
	}
	return NewArray(array)
}

// String returns the command name and arguments separated by spaces.
func (c *Command) String() string {
	s := c.Name
	for _, arg := range c.Args {
		s += " " + strconv.Quote(string(arg))
	}
	return s
}

// AppendCommand appends the request frame of cmd to dst:
//
//	*<1+len(args)>\r\n$<len(name)>\r\n<name>\r\n$<len(arg)>\r\n<arg>\r\n...
func AppendCommand(dst []byte, cmd *Command) []byte {
	dst = append(dst, byte(Array))
	dst = strconv.AppendInt(dst, int64(len(cmd.Args)+1), 10)
	dst = append(dst, CRLF...)
	dst = appendBulkHeader(dst, len(cmd.Name))
	dst = append(dst, cmd.Name...)
	dst = append(dst, CRLF...)
	for _, arg := range cmd.Args {
		dst = appendBulkHeader(dst, len(arg))
		dst = append(dst, arg...)
		dst = append(dst, CRLF...)
	}
	return dst
}

func appendBulkHeader(dst []byte, n int) []byte {
	dst = append(dst, byte(BulkString))
	dst = strconv.AppendInt(dst, int64(n), 10)
	return append(dst, CRLF...)
}

// CommandFromValue converts a request read off the wire back to a Command.
func CommandFromValue(v *Value) (*Command, error) {
	if v.Type != Array || v.Null || len(v.Array) == 0 {
		return nil, ErrBadCommand
	}
	for i := range v.Array {
		if v.Array[i].Type != BulkString || v.Array[i].Null {
			return nil, ErrBadCommand
		}
	}
	cmd := &Command{
		Name: string(v.Array[0].Text),
		Args: make([][]byte, len(v.Array)-1),
	}
	for i := range cmd.Args {
		cmd.Args[i] = v.Array[i+1].Text
	}
	return cmd, nil
}
