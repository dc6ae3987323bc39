package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kirk91/respclient/resp"
)

// ErrClientBroken is returned by every call after a transport or framing
// failure. The connection must be dropped and redialed.
var ErrClientBroken = errors.New("client broken, reconnect required")

// ServerError is an error reply sent by the server, e.g. "ERR unknown command".
type ServerError string

func (e ServerError) Error() string {
	return string(e)
}

// Prefix returns the error kind, the first word of the reply like ERR or
// WRONGTYPE.
func (e ServerError) Prefix() string {
	s := string(e)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

// UnexpectedReplyError is returned when a well-formed reply does not match
// what the command is expected to answer.
type UnexpectedReplyError struct {
	Command string
	Reply   *resp.Value
}

func (e *UnexpectedReplyError) Error() string {
	return fmt.Sprintf("unexpected reply to %s: %s", e.Command, e.Reply)
}
