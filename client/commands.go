package client

import (
	"strings"

	"github.com/kirk91/respclient/resp"
)

// expectation checks a decoded reply against what a command should answer.
// An error reply is always reported as ServerError.
type expectation func(cmd string, v *resp.Value) error

var (
	expectPong   = expectSimpleString("PONG")
	expectOK     = expectSimpleString("OK")
	expectAny    = expectType()
	expectBulk   = expectType(resp.BulkString)
	expectInt    = expectType(resp.Integer)
	expectations = map[string]expectation{
		"ping": expectPong,
		"set":  expectOK,
		"get":  expectBulk,
		"del":  expectInt,
	}
)

func expectationOf(cmd string) expectation {
	if e, ok := expectations[strings.ToLower(cmd)]; ok {
		return e
	}
	return expectAny
}

func expectSimpleString(s string) expectation {
	return func(cmd string, v *resp.Value) error {
		if v.Type == resp.Error {
			return ServerError(v.Text)
		}
		if v.Type != resp.SimpleString || string(v.Text) != s {
			return &UnexpectedReplyError{Command: cmd, Reply: v}
		}
		return nil
	}
}

// expectType accepts any of types, or any non-error reply when types is
// empty.
func expectType(types ...resp.Type) expectation {
	return func(cmd string, v *resp.Value) error {
		if v.Type == resp.Error {
			return ServerError(v.Text)
		}
		if len(types) == 0 {
			return nil
		}
		for _, t := range types {
			if v.Type == t {
				return nil
			}
		}
		return &UnexpectedReplyError{Command: cmd, Reply: v}
	}
}
