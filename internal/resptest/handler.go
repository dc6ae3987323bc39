package resptest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/kirk91/respclient/resp"
)

// Handler answers a single command. A nil reply is sent as a null bulk
// string.
type Handler interface {
	ServeRESP(cmd *resp.Command) *resp.Value
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func(cmd *resp.Command) *resp.Value

func (f HandlerFunc) ServeRESP(cmd *resp.Command) *resp.Value {
	return f(cmd)
}

// Reply returns a Handler that answers every command with v.
func Reply(v *resp.Value) Handler {
	return HandlerFunc(func(*resp.Command) *resp.Value {
		return v
	})
}

// KV is an in-memory Handler supporting PING, ECHO, SET, GET and DEL.
type KV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewKV() *KV {
	return &KV{data: make(map[string][]byte)}
}

func (kv *KV) ServeRESP(cmd *resp.Command) *resp.Value {
	name := strings.ToLower(cmd.Name)
	switch name {
	case "ping":
		switch len(cmd.Args) {
		case 0:
			return resp.NewSimpleString("PONG")
		case 1:
			return resp.NewBulkBytes(cmd.Args[0])
		}
	case "echo":
		if len(cmd.Args) == 1 {
			return resp.NewBulkBytes(cmd.Args[0])
		}
	case "set":
		if len(cmd.Args) == 2 {
			kv.mu.Lock()
			kv.data[string(cmd.Args[0])] = append([]byte{}, cmd.Args[1]...)
			kv.mu.Unlock()
			return resp.NewSimpleString("OK")
		}
	case "get":
		if len(cmd.Args) == 1 {
			kv.mu.Lock()
			v, ok := kv.data[string(cmd.Args[0])]
			kv.mu.Unlock()
			if !ok {
				return resp.NewNullBulkString()
			}
			return resp.NewBulkBytes(v)
		}
	case "del":
		if len(cmd.Args) > 0 {
			var n int64
			kv.mu.Lock()
			for _, key := range cmd.Args {
				if _, ok := kv.data[string(key)]; ok {
					delete(kv.data, string(key))
					n++
				}
			}
			kv.mu.Unlock()
			return resp.NewInteger(n)
		}
	default:
		return resp.NewError(fmt.Sprintf("ERR unknown command '%s'", cmd.Name))
	}
	return resp.NewError(fmt.Sprintf("ERR wrong number of arguments for '%s' command", name))
}
