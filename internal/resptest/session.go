package resptest

import (
	"io"
	"net"
	"sync"

	"k8s.io/klog"

	"github.com/kirk91/respclient/resp"
)

var invalidRequest = "ERR invalid request"

type session struct {
	conn net.Conn
	dec  *resp.Decoder
	enc  *resp.Encoder

	handler Handler
	replies chan *resp.Value

	quitOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

func newSession(conn net.Conn, handler Handler) *session {
	return &session{
		conn:    conn,
		enc:     resp.NewEncoderSize(conn, 8192),
		dec:     resp.NewDecoderSize(conn, 4096),
		handler: handler,
		replies: make(chan *resp.Value, 32),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (s *session) Serve() {
	writeDone := make(chan struct{})
	go func() {
		s.loopWrite()
		s.conn.Close()
		close(writeDone)
	}()

	s.loopRead()
	s.quitOnce.Do(func() {
		close(s.quit)
	})
	<-writeDone
	close(s.done)
}

func (s *session) Close() {
	s.quitOnce.Do(func() {
		close(s.quit)
	})
	s.conn.Close()
	<-s.done
}

func (s *session) loopRead() {
	for {
		v, err := s.dec.Decode()
		if err != nil {
			if err != io.EOF {
				klog.V(4).Infof("loop read exit: %v", err)
			}
			return
		}

		reply := s.handle(v)
		select {
		case s.replies <- reply:
		case <-s.quit:
			return
		}
	}
}

func (s *session) handle(v *resp.Value) *resp.Value {
	cmd, err := resp.CommandFromValue(v)
	if err != nil {
		return resp.NewError(invalidRequest)
	}
	if s.handler == nil {
		return resp.NewError("ERR no registered handler for request")
	}
	if reply := s.handler.ServeRESP(cmd); reply != nil {
		return reply
	}
	return resp.NewNullBulkString()
}

func (s *session) loopWrite() {
	var (
		reply *resp.Value
		err   error
	)
	for {
		select {
		case <-s.quit:
			// flush what is already queued before leaving
			for {
				select {
				case reply = <-s.replies:
					if err = s.enc.Encode(reply); err != nil {
						goto FAIL
					}
				default:
					s.enc.Flush()
					return
				}
			}
		case reply = <-s.replies:
		}

		if err = s.enc.Encode(reply); err != nil {
			goto FAIL
		}

		// more replies are queued, flush later to save write syscalls.
		if len(s.replies) != 0 {
			continue
		}
		if err = s.enc.Flush(); err != nil {
			goto FAIL
		}
	}

FAIL:
	klog.V(4).Infof("loop write exit: %v", err)
}
