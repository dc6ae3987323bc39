// Package resptest provides an in-process RESP server for tests.
package resptest

import (
	"net"
	"sync"
	"time"

	"k8s.io/klog"
)

// Server accepts connections on a loopback address and answers every
// command with its Handler.
type Server struct {
	mu       sync.Mutex
	ln       net.Listener
	handler  Handler
	sessions map[*session]struct{}

	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
	quit      chan struct{}
}

// NewServer starts a server listening on 127.0.0.1 with a random port.
func NewServer(handler Handler) (*Server, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	s := &Server{
		ln:       ln,
		handler:  handler,
		sessions: make(map[*session]struct{}),
		quit:     make(chan struct{}),
	}
	s.wg.Add(1)
	go func() {
		s.serve()
		s.wg.Done()
	}()
	return s, nil
}

func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

func (s *Server) serve() {
	var tempDelay time.Duration
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if nerr, ok := err.(net.Error); ok && nerr.Temporary() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if max := 1 * time.Second; tempDelay > max {
					tempDelay = max
				}
				klog.Warningf("accept failed: %v; retrying in %s", err, tempDelay)
				timer := time.NewTimer(tempDelay)
				select {
				case <-timer.C:
				case <-s.quit:
					timer.Stop()
					return
				}
				continue
			}

			select {
			case <-s.quit:
			default:
				klog.Warningf("accept failed: %v", err)
			}
			return
		}
		tempDelay = 0

		s.wg.Add(1)
		go func(conn net.Conn) {
			s.handleRawConn(conn)
			s.wg.Done()
		}(conn)
	}
}

func (s *Server) handleRawConn(conn net.Conn) {
	t := time.Now()
	laddr, raddr := conn.LocalAddr(), conn.RemoteAddr()
	klog.V(4).Infof("%s -> %s created", raddr, laddr)
	defer func() {
		klog.V(4).Infof("%s -> %s finished, duration: %s", raddr, laddr, time.Since(t))
	}()

	sess := newSession(conn, s.handler)
	if !s.addSession(sess) {
		conn.Close()
		return
	}
	sess.Serve()
	s.removeSession(sess)
}

func (s *Server) addSession(sess *session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	// server is closing
	if s.sessions == nil {
		return false
	}
	s.sessions[sess] = struct{}{}
	return true
}

func (s *Server) removeSession(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions == nil {
		return
	}
	delete(s.sessions, sess)
}

// Close stops accepting, closes every open session and waits for them.
// Later calls return the result of the first one.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		close(s.quit)
		s.mu.Lock()
		sessions := s.sessions
		s.sessions = nil
		s.mu.Unlock()

		s.closeErr = s.ln.Close()
		for sess := range sessions {
			sess.Close()
		}
		s.wg.Wait()
	})
	return s.closeErr
}
