package resptest

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirk91/respclient/resp"
)

func roundTrip(t *testing.T, conn net.Conn, dec *resp.Decoder, cmd *resp.Command) *resp.Value {
	_, err := conn.Write(cmd.Encode())
	require.NoError(t, err)
	v, err := dec.Decode()
	require.NoError(t, err)
	return v
}

func TestServerKV(t *testing.T) {
	s, err := NewServer(NewKV())
	require.NoError(t, err)
	defer s.Close()

	conn, err := net.Dial("tcp", s.Addr())
	require.NoError(t, err)
	defer conn.Close()
	dec := resp.NewDecoder(conn)

	v := roundTrip(t, conn, dec, resp.NewStringCommand("PING"))
	assert.True(t, resp.NewSimpleString("PONG").Equal(v))

	v = roundTrip(t, conn, dec, resp.NewStringCommand("GET", "a"))
	assert.True(t, v.IsNull())

	v = roundTrip(t, conn, dec, resp.NewStringCommand("SET", "a", ""))
	assert.True(t, resp.NewSimpleString("OK").Equal(v))

	v = roundTrip(t, conn, dec, resp.NewStringCommand("GET", "a"))
	assert.True(t, resp.NewBulkString("").Equal(v))

	v = roundTrip(t, conn, dec, resp.NewStringCommand("DEL", "a", "b"))
	assert.Equal(t, int64(1), v.Int)

	v = roundTrip(t, conn, dec, resp.NewStringCommand("GET"))
	assert.True(t, v.IsError())

	v = roundTrip(t, conn, dec, resp.NewStringCommand("FLUSHALL"))
	assert.Equal(t, "ERR unknown command 'FLUSHALL'", string(v.Text))
}

func TestServerInvalidRequest(t *testing.T) {
	s, err := NewServer(NewKV())
	require.NoError(t, err)
	defer s.Close()

	conn, err := net.Dial("tcp", s.Addr())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("+PING\r\n"))
	require.NoError(t, err)
	v, err := resp.NewDecoder(conn).Decode()
	require.NoError(t, err)
	assert.Equal(t, invalidRequest, string(v.Text))
}

func TestServerNilHandler(t *testing.T) {
	s, err := NewServer(nil)
	require.NoError(t, err)
	defer s.Close()

	conn, err := net.Dial("tcp", s.Addr())
	require.NoError(t, err)
	defer conn.Close()

	v := roundTrip(t, conn, resp.NewDecoder(conn), resp.NewStringCommand("PING"))
	assert.True(t, v.IsError())
}

func TestServerClose(t *testing.T) {
	s, err := NewServer(NewKV())
	require.NoError(t, err)

	conn, err := net.Dial("tcp", s.Addr())
	require.NoError(t, err)
	defer conn.Close()
	roundTrip(t, conn, resp.NewDecoder(conn), resp.NewStringCommand("PING"))

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second * 5):
		t.Fatal("server close timeout")
	}
}

func TestServerCloseTwice(t *testing.T) {
	s, err := NewServer(NewKV())
	require.NoError(t, err)

	require.NoError(t, s.Close())
	assert.NotPanics(t, func() {
		assert.NoError(t, s.Close())
	})
}

func TestSessionClose(t *testing.T) {
	conn, _ := net.Pipe()
	s := newSession(conn, nil)
	done := make(chan struct{})
	go func() {
		s.Serve()
		close(done)
	}()

	time.Sleep(time.Millisecond * 100)
	s.Close()
	<-done
}

func TestSessionReadError(t *testing.T) {
	cconn, sconn := net.Pipe()
	s := newSession(cconn, NewKV())
	done := make(chan struct{})
	go func() {
		s.Serve()
		close(done)
	}()

	time.AfterFunc(time.Millisecond*100, func() {
		sconn.Close()
	})
	<-done
}

func TestSessionFramingError(t *testing.T) {
	cconn, sconn := net.Pipe()
	s := newSession(cconn, NewKV())
	done := make(chan struct{})
	go func() {
		s.Serve()
		close(done)
	}()

	sconn.Write([]byte("X\r\n"))
	<-done
	sconn.Close()
}
