package client

import (
	"net"
	"strings"
	"time"

	"github.com/kirk91/stats"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"k8s.io/klog"

	"github.com/kirk91/respclient/resp"
)

type commandStats struct {
	Total         *stats.Counter
	Success       *stats.Counter
	Error         *stats.Counter
	LatencyMicros *stats.Histogram
}

func newCommandStats(scope *stats.Scope, cmd string) *commandStats {
	cmdScope := scope.NewChild(cmd)
	return &commandStats{
		Total:         cmdScope.Counter("total"),
		Success:       cmdScope.Counter("success"),
		Error:         cmdScope.Counter("error"),
		LatencyMicros: cmdScope.Histogram("latency_micros"),
	}
}

// Client issues one command at a time over a single connection and waits
// for its reply before the next one is sent.
//
// A Client is not safe for concurrent use. After a transport or framing
// error it is broken and every call fails with ErrClientBroken.
type Client struct {
	conn net.Conn
	enc  *resp.Encoder
	dec  *resp.Decoder

	readTimeout  time.Duration
	writeTimeout time.Duration

	scope    *stats.Scope
	cmdStats map[string]*commandStats
	handled  atomic.Uint64

	err error
}

type options struct {
	scope           *stats.Scope
	readTimeout     time.Duration
	writeTimeout    time.Duration
	readBufferSize  int
	writeBufferSize int
	maxDepth        int
}

// Option configures a Client created by New.
type Option func(o *options)

// WithStatsScope records per-command stats under scope.
func WithStatsScope(scope *stats.Scope) Option {
	return func(o *options) {
		o.scope = scope
	}
}

// WithTimeouts sets the per-call read and write deadlines. Zero disables a
// deadline.
func WithTimeouts(read, write time.Duration) Option {
	return func(o *options) {
		o.readTimeout, o.writeTimeout = read, write
	}
}

func WithBufferSizes(read, write int) Option {
	return func(o *options) {
		o.readBufferSize, o.writeBufferSize = read, write
	}
}

func WithMaxDepth(n int) Option {
	return func(o *options) {
		o.maxDepth = n
	}
}

// New wraps an established connection.
func New(conn net.Conn, opts ...Option) *Client {
	o := &options{
		readBufferSize:  8192,
		writeBufferSize: 4096,
		maxDepth:        resp.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.scope == nil {
		o.scope = stats.NewStore(stats.NewStoreOption()).CreateScope("")
	}

	dec := resp.NewDecoderSize(conn, o.readBufferSize)
	dec.SetMaxDepth(o.maxDepth)
	return &Client{
		conn:         conn,
		enc:          resp.NewEncoderSize(conn, o.writeBufferSize),
		dec:          dec,
		readTimeout:  o.readTimeout,
		writeTimeout: o.writeTimeout,
		scope:        o.scope.NewChild("cmd"),
		cmdStats:     make(map[string]*commandStats),
	}
}

// Dial connects to cfg.Addr.
func Dial(cfg *Config, opts ...Option) (*Client, error) {
	conn, err := net.DialTimeout("tcp", cfg.Addr, cfg.DialTimeout)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", cfg.Addr)
	}
	klog.V(4).Infof("%s -> %s connected", conn.LocalAddr(), conn.RemoteAddr())

	opts = append([]Option{
		WithTimeouts(cfg.ReadTimeout, cfg.WriteTimeout),
		WithBufferSizes(cfg.ReadBufferSize, cfg.WriteBufferSize),
		WithMaxDepth(cfg.MaxDepth),
	}, opts...)
	return New(conn, opts...), nil
}

// CommandsHandled returns the number of commands whose reply was received
// and matched what the command expects.
func (c *Client) CommandsHandled() uint64 {
	return c.handled.Load()
}

// Do sends cmd and returns its reply. Error replies are returned as values
// of type resp.Error with a nil error; only transport and framing failures
// are returned as errors.
func (c *Client) Do(cmd *resp.Command) (*resp.Value, error) {
	v, err := c.exchange(cmd, expectationOf(cmd.Name))
	if v != nil {
		return v, nil
	}
	return nil, err
}

// Ping expects the server to answer PONG.
func (c *Client) Ping() error {
	_, err := c.exchange(resp.NewCommand("PING"), expectPong)
	return err
}

func (c *Client) Set(key, value []byte) error {
	_, err := c.exchange(resp.NewCommand("SET", key, value), expectOK)
	return err
}

// Get returns the value of key. ok is false when the key does not exist,
// which is different from an existing empty value.
func (c *Client) Get(key []byte) (value []byte, ok bool, err error) {
	v, err := c.exchange(resp.NewCommand("GET", key), expectBulk)
	if err != nil {
		return nil, false, err
	}
	if v.Null {
		return nil, false, nil
	}
	return v.Text, true, nil
}

// Del removes keys and returns how many existed.
func (c *Client) Del(keys ...[]byte) (int64, error) {
	v, err := c.exchange(resp.NewCommand("DEL", keys...), expectInt)
	if err != nil {
		return 0, err
	}
	return v.Int, nil
}

// exchange runs one round trip and checks the reply. The decoded reply is
// returned along with any expectation error; it is nil only when the round
// trip itself failed.
func (c *Client) exchange(cmd *resp.Command, expect expectation) (*resp.Value, error) {
	st := c.commandStats(cmd.Name)
	st.Total.Inc()
	begin := time.Now()
	v, err := c.roundTrip(cmd)
	if err == nil {
		err = expect(cmd.Name, v)
	}
	st.LatencyMicros.Record(uint64(time.Since(begin) / time.Microsecond))
	if err != nil {
		st.Error.Inc()
		return v, err
	}
	st.Success.Inc()
	c.handled.Inc()
	return v, nil
}

func (c *Client) roundTrip(cmd *resp.Command) (*resp.Value, error) {
	if c.err != nil {
		return nil, errors.Wrap(ErrClientBroken, c.err.Error())
	}

	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return nil, c.broken(errors.Wrapf(err, "set %s write deadline", cmd.Name))
		}
	}
	err := c.enc.EncodeCommand(cmd)
	if err == nil {
		err = c.enc.Flush()
	}
	if err != nil {
		return nil, c.broken(errors.Wrapf(err, "write %s", cmd.Name))
	}

	if c.readTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return nil, c.broken(errors.Wrapf(err, "set %s read deadline", cmd.Name))
		}
	}
	v, err := c.dec.Decode()
	if err != nil {
		return nil, c.broken(errors.Wrapf(err, "read %s reply", cmd.Name))
	}
	return v, nil
}

func (c *Client) broken(err error) error {
	klog.Warningf("client %s broken: %v", c.conn.RemoteAddr(), err)
	c.err = err
	return err
}

func (c *Client) commandStats(cmd string) *commandStats {
	cmd = strings.ToLower(cmd)
	st, ok := c.cmdStats[cmd]
	if !ok {
		st = newCommandStats(c.scope, cmd)
		c.cmdStats[cmd] = st
	}
	return st
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
