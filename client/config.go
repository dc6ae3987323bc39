package client

import "time"

// Config is the configuration of a single client connection. Field tags are
// read by github.com/shafreeck/configo.
type Config struct {
	Addr             string        `cfg:"addr; 127.0.0.1:6379; netaddr; address of the redis server"`
	DialTimeout      time.Duration `cfg:"dial-timeout; 1s; ; timeout of establishing the connection"`
	DialRetryTimeout time.Duration `cfg:"dial-retry-timeout; 5s; ; how long the cli keeps retrying a failed dial"`
	ReadTimeout      time.Duration `cfg:"read-timeout; 3s; ; read deadline of a single reply"`
	WriteTimeout     time.Duration `cfg:"write-timeout; 3s; ; write deadline of a single command"`
	ReadBufferSize   int           `cfg:"read-buffer-size; 8192; numeric; size of the reply read buffer"`
	WriteBufferSize  int           `cfg:"write-buffer-size; 4096; numeric; size of the command write buffer"`
	MaxDepth         int           `cfg:"max-depth; 512; numeric; max nesting of arrays in a reply"`
}

// DefaultConfig returns the same values configo fills in for an empty file.
func DefaultConfig() *Config {
	return &Config{
		Addr:             "127.0.0.1:6379",
		DialTimeout:      time.Second,
		DialRetryTimeout: 5 * time.Second,
		ReadTimeout:      3 * time.Second,
		WriteTimeout:     3 * time.Second,
		ReadBufferSize:   8192,
		WriteBufferSize:  4096,
		MaxDepth:         512,
	}
}
