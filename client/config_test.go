package client

import (
	"testing"
	"time"

	"github.com/shafreeck/configo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, configo.Unmarshal([]byte(""), cfg))
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigOverride(t *testing.T) {
	cfg := &Config{}
	data := []byte("addr = \"10.0.0.1:7000\"\nmax-depth = 8\n")
	require.NoError(t, configo.Unmarshal(data, cfg))
	assert.Equal(t, "10.0.0.1:7000", cfg.Addr)
	assert.Equal(t, 8, cfg.MaxDepth)
	assert.Equal(t, 3*time.Second, cfg.ReadTimeout)
}
