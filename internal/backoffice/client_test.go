package backoffice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientAppliesConfiguredTimeouts(t *testing.T) {
	c, err := NewClient(Config{
		BaseURL:     "http://backoffice.example",
		Timeout:     5 * time.Second,
		SettleDelay: 100 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	assert.Equal(t, 100*time.Millisecond, c.cfg.SettleDelay)
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "http://backoffice.example"})
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, c.httpClient.Timeout)
	assert.Equal(t, 2*time.Second, c.cfg.SettleDelay)
}
