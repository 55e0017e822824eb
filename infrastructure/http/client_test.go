package http_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infrahttp "github.com/dj0804/GrievanceInsight/infrastructure/http"
)

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	c := infrahttp.NewClient(infrahttp.ClientConfig{})
	assert.Equal(t, infrahttp.DefaultTimeout, c.Timeout)

	transport, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, infrahttp.DefaultMaxIdleConnsPerHost, transport.MaxIdleConnsPerHost)
	assert.Equal(t, infrahttp.DefaultIdleConnTimeout, transport.IdleConnTimeout)
}

func TestNewClient_Overrides(t *testing.T) {
	t.Parallel()

	c := infrahttp.NewClient(infrahttp.ClientConfig{Timeout: 2 * time.Second, MaxIdleConnsPerHost: 4})
	assert.Equal(t, 2*time.Second, c.Timeout)

	transport, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 4, transport.MaxIdleConnsPerHost)
	assert.Equal(t, 8, transport.MaxIdleConns)
	assert.Equal(t, 2*time.Second, transport.ResponseHeaderTimeout)
}
