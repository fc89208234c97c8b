package gateway

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewServer(t *testing.T) {
	mux := http.NewServeMux()
	server := NewServer("8080", mux)

	assert.Equal(t, "8080", server.port)
	assert.Equal(t, ":8080", server.httpServer.Addr)
	assert.NotNil(t, server.httpServer.Handler)
}

func TestServerTimeouts(t *testing.T) {
	server := NewServer("8080", http.NewServeMux())

	assert.Equal(t, 15*time.Second, server.httpServer.ReadTimeout)
	assert.Equal(t, 15*time.Second, server.httpServer.WriteTimeout)
	assert.Equal(t, 60*time.Second, server.httpServer.IdleTimeout)
}
