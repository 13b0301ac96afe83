package utils

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFromDBURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"with port", "postgresql://user:pw@db.local:5433/strategy", "db.local:5433"},
		{"default port", "postgres://user:pw@db.local/strategy?sslmode=disable", "db.local:5432"},
		{"no credentials", "postgresql://localhost/strategy", "localhost:5432"},
		{"keyword string", "host=localhost port=5432", ""},
		{"other scheme", "mysql://localhost:3306/x", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFromDBURL(tt.url))
		})
	}
}

func TestWaitForTCP(t *testing.T) {
	l, err := (&net.ListenConfig{}).Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	assert.NoError(t, WaitForTCP(context.Background(), addr, time.Second))

	l.Close()
	assert.Error(t, WaitForTCP(context.Background(), addr, 300*time.Millisecond))
}
