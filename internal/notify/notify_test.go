package notify

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	ok := NewEvent([]string{"a.hcl"}, nil)
	assert.True(t, ok.OK)
	assert.Empty(t, ok.Error)
	assert.Equal(t, []string{"a.hcl"}, ok.Paths)
	_, err := uuid.Parse(ok.ID)
	assert.NoError(t, err)

	failed := NewEvent([]string{"a.hcl"}, errors.New("boom"))
	assert.False(t, failed.OK)
	assert.Equal(t, "boom", failed.Error)
	assert.NotEqual(t, ok.ID, failed.ID)
}

func TestNop(t *testing.T) {
	var n Notifier = Nop{}
	assert.NoError(t, n.Notify(context.Background(), NewEvent(nil, nil)))
	assert.NoError(t, n.Close())
}

func TestDialSocketIO_InvalidURL(t *testing.T) {
	_, err := DialSocketIO(context.Background(), "localhost-without-scheme", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a scheme and a host")
}

func TestDialSocketIO_Unreachable(t *testing.T) {
	// Reserve a port and close it so nothing is listening there.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = DialSocketIO(ctx, "http://"+addr+"/socket.io/", Options{ConnectTimeout: 2 * time.Second})
	require.Error(t, err)
}
