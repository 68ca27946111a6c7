package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventPayload(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CST", 8*3600))
	ev := Event{Script: "demo/hello_world", Line: 3, Text: "E=mc^2", Name: "temp-1", PNG: "demo/hello_world-ws/temp-1.png", At: at}

	p := ev.Payload()
	assert.Equal(t, "demo/hello_world", p["script"])
	assert.Equal(t, 3, p["line"])
	assert.Equal(t, "E=mc^2", p["text"])
	assert.Equal(t, "temp-1", p["name"])
	assert.Equal(t, "demo/hello_world-ws/temp-1.png", p["png"])
	assert.Equal(t, "2024-03-01T04:00:00Z", p["at"])
}

func TestNop(t *testing.T) {
	var n Notifier = Nop{}
	require.NoError(t, n.Rendered(context.Background(), Event{}))
	require.NoError(t, n.Close())
}

func TestSocketIOConfigDefaults(t *testing.T) {
	c := SocketIOConfig{URL: "http://localhost:3000/socket.io/"}.withDefaults()
	assert.Equal(t, "/", c.Namespace)
	assert.Equal(t, DefaultEvent, c.Event)
	assert.Equal(t, 10*time.Second, c.Timeout)

	c = SocketIOConfig{Namespace: "/preview", Event: "frame", Timeout: time.Second}.withDefaults()
	assert.Equal(t, "/preview", c.Namespace)
	assert.Equal(t, "frame", c.Event)
	assert.Equal(t, time.Second, c.Timeout)
}

func TestDialSocketIO_RejectsRelativeURL(t *testing.T) {
	_, err := DialSocketIO(context.Background(), SocketIOConfig{URL: "localhost:3000"})
	require.Error(t, err)

	_, err = DialSocketIO(context.Background(), SocketIOConfig{URL: "/socket.io/"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be absolute")
}
