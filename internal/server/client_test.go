package server

import (
	"testing"

	"github.com/dpayton/go-chatserver/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestClientID(t *testing.T) {
	c := &Client{id: "conn-1"}
	assert.Equal(t, "conn-1", c.ID(), "expected ID to return the connection id")
}

func TestClientWriteText(t *testing.T) {
	t.Run("successful queue", func(t *testing.T) {
		c := &Client{
			send: make(chan string, 1),
			log:  testutil.TestLogger(t),
		}

		res := c.WriteText("hello")
		assert.True(t, res, "expected WriteText to return true when channel is not full")

		select {
		case msg := <-c.send:
			assert.Equal(t, "hello", msg, "expected the queued line to match")
		default:
			t.Error("expected a message to be queued for the client, but none was")
		}
	})

	t.Run("channel full", func(t *testing.T) {
		c := &Client{
			id:   "conn-1",
			send: make(chan string, 1),
			log:  testutil.TestLogger(t),
		}

		c.send <- "first" // fill the send channel to simulate a backed up client
		res := c.WriteText("second")
		assert.False(t, res, "expected WriteText to return false when channel is full")
	})
}

func TestClientClose(t *testing.T) {
	c := &Client{
		stop: make(chan struct{}),
	}

	c.Close()

	select {
	case <-c.stop:
		// channel is closed as expected
	default:
		t.Error("expected stop channel to be closed")
	}

	// a second Close must not panic on the already closed channel
	c.Close()
}
