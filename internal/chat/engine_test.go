package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dpayton/go-chatserver/internal/stats"
	"github.com/dpayton/go-chatserver/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// chanConn is a Conn whose writes can be observed from the test goroutine.
type chanConn struct {
	id        string
	out       chan string
	closeOnce sync.Once
	closed    chan struct{}
}

func newChanConn(id string) *chanConn {
	return &chanConn{
		id:     id,
		out:    make(chan string, 16),
		closed: make(chan struct{}),
	}
}

func (c *chanConn) ID() string { return c.id }

func (c *chanConn) WriteText(msg string) bool {
	select {
	case c.out <- msg:
		return true
	default:
		return false
	}
}

func (c *chanConn) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
}

func recv(t *testing.T, c *chanConn) string {
	t.Helper()
	select {
	case msg := <-c.out:
		return msg
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for a message on %q", c.id)
		return ""
	}
}

func newTestEngine(t *testing.T) *Engine {
	su := &stats.MockStatsUpdater{}
	su.On("RegisterMetric", mock.Anything).Times(4)
	su.On("Incr", mock.Anything).Maybe()
	su.On("Decr", mock.Anything).Maybe()

	return NewEngine(testutil.TestLogger(t), su)
}

func TestNewEngine(t *testing.T) {
	su := &stats.MockStatsUpdater{}
	defer su.AssertExpectations(t)
	su.On("RegisterMetric", mock.Anything).Times(4)

	logger := testutil.TestLogger(t)
	e := NewEngine(logger, su)
	assert.NotNil(t, e, "expected engine to be non-nil")
	assert.Equal(t, logger, e.log, "expected logger to be set")
	assert.NotNil(t, e.identities, "expected identity registry to be initialized")
	assert.NotNil(t, e.rooms, "expected room registry to be initialized")
	assert.NotNil(t, e.sessions, "expected session manager to be initialized")
	assert.NotNil(t, e.dispatcher, "expected dispatcher to be initialized")
	assert.NotNil(t, e.conns, "expected connection table to be initialized")
	assert.NotNil(t, e.sessionTab, "expected session table to be initialized")
	assert.NotNil(t, e.openChan, "expected openChan to be initialized")
	assert.NotNil(t, e.inboundChan, "expected inboundChan to be initialized")
	assert.NotNil(t, e.closeChan, "expected closeChan to be initialized")
	assert.NotNil(t, e.stop, "expected stop channel to be initialized")
}

func TestEngineShutdown(t *testing.T) {
	t.Run("successful shutdown", func(t *testing.T) {
		e := newTestEngine(t)
		go e.Run()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		err := e.Shutdown(ctx)
		assert.NoError(t, err, "expected successful shutdown without error")
	})

	t.Run("fails with context deadline exceeded", func(t *testing.T) {
		e := newTestEngine(t)
		// engine loop never started, the stop request can't be delivered

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		err := e.Shutdown(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded, "expected context deadline exceeded error")
	})

	t.Run("closes registered connections", func(t *testing.T) {
		e := newTestEngine(t)
		go e.Run()

		conn := newChanConn("conn-1")
		e.Register(conn)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		assert.NoError(t, e.Shutdown(ctx), "expected successful shutdown")

		select {
		case <-conn.closed:
		case <-time.After(time.Second):
			t.Error("expected the connection to be closed on shutdown")
		}
	})
}

func TestEngineScenario(t *testing.T) {
	e := newTestEngine(t)
	go e.Run()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		e.Shutdown(ctx)
	}()

	alice := newChanConn("conn-alice")
	bob := newChanConn("conn-bob")
	e.Register(alice)
	e.Register(bob)

	e.Inbound(alice, "CREATE_USER:alice,pw1")
	assert.Equal(t, "User created and logged in", recv(t, alice))

	e.Inbound(alice, "CREATE_ROOM:lobby")
	reply := recv(t, alice)
	assert.Regexp(t, `^Room created and connected\. Secret: .+`, reply,
		"expected the secret key in the create-room reply")
	key := reply[len("Room created and connected. Secret: "):]

	e.Inbound(bob, "CREATE_USER:bob,pw2")
	assert.Equal(t, "User created and logged in", recv(t, bob))

	e.Inbound(bob, "JOIN_ROOM:lobby,"+key)
	assert.Equal(t, "Joined room lobby", recv(t, bob))

	e.Inbound(alice, "SEND:hi")
	assert.Equal(t, "alice: hi", recv(t, bob), "expected the broadcast at bob")

	// bob's transport drops; the loop processes the close before
	// accepting the next inbound line
	e.Unregister(bob)
	e.Inbound(alice, "SEND:bye")

	select {
	case msg := <-bob.out:
		t.Errorf("expected no delivery to a closed connection, got %q", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEngineCloseClearsEmptyUsernameBinding(t *testing.T) {
	e := newTestEngine(t)
	go e.Run()

	conn := newChanConn("conn-1")
	e.Register(conn)

	e.Inbound(conn, "CREATE_USER:,pw1")
	assert.Equal(t, "User created and logged in", recv(t, conn))

	e.Unregister(conn)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, e.Shutdown(ctx), "expected successful shutdown")

	// the loop is stopped, the registry can be inspected directly
	acct, ok := e.identities.Get("")
	assert.True(t, ok, "expected the empty-username account to survive the disconnect")
	assert.Empty(t, acct.ConnID, "expected the close to clear the live binding")
}

func TestEngineUnknownConnection(t *testing.T) {
	e := newTestEngine(t)
	go e.Run()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		e.Shutdown(ctx)
	}()

	// a line from a connection that never registered is dropped, not a crash
	ghost := newChanConn("conn-ghost")
	e.Inbound(ghost, "CREATE_USER:ghost,pw")

	select {
	case msg := <-ghost.out:
		t.Errorf("expected no reply to an unknown connection, got %q", msg)
	case <-time.After(100 * time.Millisecond):
	}

	// closing it twice is also harmless
	e.Unregister(ghost)
	e.Unregister(ghost)
}
