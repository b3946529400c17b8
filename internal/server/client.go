package server

import (
	"log"
	"sync"
	"time"

	"github.com/dpayton/go-chatserver/internal/chat"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// Client pumps text frames between one websocket connection and the chat
// engine. Each frame carries exactly one command or reply line.
type Client struct {
	id       string
	conn     *websocket.Conn
	engine   *chat.Engine
	log      *log.Logger
	send     chan string
	stop     chan struct{}
	stopOnce sync.Once
}

func NewClient(id string, conn *websocket.Conn, engine *chat.Engine, l *log.Logger) *Client {
	return &Client{
		id:     id,
		conn:   conn,
		engine: engine,
		log:    l,
		send:   make(chan string, 256),
		stop:   make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

// WriteText queues one outbound line without blocking. It reports false when
// the client is backed up and the line was dropped.
func (c *Client) WriteText(msg string) bool {
	select {
	case c.send <- msg:
	default:
		c.log.Printf("dropping message to %q, send buffer full", c.id)
		return false
	}

	return true
}

// Close asks the pumps to shut the connection down. Safe to call more than
// once.
func (c *Client) Close() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.log.Printf("write pump for %q exiting", c.id)
	}()

	for {
		select {
		case msg := <-c.send:
			if !c.sendMessage(websocket.TextMessage, []byte(msg)) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			if !c.sendMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.engine.Unregister(c)
		c.Close()
		c.log.Printf("read pump for %q exiting", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		c.engine.Inbound(c, string(raw))
	}
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}
