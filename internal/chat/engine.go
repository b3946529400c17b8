package chat

import (
	"context"
	"log"

	"github.com/dpayton/go-chatserver/internal/stats"
)

// Conn is the transport-side handle for one live connection. WriteText must
// not block; it reports whether the message was queued. Close asks the
// transport to tear the connection down.
type Conn interface {
	ID() string
	WriteText(msg string) bool
	Close()
}

type inbound struct {
	conn Conn
	text string
}

type stopReq struct {
	done chan struct{}
}

// Engine is the single event loop that owns the registries, the session
// table and the connection table. Connection opens, inbound lines and closes
// are processed one at a time, which serializes every mutation of shared
// state without further locking.
type Engine struct {
	log        *log.Logger
	identities *IdentityRegistry
	rooms      *RoomRegistry
	sessions   *SessionManager
	dispatcher *Dispatcher
	stats      stats.StatsProvider

	// conns and sessionTab are touched only from Run
	conns      map[string]Conn
	sessionTab map[string]*Session

	openChan    chan Conn
	inboundChan chan inbound
	closeChan   chan Conn
	stop        chan stopReq
	done        chan struct{}
}

func NewEngine(logger *log.Logger, sp stats.StatsProvider) *Engine {
	for _, name := range []string{"NumConnections", "NumAccounts", "NumRooms", "MessagesRouted"} {
		sp.RegisterMetric(name)
	}

	e := &Engine{
		log:         logger,
		identities:  NewIdentityRegistry(sp),
		rooms:       NewRoomRegistry(sp),
		stats:       sp,
		conns:       make(map[string]Conn),
		sessionTab:  make(map[string]*Session),
		openChan:    make(chan Conn),
		inboundChan: make(chan inbound),
		closeChan:   make(chan Conn),
		stop:        make(chan stopReq),
		done:        make(chan struct{}),
	}

	e.sessions = NewSessionManager(e.identities, e.rooms)
	router := NewRouter(logger, e.identities, e.rooms, e, sp)
	e.dispatcher = NewDispatcher(logger, e.sessions, router)

	return e
}

func (e *Engine) Run() {
	for {
		select {
		case conn := <-e.openChan:
			e.handleOpen(conn)
		case in := <-e.inboundChan:
			e.handleInbound(in)
		case conn := <-e.closeChan:
			e.handleClose(conn)
		case req := <-e.stop:
			for _, conn := range e.conns {
				conn.Close()
			}
			close(e.done)
			close(req.done)
			return
		}
	}
}

// Register hands a newly opened connection to the engine.
func (e *Engine) Register(conn Conn) {
	select {
	case e.openChan <- conn:
	case <-e.done:
	}
}

// Inbound hands one received text line to the engine. It blocks until the
// loop picks the line up, which is what serializes command handling.
func (e *Engine) Inbound(conn Conn, text string) {
	select {
	case e.inboundChan <- inbound{conn: conn, text: text}:
	case <-e.done:
	}
}

// Unregister reports that the connection closed.
func (e *Engine) Unregister(conn Conn) {
	select {
	case e.closeChan <- conn:
	case <-e.done:
	}
}

// Lookup implements ConnTable. Only called from the engine loop.
func (e *Engine) Lookup(id string) (Conn, bool) {
	conn, ok := e.conns[id]
	return conn, ok
}

func (e *Engine) Shutdown(ctx context.Context) error {
	req := stopReq{done: make(chan struct{})}

	select {
	case e.stop <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) handleOpen(conn Conn) {
	id := conn.ID()
	e.conns[id] = conn
	e.sessionTab[id] = &Session{ConnID: id}
	e.stats.Incr("NumConnections")
	e.log.Printf("connection %q opened", id)
}

func (e *Engine) handleInbound(in inbound) {
	sess, ok := e.sessionTab[in.conn.ID()]
	if !ok {
		e.log.Printf("dropping line from unknown connection %q", in.conn.ID())
		return
	}

	if reply, ok := e.dispatcher.Dispatch(sess, in.text); ok {
		in.conn.WriteText(reply)
	}
}

func (e *Engine) handleClose(conn Conn) {
	id := conn.ID()
	sess, ok := e.sessionTab[id]
	if !ok {
		return
	}

	if sess.Authenticated() {
		e.identities.ClearConn(sess.Username, id)
		e.log.Printf("%s disconnected", sess.Username)
	} else {
		e.log.Printf("connection %q closed", id)
	}

	delete(e.sessionTab, id)
	delete(e.conns, id)
	e.stats.Decr("NumConnections")
}
