package chat

import (
	"errors"
	"log"
)

// Reply lines clients may match on. Changing any of these breaks existing
// clients.
const (
	replyInvalidFormat  = "Invalid format"
	replyUnknownCommand = "Unknown command"
	replyUserCreated    = "User created and logged in"
	replyUsernameExists = "Username already exists"
	replyLoginOK        = "Login successful"
	replyBadCredentials = "Invalid credentials"
	replyRoomExists     = "Room name already exists"
	replyJoinFailed     = "Failed to join room (wrong key?)"
	replyNotJoined      = "You have not joined this room before. Use JOIN_ROOM with secret key."
	replyNotLoggedIn    = "You are not logged in"
)

// Dispatcher parses inbound lines and translates session and router results
// into reply lines. Every failure is recovered here into a single reply;
// nothing aborts the connection.
type Dispatcher struct {
	log      *log.Logger
	sessions *SessionManager
	router   *Router
}

func NewDispatcher(logger *log.Logger, sessions *SessionManager, router *Router) *Dispatcher {
	return &Dispatcher{
		log:      logger,
		sessions: sessions,
		router:   router,
	}
}

// Dispatch handles one inbound line for the given session. The returned bool
// is false when no reply should be written, which is only the case for SEND.
func (d *Dispatcher) Dispatch(sess *Session, raw string) (string, bool) {
	cmd, err := ParseCommand(raw)
	if err != nil {
		if cmd.Kind == CmdUnknown {
			return replyInvalidFormat, true
		}
		return replyInvalidFormat + " for " + cmd.Kind.String(), true
	}

	switch cmd.Kind {
	case CmdCreateUser:
		if err := d.sessions.CreateAccount(sess, cmd.Username, cmd.Password); err != nil {
			return replyUsernameExists, true
		}
		return replyUserCreated, true

	case CmdLogin:
		if err := d.sessions.Login(sess, cmd.Username, cmd.Password); err != nil {
			return replyBadCredentials, true
		}
		return replyLoginOK, true

	case CmdCreateRoom:
		key, err := d.sessions.CreateRoom(sess, cmd.Room)
		switch {
		case errors.Is(err, ErrNotAuthenticated):
			return replyNotLoggedIn, true
		case err != nil:
			return replyRoomExists, true
		}
		return "Room created and connected. Secret: " + key, true

	case CmdJoinRoom:
		rejoined, err := d.sessions.JoinRoom(sess, cmd.Room, cmd.Key)
		switch {
		case errors.Is(err, ErrNotAuthenticated):
			return replyNotLoggedIn, true
		case err != nil:
			// wrong key and unknown room are deliberately the same reply
			return replyJoinFailed, true
		case rejoined:
			return "Reconnected to room " + cmd.Room, true
		}
		return "Joined room " + cmd.Room, true

	case CmdConnectRoom:
		err := d.sessions.ConnectRoom(sess, cmd.Room)
		switch {
		case errors.Is(err, ErrNotAuthenticated):
			return replyNotLoggedIn, true
		case err != nil:
			return replyNotJoined, true
		}
		return "Connected to room " + cmd.Room, true

	case CmdSend:
		sender, err := d.sessions.Account(sess)
		if err != nil {
			return replyNotLoggedIn, true
		}
		d.router.Route(sender, cmd.Text)
		return "", false

	default:
		return replyUnknownCommand, true
	}
}
