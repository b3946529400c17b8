package chat

import "strings"

type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdCreateUser
	CmdLogin
	CmdCreateRoom
	CmdJoinRoom
	CmdConnectRoom
	CmdSend
)

func (k CommandKind) String() string {
	switch k {
	case CmdCreateUser:
		return "CREATE_USER"
	case CmdLogin:
		return "LOGIN"
	case CmdCreateRoom:
		return "CREATE_ROOM"
	case CmdJoinRoom:
		return "JOIN_ROOM"
	case CmdConnectRoom:
		return "CONNECT_ROOM"
	case CmdSend:
		return "SEND"
	default:
		return "UNKNOWN"
	}
}

// Command is one parsed protocol line. Only the fields for the given Kind
// are populated.
type Command struct {
	Kind     CommandKind
	Username string
	Password string
	Room     string
	Key      string
	Text     string
}

// ParseCommand splits a COMMAND:ARGS line into a Command. A missing colon or
// missing comma-separated argument yields ErrBadFormat; when the verb was
// recognized the partial Command carries its Kind so callers can report which
// command was malformed. An unrecognized verb parses to CmdUnknown with no
// error.
func ParseCommand(raw string) (Command, error) {
	verb, args, ok := strings.Cut(raw, ":")
	if !ok {
		return Command{}, ErrBadFormat
	}

	switch verb {
	case "CREATE_USER":
		username, password, ok := strings.Cut(args, ",")
		if !ok {
			return Command{Kind: CmdCreateUser}, ErrBadFormat
		}
		return Command{Kind: CmdCreateUser, Username: username, Password: password}, nil
	case "LOGIN":
		username, password, ok := strings.Cut(args, ",")
		if !ok {
			return Command{Kind: CmdLogin}, ErrBadFormat
		}
		return Command{Kind: CmdLogin, Username: username, Password: password}, nil
	case "CREATE_ROOM":
		return Command{Kind: CmdCreateRoom, Room: args}, nil
	case "JOIN_ROOM":
		room, key, ok := strings.Cut(args, ",")
		if !ok {
			return Command{Kind: CmdJoinRoom}, ErrBadFormat
		}
		return Command{Kind: CmdJoinRoom, Room: room, Key: key}, nil
	case "CONNECT_ROOM":
		return Command{Kind: CmdConnectRoom, Room: args}, nil
	case "SEND":
		return Command{Kind: CmdSend, Text: args}, nil
	default:
		return Command{Kind: CmdUnknown}, nil
	}
}
