package chat

import "errors"

var (
	ErrUsernameExists     = errors.New("username already exists")
	ErrRoomExists         = errors.New("room name already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongKey           = errors.New("wrong secret key")
	ErrRoomNotFound       = errors.New("room not found")
	ErrNotJoined          = errors.New("room not joined")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrBadFormat          = errors.New("invalid format")
)
