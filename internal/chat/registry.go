package chat

import (
	"github.com/dpayton/go-chatserver/internal/stats"
	"github.com/google/uuid"
)

// Account is a registered identity. Accounts are never deleted and room
// membership, once granted, is never revoked.
type Account struct {
	Username    string
	Password    string
	JoinedRooms map[string]struct{}
	// ActiveRoom is the room SEND currently routes to. It lives on the
	// account rather than the connection so it survives reconnects.
	ActiveRoom string
	// ConnID is the id of the live connection currently bound to this
	// account, empty while the account is offline. It is a lookup key into
	// the engine's connection table, never a transport handle.
	ConnID string
}

func (a *Account) Joined(room string) bool {
	_, ok := a.JoinedRooms[room]
	return ok
}

// Room is a named, key-gated group. The members set only grows.
type Room struct {
	Name      string
	SecretKey string
	Members   map[string]struct{}
}

type IdentityStore interface {
	CreateAccount(username, password string) (*Account, error)
	Authenticate(username, password string) (*Account, error)
	Get(username string) (*Account, bool)
	BindConn(username, connID string)
	ClearConn(username, connID string)
}

type RoomStore interface {
	CreateRoom(name string, creator *Account) (string, error)
	Join(acct *Account, name, key string) error
	Get(name string) (*Room, bool)
}

// IdentityRegistry owns the username -> account mapping. It is not safe for
// concurrent use; the engine loop serializes all access.
type IdentityRegistry struct {
	accounts map[string]*Account
	stats    stats.StatsProvider
}

func NewIdentityRegistry(sp stats.StatsProvider) *IdentityRegistry {
	return &IdentityRegistry{
		accounts: make(map[string]*Account),
		stats:    sp,
	}
}

func (r *IdentityRegistry) CreateAccount(username, password string) (*Account, error) {
	if _, ok := r.accounts[username]; ok {
		return nil, ErrUsernameExists
	}

	acct := &Account{
		Username:    username,
		Password:    password,
		JoinedRooms: make(map[string]struct{}),
	}
	r.accounts[username] = acct
	r.stats.Incr("NumAccounts")

	return acct, nil
}

// Authenticate compares the stored credential by exact match.
func (r *IdentityRegistry) Authenticate(username, password string) (*Account, error) {
	acct, ok := r.accounts[username]
	if !ok || acct.Password != password {
		return nil, ErrInvalidCredentials
	}

	return acct, nil
}

func (r *IdentityRegistry) Get(username string) (*Account, bool) {
	acct, ok := r.accounts[username]
	return acct, ok
}

// BindConn sets or replaces the account's live connection, last login wins.
func (r *IdentityRegistry) BindConn(username, connID string) {
	if acct, ok := r.accounts[username]; ok {
		acct.ConnID = connID
	}
}

// ClearConn unbinds the account's live connection. The clear only happens
// when the stored id matches connID, so an old socket closing after the
// account re-bound elsewhere cannot wipe the new binding.
func (r *IdentityRegistry) ClearConn(username, connID string) {
	if acct, ok := r.accounts[username]; ok && acct.ConnID == connID {
		acct.ConnID = ""
	}
}

// RoomRegistry owns the room name -> room mapping. Like IdentityRegistry it
// relies on the engine loop for serialization.
type RoomRegistry struct {
	rooms map[string]*Room
	stats stats.StatsProvider
	// newSecretKey is swapped out in tests
	newSecretKey func() string
}

func NewRoomRegistry(sp stats.StatsProvider) *RoomRegistry {
	return &RoomRegistry{
		rooms:        make(map[string]*Room),
		stats:        sp,
		newSecretKey: uuid.NewString,
	}
}

// CreateRoom creates the room with a fresh secret key, adds the creator as a
// member and makes it the creator's active room. The key is returned so the
// creator can share it out of band.
func (r *RoomRegistry) CreateRoom(name string, creator *Account) (string, error) {
	if _, ok := r.rooms[name]; ok {
		return "", ErrRoomExists
	}

	room := &Room{
		Name:      name,
		SecretKey: r.newSecretKey(),
		Members:   make(map[string]struct{}),
	}
	r.rooms[name] = room
	r.stats.Incr("NumRooms")

	room.Members[creator.Username] = struct{}{}
	creator.JoinedRooms[name] = struct{}{}
	creator.ActiveRoom = name

	return room.SecretKey, nil
}

// Join grants first-time membership, gated by the room's secret key. Callers
// must handle the already-a-member reconnect path before calling Join.
func (r *RoomRegistry) Join(acct *Account, name, key string) error {
	room, ok := r.rooms[name]
	if !ok {
		return ErrRoomNotFound
	}
	if room.SecretKey != key {
		return ErrWrongKey
	}

	room.Members[acct.Username] = struct{}{}
	acct.JoinedRooms[name] = struct{}{}
	acct.ActiveRoom = name

	return nil
}

func (r *RoomRegistry) Get(name string) (*Room, bool) {
	room, ok := r.rooms[name]
	return room, ok
}
