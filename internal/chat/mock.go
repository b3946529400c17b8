package chat

import (
	"github.com/stretchr/testify/mock"
)

type MockIdentityStore struct {
	mock.Mock
}

func (m *MockIdentityStore) CreateAccount(username, password string) (*Account, error) {
	args := m.Called(username, password)
	if acct, ok := args.Get(0).(*Account); ok {
		return acct, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityStore) Authenticate(username, password string) (*Account, error) {
	args := m.Called(username, password)
	if acct, ok := args.Get(0).(*Account); ok {
		return acct, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityStore) Get(username string) (*Account, bool) {
	args := m.Called(username)
	if acct, ok := args.Get(0).(*Account); ok {
		return acct, args.Bool(1)
	}
	return nil, args.Bool(1)
}

func (m *MockIdentityStore) BindConn(username, connID string) {
	m.Called(username, connID)
}

func (m *MockIdentityStore) ClearConn(username, connID string) {
	m.Called(username, connID)
}

type MockRoomStore struct {
	mock.Mock
}

func (m *MockRoomStore) CreateRoom(name string, creator *Account) (string, error) {
	args := m.Called(name, creator)
	return args.String(0), args.Error(1)
}

func (m *MockRoomStore) Join(acct *Account, name, key string) error {
	args := m.Called(acct, name, key)
	return args.Error(0)
}

func (m *MockRoomStore) Get(name string) (*Room, bool) {
	args := m.Called(name)
	if room, ok := args.Get(0).(*Room); ok {
		return room, args.Bool(1)
	}
	return nil, args.Bool(1)
}
