package chat

// Session is the per-connection state: which account is authenticated on the
// connection, if any. It is created when the connection opens and discarded
// when it closes; account and room state outlive it in the registries.
type Session struct {
	ConnID   string
	Username string
	// authed is tracked explicitly because the empty string is a legal
	// username, so Username alone cannot distinguish anonymous sessions.
	authed bool
}

func (s *Session) Authenticated() bool {
	return s.authed
}

// SessionManager drives the per-connection state machine against the
// registries. All methods are called from the engine loop.
type SessionManager struct {
	identities IdentityStore
	rooms      RoomStore
}

func NewSessionManager(identities IdentityStore, rooms RoomStore) *SessionManager {
	return &SessionManager{
		identities: identities,
		rooms:      rooms,
	}
}

// CreateAccount registers a new account and logs the connection in as it.
func (m *SessionManager) CreateAccount(sess *Session, username, password string) error {
	if _, err := m.identities.CreateAccount(username, password); err != nil {
		return err
	}

	sess.Username = username
	sess.authed = true
	m.identities.BindConn(username, sess.ConnID)

	return nil
}

// Login authenticates and binds the connection, replacing any binding the
// account had on another connection.
func (m *SessionManager) Login(sess *Session, username, password string) error {
	if _, err := m.identities.Authenticate(username, password); err != nil {
		return err
	}

	sess.Username = username
	sess.authed = true
	m.identities.BindConn(username, sess.ConnID)

	return nil
}

// Account resolves the session's bound account, failing with
// ErrNotAuthenticated for anonymous connections or dangling usernames.
func (m *SessionManager) Account(sess *Session) (*Account, error) {
	if !sess.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	acct, ok := m.identities.Get(sess.Username)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	return acct, nil
}

func (m *SessionManager) CreateRoom(sess *Session, name string) (string, error) {
	acct, err := m.Account(sess)
	if err != nil {
		return "", err
	}

	return m.rooms.CreateRoom(name, acct)
}

// JoinRoom makes the named room active. For an existing member this is an
// idempotent reconnect: the key is not checked and nothing is mutated beyond
// the active room. Otherwise membership is requested from the room registry.
// The returned bool reports the reconnect case.
func (m *SessionManager) JoinRoom(sess *Session, name, key string) (bool, error) {
	acct, err := m.Account(sess)
	if err != nil {
		return false, err
	}

	if acct.Joined(name) {
		acct.ActiveRoom = name
		return true, nil
	}

	if err := m.rooms.Join(acct, name, key); err != nil {
		return false, err
	}

	return false, nil
}

// ConnectRoom switches the active room to one the account already joined.
// It never grants membership.
func (m *SessionManager) ConnectRoom(sess *Session, name string) error {
	acct, err := m.Account(sess)
	if err != nil {
		return err
	}

	if !acct.Joined(name) {
		return ErrNotJoined
	}

	acct.ActiveRoom = name

	return nil
}
