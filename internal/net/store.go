package net

// SessionStore holds the live sessions. Game loop only.
type SessionStore struct {
	sessions   map[uint64]*Session
	controller uint64 // session driving the player, 0 = none
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uint64]*Session)}
}

func (s *SessionStore) Add(sess *Session) { s.sessions[sess.ID] = sess }

func (s *SessionStore) Remove(id uint64) {
	delete(s.sessions, id)
	if s.controller == id {
		s.controller = 0
	}
}

func (s *SessionStore) Get(id uint64) *Session { return s.sessions[id] }

func (s *SessionStore) Len() int { return len(s.sessions) }

// Raw exposes the map for draining loops.
func (s *SessionStore) Raw() map[uint64]*Session { return s.sessions }

func (s *SessionStore) ForEach(fn func(*Session)) {
	for _, sess := range s.sessions {
		fn(sess)
	}
}

// Broadcast buffers msg on every open session.
func (s *SessionStore) Broadcast(msg Message) {
	for _, sess := range s.sessions {
		sess.Send(msg)
	}
}

// Controller returns the controlling session ID, or 0.
func (s *SessionStore) Controller() uint64 { return s.controller }

// Claim makes id the controller unless another live session holds it.
func (s *SessionStore) Claim(id uint64) bool {
	if s.controller != 0 && s.controller != id {
		if cur := s.sessions[s.controller]; cur != nil && !cur.IsClosed() {
			return false
		}
	}
	s.controller = id
	return true
}

// CloseAll closes every session.
func (s *SessionStore) CloseAll() {
	for _, sess := range s.sessions {
		sess.Close()
	}
}
