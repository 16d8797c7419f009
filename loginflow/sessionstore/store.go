// Package sessionstore holds the in-flight login sessions. It is the only
// shared mutable state in the process; access for a single conversation is
// serialized through Acquire while unrelated conversations proceed in
// parallel.
package sessionstore

import (
	"sync"
	"time"

	"github.com/jrsteele09/tg-session-bot/authclient"
)

// State is the position of a login flow inside the conversation state
// machine. Flows move strictly forward except for the single backward edge
// from StateAwaitingCode to StateAwaitingSecondFactor.
type State int

const (
	StateAwaitingAPIID State = iota + 1
	StateAwaitingAPIHash
	StateAwaitingPhoneNumber
	StateAwaitingCode
	StateAwaitingSecondFactor
)

func (s State) String() string {
	switch s {
	case StateAwaitingAPIID:
		return "awaiting_api_id"
	case StateAwaitingAPIHash:
		return "awaiting_api_hash"
	case StateAwaitingPhoneNumber:
		return "awaiting_phone_number"
	case StateAwaitingCode:
		return "awaiting_code"
	case StateAwaitingSecondFactor:
		return "awaiting_second_factor"
	default:
		return "unknown"
	}
}

// Session is the in-flight login state for one conversation. At most one
// exists per conversation identity. Conn, when set, is exclusively owned by
// this session and must be closed before the session is dropped.
type Session struct {
	ConversationID string
	FlowID         string // correlation id for logs, never the chat id
	Backend        authclient.Backend
	State          State

	APIID       int
	APIHash     string // sensitive, wiped once the connection is up
	PhoneNumber string
	CodeToken   authclient.CodeToken
	Conn        authclient.Conn

	Attempts int // rejected codes/passwords in the current state

	CreatedAt      time.Time
	LastActivityAt time.Time
}

// Store maps conversation identities to in-flight sessions.
type Store struct {
	mu       sync.Mutex
	locks    map[string]*convLock
	sessions map[string]*Session
}

type convLock struct {
	mu   sync.Mutex
	refs int
}

func New() *Store {
	return &Store{
		locks:    make(map[string]*convLock),
		sessions: make(map[string]*Session),
	}
}

// Acquire takes the per-conversation lock and returns its release func.
// Callers must hold the lock around every Get/Put/Remove sequence for that
// conversation so inbound events are applied one at a time, in order.
func (s *Store) Acquire(conversationID string) (release func()) {
	s.mu.Lock()
	l, ok := s.locks[conversationID]
	if !ok {
		l = &convLock{}
		s.locks[conversationID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			s.mu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(s.locks, conversationID)
			}
			s.mu.Unlock()
		})
	}
}

// Get returns the in-flight session for a conversation, if any.
func (s *Store) Get(conversationID string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[conversationID]
	return session, ok
}

// Put stores the session, overwriting any existing entry for the identity.
// The caller is responsible for releasing the connection of a session it
// overwrites.
func (s *Store) Put(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ConversationID] = session
}

// Remove deletes and returns the session for a conversation.
func (s *Store) Remove(conversationID string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[conversationID]
	if !ok {
		return nil, false
	}
	delete(s.sessions, conversationID)
	return session, true
}

// Len reports the number of in-flight sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) conversationIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}
