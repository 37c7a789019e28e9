package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultTTL = 12 * time.Hour

// Session is the authenticated identity attached to a bearer token.
// Authorization decisions are made server-side against Role; the client
// never vouches for its own role.
type Session struct {
	UserID uuid.UUID
	Name   string
	Role   string
}

type entry struct {
	session Session
	expires time.Time
}

// Store keeps issued bearer tokens in memory with a fixed TTL. Tokens are
// opaque and single-process; restarting the service invalidates them.
type Store struct {
	ttl    time.Duration
	mu     sync.Mutex
	tokens map[string]entry
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{
		ttl:    ttl,
		tokens: make(map[string]entry),
	}
}

// Issue registers sess under a fresh opaque token and returns the token.
// Expired tokens are pruned on each call.
func (s *Store) Issue(sess Session) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.tokens {
		if now.After(e.expires) {
			delete(s.tokens, key)
		}
	}

	token := uuid.New().String()
	s.tokens[token] = entry{session: sess, expires: now.Add(s.ttl)}
	return token
}

// Lookup resolves a token into its session. Expired or unknown tokens
// report false.
func (s *Store) Lookup(token string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.tokens[token]
	if !ok || time.Now().After(e.expires) {
		return Session{}, false
	}
	return e.session, true
}

// Revoke removes a token. Revoking an unknown token is a no-op.
func (s *Store) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}
