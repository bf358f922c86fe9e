package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/core"
)

// DefaultSessionTTL is how long an access token stays valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

type account struct {
	user core.User
	hash []byte
}

type session struct {
	userID  string
	expires time.Time
	refresh string
}

type refreshGrant struct {
	userID  string
	access  string
	expires time.Time
}

// Identity is an in-process account directory. Accounts are confirmed on
// creation, so SignUp always returns a session.
type Identity struct {
	mu       sync.Mutex
	byID     map[string]*account
	byEmail  map[string]string
	sessions map[string]session
	refresh  map[string]refreshGrant
	ttl      time.Duration
	now      func() time.Time
}

func NewIdentity() *Identity {
	return &Identity{
		byID:     map[string]*account{},
		byEmail:  map[string]string{},
		sessions: map[string]session{},
		refresh:  map[string]refreshGrant{},
		ttl:      DefaultSessionTTL,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (i *Identity) SignUp(_ context.Context, email, password string, meta core.UserMetadata) (core.SignUpResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return core.SignUpResult{}, core.ErrMissingCredentials
	}
	if len(password) < core.MinPasswordLength {
		return core.SignUpResult{}, core.ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return core.SignUpResult{}, err
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.byEmail[email]; ok {
		return core.SignUpResult{}, core.ErrUserExists
	}
	u := core.User{
		ID:             uuid.NewString(),
		Email:          email,
		EmailConfirmed: true,
		CreatedAt:      i.now().UTC(),
		Metadata:       meta,
	}
	i.byID[u.ID] = &account{user: u, hash: hash}
	i.byEmail[email] = u.ID
	sess := i.issueLocked(u.ID)
	return core.SignUpResult{User: u, Session: &sess}, nil
}

func (i *Identity) SignIn(_ context.Context, email, password string) (core.Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return core.Session{}, core.ErrMissingCredentials
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	id, ok := i.byEmail[email]
	if !ok {
		return core.Session{}, core.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(i.byID[id].hash, []byte(password)) != nil {
		return core.Session{}, core.ErrInvalidCredentials
	}
	return i.issueLocked(id), nil
}

func (i *Identity) issueLocked(userID string) core.Session {
	tok, ref := uuid.NewString(), uuid.NewString()
	now := i.now()
	exp := now.Add(i.ttl)
	i.sessions[tok] = session{userID: userID, expires: exp, refresh: ref}
	i.refresh[ref] = refreshGrant{userID: userID, access: tok, expires: now.Add(core.RefreshTTL)}
	return core.Session{
		AccessToken:  tok,
		RefreshToken: ref,
		UserID:       userID,
		ExpiresAt:    exp,
	}
}

// Refresh rotates both tokens of the session refreshToken belongs to.
func (i *Identity) Refresh(_ context.Context, refreshToken string) (core.Session, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	g, ok := i.refresh[refreshToken]
	if !ok {
		return core.Session{}, core.ErrUnauthenticated
	}
	delete(i.refresh, refreshToken)
	delete(i.sessions, g.access)
	if !i.now().Before(g.expires) {
		return core.Session{}, core.ErrUnauthenticated
	}
	if _, ok := i.byID[g.userID]; !ok {
		return core.Session{}, core.ErrUnauthenticated
	}
	return i.issueLocked(g.userID), nil
}

func (i *Identity) User(_ context.Context, accessToken string) (core.User, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	acc, err := i.resolveLocked(accessToken)
	if err != nil {
		return core.User{}, err
	}
	return acc.user, nil
}

func (i *Identity) resolveLocked(tok string) (*account, error) {
	s, ok := i.sessions[tok]
	if !ok {
		return nil, core.ErrUnauthenticated
	}
	if !i.now().Before(s.expires) {
		delete(i.sessions, tok)
		return nil, core.ErrUnauthenticated
	}
	acc, ok := i.byID[s.userID]
	if !ok {
		return nil, core.ErrUnauthenticated
	}
	return acc, nil
}

func (i *Identity) UpdateMetadata(_ context.Context, accessToken string, update core.MetadataUpdate) (core.User, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	acc, err := i.resolveLocked(accessToken)
	if err != nil {
		return core.User{}, err
	}
	acc.user.Metadata = update.Apply(acc.user.Metadata)
	return acc.user, nil
}

// SignOut drops the session and its refresh token. Unknown tokens are
// ignored.
func (i *Identity) SignOut(_ context.Context, accessToken string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if s, ok := i.sessions[accessToken]; ok {
		delete(i.refresh, s.refresh)
	}
	delete(i.sessions, accessToken)
	return nil
}
