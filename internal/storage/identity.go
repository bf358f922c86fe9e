package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/core"
)

// SessionTTL is how long an access token issued by the local identity lasts.
const SessionTTL = 7 * 24 * time.Hour

// Identity keeps accounts and sessions in the same SQLite database as the
// transactions. Accounts are confirmed on creation.
type Identity struct {
	repo *SQLiteRepository
}

func NewIdentity(repo *SQLiteRepository) *Identity {
	return &Identity{repo: repo}
}

func (i *Identity) SignUp(ctx context.Context, email, password string, meta core.UserMetadata) (core.SignUpResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return core.SignUpResult{}, core.ErrMissingCredentials
	}
	if len(password) < core.MinPasswordLength {
		return core.SignUpResult{}, core.ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return core.SignUpResult{}, fmt.Errorf("hash password: %w", err)
	}
	rawMeta, err := json.Marshal(meta.ToMap())
	if err != nil {
		return core.SignUpResult{}, fmt.Errorf("encode metadata: %w", err)
	}

	u := core.User{
		ID:             uuid.NewString(),
		Email:          email,
		EmailConfirmed: true,
		CreatedAt:      i.repo.now().UTC(),
		Metadata:       meta,
	}

	var exists int
	err = i.repo.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE email = ?`, email).Scan(&exists)
	if err != nil {
		return core.SignUpResult{}, fmt.Errorf("check user: %w", err)
	}
	if exists > 0 {
		return core.SignUpResult{}, core.ErrUserExists
	}

	_, err = i.repo.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, email_confirmed, metadata, created_at)
		VALUES (?, ?, ?, 1, ?, ?)`,
		u.ID, u.Email, string(hash), string(rawMeta), u.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return core.SignUpResult{}, core.ErrUserExists
		}
		return core.SignUpResult{}, fmt.Errorf("insert user: %w", err)
	}

	sess, err := i.issue(ctx, u.ID)
	if err != nil {
		return core.SignUpResult{}, err
	}
	return core.SignUpResult{User: u, Session: &sess}, nil
}

func (i *Identity) SignIn(ctx context.Context, email, password string) (core.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return core.Session{}, core.ErrMissingCredentials
	}
	var id, hash string
	err := i.repo.db.QueryRowContext(ctx, `SELECT id, password_hash FROM users WHERE email = ?`, email).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Session{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return core.Session{}, fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return core.Session{}, core.ErrInvalidCredentials
	}
	return i.issue(ctx, id)
}

func (i *Identity) issue(ctx context.Context, userID string) (core.Session, error) {
	now := i.repo.now()
	sess := core.Session{
		AccessToken:  uuid.NewString(),
		RefreshToken: uuid.NewString(),
		UserID:       userID,
		ExpiresAt:    now.Add(SessionTTL),
	}
	_, err := i.repo.db.ExecContext(ctx,
		`INSERT INTO sessions (token, refresh_token, user_id, expires_at, refresh_expires_at) VALUES (?, ?, ?, ?, ?)`,
		sess.AccessToken, sess.RefreshToken, userID, sess.ExpiresAt.Unix(), now.Add(core.RefreshTTL).Unix())
	if err != nil {
		return core.Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

func (i *Identity) User(ctx context.Context, accessToken string) (core.User, error) {
	if accessToken == "" {
		return core.User{}, core.ErrUnauthenticated
	}
	var (
		u         core.User
		confirmed int
		rawMeta   string
		created   string
		expires   int64
	)
	err := i.repo.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.email_confirmed, u.metadata, u.created_at, s.expires_at
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.token = ?`, accessToken).Scan(&u.ID, &u.Email, &confirmed, &rawMeta, &created, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrUnauthenticated
	}
	if err != nil {
		return core.User{}, fmt.Errorf("lookup session: %w", err)
	}
	// The row outlives its access token so the refresh token can renew it.
	if !i.repo.now().Before(time.Unix(expires, 0)) {
		return core.User{}, core.ErrUnauthenticated
	}

	u.EmailConfirmed = confirmed != 0
	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	var m map[string]any
	if err := json.Unmarshal([]byte(rawMeta), &m); err != nil {
		return core.User{}, fmt.Errorf("decode metadata for %s: %w", u.ID, err)
	}
	u.Metadata = core.MetadataFromMap(m)
	return u, nil
}

func (i *Identity) UpdateMetadata(ctx context.Context, accessToken string, update core.MetadataUpdate) (core.User, error) {
	u, err := i.User(ctx, accessToken)
	if err != nil {
		return core.User{}, err
	}
	u.Metadata = update.Apply(u.Metadata)
	raw, err := json.Marshal(u.Metadata.ToMap())
	if err != nil {
		return core.User{}, fmt.Errorf("encode metadata: %w", err)
	}
	if _, err := i.repo.db.ExecContext(ctx, `UPDATE users SET metadata = ? WHERE id = ?`, string(raw), u.ID); err != nil {
		return core.User{}, fmt.Errorf("update metadata: %w", err)
	}
	return u, nil
}

// Refresh deletes the session refreshToken belongs to and issues a new one.
// Of two concurrent refreshes with the same token only one succeeds.
func (i *Identity) Refresh(ctx context.Context, refreshToken string) (core.Session, error) {
	if refreshToken == "" {
		return core.Session{}, core.ErrUnauthenticated
	}
	var (
		userID  string
		expires int64
	)
	err := i.repo.db.QueryRowContext(ctx,
		`SELECT user_id, refresh_expires_at FROM sessions WHERE refresh_token = ?`, refreshToken).
		Scan(&userID, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Session{}, core.ErrUnauthenticated
	}
	if err != nil {
		return core.Session{}, fmt.Errorf("lookup refresh token: %w", err)
	}

	res, err := i.repo.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = ?`, refreshToken)
	if err != nil {
		return core.Session{}, fmt.Errorf("rotate session: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return core.Session{}, core.ErrUnauthenticated
	}
	if !i.repo.now().Before(time.Unix(expires, 0)) {
		return core.Session{}, core.ErrUnauthenticated
	}
	return i.issue(ctx, userID)
}

// PurgeSessions removes sessions whose refresh token has expired.
func (i *Identity) PurgeSessions(ctx context.Context) (int64, error) {
	res, err := i.repo.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE refresh_expires_at <= ?`, i.repo.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}

func (i *Identity) SignOut(ctx context.Context, accessToken string) error {
	if _, err := i.repo.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, accessToken); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
