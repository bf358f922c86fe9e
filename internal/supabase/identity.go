package supabase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Identity delegates accounts and sessions to Supabase Auth (GoTrue).
type Identity struct {
	c *Client
}

func NewIdentity(c *Client) *Identity { return &Identity{c: c} }

func (i *Identity) SignUp(ctx context.Context, email, password string, meta core.UserMetadata) (core.SignUpResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return core.SignUpResult{}, core.ErrMissingCredentials
	}
	if err := ctx.Err(); err != nil {
		return core.SignUpResult{}, err
	}
	resp, err := i.c.sdk.Auth.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
		Data:     meta.ToMap(),
	})
	if err != nil {
		err = mapAuthError(err)
		i.c.logger.Warn("sign up failed", log.NewFields().WithOperation(log.OpSignUp).WithError(err).Args()...)
		return core.SignUpResult{}, err
	}

	res := core.SignUpResult{User: toUser(resp.User)}
	if resp.Session.AccessToken != "" {
		sess := toSession(resp.Session)
		res.Session = &sess
		if res.User.ID == "" {
			res.User = toUser(resp.Session.User)
		}
	}
	return res, nil
}

func (i *Identity) SignIn(ctx context.Context, email, password string) (core.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return core.Session{}, core.ErrMissingCredentials
	}
	if err := ctx.Err(); err != nil {
		return core.Session{}, err
	}
	resp, err := i.c.sdk.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		err = mapAuthError(err)
		i.c.logger.Warn("sign in failed", log.NewFields().WithOperation(log.OpSignIn).WithError(err).Args()...)
		return core.Session{}, err
	}
	return toSession(resp.Session), nil
}

func (i *Identity) User(ctx context.Context, accessToken string) (core.User, error) {
	if accessToken == "" {
		return core.User{}, core.ErrUnauthenticated
	}
	if err := ctx.Err(); err != nil {
		return core.User{}, err
	}
	resp, err := i.c.sdk.Auth.WithToken(accessToken).GetUser()
	if err != nil {
		mapped := mapAuthError(err)
		if isAuthOutage(mapped) {
			return core.User{}, mapped
		}
		// Any other rejection means the token is unusable.
		return core.User{}, core.ErrUnauthenticated
	}
	return toUser(resp.User), nil
}

func (i *Identity) UpdateMetadata(ctx context.Context, accessToken string, update core.MetadataUpdate) (core.User, error) {
	if accessToken == "" {
		return core.User{}, core.ErrUnauthenticated
	}
	if err := ctx.Err(); err != nil {
		return core.User{}, err
	}
	resp, err := i.c.sdk.Auth.WithToken(accessToken).UpdateUser(types.UpdateUserRequest{
		Data: update.ToMap(),
	})
	if err != nil {
		return core.User{}, mapAuthError(err)
	}
	return toUser(resp.User), nil
}

// Refresh trades a refresh token for a new session. GoTrue rotates the
// token, so the old one is spent after this call.
func (i *Identity) Refresh(ctx context.Context, refreshToken string) (core.Session, error) {
	if refreshToken == "" {
		return core.Session{}, core.ErrUnauthenticated
	}
	if err := ctx.Err(); err != nil {
		return core.Session{}, err
	}
	resp, err := i.c.sdk.Auth.RefreshToken(refreshToken)
	if err != nil {
		mapped := mapAuthError(err)
		if isAuthOutage(mapped) {
			return core.Session{}, mapped
		}
		i.c.logger.Debug("refresh rejected", log.FieldError, err)
		return core.Session{}, core.ErrUnauthenticated
	}
	return toSession(resp.Session), nil
}

func (i *Identity) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := i.c.sdk.Auth.WithToken(accessToken).Logout(); err != nil {
		return mapAuthError(err)
	}
	return nil
}

func isAuthOutage(err error) bool {
	return errors.Is(err, core.ErrAuthNetwork) || errors.Is(err, core.ErrAuthUnavailable)
}

func toUser(u types.User) core.User {
	out := core.User{
		Email:          u.Email,
		EmailConfirmed: u.EmailConfirmedAt != nil || u.ConfirmedAt != nil,
		CreatedAt:      u.CreatedAt,
		Metadata:       core.MetadataFromMap(u.UserMetadata),
	}
	if u.ID != uuid.Nil {
		out.ID = u.ID.String()
	}
	return out
}

func toSession(s types.Session) core.Session {
	out := core.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    time.Unix(s.ExpiresAt, 0),
	}
	if s.User.ID != uuid.Nil {
		out.UserID = s.User.ID.String()
	}
	if s.ExpiresAt == 0 && s.ExpiresIn > 0 {
		out.ExpiresAt = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	return out
}
