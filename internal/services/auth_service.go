package services

import (
	"context"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"
)

// SignUpOutcome tells the caller what to show after a successful sign-up.
// Session is set when the account can be used right away.
type SignUpOutcome struct {
	User    core.User
	Session *core.Session
	Message string
}

type AuthService struct {
	identity ports.Identity
	logger   *log.Logger
}

func NewAuthService(identity ports.Identity, logger *log.Logger) *AuthService {
	if logger == nil {
		logger = log.Discard()
	}
	return &AuthService{identity: identity, logger: logger.WithComponent(log.ComponentAuth)}
}

func (s *AuthService) SignUp(ctx context.Context, email, password, fullName string) (SignUpOutcome, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return SignUpOutcome{}, core.ErrMissingCredentials
	}
	if len(password) < core.MinPasswordLength {
		return SignUpOutcome{}, core.ErrWeakPassword
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		fullName = core.EmailLocalPart(email)
	}

	res, err := s.identity.SignUp(ctx, email, password, core.UserMetadata{FullName: fullName})
	if err != nil {
		s.logger.WarnContext(ctx, "Sign-up failed", log.FieldOperation, log.OpSignUp, log.FieldError, err)
		return SignUpOutcome{}, err
	}
	s.logger.InfoContext(ctx, "Account created",
		log.FieldOperation, log.OpSignUp,
		log.FieldUserID, res.User.ID,
		"confirmed", res.User.EmailConfirmed)

	out := SignUpOutcome{User: res.User, Session: res.Session}
	switch {
	case !res.User.EmailConfirmed:
		out.Session = nil
		out.Message = "Account created! Please check your email to confirm your account before signing in."
	case res.Session == nil:
		out.Message = "Account created successfully! You can now sign in."
	}
	return out, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (core.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return core.Session{}, core.ErrMissingCredentials
	}
	sess, err := s.identity.SignIn(ctx, email, password)
	if err != nil {
		s.logger.WarnContext(ctx, "Sign-in failed", log.FieldOperation, log.OpSignIn, log.FieldError, err)
		return core.Session{}, err
	}
	s.logger.InfoContext(ctx, "Signed in", log.FieldOperation, log.OpSignIn, log.FieldUserID, sess.UserID)
	return sess, nil
}

// CurrentUser resolves a session token. An empty token is anonymous.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (core.User, error) {
	if accessToken == "" {
		return core.User{}, core.ErrUnauthenticated
	}
	return s.identity.User(ctx, accessToken)
}

// Resume renews an expired session from its refresh token and resolves the
// user behind the new access token.
func (s *AuthService) Resume(ctx context.Context, refreshToken string) (core.Session, core.User, error) {
	if refreshToken == "" {
		return core.Session{}, core.User{}, core.ErrUnauthenticated
	}
	sess, err := s.identity.Refresh(ctx, refreshToken)
	if err != nil {
		return core.Session{}, core.User{}, err
	}
	user, err := s.identity.User(ctx, sess.AccessToken)
	if err != nil {
		return core.Session{}, core.User{}, err
	}
	s.logger.DebugContext(ctx, "Session refreshed", log.FieldOperation, log.OpRefresh, log.FieldUserID, user.ID)
	return sess, user, nil
}

func (s *AuthService) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	if err := s.identity.SignOut(ctx, accessToken); err != nil {
		s.logger.WarnContext(ctx, "Sign-out failed", log.FieldOperation, log.OpSignOut, log.FieldError, err)
		return err
	}
	return nil
}
