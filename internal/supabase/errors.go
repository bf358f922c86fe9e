package supabase

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"fintrack/internal/core"
)

// authErrorPatterns maps fragments of GoTrue error bodies to sentinels. The
// first match wins.
var authErrorPatterns = []struct {
	fragment string
	err      error
}{
	{"invalid login credentials", core.ErrInvalidCredentials},
	{"invalid_credentials", core.ErrInvalidCredentials},
	{"email not confirmed", core.ErrEmailNotConfirmed},
	{"email_not_confirmed", core.ErrEmailNotConfirmed},
	{"user already registered", core.ErrUserExists},
	{"already been registered", core.ErrUserExists},
	{"password should be at least", core.ErrWeakPassword},
	{"weak_password", core.ErrWeakPassword},
	{"invalid jwt", core.ErrUnauthenticated},
	{"token is expired", core.ErrUnauthenticated},
	{"bad_jwt", core.ErrUnauthenticated},
	{"status code 401", core.ErrUnauthenticated},
	{"invalid_grant", core.ErrUnauthenticated},
	{"invalid refresh token", core.ErrUnauthenticated},
	{"status code 403", core.ErrAuthUnavailable},
	{"forbidden", core.ErrAuthUnavailable},
	{"status code 5", core.ErrAuthUnavailable},
	{"failed to fetch", core.ErrAuthNetwork},
	{"cors", core.ErrAuthNetwork},
	{"connection refused", core.ErrAuthNetwork},
	{"no such host", core.ErrAuthNetwork},
}

var storageErrorPatterns = []struct {
	fragment string
	err      error
}{
	{"bucket not found", core.ErrBucketNotFound},
	{"row-level security", core.ErrStoragePolicy},
	{"violates row level security", core.ErrStoragePolicy},
	{"policy", core.ErrStoragePolicy},
	{"unauthorized", core.ErrStoragePolicy},
	{"already exists", core.ErrObjectExists},
	{"duplicate", core.ErrObjectExists},
}

// mapAuthError wraps err with the matching sentinel, keeping the original
// message for logs.
func mapAuthError(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", core.ErrAuthNetwork, err)
	}
	msg := strings.ToLower(err.Error())
	for _, p := range authErrorPatterns {
		if strings.Contains(msg, p.fragment) {
			return fmt.Errorf("%w: %v", p.err, err)
		}
	}
	return err
}

func mapStorageError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	for _, p := range storageErrorPatterns {
		if strings.Contains(msg, p.fragment) {
			return fmt.Errorf("%w: %v", p.err, err)
		}
	}
	return err
}
