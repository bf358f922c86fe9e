package core

import (
	"strings"
	"time"
)

// Metadata keys stored alongside the identity record.
const (
	MetaFullName     = "fullName"
	MetaDefaultView  = "defaultView"
	MetaAvatar       = "avatar"
	MetaAvatarBase64 = "avatarBase64"
)

const MinPasswordLength = 6

// RefreshTTL is how long a refresh token can renew a session.
const RefreshTTL = 30 * 24 * time.Hour

type (
	User struct {
		ID             string
		Email          string
		EmailConfirmed bool
		CreatedAt      time.Time
		Metadata       UserMetadata
	}

	// UserMetadata is the profile data kept with the account.
	UserMetadata struct {
		FullName     string
		DefaultView  string
		Avatar       string
		AvatarBase64 string
	}

	Session struct {
		AccessToken  string
		RefreshToken string
		UserID       string
		ExpiresAt    time.Time
	}

	// SignUpResult reports the created account and, when the backend confirms
	// accounts immediately, a session for it.
	SignUpResult struct {
		User    User
		Session *Session
	}
)

// DisplayName prefers the full name and falls back to the email's local part.
func (u User) DisplayName() string {
	if n := strings.TrimSpace(u.Metadata.FullName); n != "" {
		return n
	}
	return EmailLocalPart(u.Email)
}

// EmailLocalPart returns the portion of email before '@'.
func EmailLocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}

// DefaultSelector returns the user's preferred selector or the global default.
func (m UserMetadata) DefaultSelector() string {
	return NormalizeSelector(m.DefaultView)
}

// HasFallbackAvatar reports whether the avatar lives inline as a data URL.
func (m UserMetadata) HasFallbackAvatar() bool {
	return strings.HasPrefix(m.Avatar, avatarFallbackNamePrefix) && m.AvatarBase64 != ""
}

// ToMap renders metadata for identity backends that store free-form JSON.
// Empty fields are omitted.
func (m UserMetadata) ToMap() map[string]any {
	out := map[string]any{}
	set := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	set(MetaFullName, m.FullName)
	set(MetaDefaultView, m.DefaultView)
	set(MetaAvatar, m.Avatar)
	set(MetaAvatarBase64, m.AvatarBase64)
	return out
}

// MetadataFromMap reads the known keys out of a free-form map.
func MetadataFromMap(raw map[string]any) UserMetadata {
	get := func(k string) string {
		if v, ok := raw[k].(string); ok {
			return v
		}
		return ""
	}
	return UserMetadata{
		FullName:     get(MetaFullName),
		DefaultView:  get(MetaDefaultView),
		Avatar:       get(MetaAvatar),
		AvatarBase64: get(MetaAvatarBase64),
	}
}

// MetadataUpdate is a partial change; nil fields are left alone and pointers
// to "" clear the value.
type MetadataUpdate struct {
	FullName     *string
	DefaultView  *string
	Avatar       *string
	AvatarBase64 *string
}

// Apply returns m with u's non-nil fields written over it.
func (u MetadataUpdate) Apply(m UserMetadata) UserMetadata {
	if u.FullName != nil {
		m.FullName = *u.FullName
	}
	if u.DefaultView != nil {
		m.DefaultView = *u.DefaultView
	}
	if u.Avatar != nil {
		m.Avatar = *u.Avatar
	}
	if u.AvatarBase64 != nil {
		m.AvatarBase64 = *u.AvatarBase64
	}
	return m
}

// ToMap lists only the fields being changed. Cleared fields map to "".
func (u MetadataUpdate) ToMap() map[string]any {
	out := map[string]any{}
	if u.FullName != nil {
		out[MetaFullName] = *u.FullName
	}
	if u.DefaultView != nil {
		out[MetaDefaultView] = *u.DefaultView
	}
	if u.Avatar != nil {
		out[MetaAvatar] = *u.Avatar
	}
	if u.AvatarBase64 != nil {
		out[MetaAvatarBase64] = *u.AvatarBase64
	}
	return out
}

// StringPtr is a small helper for building MetadataUpdate values.
func StringPtr(s string) *string { return &s }
