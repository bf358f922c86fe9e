package backend

import (
	"fmt"

	"fintrack/internal/config"
)

// AvatarRoute is the URL prefix local avatar objects are served under.
const AvatarRoute = "/avatars"

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Supabase specific
	SupabaseURL          string
	SupabaseKey          string
	SupabaseAvatarBucket string

	// Local avatar bucket for memory and sqlite
	AvatarDir string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,

		SupabaseURL:          appConfig.SupabaseURL,
		SupabaseKey:          appConfig.SupabaseKey,
		SupabaseAvatarBucket: appConfig.SupabaseAvatarBucket,

		AvatarDir: appConfig.AvatarDir,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
		if c.AvatarDir == "" {
			return fmt.Errorf("avatar directory is required for sqlite backend")
		}
	case SupabaseBackend:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("supabase URL and key are required for supabase backend")
		}
		if c.SupabaseAvatarBucket == "" {
			return fmt.Errorf("avatar bucket is required for supabase backend")
		}
	case MemoryBackend:
		if c.AvatarDir == "" {
			return fmt.Errorf("avatar directory is required for memory backend")
		}
	}

	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, SQLiteBackend, SupabaseBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
