package backend

import (
	"context"

	"fintrack/internal/objectstore"
	"fintrack/internal/ports"
)

// Backend bundles the collaborators one data backend provides.
type Backend struct {
	Store    ports.TransactionStore
	Identity ports.Identity
	Avatars  ports.AvatarStorage

	// LocalAvatars is set when avatars live on the local filesystem and must
	// be served by the application itself.
	LocalAvatars *objectstore.Bucket

	// Health reports backend readiness; nil means always ready.
	Health ports.HealthChecker
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	SupabaseBackend BackendType = "supabase"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, SupabaseBackend:
		return true
	default:
		return false
	}
}
