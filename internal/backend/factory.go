package backend

import (
	"context"
	"fmt"

	"fintrack/internal/log"
	"fintrack/internal/memory"
	"fintrack/internal/objectstore"
	"fintrack/internal/storage"
	"fintrack/internal/supabase"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SupabaseBackend:
		return f.createSupabaseBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	bucket, err := objectstore.New(config.AvatarDir, AvatarRoute)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize avatar bucket: %w", err)
	}

	f.logger.Info("Initialized memory backend", "avatar_dir", config.AvatarDir)

	return &BackendResult{
		Backend: Backend{
			Store:        memory.NewStore(),
			Identity:     memory.NewIdentity(),
			Avatars:      bucket,
			LocalAvatars: bucket,
		},
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	bucket, err := objectstore.New(config.AvatarDir, AvatarRoute)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to initialize avatar bucket: %w", err)
	}

	identity := storage.NewIdentity(repo)
	purged, err := identity.PurgeSessions(context.Background())
	if err != nil {
		f.logger.Warn("Failed to purge expired sessions", log.FieldError, err)
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"schema_version", repo.SchemaVersion(),
		"sessions_purged", purged,
		"avatar_dir", config.AvatarDir)

	return &BackendResult{
		Backend: Backend{
			Store:        repo,
			Identity:     identity,
			Avatars:      bucket,
			LocalAvatars: bucket,
			Health:       repo,
		},
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSupabaseBackend(_ context.Context, config Config) (*BackendResult, error) {
	client, err := supabase.NewClient(supabase.Config{
		URL:          config.SupabaseURL,
		Key:          config.SupabaseKey,
		AvatarBucket: config.SupabaseAvatarBucket,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Supabase client: %w", err)
	}

	f.logger.Info("Initialized Supabase backend",
		"url", config.SupabaseURL,
		"avatar_bucket", config.SupabaseAvatarBucket)

	return &BackendResult{
		Backend: Backend{
			Store:    supabase.NewStore(client),
			Identity: supabase.NewIdentity(client),
			Avatars:  supabase.NewAvatars(client),
			Health:   client,
		},
	}, nil
}
