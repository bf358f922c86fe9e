// Package ports declares the outbound collaborators the services depend on.
package ports

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionStore persists transactions. Update and Delete match on both
	// id and owner and return core.ErrNotFound when nothing matched.
	TransactionStore interface {
		CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, userID, id string, in core.TransactionInput) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, userID, id string) error
		GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error)

		// FetchTransactions returns the owner's transactions whose CreatedAt
		// falls inside r, newest first. limit <= 0 means no limit.
		FetchTransactions(ctx context.Context, userID string, r core.DateRange, offset, limit int) ([]core.Transaction, error)
	}

	// Identity manages accounts and sessions.
	Identity interface {
		SignUp(ctx context.Context, email, password string, meta core.UserMetadata) (core.SignUpResult, error)
		SignIn(ctx context.Context, email, password string) (core.Session, error)
		// User resolves an access token; invalid or expired tokens yield
		// core.ErrUnauthenticated.
		User(ctx context.Context, accessToken string) (core.User, error)
		UpdateMetadata(ctx context.Context, accessToken string, update core.MetadataUpdate) (core.User, error)
		// Refresh exchanges a refresh token for a new session. The old refresh
		// token stops working; unknown or expired ones yield
		// core.ErrUnauthenticated.
		Refresh(ctx context.Context, refreshToken string) (core.Session, error)
		SignOut(ctx context.Context, accessToken string) error
	}

	// AvatarStorage is an object bucket for profile images.
	AvatarStorage interface {
		// Upload stores data under name. Without upsert an existing object
		// yields core.ErrObjectExists.
		Upload(ctx context.Context, name, contentType string, data []byte, upsert bool) error
		Remove(ctx context.Context, names ...string) error
		PublicURL(name string) string
	}

	// EventPublisher announces transaction changes to other processes.
	EventPublisher interface {
		PublishTransactionEvent(ctx context.Context, ev TransactionEvent) error
	}

	// HealthChecker is implemented by adapters that can report readiness.
	HealthChecker interface {
		Ping(ctx context.Context) error
	}
)

type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

// TransactionEvent describes a change to one transaction. Transaction is nil
// for deletions.
type TransactionEvent struct {
	Kind          EventKind         `json:"kind"`
	TransactionID string            `json:"transaction_id"`
	UserID        string            `json:"user_id"`
	Transaction   *core.Transaction `json:"transaction,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}
