// Package supabase implements the persistence, identity and avatar ports on
// top of a hosted Supabase project.
package supabase

import (
	"context"
	"fmt"
	"strings"

	supa "github.com/supabase-community/supabase-go"

	"fintrack/internal/log"
)

const transactionsTable = "transactions"

type Config struct {
	URL          string
	Key          string
	AvatarBucket string
}

// Client bundles the Supabase SDK client shared by the adapters.
type Client struct {
	sdk    *supa.Client
	cfg    Config
	logger *log.Logger
}

func NewClient(cfg Config, logger *log.Logger) (*Client, error) {
	if cfg.URL == "" || cfg.Key == "" {
		return nil, fmt.Errorf("supabase url and key are required")
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	sdk, err := supa.NewClient(cfg.URL, cfg.Key, &supa.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{
		sdk:    sdk,
		cfg:    cfg,
		logger: logger.WithComponent(log.ComponentSupabase),
	}, nil
}

// Ping issues a minimal query against the transactions table.
func (c *Client) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := c.sdk.From(transactionsTable).Select("id", "", false).Limit(1, "").Execute()
	if err != nil {
		return fmt.Errorf("supabase ping: %w", err)
	}
	return nil
}
