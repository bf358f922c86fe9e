package supabase

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	storage_go "github.com/supabase-community/storage-go"

	"fintrack/internal/log"
)

// Avatars stores profile images in a Supabase Storage bucket.
type Avatars struct {
	// The storage client mutates shared request headers per upload.
	mu     sync.Mutex
	c      *Client
	bucket string
}

func NewAvatars(c *Client) *Avatars {
	return &Avatars{c: c, bucket: c.cfg.AvatarBucket}
}

func (a *Avatars) Upload(ctx context.Context, name, contentType string, data []byte, upsert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	_, err := a.c.sdk.Storage.UploadFile(a.bucket, name, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		err = mapStorageError(err)
		a.c.logger.Warn("avatar upload failed",
			log.NewFields().WithOperation(log.OpUpload).WithError(err).Args()...)
		return fmt.Errorf("upload %s: %w", name, err)
	}
	return nil
}

func (a *Avatars) Remove(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.c.sdk.Storage.RemoveFile(a.bucket, names); err != nil {
		return fmt.Errorf("remove %v: %w", names, mapStorageError(err))
	}
	return nil
}

func (a *Avatars) PublicURL(name string) string {
	return a.c.sdk.Storage.GetPublicUrl(a.bucket, name).SignedURL
}
