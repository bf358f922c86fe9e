package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"
)

var (
	// ErrAvatarSave means the inline fallback could not be written to metadata.
	ErrAvatarSave = errors.New("failed to save avatar")
	// ErrProfileUpdate means the avatar was stored but metadata could not
	// point at it; the object is removed again.
	ErrProfileUpdate = errors.New("failed to update profile")
	ErrUploadFailed  = errors.New("upload failed")
)

type Settings struct {
	FullName    string
	DefaultView string
}

type AvatarFile struct {
	ContentType string
	Data        []byte
}

// AvatarResult describes a successful upload.
type AvatarResult struct {
	User    core.User
	Message string
	// Inline is set when the avatar was stored as a data URL in metadata
	// because object storage refused it.
	Inline bool
}

type ProfileService struct {
	identity ports.Identity
	avatars  ports.AvatarStorage
	logger   *log.Logger
}

func NewProfileService(identity ports.Identity, avatars ports.AvatarStorage, logger *log.Logger) *ProfileService {
	if logger == nil {
		logger = log.Discard()
	}
	return &ProfileService{
		identity: identity,
		avatars:  avatars,
		logger:   logger.WithComponent(log.ComponentProfile),
	}
}

// UpdateSettings stores the display name and default range. Unknown range
// selectors are replaced by the default one.
func (s *ProfileService) UpdateSettings(ctx context.Context, accessToken string, in Settings) (core.User, error) {
	if accessToken == "" {
		return core.User{}, core.ErrUnauthenticated
	}
	update := core.MetadataUpdate{
		FullName:    core.StringPtr(strings.TrimSpace(in.FullName)),
		DefaultView: core.StringPtr(core.NormalizeSelector(strings.TrimSpace(in.DefaultView))),
	}
	user, err := s.identity.UpdateMetadata(ctx, accessToken, update)
	if err != nil {
		return core.User{}, fmt.Errorf("update settings: %w", err)
	}
	s.logger.InfoContext(ctx, "Settings updated",
		log.FieldUserID, user.ID,
		log.FieldSelector, user.Metadata.DefaultView)
	return user, nil
}

// AvatarURL is the address templates should use for the user's avatar, or
// "" when none is set.
func (s *ProfileService) AvatarURL(meta core.UserMetadata) string {
	if meta.HasFallbackAvatar() {
		return meta.AvatarBase64
	}
	if meta.Avatar == "" || s.avatars == nil {
		return ""
	}
	return s.avatars.PublicURL(meta.Avatar)
}

// UploadAvatar stores a new profile image. Object storage is tried first;
// when its policy refuses the write the image is kept inline in metadata.
func (s *ProfileService) UploadAvatar(ctx context.Context, accessToken string, file AvatarFile) (AvatarResult, error) {
	if accessToken == "" {
		return AvatarResult{}, core.ErrUnauthenticated
	}
	user, err := s.identity.User(ctx, accessToken)
	if err != nil {
		return AvatarResult{}, err
	}
	if len(file.Data) == 0 {
		return AvatarResult{}, core.ErrEmptyFile
	}
	if !core.AllowedAvatarType(file.ContentType) {
		return AvatarResult{}, fmt.Errorf("%w: %s", core.ErrUnsupportedFile, file.ContentType)
	}

	data, contentType := file.Data, file.ContentType
	if len(data) > core.AvatarCompressThreshold {
		compressed, ct, err := compressAvatar(data)
		switch {
		case errors.Is(err, core.ErrImageTooLarge):
			return AvatarResult{}, err
		case err != nil:
			s.logger.WarnContext(ctx, "Avatar compression failed, keeping original",
				log.FieldUserID, user.ID,
				log.FieldError, err)
		default:
			s.logger.DebugContext(ctx, "Avatar compressed",
				log.FieldUserID, user.ID,
				"before", len(data),
				"after", len(compressed))
			data, contentType = compressed, ct
		}
	}
	if len(data) > core.MaxAvatarBytes {
		return AvatarResult{}, core.ErrFileTooLarge
	}

	name, err := core.AvatarObjectName(user.ID, contentType)
	if err != nil {
		return AvatarResult{}, err
	}

	if old := user.Metadata.Avatar; old != "" {
		if err := s.avatars.Remove(ctx, old); err != nil {
			s.logger.DebugContext(ctx, "Old avatar not removed", log.FieldObject, old, log.FieldError, err)
		}
	}

	err = s.avatars.Upload(ctx, name, contentType, data, true)
	switch {
	case err == nil:
	case errors.Is(err, core.ErrBucketNotFound):
		return AvatarResult{}, err
	case errors.Is(err, core.ErrStoragePolicy):
		s.logger.WarnContext(ctx, "Storage policy refused avatar, storing inline",
			log.FieldUserID, user.ID,
			log.FieldError, err)
		return s.storeInline(ctx, accessToken, name, contentType, data)
	case errors.Is(err, core.ErrObjectExists):
		_ = s.avatars.Remove(ctx, name)
		if err := s.avatars.Upload(ctx, name, contentType, data, false); err != nil {
			return AvatarResult{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
	default:
		return AvatarResult{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	updated, err := s.identity.UpdateMetadata(ctx, accessToken, core.MetadataUpdate{
		Avatar:       core.StringPtr(name),
		AvatarBase64: core.StringPtr(""),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Avatar metadata update failed, removing upload",
			log.FieldUserID, user.ID,
			log.FieldObject, name,
			log.FieldError, err)
		_ = s.avatars.Remove(ctx, name)
		return AvatarResult{}, fmt.Errorf("%w: %v", ErrProfileUpdate, err)
	}

	s.logger.InfoContext(ctx, "Avatar uploaded",
		log.FieldOperation, log.OpUpload,
		log.FieldUserID, user.ID,
		log.FieldObject, name)
	return AvatarResult{User: updated, Message: "Avatar uploaded successfully!"}, nil
}

func (s *ProfileService) storeInline(ctx context.Context, accessToken, name, contentType string, data []byte) (AvatarResult, error) {
	dataURL := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	updated, err := s.identity.UpdateMetadata(ctx, accessToken, core.MetadataUpdate{
		Avatar:       core.StringPtr(core.FallbackAvatarName(name)),
		AvatarBase64: core.StringPtr(dataURL),
	})
	if err != nil {
		return AvatarResult{}, fmt.Errorf("%w: %v", ErrAvatarSave, err)
	}
	return AvatarResult{
		User:    updated,
		Message: "Avatar uploaded successfully! (Note: configure storage policies for better performance)",
		Inline:  true,
	}, nil
}
