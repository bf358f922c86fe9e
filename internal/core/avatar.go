package core

import (
	"fmt"
	"strings"
)

const (
	MaxAvatarBytes           = 10 * 1024 * 1024
	AvatarCompressThreshold  = 2 * 1024 * 1024
	AvatarMaxDimension       = 400
	AvatarMaxPixels          = 40_000_000
	AvatarJPEGQuality        = 80
	avatarFallbackNamePrefix = "fallback_"
)

var avatarExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// AllowedAvatarType reports whether contentType is an accepted image type.
func AllowedAvatarType(contentType string) bool {
	_, ok := avatarExtensions[normalizeContentType(contentType)]
	return ok
}

// AvatarObjectName is the storage key for a user's avatar: <userID>.<ext>.
func AvatarObjectName(userID, contentType string) (string, error) {
	ext, ok := avatarExtensions[normalizeContentType(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, contentType)
	}
	return userID + "." + ext, nil
}

// FallbackAvatarName marks an avatar stored inline in metadata.
func FallbackAvatarName(objectName string) string {
	return avatarFallbackNamePrefix + objectName
}

func normalizeContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}
