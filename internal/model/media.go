package model

import (
	"path"
	"strings"
)

// MediaKind selects how an uploaded image is normalised.
type MediaKind string

const (
	MediaKindPost   MediaKind = "post"
	MediaKindAvatar MediaKind = "avatar"
	MediaKindCover  MediaKind = "cover"
)

const (
	DefaultMaxUploadBytes = 10 * 1024 * 1024 // 10MB
	MediaFolder           = "images"
	MediaExt              = ".jpg"
	MediaCacheControl     = "public, max-age=31536000" // 1 year

	AvatarWidth  = 200
	AvatarHeight = 200
	CoverWidth   = 1500
	CoverHeight  = 500
	PostMaxSide  = 1080
)

// Supported image content types for upload validation
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"
)

var allowedImageTypes = map[string]struct{}{
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
	ContentTypeGIF:  {},
	ContentTypeWebP: {},
}

// Domain errors for media operations
var (
	ErrFileTooLarge     = NewError(ErrValidation, "file too large")
	ErrInvalidImageType = NewError(ErrValidation, "invalid image type")
	ErrInvalidImageData = NewError(ErrValidation, "invalid image data")
	ErrMediaUnavailable = NewError(ErrTransient, "media storage is not configured")
	ErrInvalidMediaKey  = NewError(ErrValidation, "invalid media key")
)

// UploadResult represents the uploaded object location
// URL is the public-facing URL (using R2 public endpoint)
// Key is the filename stem accepted by Destroy
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// IsAllowedImageType reports if the provided content type is supported
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

// MediaKeyFromURL derives the destroy key from a stored image URL: the last
// path segment up to its first dot.
func MediaKeyFromURL(url string) string {
	if url == "" {
		return ""
	}
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	name := path.Base(url)
	if i := strings.Index(name, "."); i >= 0 {
		name = name[:i]
	}
	if name == "/" || name == "." {
		return ""
	}
	return name
}
