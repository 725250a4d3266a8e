package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp" // registers the webp decoder

	"chirper/internal/config"
	domain "chirper/internal/model"
)

// MediaUploader is the Media Collaborator used by the user and post services.
type MediaUploader interface {
	// Upload stores an image payload (data URI or base64) and returns its URL
	// and destroy key.
	Upload(ctx context.Context, payload string, kind domain.MediaKind) (*domain.UploadResult, error)
	// Destroy deletes the image whose key was derived from its URL.
	Destroy(ctx context.Context, key string) error
}

// objectStore is the part of the S3 API used here.
type objectStore interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// MediaService handles image uploads to Cloudflare R2.
type MediaService struct {
	store     objectStore
	bucket    string
	publicURL string
	maxBytes  int64
	log       *zap.Logger
}

// NewMediaService constructs an S3-compatible client for Cloudflare R2.
func NewMediaService(ctx context.Context, cfg config.MediaConfig, log *zap.Logger) (*MediaService, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("missing Cloudflare R2 configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return newMediaService(client, cfg, log), nil
}

func newMediaService(store objectStore, cfg config.MediaConfig, log *zap.Logger) *MediaService {
	maxBytes := cfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = domain.DefaultMaxUploadBytes
	}
	return &MediaService{
		store:     store,
		bucket:    cfg.BucketName,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
		maxBytes:  maxBytes,
		log:       log.Named("media_service"),
	}
}

// Upload validates the payload, normalises it to JPEG and stores it at
// images/<uuid>.jpg.
func (s *MediaService) Upload(ctx context.Context, payload string, kind domain.MediaKind) (*domain.UploadResult, error) {
	data, err := decodeImagePayload(payload, s.maxBytes)
	if err != nil {
		return nil, err
	}

	jpegBytes, err := normalizeImage(data, kind, 85)
	if err != nil {
		return nil, err
	}

	stem := uuid.NewString()
	key := objectKey(stem)

	if err := s.putObject(ctx, key, jpegBytes, domain.ContentTypeJPEG, domain.MediaCacheControl); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s", s.publicURL, key)
	return &domain.UploadResult{URL: url, Key: stem}, nil
}

// Destroy removes images/<key>.jpg.
func (s *MediaService) Destroy(ctx context.Context, key string) error {
	if key == "" || strings.ContainsAny(key, "/.") {
		return domain.ErrInvalidMediaKey
	}

	_, err := s.store.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(key)),
	})
	if err != nil {
		s.logS3Error("delete", key, err)
		return domain.Transient("delete from r2", err)
	}
	return nil
}

func objectKey(stem string) string {
	return domain.MediaFolder + "/" + stem + domain.MediaExt
}

// putObject uploads bytes to R2 with metadata.
func (s *MediaService) putObject(ctx context.Context, key string, body []byte, contentType, cacheControl string) error {
	_, err := s.store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		s.logS3Error("put", key, err)
		return domain.Transient("upload to r2", err)
	}
	return nil
}

func (s *MediaService) logS3Error(action, key string, err error) {
	fields := []zap.Field{zap.String("action", action), zap.String("key", key), zap.Error(err)}
	var opErr *smithy.OperationError
	if errors.As(err, &opErr) {
		fields = append(fields, zap.String("operation", opErr.Operation()))
	}
	s.log.Warn("object storage request failed", fields...)
}

// decodeImagePayload accepts "data:image/png;base64,...." or bare base64 and
// returns the decoded bytes after size and type checks.
func decodeImagePayload(payload string, maxSize int64) ([]byte, error) {
	body := strings.TrimSpace(payload)
	if strings.HasPrefix(body, "data:") {
		header, rest, ok := strings.Cut(body, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, domain.ErrInvalidImageData
		}
		body = rest
	}

	if int64(base64.StdEncoding.DecodedLen(len(body))) > maxSize+2 {
		return nil, domain.ErrFileTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(body)
		if err != nil {
			return nil, domain.ErrInvalidImageData
		}
	}
	if len(data) == 0 {
		return nil, domain.ErrInvalidImageData
	}
	if int64(len(data)) > maxSize {
		return nil, domain.ErrFileTooLarge
	}

	// Trust the bytes, not the declared type.
	contentType := http.DetectContentType(data[:min(len(data), 512)])
	if !domain.IsAllowedImageType(contentType) {
		return nil, domain.ErrInvalidImageType
	}

	return data, nil
}

// normalizeImage resizes for kind and encodes as JPEG.
// Avatars are cropped to a square; posts and covers keep their aspect ratio.
func normalizeImage(data []byte, kind domain.MediaKind, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, domain.ErrInvalidImageData
	}

	switch kind {
	case domain.MediaKindAvatar:
		img = imaging.Fill(img, domain.AvatarWidth, domain.AvatarHeight, imaging.Center, imaging.Lanczos)
	case domain.MediaKindCover:
		img = imaging.Fit(img, domain.CoverWidth, domain.CoverHeight, imaging.Lanczos)
	default:
		img = imaging.Fit(img, domain.PostMaxSide, domain.PostMaxSide, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}

// uploadImage uploads through m, failing when no media store is configured.
func uploadImage(ctx context.Context, m MediaUploader, payload string, kind domain.MediaKind) (*domain.UploadResult, error) {
	if m == nil {
		return nil, domain.ErrMediaUnavailable
	}
	return m.Upload(ctx, payload, kind)
}

// destroyImage deletes the image at url. A missing media store or an empty
// url is a no-op.
func destroyImage(ctx context.Context, m MediaUploader, url string) error {
	key := domain.MediaKeyFromURL(url)
	if m == nil || key == "" {
		return nil
	}
	return m.Destroy(ctx, key)
}
