package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gridplanner/internal/common"
	"github.com/dmitrijs2005/gridplanner/internal/logging"
	sc "github.com/dmitrijs2005/gridplanner/internal/server/config"
	"github.com/google/uuid"
)

// Seams over the AWS SDK constructors.
var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type objectPresigner interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type objectStore interface {
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// URLCache remembers signed download URLs. kv.URLCache implements it.
type URLCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, url string, ttl time.Duration) error
	Forget(ctx context.Context, key string) error
}

// SignedURL is a presigned request valid until ExpiresAt.
type SignedURL struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// StorageService hands out presigned URLs for item images. Objects live
// under containers/<container-id>/ and inherit the container's access rules.
type StorageService struct {
	bucket    string
	ttl       time.Duration
	store     objectStore
	presigner objectPresigner
	grids     *GridService
	cache     URLCache
	logger    logging.Logger
	now       func() time.Time
}

// NewStorageService builds the S3 client from cfg. cache may be nil.
func NewStorageService(ctx context.Context, cfg *sc.Config, grids *GridService, cache URLCache, logger logging.Logger) (*StorageService, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3RootUser, cfg.S3RootPassword, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newStorageService(cfg.S3Bucket, cfg.PresignTTL, client, s3.NewPresignClient(client), grids, cache, logger), nil
}

func newStorageService(bucket string, ttl time.Duration, store objectStore, presigner objectPresigner, grids *GridService, cache URLCache, logger logging.Logger) *StorageService {
	return &StorageService{
		bucket:    bucket,
		ttl:       ttl,
		store:     store,
		presigner: presigner,
		grids:     grids,
		cache:     cache,
		logger:    logger.With("module", "storage_service"),
		now:       time.Now,
	}
}

func containerPrefix(containerID string) string {
	return "containers/" + containerID + "/"
}

// NewStorageKey returns a fresh object key inside the container.
func NewStorageKey(containerID string) string {
	return containerPrefix(containerID) + uuid.NewString()
}

// containerOf extracts the container ID from an object key or prefix.
func containerOf(key string) (string, error) {
	rest, ok := strings.CutPrefix(key, "containers/")
	if !ok {
		return "", fmt.Errorf("key %q outside of any container: %w", key, common.ErrorValidation)
	}
	id, _, _ := strings.Cut(rest, "/")
	if id == "" {
		return "", fmt.Errorf("key %q has no container: %w", key, common.ErrorValidation)
	}
	return id, nil
}

func (s *StorageService) UploadURL(ctx context.Context, userID, containerID, contentType string) (*SignedURL, error) {
	if _, err := s.grids.Authorize(ctx, userID, containerID, true); err != nil {
		return nil, err
	}

	key := NewStorageKey(containerID)
	in := &s3.PutObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	req, err := s.presigner.PresignPutObject(ctx, in, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}
	return &SignedURL{Key: key, URL: req.URL, ExpiresAt: s.now().Add(s.ttl)}, nil
}

// DownloadURL returns a signed GET URL, served from the cache while the
// cached copy still has at least half of its lifetime left.
func (s *StorageService) DownloadURL(ctx context.Context, userID, key string) (*SignedURL, error) {
	containerID, err := containerOf(key)
	if err != nil {
		return nil, err
	}
	if _, err := s.grids.Authorize(ctx, userID, containerID, false); err != nil {
		return nil, err
	}

	cacheTTL := s.ttl / 2
	if s.cache != nil {
		url, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn(ctx, "url cache read failed", "key", key, "error", err)
		} else if ok {
			return &SignedURL{Key: key, URL: url, ExpiresAt: s.now().Add(cacheTTL)}, nil
		}
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("presign get: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, req.URL, cacheTTL); err != nil {
			s.logger.Warn(ctx, "url cache write failed", "key", key, "error", err)
		}
	}
	return &SignedURL{Key: key, URL: req.URL, ExpiresAt: s.now().Add(s.ttl)}, nil
}

func (s *StorageService) Delete(ctx context.Context, userID, key string) error {
	containerID, err := containerOf(key)
	if err != nil {
		return err
	}
	if _, err := s.grids.Authorize(ctx, userID, containerID, true); err != nil {
		return err
	}

	if _, err := s.store.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Forget(ctx, key); err != nil {
			s.logger.Warn(ctx, "url cache forget failed", "key", key, "error", err)
		}
	}
	return nil
}

// List returns every object under prefix, following continuation tokens.
func (s *StorageService) List(ctx context.Context, userID, prefix string) ([]ObjectInfo, error) {
	containerID, err := containerOf(prefix)
	if err != nil {
		return nil, err
	}
	if _, err := s.grids.Authorize(ctx, userID, containerID, false); err != nil {
		return nil, err
	}

	var out []ObjectInfo
	in := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket), Prefix: aws.String(prefix)}
	for {
		page, err := s.store.ListObjectsV2(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, o := range page.Contents {
			info := ObjectInfo{Key: aws.ToString(o.Key), Size: aws.ToInt64(o.Size)}
			if o.LastModified != nil {
				info.LastModified = *o.LastModified
			}
			out = append(out, info)
		}
		if !aws.ToBool(page.IsTruncated) || page.NextContinuationToken == nil {
			return out, nil
		}
		in.ContinuationToken = page.NextContinuationToken
	}
}
