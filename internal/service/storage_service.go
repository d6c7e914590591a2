package service

import (
	"context"
	"fmt"
	"interview_prep_backend/internal/config"
	"interview_prep_backend/internal/util"
	"io"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore keeps uploaded files such as imported question sheets.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
	URL(key string) string
}

type LocalObjectStore struct {
	Root string
}

func (s *LocalObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(s.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		return "", err
	}
	return s.URL(key), nil
}

func (s *LocalObjectStore) Remove(ctx context.Context, key string) error {
	return os.Remove(filepath.Join(s.Root, filepath.FromSlash(key)))
}

func (s *LocalObjectStore) URL(key string) string {
	return "/uploads/" + key
}

type MinioObjectStore struct {
	Client *minio.Client
	Bucket string
	secure bool
}

func NewMinioObjectStore(cfg *config.StorageConfig) (*MinioObjectStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioSecure,
	})
	if err != nil {
		return nil, err
	}
	return &MinioObjectStore{Client: client, Bucket: cfg.MinioBucket, secure: cfg.MinioSecure}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *MinioObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.Client.BucketExists(ctx, s.Bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.Client.MakeBucket(ctx, s.Bucket, minio.MakeBucketOptions{})
}

func (s *MinioObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.Client.PutObject(ctx, s.Bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return s.URL(key), nil
}

func (s *MinioObjectStore) Remove(ctx context.Context, key string) error {
	return s.Client.RemoveObject(ctx, s.Bucket, key, minio.RemoveObjectOptions{})
}

func (s *MinioObjectStore) URL(key string) string {
	scheme := "http"
	if s.secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.Client.EndpointURL().Host, s.Bucket, key)
}

// NewObjectStore picks the backend configured in storage.type.
func NewObjectStore(cfg *config.StorageConfig) (ObjectStore, error) {
	switch cfg.Type {
	case util.StorageMinio:
		store, err := NewMinioObjectStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(context.Background()); err != nil {
			return nil, fmt.Errorf("minio bucket %s: %w", cfg.MinioBucket, err)
		}
		return store, nil
	case util.StorageLocal, "":
		return &LocalObjectStore{Root: cfg.LocalPath}, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
	}
}
