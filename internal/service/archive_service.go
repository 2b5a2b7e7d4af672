package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/config"
	"github.com/bouya4a-commits/cyber-quiz-telecomparis/internal/util"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArchiveProvider stores a finished snapshot of the results file and returns
// where it went.
type ArchiveProvider interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

type LocalArchive struct {
	Dir string
}

var syncArchiveFile = (*os.File).Sync

func (p *LocalArchive) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(p.Dir, 0755); err != nil {
		return "", err
	}
	dst := filepath.Join(p.Dir, name)
	// O_EXCL: an archive is never overwritten.
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(dst)
		return "", err
	}
	if err := syncArchiveFile(f); err != nil {
		f.Close()
		os.Remove(dst)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", err
	}
	return dst, nil
}

type MinioArchive struct {
	Client *minio.Client
	Bucket string
}

func NewMinioArchive(cfg *config.ArchiveConfig) (*MinioArchive, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioSecure,
	})
	if err != nil {
		return nil, err
	}
	return &MinioArchive{Client: client, Bucket: cfg.MinioBucket}, nil
}

func (p *MinioArchive) Put(ctx context.Context, name string, data []byte) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: util.MimeCSV,
	})
	if err != nil {
		return "", err
	}
	return "minio://" + p.Bucket + "/" + name, nil
}

type OSSArchive struct {
	Client *oss.Client
	Bucket string
}

func NewOSSArchive(cfg *config.ArchiveConfig) (*OSSArchive, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSArchive{Client: client, Bucket: cfg.OSSBucket}, nil
}

func (p *OSSArchive) Put(ctx context.Context, name string, data []byte) (string, error) {
	bucket, err := p.Client.Bucket(p.Bucket)
	if err != nil {
		return "", err
	}
	if err := bucket.PutObject(name, bytes.NewReader(data), oss.ContentType(util.MimeCSV), oss.WithContext(ctx)); err != nil {
		return "", err
	}
	return "oss://" + p.Bucket + "/" + name, nil
}

// ArchiveService keeps a copy of the results file before an admin reset. A nil
// provider means archiving is disabled.
type ArchiveService struct {
	provider ArchiveProvider
	now      func() time.Time
}

func NewArchiveService(cfg *config.ArchiveConfig) (*ArchiveService, error) {
	var (
		provider ArchiveProvider
		err      error
	)
	switch cfg.Type {
	case util.ArchiveLocal:
		provider = &LocalArchive{Dir: cfg.LocalPath}
	case util.ArchiveMinio:
		provider, err = NewMinioArchive(cfg)
	case util.ArchiveOSS:
		provider, err = NewOSSArchive(cfg)
	case util.ArchiveNone, "":
	default:
		return nil, fmt.Errorf("unknown archive type %q", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("archive %s: %w", cfg.Type, err)
	}
	return NewArchiveServiceWithProvider(provider), nil
}

func NewArchiveServiceWithProvider(provider ArchiveProvider) *ArchiveService {
	return &ArchiveService{provider: provider, now: time.Now}
}

func (s *ArchiveService) Enabled() bool {
	return s != nil && s.provider != nil
}

// Archive stores data under a fresh name and returns its location, or "" when
// archiving is disabled.
func (s *ArchiveService) Archive(ctx context.Context, data []byte) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	name := ArchiveName(s.now())
	location, err := s.provider.Put(ctx, name, data)
	if err != nil {
		return "", fmt.Errorf("archive results to %s: %w", name, err)
	}
	return location, nil
}

// ArchiveName is results-<UTC timestamp>-<random>.csv.
func ArchiveName(t time.Time) string {
	return fmt.Sprintf("results-%s-%s.csv", t.UTC().Format("20060102T150405Z"), uuid.NewString()[:8])
}
