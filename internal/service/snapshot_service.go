package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"aicu_backend/internal/config"
	"aicu_backend/internal/model"
	"aicu_backend/internal/util"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageProvider 定义通用存储接口
type StorageProvider interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
	GetURL(filename string) string
}

// LocalStorageProvider 本地存储实现
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, filename)
	dir := filepath.Dir(dst)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err = io.Copy(out, reader); err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *LocalStorageProvider) GetURL(filename string) string {
	return "/snapshots/" + filename
}

// MinioStorageProvider MinIO存储实现
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, filename, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *MinioStorageProvider) GetURL(filename string) string {
	return "/" + p.Config.MinioBucket + "/" + filename
}

// NewStorageProvider selects the configured backend; nil means snapshots are
// disabled.
func NewStorageProvider(cfg *config.Config) (StorageProvider, error) {
	switch cfg.Storage.Type {
	case util.StorageLocal:
		return &LocalStorageProvider{Config: &cfg.Storage}, nil
	case util.StorageMinio:
		return NewMinioStorageProvider(&cfg.Storage)
	default:
		return nil, nil
	}
}

// StatisticsSnapshot is one exported copy of the three documents.
type StatisticsSnapshot struct {
	SchemaVersion      int                       `json:"schema_version"`
	CreatedAt          string                    `json:"created_at"`
	CategoryStatistics *model.CategoryStatistics `json:"category_statistics"`
	RealTimeData       *model.RealTimeData       `json:"real_time_data"`
	QuizResults        *model.QuizResults        `json:"quiz_results"`
}

// SnapshotService exports the aggregate documents as one JSON file, for
// operators to archive or inspect. Not a durability guarantee.
type SnapshotService struct {
	Learning *LearningService
	Provider StorageProvider
	Clock    util.Clock
}

func NewSnapshotService(learning *LearningService, provider StorageProvider, clock util.Clock) *SnapshotService {
	return &SnapshotService{
		Learning: learning,
		Provider: provider,
		Clock:    clock,
	}
}

// Export assembles a snapshot from consistent document reads.
func (s *SnapshotService) Export() *StatisticsSnapshot {
	return &StatisticsSnapshot{
		SchemaVersion:      model.DocumentSchemaVersion,
		CreatedAt:          util.FormatTimestamp(s.Clock.Now()),
		CategoryStatistics: s.Learning.CategoryStatistics(),
		RealTimeData:       s.Learning.RealTimeData(),
		QuizResults:        s.Learning.QuizResults(0),
	}
}

// CreateSnapshot uploads an export to the configured storage backend and
// returns its URL.
func (s *SnapshotService) CreateSnapshot(ctx context.Context) (string, error) {
	if s.Provider == nil {
		return "", util.ErrSnapshotsDisabled
	}

	data, err := json.MarshalIndent(s.Export(), "", "  ")
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("stats_%s.json", s.Clock.Now().Format("20060102_150405"))
	return s.Provider.Upload(ctx, filename, bytes.NewReader(data), int64(len(data)), "application/json")
}
