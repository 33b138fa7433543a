package services

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"

	"pubhub/config"
	"pubhub/models"
	"pubhub/storage"
)

// Snapshot ist der Inhalt einer exportierten Publikationsliste.
type Snapshot struct {
	ExportedAt   time.Time                `json:"exported_at"`
	Publications []models.PublicationView `json:"publications"`
}

// SnapshotService exportiert die vollständige Publikationsliste als gzip-JSON nach S3.
type SnapshotService struct {
	Reader  *AggregationReader
	Store   storage.ObjectStore
	BaseURL string
	Bucket  string
	Prefix  string
	Keep    int
	Logger  *zap.Logger
	Metrics *Metrics

	now func() time.Time
}

// NewSnapshotService erstellt den Export-Dienst aus der Konfiguration.
func NewSnapshotService(cfg *config.Config, reader *AggregationReader, store storage.ObjectStore, logger *zap.Logger, metrics *Metrics) *SnapshotService {
	return &SnapshotService{
		Reader:  reader,
		Store:   store,
		BaseURL: cfg.S3URL,
		Bucket:  cfg.S3Bucket,
		Prefix:  cfg.SnapshotPrefix,
		Keep:    cfg.SnapshotKeep,
		Logger:  logger,
		Metrics: metrics,
	}
}

// Export schreibt einen Snapshot, rotiert alte Snapshots und gibt den Link zurück.
func (s *SnapshotService) Export(ctx context.Context) (string, error) {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	ts := now().UTC()

	pubs, err := s.Reader.ListPublications(ctx, nil)
	if err != nil {
		return "", err
	}
	data, err := encodeSnapshot(Snapshot{ExportedAt: ts, Publications: pubs})
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	key := path.Join(s.Prefix, fmt.Sprintf("publications-%s.json.gz", ts.Format("2006-01-02T15-04-05Z")))
	log := s.Logger.With(zap.String("key", key))
	log.Info("Lade Snapshot nach S3 hoch", zap.Int("publications", len(pubs)), zap.Int("bytes", len(data)))

	link, err := storage.UploadFile(ctx, s.Store, s.BaseURL, s.Bucket, key, "application/gzip", data)
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}
	if s.Metrics != nil {
		s.Metrics.SnapshotsExported.Inc()
	}

	if s.Keep > 0 {
		deleted, err := storage.RotateObjects(ctx, s.Store, s.Bucket, path.Join(s.Prefix, "publications-"), s.Keep)
		if err != nil {
			// Upload war erfolgreich, Rotation holt der nächste Lauf nach
			log.Warn("Rotation alter Snapshots fehlgeschlagen", zap.Error(err))
		} else if len(deleted) > 0 {
			log.Info("Alte Snapshots gelöscht", zap.Strings("keys", deleted))
		}
	}
	return link, nil
}

func encodeSnapshot(snap Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(snap); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
