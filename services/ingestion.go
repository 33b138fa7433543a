package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pubhub/database"
	"pubhub/models"
	"pubhub/providers"
)

// Zustände einer Ingestion. Jeder Zustand kann nach stateFailed wechseln.
const (
	stateValidate         = "validate"
	stateDedupeCheck      = "dedupe_check"
	stateResolveAuthors   = "resolve_authors"
	stateAllocatePubID    = "allocate_publication_id"
	stateWritePublication = "write_publication"
	stateWriteLinks       = "write_links"
	stateDone             = "done"
	stateConflict         = "conflict"
	stateFailed           = "failed"
)

// maxAttempts: ein erster Versuch plus genau eine Wiederholung nach einer ID-Kollision.
const maxAttempts = 2

// CreatePublicationRequest beschreibt eine neu zu erfassende Publikation.
type CreatePublicationRequest struct {
	Title       string
	PublishYear int
	AuthorIDs   []string
}

// IngestService orchestriert Dedupe-Prüfung, Autorenauflösung, ID-Vergabe und Schreiben.
type IngestService struct {
	DB      *gorm.DB
	Logger  *zap.Logger
	Metrics *Metrics
	IDs     *IDAllocator
	Authors *AuthorResolver
	Dedupe  DedupeChecker
	Writer  *PublicationWriter
}

// NewIngestService erstellt eine neue Instanz des IngestService.
func NewIngestService(db *gorm.DB, names providers.NameGenerator, logger *zap.Logger, metrics *Metrics) *IngestService {
	ids := NewIDAllocator()
	return &IngestService{
		DB:      db,
		Logger:  logger,
		Metrics: metrics,
		IDs:     ids,
		Authors: NewAuthorResolver(names, logger),
		Writer:  &PublicationWriter{IDs: ids},
	}
}

// CreatePublication erfasst eine Publikation samt Autoren. Alle Schreibschritte
// laufen in einer Transaktion; bei einem Fehler bleibt nichts zurück.
func (s *IngestService) CreatePublication(ctx context.Context, req CreatePublicationRequest) (models.PublicationView, error) {
	start := time.Now()
	log := s.Logger.With(zap.String("title", req.Title), zap.Int("publish_year", req.PublishYear))

	view, err := s.create(ctx, log, req)
	if s.Metrics != nil {
		s.Metrics.Duration.Observe(time.Since(start).Seconds())
		if err != nil {
			s.Metrics.Failures.WithLabelValues(FailureReason(err)).Inc()
		}
	}
	return view, err
}

func (s *IngestService) create(ctx context.Context, log *zap.Logger, req CreatePublicationRequest) (models.PublicationView, error) {
	log.Debug("Ingestion-Zustand", zap.String("state", stateValidate))
	title, authorIDs, err := validateRequest(req)
	if err != nil {
		log.Info("Ungültige Anfrage", zap.Error(err))
		return models.PublicationView{}, err
	}

	var view models.PublicationView
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		view, err = s.ingestOnce(ctx, log, title, req.PublishYear, authorIDs)
		if !errors.Is(err, ErrAllocationRace) || attempt == maxAttempts {
			break
		}
		log.Warn("ID-Kollision erkannt, neuer Versuch mit frischer Vergabe", zap.Int("attempt", attempt), zap.Error(err))
	}

	switch {
	case err == nil:
		return view, nil
	case errors.Is(err, ErrConflict):
		if s.Metrics != nil {
			s.Metrics.Conflicts.Inc()
		}
		log.Info("Publikation existiert bereits", zap.String("state", stateConflict))
	default:
		log.Error("Ingestion fehlgeschlagen", zap.String("state", stateFailed), zap.Error(err))
	}
	return models.PublicationView{}, err
}

func (s *IngestService) ingestOnce(ctx context.Context, log *zap.Logger, title string, year int, authorIDs []int64) (models.PublicationView, error) {
	unlock := s.IDs.Lock(TablePublications, TableAuthorPublications)
	defer unlock()

	var (
		view        models.PublicationView
		synthesized int
	)
	err := database.WithTransaction(ctx, s.DB, func(tx *gorm.DB) error {
		// Dedupe und Einfügen müssen unter derselben Sperre laufen.
		if err := s.IDs.LockTx(tx, TablePublications); err != nil {
			return err
		}

		log.Debug("Ingestion-Zustand", zap.String("state", stateDedupeCheck))
		exists, err := s.Dedupe.Exists(tx, title, year, authorIDs)
		if err != nil {
			return err
		}
		if exists {
			return conflictError(title, year)
		}

		log.Debug("Ingestion-Zustand", zap.String("state", stateResolveAuthors))
		authors, created, err := s.Authors.Resolve(tx, authorIDs)
		if err != nil {
			return err
		}
		synthesized = created

		log.Debug("Ingestion-Zustand", zap.String("state", stateAllocatePubID))
		pubID, err := s.IDs.Next(tx, TablePublications)
		if err != nil {
			return err
		}

		log.Debug("Ingestion-Zustand", zap.String("state", stateWritePublication), zap.Int64("publication_id", pubID))
		pub, err := s.Writer.WritePublication(tx, pubID, title, year)
		if err != nil {
			return err
		}

		log.Debug("Ingestion-Zustand", zap.String("state", stateWriteLinks))
		if _, err := s.Writer.WriteLinks(tx, pub.ID, authorIDs); err != nil {
			return err
		}

		view = buildView(pub, authorIDs, authors)
		return nil
	})
	if err != nil {
		return models.PublicationView{}, storeError("ingest publication", err)
	}

	if s.Metrics != nil {
		s.Metrics.PublicationsCreated.Inc()
		s.Metrics.AuthorsSynthesized.Add(float64(synthesized))
	}
	log.Info("Publikation erfasst", zap.String("state", stateDone),
		zap.Int64("publication_id", view.ID), zap.Int("authors", len(view.Authors)), zap.Int("new_authors", synthesized))
	return view, nil
}

// buildView setzt die Antwort in der Reihenfolge der angefragten Autoren zusammen.
func buildView(pub models.Publication, authorIDs []int64, authors models.AuthorInfo) models.PublicationView {
	view := models.PublicationView{
		ID:          pub.ID,
		Title:       pub.Title,
		PublishYear: pub.PublishYear,
		Authors:     make([]models.AuthorView, 0, len(authorIDs)),
	}
	for _, id := range authorIDs {
		a := authors[authorKey(id)]
		view.Authors = append(view.Authors, models.AuthorView{ID: a.ID, Name: a.Name})
	}
	return view
}

// validateRequest prüft die Eingaben und liefert die Autor-IDs ohne Duplikate
// in der Reihenfolge ihres ersten Auftretens.
func validateRequest(req CreatePublicationRequest) (string, []int64, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return "", nil, validationError("title must not be empty")
	}
	if req.PublishYear <= 0 {
		return "", nil, validationError("publish year must be positive, got %d", req.PublishYear)
	}
	if len(req.AuthorIDs) == 0 {
		return "", nil, validationError("at least one author id is required")
	}

	ids := make([]int64, 0, len(req.AuthorIDs))
	seen := make(map[int64]bool, len(req.AuthorIDs))
	for _, raw := range req.AuthorIDs {
		id, err := ParseAuthorID(raw)
		if err != nil {
			return "", nil, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return title, ids, nil
}

// ParseAuthorID wandelt eine Autor-ID aus der Anfrage in einen positiven Schlüssel.
func ParseAuthorID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, validationError("invalid author id %q", raw)
	}
	return id, nil
}
