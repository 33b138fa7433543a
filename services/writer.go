package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pubhub/models"
)

// PublicationWriter schreibt die Publikation und ihre Autor-Kanten.
type PublicationWriter struct {
	IDs *IDAllocator
}

// WritePublication fügt die Publikationszeile ein.
func (w *PublicationWriter) WritePublication(tx *gorm.DB, pubID int64, title string, publishYear int) (models.Publication, error) {
	pub := models.Publication{ID: pubID, Title: title, PublishYear: publishYear}
	if err := tx.Create(&pub).Error; err != nil {
		return models.Publication{}, insertError("insert publication", err)
	}
	return pub, nil
}

// WriteLinks vergibt einmalig base = max(id)+1 und schreibt die k-te Kante mit base+k.
func (w *PublicationWriter) WriteLinks(tx *gorm.DB, pubID int64, authorIDs []int64) ([]models.AuthorPublication, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	base, err := w.IDs.Reserve(tx, TableAuthorPublications, len(authorIDs))
	if err != nil {
		return nil, err
	}

	links := make([]models.AuthorPublication, len(authorIDs))
	for k, authorID := range authorIDs {
		links[k] = models.AuthorPublication{
			ID:            base + int64(k),
			AuthorID:      authorID,
			PublicationID: pubID,
		}
	}
	if err := tx.Omit(clause.Associations).Create(&links).Error; err != nil {
		return nil, insertError("insert author links", err)
	}
	return links, nil
}

// Write vergibt die Publikations-ID und schreibt Publikation und Kanten in
// dieser Reihenfolge.
func (w *PublicationWriter) Write(tx *gorm.DB, title string, publishYear int, authorIDs []int64) (models.Publication, []models.AuthorPublication, error) {
	pubID, err := w.IDs.Next(tx, TablePublications)
	if err != nil {
		return models.Publication{}, nil, err
	}
	pub, err := w.WritePublication(tx, pubID, title, publishYear)
	if err != nil {
		return models.Publication{}, nil, err
	}
	links, err := w.WriteLinks(tx, pub.ID, authorIDs)
	if err != nil {
		return models.Publication{}, nil, err
	}
	return pub, links, nil
}
