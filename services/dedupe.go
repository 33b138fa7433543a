package services

import (
	"gorm.io/gorm"

	"pubhub/models"
)

// DedupeChecker prüft, ob eine gleichwertige Publikation bereits existiert.
// Gleichwertig heißt: gleicher Titel, gleiches Jahr und exakt dieselbe
// Autorenmenge. Eine bloße Überschneidung der Autoren blockiert nicht.
type DedupeChecker struct{}

func (DedupeChecker) Exists(tx *gorm.DB, title string, publishYear int, authorIDs []int64) (bool, error) {
	var candidates []int64
	if err := tx.Model(&models.Publication{}).
		Where("title = ? AND publish_year = ?", title, publishYear).
		Pluck("id", &candidates).Error; err != nil {
		return false, storeError("dedupe candidates", err)
	}
	if len(candidates) == 0 {
		return false, nil
	}

	var links []models.AuthorPublication
	if err := tx.Select("publication_id", "author_id").
		Where("publication_id IN ?", candidates).
		Find(&links).Error; err != nil {
		return false, storeError("dedupe links", err)
	}

	byPub := make(map[int64]map[int64]bool, len(candidates))
	for _, l := range links {
		if byPub[l.PublicationID] == nil {
			byPub[l.PublicationID] = make(map[int64]bool)
		}
		byPub[l.PublicationID][l.AuthorID] = true
	}

	want := make(map[int64]bool, len(authorIDs))
	for _, id := range authorIDs {
		want[id] = true
	}
	for _, id := range candidates {
		if sameSet(byPub[id], want) {
			return true, nil
		}
	}
	return false, nil
}

func sameSet(a, b map[int64]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
