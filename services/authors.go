package services

import (
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pubhub/models"
	"pubhub/providers"
)

// AuthorResolver ordnet Autor-IDs vorhandenen Autoren zu und legt fehlende
// Autoren mit generiertem Namen an.
type AuthorResolver struct {
	Names  providers.NameGenerator
	Logger *zap.Logger
}

func NewAuthorResolver(names providers.NameGenerator, logger *zap.Logger) *AuthorResolver {
	return &AuthorResolver{Names: names, Logger: logger}
}

// Resolve liefert genau einen Eintrag pro übergebener ID sowie die Anzahl
// neu angelegter Autoren.
func (r *AuthorResolver) Resolve(tx *gorm.DB, authorIDs []int64) (models.AuthorInfo, int, error) {
	info := make(models.AuthorInfo, len(authorIDs))
	if len(authorIDs) == 0 {
		return info, 0, nil
	}

	known, err := r.fetch(tx, authorIDs)
	if err != nil {
		return nil, 0, err
	}
	for _, a := range known {
		info[authorKey(a.ID)] = a
	}

	var missing []models.Author
	for _, id := range authorIDs {
		key := authorKey(id)
		if _, ok := info[key]; ok {
			continue
		}
		a := models.Author{ID: id, Name: r.Names.Generate()}
		info[key] = a
		missing = append(missing, a)
	}
	if len(missing) == 0 {
		return info, 0, nil
	}

	r.Logger.Debug("Lege neue Autoren an", zap.Int("count", len(missing)))
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&missing).Error; err != nil {
		return nil, 0, storeError("insert authors", err)
	}

	// Erneut lesen: wurde ein Autor zwischenzeitlich angelegt, gilt dessen Name.
	ids := make([]int64, len(missing))
	for i, a := range missing {
		ids[i] = a.ID
	}
	stored, err := r.fetch(tx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, a := range stored {
		info[authorKey(a.ID)] = a
	}
	return info, len(missing), nil
}

func (r *AuthorResolver) fetch(tx *gorm.DB, ids []int64) ([]models.Author, error) {
	var authors []models.Author
	if err := tx.Where("id IN ?", ids).Find(&authors).Error; err != nil {
		return nil, storeError("fetch authors", err)
	}
	return authors, nil
}

func authorKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
