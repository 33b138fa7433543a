package services

import (
	"context"

	"gorm.io/gorm"

	"pubhub/models"
)

// publicationRow ist eine flache Zeile des Joins Publikation x Kante x Autor.
type publicationRow struct {
	ID          int64
	Title       string
	PublishYear int
	AuthorID    int64
	AuthorName  string
}

// AggregationReader liest Publikationen samt Autoren.
type AggregationReader struct {
	DB *gorm.DB
}

func NewAggregationReader(db *gorm.DB) *AggregationReader {
	return &AggregationReader{DB: db}
}

// ListPublications liefert alle Publikationen, optional gefiltert nach Jahr,
// sortiert nach Publikations-ID und Autor-ID. Publikationen ohne Autor-Kante
// erscheinen wegen des Inner Joins nicht.
func (r *AggregationReader) ListPublications(ctx context.Context, publishYear *int) ([]models.PublicationView, error) {
	query := r.DB.WithContext(ctx).
		Table("publications AS pub").
		Select("pub.id AS id, pub.title AS title, pub.publish_year AS publish_year, auth.id AS author_id, auth.name AS author_name").
		Joins("INNER JOIN author_publications ap ON ap.publication_id = pub.id").
		Joins("INNER JOIN authors auth ON auth.id = ap.author_id")
	if publishYear != nil {
		query = query.Where("pub.publish_year = ?", *publishYear)
	}

	var rows []publicationRow
	if err := query.Order("pub.id, auth.id").Scan(&rows).Error; err != nil {
		return nil, storeError("list publications", err)
	}
	return foldRows(rows), nil
}

// foldRows gruppiert flache Zeilen nach Publikations-ID. Die Reihenfolge der
// Ausgabe folgt dem ersten Auftreten jeder Publikation.
func foldRows(rows []publicationRow) []models.PublicationView {
	out := make([]models.PublicationView, 0)
	index := make(map[int64]int)
	for _, row := range rows {
		author := models.AuthorView{ID: row.AuthorID, Name: row.AuthorName}
		if i, ok := index[row.ID]; ok {
			out[i].Authors = append(out[i].Authors, author)
			continue
		}
		index[row.ID] = len(out)
		out = append(out, models.PublicationView{
			ID:          row.ID,
			Title:       row.Title,
			PublishYear: row.PublishYear,
			Authors:     []models.AuthorView{author},
		})
	}
	return out
}
