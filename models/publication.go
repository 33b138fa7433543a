package models

import "time"

// Publication repräsentiert eine Veröffentlichung. Die ID vergibt der IDAllocator.
type Publication struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `json:"created_at"`

	// Titel und Jahr bilden zusammen mit der Autorenmenge den Dedupe-Schlüssel
	Title       string `json:"title" gorm:"not null;index:idx_publications_title_year"`
	PublishYear int    `json:"publish_year" gorm:"not null;index:idx_publications_title_year;index"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Publication) TableName() string {
	return "publications"
}
