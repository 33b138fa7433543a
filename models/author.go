package models

import "time"

// Author repräsentiert einen Autor. Die ID wird vom Aufrufer vergeben.
type Author struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `json:"created_at"`

	Name string `json:"name" gorm:"not null"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Author) TableName() string {
	return "authors"
}
