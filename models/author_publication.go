package models

// AuthorPublication modelliert die n:m-Kante Autor <-> Publikation (eine Zeile pro Paar).
type AuthorPublication struct {
	ID int64 `json:"id" gorm:"primaryKey;autoIncrement:false"`

	AuthorID      int64 `json:"author_id" gorm:"not null;uniqueIndex:idx_author_publications_pair"`
	PublicationID int64 `json:"publication_id" gorm:"not null;uniqueIndex:idx_author_publications_pair;index"`

	Author      Author      `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:RESTRICT"`
	Publication Publication `json:"-" gorm:"foreignKey:PublicationID;constraint:OnDelete:CASCADE"`
}

func (AuthorPublication) TableName() string { return "author_publications" }
