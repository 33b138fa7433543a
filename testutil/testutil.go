// Package testutil stellt eine frische In-Memory-Datenbank für Tests bereit.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pubhub/database"
	"pubhub/models"
)

// DB öffnet eine isolierte, migrierte SQLite-Datenbank im Speicher.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := database.OpenDialector(sqlite.Open(dsn))
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func SeedAuthor(tb testing.TB, db *gorm.DB, id int64, name string) models.Author {
	tb.Helper()
	a := models.Author{ID: id, Name: name}
	if err := db.WithContext(context.Background()).Create(&a).Error; err != nil {
		tb.Fatalf("seed author: %v", err)
	}
	return a
}

func SeedPublication(tb testing.TB, db *gorm.DB, id int64, title string, year int) models.Publication {
	tb.Helper()
	p := models.Publication{ID: id, Title: title, PublishYear: year}
	if err := db.Create(&p).Error; err != nil {
		tb.Fatalf("seed publication: %v", err)
	}
	return p
}

func SeedLink(tb testing.TB, db *gorm.DB, id, authorID, publicationID int64) {
	tb.Helper()
	l := models.AuthorPublication{ID: id, AuthorID: authorID, PublicationID: publicationID}
	if err := db.Omit("Author", "Publication").Create(&l).Error; err != nil {
		tb.Fatalf("seed link: %v", err)
	}
}

// Count zählt die Zeilen eines Modells.
func Count(tb testing.TB, db *gorm.DB, model any) int64 {
	tb.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		tb.Fatalf("count: %v", err)
	}
	return n
}
