package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"pubhub/database"
	"pubhub/models"
	"pubhub/testutil"
)

func TestMigrateCreatesTables(t *testing.T) {
	db := testutil.DB(t)
	for _, table := range []string{"authors", "publications", "author_publications"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestWithTransactionCommits(t *testing.T) {
	db := testutil.DB(t)
	err := database.WithTransaction(context.Background(), db, func(tx *gorm.DB) error {
		return tx.Create(&models.Author{ID: 1, Name: "Ada"}).Error
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, testutil.Count(t, db, &models.Author{}))
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	db := testutil.DB(t)
	boom := errors.New("boom")
	err := database.WithTransaction(context.Background(), db, func(tx *gorm.DB) error {
		if err := tx.Create(&models.Publication{ID: 1, Title: "t", PublishYear: 2000}).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.EqualValues(t, 0, testutil.Count(t, db, &models.Publication{}))
}

func TestWithTransactionNilFunc(t *testing.T) {
	db := testutil.DB(t)
	assert.NoError(t, database.WithTransaction(context.Background(), db, nil))
}

func TestIsUniqueViolation(t *testing.T) {
	db := testutil.DB(t)
	testutil.SeedAuthor(t, db, 7, "Grace")

	err := db.Create(&models.Author{ID: 7, Name: "Other"}).Error
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))

	assert.False(t, database.IsUniqueViolation(nil))
	assert.False(t, database.IsUniqueViolation(errors.New("connection refused")))
}

func TestLinkPairIsUnique(t *testing.T) {
	db := testutil.DB(t)
	testutil.SeedAuthor(t, db, 1, "Ada")
	testutil.SeedPublication(t, db, 1, "t", 2000)
	testutil.SeedLink(t, db, 1, 1, 1)

	err := db.Omit("Author", "Publication").Create(&models.AuthorPublication{ID: 2, AuthorID: 1, PublicationID: 1}).Error
	assert.True(t, database.IsUniqueViolation(err))
}
