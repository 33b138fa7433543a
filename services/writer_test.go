package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubhub/models"
	"pubhub/testutil"
)

func TestWriteAllocatesContiguousLinkIDs(t *testing.T) {
	db := testutil.DB(t)
	for _, id := range []int64{1, 2, 3} {
		testutil.SeedAuthor(t, db, id, "x")
	}
	w := &PublicationWriter{IDs: NewIDAllocator()}

	pub, links, err := w.Write(db, "First", 2001, []int64{3, 1})
	require.NoError(t, err)
	assert.EqualValues(t, 1, pub.ID)
	require.Len(t, links, 2)
	assert.EqualValues(t, 1, links[0].ID)
	assert.EqualValues(t, 3, links[0].AuthorID)
	assert.EqualValues(t, 2, links[1].ID)

	pub, links, err = w.Write(db, "Second", 2002, []int64{1, 2, 3})
	require.NoError(t, err)
	assert.EqualValues(t, 2, pub.ID)
	var got []int64
	for _, l := range links {
		got = append(got, l.ID)
		assert.Equal(t, pub.ID, l.PublicationID)
	}
	assert.Equal(t, []int64{3, 4, 5}, got)
	assert.EqualValues(t, 5, testutil.Count(t, db, &models.AuthorPublication{}))
}

func TestWriteLinksWithoutAuthors(t *testing.T) {
	db := testutil.DB(t)
	w := &PublicationWriter{IDs: NewIDAllocator()}
	links, err := w.WriteLinks(db, 1, nil)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestWritePublicationReportsIDCollision(t *testing.T) {
	db := testutil.DB(t)
	testutil.SeedPublication(t, db, 1, "Taken", 1990)
	w := &PublicationWriter{IDs: NewIDAllocator()}

	_, err := w.WritePublication(db, 1, "Other", 1991)
	assert.ErrorIs(t, err, ErrAllocationRace)
}
