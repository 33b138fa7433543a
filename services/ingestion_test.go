package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"pubhub/models"
	dbutil "pubhub/testutil"
)

var lorem = CreatePublicationRequest{Title: "Lorem ipsum", PublishYear: 1999, AuthorIDs: []string{"5", "9"}}

func TestCreatePublicationIntoEmptyStore(t *testing.T) {
	svc, db := newTestService(t)

	view, err := svc.CreatePublication(context.Background(), lorem)
	require.NoError(t, err)

	assert.EqualValues(t, 1, view.ID)
	assert.Equal(t, "Lorem ipsum", view.Title)
	assert.Equal(t, 1999, view.PublishYear)
	require.Len(t, view.Authors, 2)
	assert.EqualValues(t, 5, view.Authors[0].ID)
	assert.EqualValues(t, 9, view.Authors[1].ID)
	assert.NotEmpty(t, view.Authors[0].Name)
	assert.NotEmpty(t, view.Authors[1].Name)

	assert.EqualValues(t, 2, dbutil.Count(t, db, &models.Author{}))
	assert.EqualValues(t, 1, testutil.ToFloat64(svc.Metrics.PublicationsCreated))
	assert.EqualValues(t, 2, testutil.ToFloat64(svc.Metrics.AuthorsSynthesized))
}

func TestCreatePublicationRepeatIsConflict(t *testing.T) {
	svc, db := newTestService(t)
	_, err := svc.CreatePublication(context.Background(), lorem)
	require.NoError(t, err)

	_, err = svc.CreatePublication(context.Background(), lorem)
	require.ErrorIs(t, err, ErrConflict)
	assert.EqualValues(t, 1, dbutil.Count(t, db, &models.Publication{}))
	assert.EqualValues(t, 2, dbutil.Count(t, db, &models.AuthorPublication{}))
	assert.EqualValues(t, 1, testutil.ToFloat64(svc.Metrics.Conflicts))
	assert.EqualValues(t, 1, testutil.ToFloat64(svc.Metrics.Failures.WithLabelValues("conflict")))
}

func TestCreatePublicationConflictIgnoresAuthorOrderAndDuplicates(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreatePublication(context.Background(), lorem)
	require.NoError(t, err)

	_, err = svc.CreatePublication(context.Background(), CreatePublicationRequest{
		Title: "Lorem ipsum", PublishYear: 1999, AuthorIDs: []string{"9", "5", "9"},
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreatePublicationDifferentAuthorSetIsAccepted(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreatePublication(context.Background(), lorem)
	require.NoError(t, err)

	view, err := svc.CreatePublication(context.Background(), CreatePublicationRequest{
		Title: "Lorem ipsum", PublishYear: 1999, AuthorIDs: []string{"5"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, view.ID)
}

func TestCreatePublicationThenList(t *testing.T) {
	svc, db := newTestService(t)
	created, err := svc.CreatePublication(context.Background(), lorem)
	require.NoError(t, err)

	reader := NewAggregationReader(db)
	views, err := reader.ListPublications(context.Background(), intPtr(1999))
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Len(t, views[0].Authors, 2)
	assert.Equal(t, created, views[0])

	views, err = reader.ListPublications(context.Background(), intPtr(2000))
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestCreatePublicationReusesKnownAuthors(t *testing.T) {
	svc, db := newTestService(t)
	dbutil.SeedAuthor(t, db, 5, "Ada Lovelace")

	view, err := svc.CreatePublication(context.Background(), lorem)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", view.Authors[0].Name)
	assert.EqualValues(t, 1, testutil.ToFloat64(svc.Metrics.AuthorsSynthesized))
}

func TestCreatePublicationValidation(t *testing.T) {
	cases := []struct {
		name string
		req  CreatePublicationRequest
	}{
		{"empty title", CreatePublicationRequest{Title: "  ", PublishYear: 1999, AuthorIDs: []string{"1"}}},
		{"zero year", CreatePublicationRequest{Title: "t", PublishYear: 0, AuthorIDs: []string{"1"}}},
		{"negative year", CreatePublicationRequest{Title: "t", PublishYear: -4, AuthorIDs: []string{"1"}}},
		{"no authors", CreatePublicationRequest{Title: "t", PublishYear: 1999}},
		{"non numeric author", CreatePublicationRequest{Title: "t", PublishYear: 1999, AuthorIDs: []string{"5abc"}}},
		{"non positive author", CreatePublicationRequest{Title: "t", PublishYear: 1999, AuthorIDs: []string{"0"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, db := newTestService(t)
			_, err := svc.CreatePublication(context.Background(), tc.req)
			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, "validation", FailureReason(err))
			assert.EqualValues(t, 0, dbutil.Count(t, db, &models.Publication{}))
			assert.EqualValues(t, 0, dbutil.Count(t, db, &models.Author{}))
		})
	}
}

func TestCreatePublicationIDsAreMonotonic(t *testing.T) {
	svc, db := newTestService(t)

	var lastPub int64
	seenLinks := map[int64]bool{}
	for i := 0; i < 5; i++ {
		view, err := svc.CreatePublication(context.Background(), CreatePublicationRequest{
			Title: fmt.Sprintf("Paper %d", i), PublishYear: 2000 + i, AuthorIDs: []string{"1", "2", fmt.Sprint(10 + i)},
		})
		require.NoError(t, err)
		assert.Greater(t, view.ID, lastPub)
		lastPub = view.ID

		var links []models.AuthorPublication
		require.NoError(t, db.Where("publication_id = ?", view.ID).Order("id").Find(&links).Error)
		require.Len(t, links, 3)
		for k, l := range links {
			assert.False(t, seenLinks[l.ID], "link id %d reused", l.ID)
			seenLinks[l.ID] = true
			if k > 0 {
				assert.Equal(t, links[k-1].ID+1, l.ID)
			}
		}
	}
}

func TestCreatePublicationConcurrentIngestions(t *testing.T) {
	svc, db := newTestService(t)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.CreatePublication(context.Background(), CreatePublicationRequest{
				Title: fmt.Sprintf("Concurrent %d", i), PublishYear: 2020, AuthorIDs: []string{"1", "2"},
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var pubIDs []int64
	require.NoError(t, db.Model(&models.Publication{}).Order("id").Pluck("id", &pubIDs).Error)
	want := make([]int64, workers)
	for i := range want {
		want[i] = int64(i + 1)
	}
	assert.Equal(t, want, pubIDs)

	var linkIDs []int64
	require.NoError(t, db.Model(&models.AuthorPublication{}).Pluck("id", &linkIDs).Error)
	sort.Slice(linkIDs, func(i, j int) bool { return linkIDs[i] < linkIDs[j] })
	assert.Len(t, linkIDs, 2*workers)
	for i := 1; i < len(linkIDs); i++ {
		assert.NotEqual(t, linkIDs[i-1], linkIDs[i])
	}
	assert.EqualValues(t, 2, dbutil.Count(t, db, &models.Author{}))
}

// stealPublicationIDs legt vor dem Einfügen einer Publikation eine Zeile mit
// derselben ID an und simuliert so einen fremden Schreiber.
func stealPublicationIDs(t *testing.T, db *gorm.DB, times int) *int {
	t.Helper()
	var stolen int
	err := db.Callback().Create().Before("gorm:create").Register("test:steal_id", func(tx *gorm.DB) {
		pub, ok := tx.Statement.Dest.(*models.Publication)
		if !ok || stolen >= times {
			return
		}
		stolen++
		if _, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			"INSERT INTO publications (id, title, publish_year, created_at) VALUES (?, ?, ?, ?)",
			pub.ID, "foreign writer", 1900, time.Now()); err != nil {
			tx.AddError(err)
		}
	})
	require.NoError(t, err)
	return &stolen
}

func TestCreatePublicationRetriesOnceAfterIDCollision(t *testing.T) {
	svc, db := newTestService(t)
	stolen := stealPublicationIDs(t, db, 1)

	view, err := svc.CreatePublication(context.Background(), lorem)
	require.NoError(t, err)
	assert.Equal(t, 1, *stolen)
	assert.EqualValues(t, 1, view.ID)
	// der erste Versuch wurde vollständig zurückgerollt
	assert.EqualValues(t, 1, dbutil.Count(t, db, &models.Publication{}))
}

func TestCreatePublicationSurfacesRepeatedIDCollision(t *testing.T) {
	svc, db := newTestService(t)
	stolen := stealPublicationIDs(t, db, 100)

	_, err := svc.CreatePublication(context.Background(), lorem)
	require.ErrorIs(t, err, ErrAllocationRace)
	assert.Equal(t, maxAttempts, *stolen)
	assert.EqualValues(t, 0, dbutil.Count(t, db, &models.Publication{}))
	assert.EqualValues(t, 0, dbutil.Count(t, db, &models.Author{}))
	assert.EqualValues(t, 1, testutil.ToFloat64(svc.Metrics.Failures.WithLabelValues("allocation_race")))
}

func TestParseAuthorID(t *testing.T) {
	id, err := ParseAuthorID(" 42 ")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	for _, raw := range []string{"", "abc", "-1", "0", "1.5"} {
		_, err := ParseAuthorID(raw)
		assert.ErrorIs(t, err, ErrValidation, raw)
	}
}
