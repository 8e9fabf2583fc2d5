package repositories

import (
	"context"
	"testing"
	"time"

	"blogsite/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *badger.DB {
	db, err := OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newPost(title string, status models.Status, daysAgo int, tags ...*models.Tag) *models.Post {
	p := &models.Post{
		Title:   title,
		Slug:    title,
		Author:  "admin",
		Body:    title + " body",
		Status:  status,
		Publish: base.AddDate(0, 0, -daysAgo),
		Created: base,
		Updated: base,
	}
	p.SetTags(tags)
	return p
}

func createTags(t *testing.T, repo TagRepository, slugs ...string) []*models.Tag {
	out := make([]*models.Tag, len(slugs))
	for i, s := range slugs {
		tag := &models.Tag{Name: s, Slug: s}
		require.NoError(t, repo.Create(context.Background(), tag))
		out[i] = tag
	}
	return out
}

func titles(posts []*models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}
