package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"blogsite/app/models"
	"blogsite/app/repositories"
	"blogsite/app/repositories/mock"

	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store *repositories.Store
	tags  map[string]*models.Tag
}

func newFixture(t *testing.T, tagSlugs ...string) *fixture {
	f := &fixture{store: mock.NewStore(), tags: make(map[string]*models.Tag)}
	for _, s := range tagSlugs {
		tag := &models.Tag{Name: s, Slug: s}
		require.NoError(t, f.store.Tags.Create(context.Background(), tag))
		f.tags[s] = tag
	}
	return f
}

// post stores a published post daysAgo days before base.
func (f *fixture) post(t *testing.T, title, body string, daysAgo int, tagSlugs ...string) *models.Post {
	tags := make([]*models.Tag, 0, len(tagSlugs))
	for _, s := range tagSlugs {
		tags = append(tags, f.tags[s])
	}
	p := &models.Post{
		Title:   title,
		Slug:    title,
		Author:  "admin",
		Body:    body,
		Status:  models.StatusPublished,
		Publish: base.AddDate(0, 0, -daysAgo),
		Created: base,
		Updated: base,
	}
	p.SetTags(tags)
	require.NoError(t, f.store.Posts.Create(context.Background(), p))
	return p
}

func (f *fixture) draft(t *testing.T, title string, tagSlugs ...string) *models.Post {
	p := f.post(t, title, title, 0, tagSlugs...)
	p.Status = models.StatusDraft
	require.NoError(t, f.store.Posts.Update(context.Background(), p))
	return p
}

func (f *fixture) manyPosts(t *testing.T, n int) {
	for i := 0; i < n; i++ {
		f.post(t, fmt.Sprintf("post-%02d", i), "body", i)
	}
}

func postTitles(posts []*models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}
