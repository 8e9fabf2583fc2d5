package services

import (
	"context"
	"encoding/xml"
	"testing"

	"blogsite/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "go")
	f.post(t, "first", "body", 0, "go")
	f.draft(t, "hidden")
	svc := NewSitemapService(f.store.Posts, f.store.Tags, "https://blog.example.com/", nil)

	sm, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sm.URLs)
	assert.Regexp(t, `^"[0-9a-f]{64}"$`, sm.ETag)

	var doc struct {
		URLs []struct {
			Loc        string `xml:"loc"`
			LastMod    string `xml:"lastmod"`
			ChangeFreq string `xml:"changefreq"`
			Priority   string `xml:"priority"`
		} `xml:"url"`
	}
	require.NoError(t, xml.Unmarshal(sm.Body, &doc))
	require.Len(t, doc.URLs, 2)
	assert.Equal(t, "https://blog.example.com/blog/2024/5/10/first/", doc.URLs[0].Loc)
	assert.Equal(t, "2024-05-10T09:00:00Z", doc.URLs[0].LastMod)
	assert.Equal(t, "weekly", doc.URLs[0].ChangeFreq)
	assert.Equal(t, "0.9", doc.URLs[0].Priority)
	assert.Equal(t, "https://blog.example.com/blog/tag/go/", doc.URLs[1].Loc)
	assert.Equal(t, "daily", doc.URLs[1].ChangeFreq)

	again, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Same(t, sm, again)

	f.post(t, "second", "body", 1)
	fresh, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, fresh.URLs)
	assert.NotEqual(t, sm.ETag, fresh.ETag)
}

func TestSitemapBaseURL(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "go")
	f.post(t, "first", "body", 0, "go")
	svc := NewSitemapService(f.store.Posts, f.store.Tags, "", nil)

	_, err := svc.Refresh(ctx)
	assert.ErrorIs(t, err, ErrNoBaseURL)

	assert.False(t, svc.LearnBaseURL(""))
	assert.True(t, svc.LearnBaseURL("http://blog.test/"))
	assert.False(t, svc.LearnBaseURL("http://other.test"))

	sm, err := svc.Current(ctx)
	require.NoError(t, err)
	var doc struct {
		Locs []string `xml:"url>loc"`
	}
	require.NoError(t, xml.Unmarshal(sm.Body, &doc))
	require.Len(t, doc.Locs, 2)
	for _, loc := range doc.Locs {
		assert.Regexp(t, `^http://blog\.test/blog/`, loc)
	}
}

func TestSitemapInvalidatedByWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "go")
	f.post(t, "first", "body", 0, "go")
	sitemaps := NewSitemapService(f.store.Posts, f.store.Tags, "http://blog.test", nil)
	posts := NewPostService(f.store, nil, nil, DefaultSettings())
	posts.SetSitemap(sitemaps)
	tags := NewTagService(f.store.Tags, nil)
	tags.SetSitemap(sitemaps)

	sm, err := sitemaps.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, sm.URLs)

	post, err := posts.CreatePost(ctx, models.PostInput{
		Title: "Fresh", Author: "admin", Body: "x", Status: models.StatusPublished,
	})
	require.NoError(t, err)
	sm, err = sitemaps.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sm.URLs)

	_, err = tags.CreateTag(ctx, models.TagInput{Name: "Web"})
	require.NoError(t, err)
	sm, err = sitemaps.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, sm.URLs)

	require.NoError(t, posts.DeletePost(ctx, post.ID))
	sm, err = sitemaps.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sm.URLs)
}

func TestSitemapInvalidateNil(t *testing.T) {
	var svc *SitemapService
	assert.NotPanics(t, svc.Invalidate)
}
