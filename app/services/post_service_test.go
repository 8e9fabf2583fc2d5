package services

import (
	"context"
	"testing"
	"time"

	"blogsite/app/cache"
	"blogsite/app/models"
	"blogsite/app/repositories"
	"blogsite/app/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPosts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "go", "web")
	f.manyPosts(t, 12)
	f.post(t, "tagged", "body", 20, "go")
	f.draft(t, "hidden", "go")
	svc := NewPostService(f.store, nil, nil, DefaultSettings())

	tests := []struct {
		name     string
		page     string
		wantPage int
		wantLen  int
	}{
		{"first page", "1", 1, 10},
		{"second page", "2", 2, 3},
		{"not an integer", "abc", 1, 10},
		{"float", "2.0", 1, 10},
		{"empty", "", 1, 10},
		{"past the end", "99", 2, 3},
		{"zero", "0", 2, 3},
		{"negative", "-3", 2, 3},
		{"overflows int", "99999999999999999999", 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := svc.ListPosts(ctx, "", tt.page)
			require.NoError(t, err)
			assert.Nil(t, list.Tag)
			assert.Equal(t, tt.wantPage, list.Page.Number)
			assert.Len(t, list.Page.Items, tt.wantLen)
			assert.Equal(t, 13, list.Page.Count)
		})
	}

	t.Run("newest first", func(t *testing.T) {
		list, err := svc.ListPosts(ctx, "", "1")
		require.NoError(t, err)
		assert.Equal(t, "post-00", list.Page.Items[0].Title)
		assert.Equal(t, "post-01", list.Page.Items[1].Title)
	})

	t.Run("by tag", func(t *testing.T) {
		list, err := svc.ListPosts(ctx, "go", "1")
		require.NoError(t, err)
		require.NotNil(t, list.Tag)
		assert.Equal(t, "go", list.Tag.Slug)
		assert.Equal(t, []string{"tagged"}, postTitles(list.Page.Items))
	})

	t.Run("tag without posts has one empty page", func(t *testing.T) {
		list, err := svc.ListPosts(ctx, "web", "7")
		require.NoError(t, err)
		assert.Equal(t, 1, list.Page.Number)
		assert.Equal(t, 1, list.Page.NumPages)
		assert.Empty(t, list.Page.Items)
	})

	t.Run("unknown tag", func(t *testing.T) {
		_, err := svc.ListPosts(ctx, "nope", "1")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestGetPostDetail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "a", "b", "c")
	post := f.post(t, "main", "body", 0, "a", "b")
	f.post(t, "both-old", "body", 5, "a", "b")
	f.post(t, "both-new", "body", 1, "a", "b")
	f.post(t, "one-new", "body", 2, "a")
	f.post(t, "one-newer", "body", 1, "b")
	f.post(t, "one-old", "body", 9, "a")
	f.post(t, "unrelated", "body", 0, "c")
	f.draft(t, "draft", "a", "b")

	for i := 0; i < 12; i++ {
		active := i%4 != 0
		c := &models.Comment{
			PostID:  post.ID,
			Name:    "reader",
			Email:   "reader@example.com",
			Body:    "comment",
			Active:  active,
			Created: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, f.store.Comments.Create(ctx, c))
	}

	svc := NewPostService(f.store, nil, nil, DefaultSettings())

	t.Run("detail", func(t *testing.T) {
		detail, err := svc.GetPostDetail(ctx, 2024, 5, 10, "main", "1")
		require.NoError(t, err)
		assert.Equal(t, post.ID, detail.Post.ID)
		assert.Equal(t, []string{"both-new", "both-old", "one-newer", "one-new"}, postTitles(detail.Similar))

		assert.Equal(t, 9, detail.Comments.Count)
		assert.Len(t, detail.Comments.Items, 9)
		for i := 1; i < len(detail.Comments.Items); i++ {
			assert.True(t, detail.Comments.Items[i-1].Created.Before(detail.Comments.Items[i].Created))
		}
		for _, c := range detail.Comments.Items {
			assert.True(t, c.Active)
		}
	})

	t.Run("comment page falls back", func(t *testing.T) {
		detail, err := svc.GetPostDetail(ctx, 2024, 5, 10, "main", "x")
		require.NoError(t, err)
		assert.Equal(t, 1, detail.Comments.Number)
	})

	t.Run("wrong date", func(t *testing.T) {
		_, err := svc.GetPostDetail(ctx, 2024, 5, 11, "main", "1")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("impossible date", func(t *testing.T) {
		dates := [][3]int{{2023, 17, 10}, {2024, 13, 10}, {2024, 4, 40}, {2024, 5, 0}}
		for _, d := range dates {
			_, err := svc.GetPostDetail(ctx, d[0], d[1], d[2], "main", "1")
			assert.ErrorIs(t, err, repositories.ErrNotFound, "%v", d)
		}
	})

	t.Run("draft is hidden", func(t *testing.T) {
		_, err := svc.GetPostDetail(ctx, 2024, 5, 10, "draft", "1")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("date resolved in site time zone", func(t *testing.T) {
		loc := time.FixedZone("UTC+18", 18*60*60)
		settings := DefaultSettings()
		settings.Location = loc
		zoned := NewPostService(f.store, nil, nil, settings)
		_, err := zoned.GetPostDetail(ctx, 2024, 5, 11, "main", "1")
		assert.NoError(t, err)
	})
}

func TestSimilarPostsCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "a")
	post := f.post(t, "main", "body", 0, "a")
	f.post(t, "other", "body", 1, "a")

	c, err := cache.New(cache.Config{Enabled: true, TTL: time.Minute, MaxCost: 100})
	require.NoError(t, err)
	svc := NewPostService(f.store, c, nil, DefaultSettings())

	similar, err := svc.SimilarPosts(ctx, post)
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, postTitles(similar))

	// A post stored behind the service's back is not seen until a write
	// through the service invalidates the cache.
	f.post(t, "sneaky", "body", 0, "a")
	similar, err = svc.SimilarPosts(ctx, post)
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, postTitles(similar))

	_, err = svc.CreatePost(ctx, models.PostInput{Title: "Fresh", Author: "admin", Body: "body", Tags: []string{"a"}})
	require.NoError(t, err)
	similar, err = svc.SimilarPosts(ctx, post)
	require.NoError(t, err)
	assert.Equal(t, []string{"sneaky", "other"}, postTitles(similar))
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tutorial := f.post(t, "Python Tutorial", "Learn python basics", 0)
	f.post(t, "Runs daily with friends weekly", "", 1)
	f.post(t, "Pyth notes", "python tips", 2)
	svc := NewPostService(f.store, nil, nil, DefaultSettings())

	t.Run("query absent", func(t *testing.T) {
		out, err := svc.Search(ctx, SearchRequest{})
		require.NoError(t, err)
		assert.False(t, out.Submitted)
		assert.Nil(t, out.Results)
		assert.Empty(t, out.Message)
	})

	t.Run("query empty", func(t *testing.T) {
		out, err := svc.Search(ctx, SearchRequest{Query: "  ", Present: true})
		require.NoError(t, err)
		assert.True(t, out.Submitted)
		assert.True(t, out.Errors.Has("query"))
		assert.Nil(t, out.Results)
	})

	t.Run("query too short", func(t *testing.T) {
		out, err := svc.Search(ctx, SearchRequest{Query: "py", Present: true})
		require.NoError(t, err)
		assert.Equal(t, ShortQueryMessage, out.Message)
		require.NotNil(t, out.Results)
		assert.Empty(t, out.Results.Items)
	})

	t.Run("three characters are enough", func(t *testing.T) {
		out, err := svc.Search(ctx, SearchRequest{Query: "пар", Present: true})
		require.NoError(t, err)
		assert.Empty(t, out.Message)
	})

	t.Run("misspelled query finds nothing", func(t *testing.T) {
		out, err := svc.Search(ctx, SearchRequest{Query: "pyhton tutoial", Present: true})
		require.NoError(t, err)
		assert.Empty(t, out.Results.Items)
	})

	t.Run("partial overlap matches", func(t *testing.T) {
		out, err := svc.Search(ctx, SearchRequest{Query: "python or tutoial", Present: true})
		require.NoError(t, err)
		require.Len(t, out.Results.Items, 1)
		assert.Equal(t, tutorial.ID, out.Results.Items[0].Post.ID)
	})

	t.Run("thresholds are configurable", func(t *testing.T) {
		out, err := svc.Search(ctx, SearchRequest{Query: "running", Present: true})
		require.NoError(t, err)
		assert.Empty(t, out.Results.Items)

		svc.SetSearchThresholds(search.Thresholds{MinRank: 0.3, MinSimilarity: 0.05})
		defer svc.SetSearchThresholds(search.DefaultThresholds)
		out, err = svc.Search(ctx, SearchRequest{Query: "running", Present: true})
		require.NoError(t, err)
		require.Len(t, out.Results.Items, 1)
		assert.Equal(t, "Runs daily with friends weekly", out.Results.Items[0].Post.Title)
	})
}

func TestPostAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "go")
	svc := NewPostService(f.store, nil, nil, DefaultSettings())

	t.Run("create derives slug", func(t *testing.T) {
		post, err := svc.CreatePost(ctx, models.PostInput{
			Title:   "Hello, World!",
			Author:  "admin",
			Body:    "first",
			Publish: "2024-05-10 09:00",
			Status:  models.StatusPublished,
			Tags:    []string{"go"},
		})
		require.NoError(t, err)
		assert.Equal(t, "hello-world", post.Slug)
		assert.Equal(t, []int{f.tags["go"].ID}, post.TagIDs)
		assert.Equal(t, base, post.Publish.UTC())
	})

	t.Run("status defaults to draft", func(t *testing.T) {
		post, err := svc.CreatePost(ctx, models.PostInput{Title: "Later", Author: "admin", Body: "x"})
		require.NoError(t, err)
		assert.Equal(t, models.StatusDraft, post.Status)
	})

	t.Run("slug unique for date", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, models.PostInput{
			Title: "Hello World", Author: "admin", Body: "again", Publish: "2024-05-10T18:00",
		})
		assert.ErrorIs(t, err, repositories.ErrDuplicateSlug)

		_, err = svc.CreatePost(ctx, models.PostInput{
			Title: "Hello World", Author: "admin", Body: "again", Publish: "2024-05-11",
		})
		assert.NoError(t, err)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, models.PostInput{Author: "admin"})
		var errs models.FieldErrors
		require.ErrorAs(t, err, &errs)
		assert.True(t, errs.Has("title"))
		assert.True(t, errs.Has("body"))
	})

	t.Run("unknown tag", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, models.PostInput{Title: "T", Author: "a", Body: "b", Tags: []string{"rust"}})
		var errs models.FieldErrors
		require.ErrorAs(t, err, &errs)
		assert.True(t, errs.Has("tags"))
	})

	t.Run("bad publish date", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, models.PostInput{Title: "T", Author: "a", Body: "b", Publish: "yesterday"})
		var errs models.FieldErrors
		require.ErrorAs(t, err, &errs)
		assert.True(t, errs.Has("publish"))
	})

	t.Run("update and delete", func(t *testing.T) {
		post, err := svc.CreatePost(ctx, models.PostInput{Title: "Edit me", Author: "admin", Body: "x", Publish: "2024-01-01"})
		require.NoError(t, err)

		updated, err := svc.UpdatePost(ctx, post.ID, models.PostInput{
			Title: "Edit me", Slug: "edited", Author: "admin", Body: "y", Status: models.StatusPublished,
		})
		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Slug)
		assert.Equal(t, post.Publish, updated.Publish)

		got, err := svc.GetPublishedPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "y", got.Body)

		require.NoError(t, svc.DeletePost(ctx, post.ID))
		assert.ErrorIs(t, svc.DeletePost(ctx, post.ID), repositories.ErrNotFound)
		_, err = svc.UpdatePost(ctx, post.ID, models.PostInput{Title: "x", Author: "a", Body: "b"})
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("list filters by status", func(t *testing.T) {
		drafts, err := svc.ListAllPosts(ctx, repositories.PostFilter{Status: models.StatusDraft})
		require.NoError(t, err)
		for _, p := range drafts {
			assert.Equal(t, models.StatusDraft, p.Status)
		}
		assert.NotEmpty(t, drafts)
	})
}

func TestNewPostServiceDefaults(t *testing.T) {
	svc := NewPostService(newFixture(t).store, nil, nil, Settings{})
	assert.Equal(t, 10, svc.settings.PageSize)
	assert.Equal(t, 4, svc.settings.SimilarPosts)
	assert.Equal(t, time.UTC, svc.Location())
	assert.Equal(t, search.DefaultConfig, svc.settings.SearchConfig)
}
