package repositories

import (
	"context"
	"testing"
	"time"

	"blogsite/app/models"
	"blogsite/app/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	posts := NewBadgerPostRepository(db)
	repo := NewBadgerCommentRepository(db)

	post := newPost("post", models.StatusPublished, 0)
	require.NoError(t, posts.Create(ctx, post))

	for i := 0; i < 12; i++ {
		c := &models.Comment{
			PostID:  post.ID,
			Name:    "reader",
			Email:   "r@example.com",
			Body:    "comment",
			Created: base.Add(time.Duration(i) * time.Minute),
			Active:  i != 3,
		}
		require.NoError(t, repo.Create(ctx, c))
	}

	t.Run("comment on missing post", func(t *testing.T) {
		err := repo.Create(ctx, &models.Comment{PostID: 999})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list by post in creation order", func(t *testing.T) {
		all, err := repo.ListByPost(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, all, 12)
		for i := 1; i < len(all); i++ {
			assert.True(t, all[i-1].Created.Before(all[i].Created))
		}
	})

	t.Run("active comments are paginated", func(t *testing.T) {
		page, err := pagination.Paginate(ctx, repo.Active(post.ID), 10, "2")
		require.NoError(t, err)
		assert.Equal(t, 11, page.Count)
		assert.Len(t, page.Items, 1)
		for _, c := range page.Items {
			assert.True(t, c.Active)
		}
	})

	t.Run("update activates", func(t *testing.T) {
		inactive := false
		pending, err := repo.List(ctx, CommentFilter{Active: &inactive})
		require.NoError(t, err)
		require.Len(t, pending, 1)

		pending[0].Active = true
		require.NoError(t, repo.Update(ctx, pending[0]))
		count, err := repo.Active(post.ID).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 12, count)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, 1))
		_, err := repo.GetByID(ctx, 1)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, 1), ErrNotFound)
		assert.ErrorIs(t, repo.Update(ctx, &models.Comment{ID: 1}), ErrNotFound)
	})
}
