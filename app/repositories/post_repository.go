package repositories

import (
	"context"
	"time"

	"blogsite/app/models"
	"blogsite/app/pagination"
	"blogsite/app/search"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// putPost writes post without its hydrated tags.
func putPost(txn *badger.Txn, post *models.Post) error {
	stored := *post
	stored.Tags = nil
	data, err := marshalEntity(&stored)
	if err != nil {
		return err
	}
	return txn.Set(entityKey(PostKeyPrefix, post.ID), data)
}

// Create creates a new post
func (r *BadgerPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id
		return putPost(txn, post)
	})
}

// GetByID retrieves a post by ID regardless of status
func (r *BadgerPostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		if err := getEntity(txn, entityKey(PostKeyPrefix, id), &post); err != nil {
			return err
		}
		return hydrateTags(txn, []*models.Post{&post})
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Update updates an existing post
func (r *BadgerPostRepository) Update(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		if err := requireKey(txn, entityKey(PostKeyPrefix, post.ID)); err != nil {
			return err
		}
		return putPost(txn, post)
	})
}

// Delete deletes a post and its comments
func (r *BadgerPostRepository) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		key := entityKey(PostKeyPrefix, id)
		if err := requireKey(txn, key); err != nil {
			return err
		}
		comments, err := scanPrefix[models.Comment](txn, CommentKeyPrefix)
		if err != nil {
			return err
		}
		for _, c := range comments {
			if c.PostID != id {
				continue
			}
			if err := txn.Delete(entityKey(CommentKeyPrefix, c.ID)); err != nil {
				return err
			}
		}
		return txn.Delete(key)
	})
}

// all loads every post with its tags.
func (r *BadgerPostRepository) all(ctx context.Context) ([]*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var posts []*models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		posts, err = scanPrefix[models.Post](txn, PostKeyPrefix)
		if err != nil {
			return err
		}
		return hydrateTags(txn, posts)
	})
	return posts, err
}

// List returns the posts matching filter, newest first
func (r *BadgerPostRepository) List(ctx context.Context, filter PostFilter) ([]*models.Post, error) {
	posts, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	return FilterPosts(posts, filter), nil
}

// GetPublishedByID retrieves a published post by ID
func (r *BadgerPostRepository) GetPublishedByID(ctx context.Context, id int) (*models.Post, error) {
	post, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished() {
		return nil, ErrNotFound
	}
	return post, nil
}

// GetPublishedBySlug retrieves the published post with slug published in [from, to)
func (r *BadgerPostRepository) GetPublishedBySlug(ctx context.Context, slug string, from, to time.Time) (*models.Post, error) {
	posts, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range FilterPublished(posts, 0) {
		if p.Slug == slug && inRange(p.Publish, from, to) {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

// SlugExists reports whether another post published in [from, to) uses slug
func (r *BadgerPostRepository) SlugExists(ctx context.Context, slug string, from, to time.Time, excludeID int) (bool, error) {
	posts, err := r.all(ctx)
	if err != nil {
		return false, err
	}
	for _, p := range posts {
		if p.ID != excludeID && p.Slug == slug && inRange(p.Publish, from, to) {
			return true, nil
		}
	}
	return false, nil
}

// Published lists published posts, optionally restricted to a tag
func (r *BadgerPostRepository) Published(tagID int) pagination.Source[*models.Post] {
	return pagination.NewLazySource(func(ctx context.Context) ([]*models.Post, error) {
		posts, err := r.all(ctx)
		if err != nil {
			return nil, err
		}
		return FilterPublished(posts, tagID), nil
	})
}

// Similar returns the published posts sharing the most tags with post
func (r *BadgerPostRepository) Similar(ctx context.Context, post *models.Post, limit int) ([]*models.Post, error) {
	posts, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	return RankSimilar(posts, post, limit), nil
}

// Search ranks published posts against query in process
func (r *BadgerPostRepository) Search(ctx context.Context, query string, opts SearchOptions) (pagination.Source[*models.SearchResult], error) {
	if _, err := search.LookupConfig(opts.Config); err != nil {
		return nil, err
	}
	return pagination.NewLazySource(func(ctx context.Context) ([]*models.SearchResult, error) {
		posts, err := r.all(ctx)
		if err != nil {
			return nil, err
		}
		return RankSearch(posts, query, opts)
	}), nil
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}
