package repositories

import (
	"context"

	"blogsite/app/models"
	"blogsite/app/pagination"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB
type BadgerCommentRepository struct {
	db *badger.DB
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

// Create creates a new comment
func (r *BadgerCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		if err := requireKey(txn, entityKey(PostKeyPrefix, comment.PostID)); err != nil {
			return err
		}
		id, err := getNextID(txn, CommentSeqKey)
		if err != nil {
			return err
		}
		comment.ID = id

		data, err := marshalEntity(comment)
		if err != nil {
			return err
		}
		return txn.Set(entityKey(CommentKeyPrefix, comment.ID), data)
	})
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(ctx context.Context, id int) (*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var comment models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(CommentKeyPrefix, id), &comment)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Update updates an existing comment
func (r *BadgerCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		key := entityKey(CommentKeyPrefix, comment.ID)
		if err := requireKey(txn, key); err != nil {
			return err
		}
		data, err := marshalEntity(comment)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// Delete deletes a comment by ID
func (r *BadgerCommentRepository) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		key := entityKey(CommentKeyPrefix, id)
		if err := requireKey(txn, key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

func (r *BadgerCommentRepository) all(ctx context.Context) ([]*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var comments []*models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		comments, err = scanPrefix[models.Comment](txn, CommentKeyPrefix)
		return err
	})
	return comments, err
}

// ListByPost retrieves all comments of a post, oldest first
func (r *BadgerCommentRepository) ListByPost(ctx context.Context, postID int) ([]*models.Comment, error) {
	return r.List(ctx, CommentFilter{PostID: postID})
}

// List retrieves the comments matching filter, oldest first
func (r *BadgerCommentRepository) List(ctx context.Context, filter CommentFilter) ([]*models.Comment, error) {
	comments, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	return FilterComments(comments, filter), nil
}

// Active lists the active comments of a post
func (r *BadgerCommentRepository) Active(postID int) pagination.Source[*models.Comment] {
	active := true
	return pagination.NewLazySource(func(ctx context.Context) ([]*models.Comment, error) {
		return r.List(ctx, CommentFilter{PostID: postID, Active: &active})
	})
}
