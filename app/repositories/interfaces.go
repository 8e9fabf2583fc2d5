package repositories

import (
	"context"
	"errors"
	"time"

	"blogsite/app/models"
	"blogsite/app/pagination"
	"blogsite/app/search"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateSlug = errors.New("slug already in use")
)

// PostFilter narrows the admin post listing. Zero values match everything.
type PostFilter struct {
	Status models.Status
	TagID  int
	Query  string
}

// SearchOptions selects the text search configuration and cut-offs.
type SearchOptions struct {
	Config     string
	Thresholds search.Thresholds
}

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id int) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter PostFilter) ([]*models.Post, error)

	// GetPublishedByID and GetPublishedBySlug only see published posts.
	GetPublishedByID(ctx context.Context, id int) (*models.Post, error)
	GetPublishedBySlug(ctx context.Context, slug string, from, to time.Time) (*models.Post, error)
	SlugExists(ctx context.Context, slug string, from, to time.Time, excludeID int) (bool, error)

	// Published lists published posts newest first, restricted to tagID when non-zero.
	Published(tagID int) pagination.Source[*models.Post]
	// Similar returns up to limit published posts sharing tags with post,
	// most shared tags first, then newest.
	Similar(ctx context.Context, post *models.Post, limit int) ([]*models.Post, error)
	// Search returns published posts satisfying query, best first.
	Search(ctx context.Context, query string, opts SearchOptions) (pagination.Source[*models.SearchResult], error)
}

// TagRepository defines the interface for tag data access
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	GetByID(ctx context.Context, id int) (*models.Tag, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tag, error)
	List(ctx context.Context) ([]*models.Tag, error)
}

// CommentFilter narrows the moderation listing. Zero values match everything.
type CommentFilter struct {
	PostID int
	Active *bool
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int) (*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id int) error
	ListByPost(ctx context.Context, postID int) ([]*models.Comment, error)
	List(ctx context.Context, filter CommentFilter) ([]*models.Comment, error)

	// Active lists the post's active comments oldest first.
	Active(postID int) pagination.Source[*models.Comment]
}

// Store bundles the repositories of one backend.
type Store struct {
	Posts    PostRepository
	Tags     TagRepository
	Comments CommentRepository
	closer   func() error
}

// NewStore assembles a Store. closer may be nil.
func NewStore(posts PostRepository, tags TagRepository, comments CommentRepository, closer func() error) *Store {
	return &Store{Posts: posts, Tags: tags, Comments: comments, closer: closer}
}

// Close releases the backend.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
