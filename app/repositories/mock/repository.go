// Package mock provides in-memory repositories for tests.
package mock

import (
	"context"
	"strings"
	"sync"
	"time"

	"blogsite/app/models"
	"blogsite/app/pagination"
	"blogsite/app/repositories"
)

type PostRepository struct {
	posts  map[int]*models.Post
	tags   *TagRepository
	nextID int
	mutex  sync.RWMutex
}

type TagRepository struct {
	tags   map[int]*models.Tag
	nextID int
	mutex  sync.RWMutex
}

type CommentRepository struct {
	comments map[int]*models.Comment
	nextID   int
	mutex    sync.RWMutex
}

// NewStore returns a Store backed by fresh in-memory repositories.
func NewStore() *repositories.Store {
	tags := NewTagRepository()
	return repositories.NewStore(NewPostRepository(tags), tags, NewCommentRepository(), nil)
}

func NewPostRepository(tags *TagRepository) *PostRepository {
	return &PostRepository{
		posts:  make(map[int]*models.Post),
		tags:   tags,
		nextID: 1,
	}
}

func NewTagRepository() *TagRepository {
	return &TagRepository{
		tags:   make(map[int]*models.Tag),
		nextID: 1,
	}
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{
		comments: make(map[int]*models.Comment),
		nextID:   1,
	}
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[int]*models.Post)
	m.nextID = 1
}

// copyPost detaches stored posts from callers and resolves tags.
func (m *PostRepository) copyPost(p *models.Post) *models.Post {
	cp := *p
	cp.TagIDs = append([]int(nil), p.TagIDs...)
	cp.Tags = nil
	if m.tags != nil {
		for _, id := range cp.TagIDs {
			if t, err := m.tags.GetByID(context.Background(), id); err == nil {
				cp.Tags = append(cp.Tags, t)
			}
		}
	}
	return &cp
}

// PostRepository implementation
func (m *PostRepository) Create(_ context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	post.ID = m.nextID
	m.nextID++
	m.posts[post.ID] = m.copyPost(post)
	return nil
}

func (m *PostRepository) GetByID(_ context.Context, id int) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return m.copyPost(post), nil
}

func (m *PostRepository) Update(_ context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	m.posts[post.ID] = m.copyPost(post)
	return nil
}

func (m *PostRepository) Delete(_ context.Context, id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *PostRepository) all() []*models.Post {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	out := make([]*models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		out = append(out, m.copyPost(p))
	}
	return out
}

func (m *PostRepository) List(_ context.Context, filter repositories.PostFilter) ([]*models.Post, error) {
	return repositories.FilterPosts(m.all(), filter), nil
}

func (m *PostRepository) GetPublishedByID(ctx context.Context, id int) (*models.Post, error) {
	post, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished() {
		return nil, repositories.ErrNotFound
	}
	return post, nil
}

func (m *PostRepository) GetPublishedBySlug(_ context.Context, slug string, from, to time.Time) (*models.Post, error) {
	for _, p := range repositories.FilterPublished(m.all(), 0) {
		if p.Slug == slug && !p.Publish.Before(from) && p.Publish.Before(to) {
			return p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *PostRepository) SlugExists(_ context.Context, slug string, from, to time.Time, excludeID int) (bool, error) {
	for _, p := range m.all() {
		if p.ID != excludeID && p.Slug == slug && !p.Publish.Before(from) && p.Publish.Before(to) {
			return true, nil
		}
	}
	return false, nil
}

func (m *PostRepository) Published(tagID int) pagination.Source[*models.Post] {
	return pagination.NewLazySource(func(context.Context) ([]*models.Post, error) {
		return repositories.FilterPublished(m.all(), tagID), nil
	})
}

func (m *PostRepository) Similar(_ context.Context, post *models.Post, limit int) ([]*models.Post, error) {
	return repositories.RankSimilar(m.all(), post, limit), nil
}

func (m *PostRepository) Search(_ context.Context, query string, opts repositories.SearchOptions) (pagination.Source[*models.SearchResult], error) {
	results, err := repositories.RankSearch(m.all(), query, opts)
	if err != nil {
		return nil, err
	}
	return pagination.SliceSource[*models.SearchResult](results), nil
}

// TagRepository implementation
func (m *TagRepository) Create(_ context.Context, tag *models.Tag) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, t := range m.tags {
		if strings.EqualFold(t.Slug, tag.Slug) {
			return repositories.ErrDuplicateSlug
		}
	}
	tag.ID = m.nextID
	m.nextID++
	cp := *tag
	m.tags[tag.ID] = &cp
	return nil
}

func (m *TagRepository) GetByID(_ context.Context, id int) (*models.Tag, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	tag, exists := m.tags[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	cp := *tag
	return &cp, nil
}

func (m *TagRepository) GetBySlug(_ context.Context, slug string) (*models.Tag, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, t := range m.tags {
		if strings.EqualFold(t.Slug, slug) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *TagRepository) List(_ context.Context) ([]*models.Tag, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	out := make([]*models.Tag, 0, len(m.tags))
	for id := 1; id < m.nextID; id++ {
		if t, ok := m.tags[id]; ok {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

// CommentRepository implementation
func (m *CommentRepository) Create(_ context.Context, comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	comment.ID = m.nextID
	m.nextID++
	cp := *comment
	m.comments[comment.ID] = &cp
	return nil
}

func (m *CommentRepository) GetByID(_ context.Context, id int) (*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	comment, exists := m.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	cp := *comment
	return &cp, nil
}

func (m *CommentRepository) Update(_ context.Context, comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.comments[comment.ID]; !exists {
		return repositories.ErrNotFound
	}
	cp := *comment
	m.comments[comment.ID] = &cp
	return nil
}

func (m *CommentRepository) Delete(_ context.Context, id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.comments[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *CommentRepository) ListByPost(ctx context.Context, postID int) ([]*models.Comment, error) {
	return m.List(ctx, repositories.CommentFilter{PostID: postID})
}

func (m *CommentRepository) List(_ context.Context, filter repositories.CommentFilter) ([]*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	all := make([]*models.Comment, 0, len(m.comments))
	for _, c := range m.comments {
		cp := *c
		all = append(all, &cp)
	}
	return repositories.FilterComments(all, filter), nil
}

func (m *CommentRepository) Active(postID int) pagination.Source[*models.Comment] {
	active := true
	return pagination.NewLazySource(func(ctx context.Context) ([]*models.Comment, error) {
		return m.List(ctx, repositories.CommentFilter{PostID: postID, Active: &active})
	})
}

var (
	_ repositories.PostRepository    = (*PostRepository)(nil)
	_ repositories.TagRepository     = (*TagRepository)(nil)
	_ repositories.CommentRepository = (*CommentRepository)(nil)
)
