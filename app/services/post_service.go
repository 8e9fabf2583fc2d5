package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"blogsite/app/cache"
	"blogsite/app/metrics"
	"blogsite/app/models"
	"blogsite/app/pagination"
	"blogsite/app/repositories"
	"blogsite/app/search"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"
)

const (
	// MinQueryLength is the shortest search term, in characters, that is run.
	MinQueryLength    = 3
	ShortQueryMessage = "Search term must be at least 3 characters long."

	postsCacheTag = "posts"
)

// Settings are the tunables of the public blog.
type Settings struct {
	PageSize     int
	SimilarPosts int
	Location     *time.Location
	SearchConfig string
	Thresholds   search.Thresholds
}

// DefaultSettings match the stock site.
func DefaultSettings() Settings {
	return Settings{
		PageSize:     pagination.DefaultPerPage,
		SimilarPosts: 4,
		Location:     time.UTC,
		SearchConfig: search.DefaultConfig,
		Thresholds:   search.DefaultThresholds,
	}
}

// PostService handles business logic for posts
type PostService struct {
	posts    repositories.PostRepository
	tags     repositories.TagRepository
	comments repositories.CommentRepository
	cache    *cache.Cache
	language *LanguageDetector
	settings Settings
	sitemap  *SitemapService

	mu         sync.RWMutex
	thresholds search.Thresholds
}

// NewPostService creates a new PostService. c and lang may be nil.
func NewPostService(store *repositories.Store, c *cache.Cache, lang *LanguageDetector, settings Settings) *PostService {
	defaults := DefaultSettings()
	if settings.PageSize <= 0 {
		settings.PageSize = defaults.PageSize
	}
	if settings.SimilarPosts <= 0 {
		settings.SimilarPosts = defaults.SimilarPosts
	}
	if settings.Location == nil {
		settings.Location = defaults.Location
	}
	if settings.SearchConfig == "" {
		settings.SearchConfig = defaults.SearchConfig
	}
	return &PostService{
		posts:      store.Posts,
		tags:       store.Tags,
		comments:   store.Comments,
		cache:      c,
		language:   lang,
		settings:   settings,
		thresholds: settings.Thresholds,
	}
}

// SetSitemap makes post writes invalidate sm's snapshot.
func (s *PostService) SetSitemap(sm *SitemapService) {
	s.sitemap = sm
}

// Location is the time zone post dates are resolved in.
func (s *PostService) Location() *time.Location {
	return s.settings.Location
}

// SearchThresholds returns the cut-offs currently in force.
func (s *PostService) SearchThresholds() search.Thresholds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.thresholds
}

// SetSearchThresholds replaces the cut-offs used by subsequent searches.
func (s *PostService) SetSearchThresholds(t search.Thresholds) {
	s.mu.Lock()
	s.thresholds = t
	s.mu.Unlock()
}

// PostList is one page of the public listing.
type PostList struct {
	Tag  *models.Tag                    `json:"tag,omitempty"`
	Page *pagination.Page[*models.Post] `json:"page"`
}

// ListPosts returns a page of published posts, restricted to the tag with
// slug tagSlug when it is not empty.
func (s *PostService) ListPosts(ctx context.Context, tagSlug, page string) (*PostList, error) {
	out := &PostList{}
	tagID := 0
	if tagSlug != "" {
		tag, err := s.tags.GetBySlug(ctx, tagSlug)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", tagSlug, err)
		}
		out.Tag = tag
		tagID = tag.ID
	}
	p, err := pagination.Paginate(ctx, s.posts.Published(tagID), s.settings.PageSize, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	out.Page = p
	return out, nil
}

// PostDetail is everything shown on a post page.
type PostDetail struct {
	Post     *models.Post                      `json:"post"`
	Comments *pagination.Page[*models.Comment] `json:"comments"`
	Similar  []*models.Post                    `json:"similar_posts"`
}

// GetPostDetail resolves a published post by its publish date and slug.
func (s *PostService) GetPostDetail(ctx context.Context, year, month, day int, postSlug, commentPage string) (*PostDetail, error) {
	if !models.ValidDate(year, month, day) {
		return nil, fmt.Errorf("post %d/%d/%d/%s: %w", year, month, day, postSlug, repositories.ErrNotFound)
	}
	from, to := models.DayRange(year, month, day, s.settings.Location)
	post, err := s.posts.GetPublishedBySlug(ctx, postSlug, from, to)
	if err != nil {
		return nil, fmt.Errorf("post %d/%d/%d/%s: %w", year, month, day, postSlug, err)
	}

	comments, err := pagination.Paginate(ctx, s.comments.Active(post.ID), s.settings.PageSize, commentPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	similar, err := s.SimilarPosts(ctx, post)
	if err != nil {
		return nil, err
	}

	return &PostDetail{Post: post, Comments: comments, Similar: similar}, nil
}

// SimilarPosts returns the published posts sharing the most tags with post.
func (s *PostService) SimilarPosts(ctx context.Context, post *models.Post) ([]*models.Post, error) {
	key := fmt.Sprintf("similar-posts#%d", post.ID)
	var cached []*models.Post
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	similar, err := s.posts.Similar(ctx, post, s.settings.SimilarPosts)
	if err != nil {
		return nil, fmt.Errorf("failed to find similar posts: %w", err)
	}
	if similar == nil {
		similar = []*models.Post{}
	}
	s.cache.Set(ctx, key, similar, postsCacheTag, fmt.Sprintf("post#%d", post.ID))
	return similar, nil
}

// SearchRequest is the raw search input. Present is false when the query
// parameter was not sent at all.
type SearchRequest struct {
	Query   string
	Present bool
	Page    string
}

// SearchOutcome is the result of a search request.
type SearchOutcome struct {
	Query     string                                 `json:"query"`
	Submitted bool                                   `json:"submitted"`
	Errors    models.FieldErrors                     `json:"errors,omitempty"`
	Message   string                                 `json:"message,omitempty"`
	Results   *pagination.Page[*models.SearchResult] `json:"results,omitempty"`
}

// Search runs a full text query over published posts.
func (s *PostService) Search(ctx context.Context, req SearchRequest) (*SearchOutcome, error) {
	out := &SearchOutcome{Query: req.Query}
	if !req.Present {
		return out, nil
	}
	out.Submitted = true

	form := models.SearchForm{Query: strings.TrimSpace(req.Query)}
	out.Query = form.Query
	if errs := form.Validate(); errs != nil {
		out.Errors = errs
		metrics.SearchQueriesTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return out, nil
	}

	if utf8.RuneCountInString(form.Query) < MinQueryLength {
		out.Message = ShortQueryMessage
		empty, err := pagination.Paginate(ctx, pagination.SliceSource[*models.SearchResult](nil), s.settings.PageSize, "1")
		if err != nil {
			return nil, err
		}
		out.Results = empty
		metrics.SearchQueriesTotal.WithLabelValues("short").Inc()
		return out, nil
	}

	src, err := s.posts.Search(ctx, form.Query, repositories.SearchOptions{
		Config:     s.settings.SearchConfig,
		Thresholds: s.SearchThresholds(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	results, err := pagination.Paginate(ctx, src, s.settings.PageSize, req.Page)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	out.Results = results

	outcome := "results"
	if results.Count == 0 {
		outcome = "empty"
	}
	metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	return out, nil
}

// GetPost retrieves any post by ID
func (s *PostService) GetPost(ctx context.Context, id int) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", id, err)
	}
	return post, nil
}

// GetPublishedPost retrieves a post visible on the public site.
func (s *PostService) GetPublishedPost(ctx context.Context, id int) (*models.Post, error) {
	post, err := s.posts.GetPublishedByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", id, err)
	}
	return post, nil
}

// ListAllPosts lists posts of every status for the admin.
func (s *PostService) ListAllPosts(ctx context.Context, filter repositories.PostFilter) ([]*models.Post, error) {
	return s.posts.List(ctx, filter)
}

// CreatePost validates in and stores it as a new post.
func (s *PostService) CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error) {
	post := &models.Post{}
	if err := s.apply(ctx, post, in); err != nil {
		return nil, err
	}
	post.BeforeCreate(time.Now())
	if err := s.checkPost(ctx, post); err != nil {
		return nil, err
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	s.cache.Invalidate(ctx, postsCacheTag)
	s.sitemap.Invalidate()
	log.Ctx(ctx).Info().Int("id", post.ID).Str("slug", post.Slug).Msg("Post created")
	return post, nil
}

// UpdatePost replaces the editable fields of post id with in.
func (s *PostService) UpdatePost(ctx context.Context, id int, in models.PostInput) (*models.Post, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, post, in); err != nil {
		return nil, err
	}
	post.Updated = time.Now()
	if err := s.checkPost(ctx, post); err != nil {
		return nil, err
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	s.cache.Invalidate(ctx, postsCacheTag)
	s.sitemap.Invalidate()
	return post, nil
}

// DeletePost removes a post and its comments.
func (s *PostService) DeletePost(ctx context.Context, id int) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		return fmt.Errorf("post %d: %w", id, err)
	}
	s.cache.Invalidate(ctx, postsCacheTag)
	s.sitemap.Invalidate()
	return nil
}

// apply copies in onto post, filling the slug, publish date, tags and
// language.
func (s *PostService) apply(ctx context.Context, post *models.Post, in models.PostInput) error {
	if errs := in.Validate(); errs != nil {
		return errs
	}
	post.Title = in.Title
	post.Author = in.Author
	post.Body = in.Body
	if in.Status != "" {
		post.Status = in.Status
	}

	post.Slug = in.Slug
	if post.Slug == "" {
		post.Slug = slug.Make(in.Title)
	}

	if in.Publish != "" {
		publish, err := parsePublish(in.Publish, s.settings.Location)
		if err != nil {
			return models.FieldErrors{"publish": "Enter a valid date/time."}
		}
		post.Publish = publish
	}

	tags := make([]*models.Tag, 0, len(in.Tags))
	for _, tagSlug := range in.Tags {
		tag, err := s.tags.GetBySlug(ctx, tagSlug)
		if errors.Is(err, repositories.ErrNotFound) {
			return models.FieldErrors{"tags": fmt.Sprintf("Unknown tag %q.", tagSlug)}
		}
		if err != nil {
			return err
		}
		tags = append(tags, tag)
	}
	post.SetTags(tags)

	post.Language = s.language.Detect(post.Title + "\n" + post.Body)
	return nil
}

// checkPost validates the stored fields and enforces one slug per publish date.
func (s *PostService) checkPost(ctx context.Context, post *models.Post) error {
	if err := post.Validate(); err != nil {
		return err
	}
	d := post.Publish.In(s.settings.Location)
	from, to := models.DayRange(d.Year(), int(d.Month()), d.Day(), s.settings.Location)
	exists, err := s.posts.SlugExists(ctx, post.Slug, from, to, post.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %q on %s", repositories.ErrDuplicateSlug, post.Slug, d.Format("2006-01-02"))
	}
	return nil
}

var publishLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"}

func parsePublish(v string, loc *time.Location) (time.Time, error) {
	var err error
	for _, layout := range publishLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
