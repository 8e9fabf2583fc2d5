package services

import (
	"context"
	"fmt"

	"blogsite/app/cache"
	"blogsite/app/models"
	"blogsite/app/repositories"

	"github.com/gosimple/slug"
)

// TagService handles business logic for tags
type TagService struct {
	tags    repositories.TagRepository
	cache   *cache.Cache
	sitemap *SitemapService
}

func NewTagService(tags repositories.TagRepository, c *cache.Cache) *TagService {
	return &TagService{tags: tags, cache: c}
}

// SetSitemap makes tag writes invalidate sm's snapshot.
func (s *TagService) SetSitemap(sm *SitemapService) {
	s.sitemap = sm
}

// CreateTag stores a tag, deriving the slug from the name when none is given.
func (s *TagService) CreateTag(ctx context.Context, in models.TagInput) (*models.Tag, error) {
	if errs := in.Validate(); errs != nil {
		return nil, errs
	}
	tag := &models.Tag{Name: in.Name, Slug: in.Slug}
	if tag.Slug == "" {
		tag.Slug = slug.Make(in.Name)
	}
	if err := tag.Validate(); err != nil {
		return nil, err
	}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, fmt.Errorf("tag %q: %w", tag.Slug, err)
	}
	s.cache.Invalidate(ctx, postsCacheTag)
	s.sitemap.Invalidate()
	return tag, nil
}

// ListTags returns every tag ordered by name.
func (s *TagService) ListTags(ctx context.Context) ([]*models.Tag, error) {
	return s.tags.List(ctx)
}
