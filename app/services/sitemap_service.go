package services

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"blogsite/app/metrics"
	"blogsite/app/models"
	"blogsite/app/repositories"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/sha3"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ErrNoBaseURL is returned by Refresh until the site's absolute address is
// configured or learned from a request.
var ErrNoBaseURL = errors.New("sitemap base URL is not known yet")

// Sitemap is a rendered sitemap.xml document.
type Sitemap struct {
	Body      []byte
	ETag      string
	Generated time.Time
	URLs      int
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// SitemapService renders the sitemap of published posts and tags and keeps
// the latest rendition in memory. A nil *SitemapService ignores Invalidate.
type SitemapService struct {
	posts    repositories.PostRepository
	tags     repositories.TagRepository
	baseURL  atomic.Pointer[string]
	location *time.Location
	current  atomic.Pointer[Sitemap]
}

func NewSitemapService(posts repositories.PostRepository, tags repositories.TagRepository, baseURL string, loc *time.Location) *SitemapService {
	if loc == nil {
		loc = time.UTC
	}
	s := &SitemapService{
		posts:    posts,
		tags:     tags,
		location: loc,
	}
	s.LearnBaseURL(baseURL)
	return s
}

// LearnBaseURL adopts base (scheme and host) for sitemap locations unless one
// is already set. It reports whether base was adopted.
func (s *SitemapService) LearnBaseURL(base string) bool {
	base = strings.TrimRight(base, "/")
	if base == "" {
		return false
	}
	return s.baseURL.CompareAndSwap(nil, &base)
}

// Invalidate drops the current snapshot so the next Current rebuilds it.
func (s *SitemapService) Invalidate() {
	if s == nil {
		return
	}
	s.current.Store(nil)
}

// Refresh rebuilds the sitemap and makes it current.
func (s *SitemapService) Refresh(ctx context.Context) (*Sitemap, error) {
	sm, err := s.build(ctx)
	if errors.Is(err, ErrNoBaseURL) {
		return nil, err
	}
	if err != nil {
		metrics.SitemapRefreshTotal.WithLabelValues(metrics.ResultError).Inc()
		return nil, err
	}
	s.current.Store(sm)
	metrics.SitemapRefreshTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	log.Debug().Int("urls", sm.URLs).Str("etag", sm.ETag).Msg("Sitemap refreshed")
	return sm, nil
}

// Current returns the last built sitemap, building one if there is none.
func (s *SitemapService) Current(ctx context.Context) (*Sitemap, error) {
	if sm := s.current.Load(); sm != nil {
		return sm, nil
	}
	return s.Refresh(ctx)
}

func (s *SitemapService) build(ctx context.Context) (*Sitemap, error) {
	base := s.baseURL.Load()
	if base == nil {
		return nil, ErrNoBaseURL
	}
	posts, err := s.posts.List(ctx, repositories.PostFilter{Status: models.StatusPublished})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	set := urlSet{Xmlns: sitemapNamespace, URLs: make([]sitemapURL, 0, len(posts)+len(tags))}
	for _, p := range posts {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        *base + p.Path(s.location),
			LastMod:    p.Updated.UTC().Format(time.RFC3339),
			ChangeFreq: "weekly",
			Priority:   "0.9",
		})
	}
	for _, t := range tags {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        *base + t.Path(),
			ChangeFreq: "daily",
			Priority:   "0.7",
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("failed to encode sitemap: %w", err)
	}
	buf.WriteByte('\n')

	sum := sha3.Sum256(buf.Bytes())
	return &Sitemap{
		Body:      buf.Bytes(),
		ETag:      `"` + hex.EncodeToString(sum[:]) + `"`,
		Generated: time.Now(),
		URLs:      len(set.URLs),
	}, nil
}
