package repositories

import (
	"sort"
	"strings"

	"blogsite/app/models"
	"blogsite/app/search"

	"github.com/samber/lo"
)

// The helpers below evaluate post queries in process. The Badger store and
// the in-memory mock share them; the PostgreSQL store does the same work in SQL.

// SortPosts orders posts newest first, breaking ties by descending ID.
func SortPosts(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Publish.Equal(posts[j].Publish) {
			return posts[i].Publish.After(posts[j].Publish)
		}
		return posts[i].ID > posts[j].ID
	})
}

// SortComments orders comments oldest first.
func SortComments(comments []*models.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		if !comments[i].Created.Equal(comments[j].Created) {
			return comments[i].Created.Before(comments[j].Created)
		}
		return comments[i].ID < comments[j].ID
	})
}

// FilterPublished keeps published posts, and only those tagged tagID when it
// is non-zero, in default order.
func FilterPublished(posts []*models.Post, tagID int) []*models.Post {
	out := lo.Filter(posts, func(p *models.Post, _ int) bool {
		return p.IsPublished() && (tagID == 0 || p.HasTag(tagID))
	})
	SortPosts(out)
	return out
}

// FilterPosts applies an admin filter.
func FilterPosts(posts []*models.Post, f PostFilter) []*models.Post {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := lo.Filter(posts, func(p *models.Post, _ int) bool {
		if f.Status != "" && p.Status != f.Status {
			return false
		}
		if f.TagID != 0 && !p.HasTag(f.TagID) {
			return false
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Title), q) && !strings.Contains(strings.ToLower(p.Body), q) {
			return false
		}
		return true
	})
	SortPosts(out)
	return out
}

// FilterComments applies a moderation filter and orders the result.
func FilterComments(comments []*models.Comment, f CommentFilter) []*models.Comment {
	out := lo.Filter(comments, func(c *models.Comment, _ int) bool {
		if f.PostID != 0 && c.PostID != f.PostID {
			return false
		}
		return f.Active == nil || c.Active == *f.Active
	})
	SortComments(out)
	return out
}

// RankSimilar picks the published candidates that share at least one tag with
// post, excluding post itself, ordered by shared tag count and then recency.
func RankSimilar(candidates []*models.Post, post *models.Post, limit int) []*models.Post {
	if len(post.TagIDs) == 0 || limit <= 0 {
		return nil
	}
	type scored struct {
		post   *models.Post
		shared int
	}
	seen := make(map[int]struct{})
	var pool []scored
	for _, c := range candidates {
		if c.ID == post.ID || !c.IsPublished() {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		shared := c.SharedTags(post.TagIDs)
		if shared == 0 {
			continue
		}
		seen[c.ID] = struct{}{}
		pool = append(pool, scored{post: c, shared: shared})
	}
	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if a.shared != b.shared {
			return a.shared > b.shared
		}
		if !a.post.Publish.Equal(b.post.Publish) {
			return a.post.Publish.After(b.post.Publish)
		}
		return a.post.ID > b.post.ID
	})
	if len(pool) > limit {
		pool = pool[:limit]
	}
	return lo.Map(pool, func(s scored, _ int) *models.Post { return s.post })
}

// RankSearch scores published posts against raw and keeps the ones passing
// opts.Thresholds, best rank first, then best similarity.
func RankSearch(posts []*models.Post, raw string, opts SearchOptions) ([]*models.SearchResult, error) {
	cfg, err := search.LookupConfig(opts.Config)
	if err != nil {
		return nil, err
	}
	scorer := search.NewScorer(cfg, raw)

	var results []*models.SearchResult
	for _, p := range posts {
		if !p.IsPublished() {
			continue
		}
		score := scorer.Score(p.Title, p.Body)
		if !opts.Thresholds.Accept(score) {
			continue
		}
		results = append(results, &models.SearchResult{Post: p, Rank: score.Rank, Similarity: score.Similarity})
	}
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Rank != b.Rank {
			return a.Rank > b.Rank
		}
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if !a.Post.Publish.Equal(b.Post.Publish) {
			return a.Post.Publish.After(b.Post.Publish)
		}
		return a.Post.ID > b.Post.ID
	})
	return results, nil
}
