package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"blogsite/app/models"
	"blogsite/app/pagination"
	"blogsite/app/repositories"
	"blogsite/app/search"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postColumns = "p.id, p.title, p.slug, p.author, p.body, p.publish, p.created, p.updated, p.status, p.language"

// PostRepository implements repositories.PostRepository on PostgreSQL.
type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

func scanPost(row pgx.Row, extra ...any) (*models.Post, error) {
	var p models.Post
	var status string
	dest := append([]any{&p.ID, &p.Title, &p.Slug, &p.Author, &p.Body, &p.Publish, &p.Created, &p.Updated, &status, &p.Language}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	p.Status = models.Status(status)
	return &p, nil
}

func (r *PostRepository) queryPosts(ctx context.Context, sql string, args ...any) ([]*models.Post, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	posts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Post, error) {
		return scanPost(row)
	})
	if err != nil {
		return nil, err
	}
	return posts, r.loadTags(ctx, posts)
}

// loadTags fills Tags and TagIDs of posts with one query.
func (r *PostRepository) loadTags(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	byID := make(map[int]*models.Post, len(posts))
	ids := make([]int32, 0, len(posts))
	for _, p := range posts {
		p.Tags = []*models.Tag{}
		p.TagIDs = []int{}
		byID[p.ID] = p
		ids = append(ids, int32(p.ID))
	}
	rows, err := r.pool.Query(ctx, `
		SELECT pt.post_id, t.id, t.name, t.slug
		FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1)
		ORDER BY t.name, t.id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var postID int
		var t models.Tag
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug); err != nil {
			return err
		}
		if p, ok := byID[postID]; ok {
			p.Tags = append(p.Tags, &t)
			p.TagIDs = append(p.TagIDs, t.ID)
		}
	}
	return rows.Err()
}

func replaceTags(ctx context.Context, tx pgx.Tx, post *models.Post) error {
	if _, err := tx.Exec(ctx, `DELETE FROM post_tags WHERE post_id = $1`, post.ID); err != nil {
		return err
	}
	for _, tagID := range post.TagIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			post.ID, tagID)
		if err != nil {
			return translate(err)
		}
	}
	return nil
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO posts (title, slug, author, body, publish, created, updated, status, language)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			post.Title, post.Slug, post.Author, post.Body, post.Publish, post.Created, post.Updated,
			string(post.Status), post.Language,
		).Scan(&post.ID)
		if err != nil {
			return translate(err)
		}
		return replaceTags(ctx, tx, post)
	})
}

func (r *PostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	return r.one(ctx, `SELECT `+postColumns+` FROM posts p WHERE p.id = $1`, id)
}

func (r *PostRepository) one(ctx context.Context, sql string, args ...any) (*models.Post, error) {
	post, err := scanPost(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err)
	}
	if err := r.loadTags(ctx, []*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE posts SET title = $2, slug = $3, author = $4, body = $5, publish = $6,
				updated = $7, status = $8, language = $9
			WHERE id = $1`,
			post.ID, post.Title, post.Slug, post.Author, post.Body, post.Publish, post.Updated,
			string(post.Status), post.Language,
		)
		if err != nil {
			return translate(err)
		}
		if tag.RowsAffected() == 0 {
			return repositories.ErrNotFound
		}
		return replaceTags(ctx, tx, post)
	})
}

func (r *PostRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *PostRepository) List(ctx context.Context, filter repositories.PostFilter) ([]*models.Post, error) {
	var where []string
	var args []any
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("p.status = $%d", len(args)))
	}
	if filter.TagID != 0 {
		args = append(args, filter.TagID)
		where = append(where, fmt.Sprintf("EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = p.id AND pt.tag_id = $%d)", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("(p.title ILIKE $%d OR p.body ILIKE $%d)", len(args), len(args)))
	}
	sql := `SELECT ` + postColumns + ` FROM posts p`
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY p.publish DESC, p.id DESC"
	return r.queryPosts(ctx, sql, args...)
}

func (r *PostRepository) GetPublishedByID(ctx context.Context, id int) (*models.Post, error) {
	return r.one(ctx, `SELECT `+postColumns+` FROM posts p WHERE p.id = $1 AND p.status = 'PB'`, id)
}

func (r *PostRepository) GetPublishedBySlug(ctx context.Context, slug string, from, to time.Time) (*models.Post, error) {
	return r.one(ctx, `
		SELECT `+postColumns+` FROM posts p
		WHERE p.slug = $1 AND p.status = 'PB' AND p.publish >= $2 AND p.publish < $3
		ORDER BY p.publish DESC, p.id DESC
		LIMIT 1`, slug, from, to)
}

func (r *PostRepository) SlugExists(ctx context.Context, slug string, from, to time.Time, excludeID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM posts WHERE slug = $1 AND publish >= $2 AND publish < $3 AND id <> $4
		)`, slug, from, to, excludeID).Scan(&exists)
	return exists, err
}

func (r *PostRepository) Published(tagID int) pagination.Source[*models.Post] {
	return &publishedSource{repo: r, tagID: tagID}
}

type publishedSource struct {
	repo  *PostRepository
	tagID int
}

const publishedWhere = `
	FROM posts p
	WHERE p.status = 'PB'
	  AND ($1::int = 0 OR EXISTS (SELECT 1 FROM post_tags pt WHERE pt.post_id = p.id AND pt.tag_id = $1))`

func (s *publishedSource) Count(ctx context.Context) (int, error) {
	var n int
	err := s.repo.pool.QueryRow(ctx, `SELECT count(*)`+publishedWhere, s.tagID).Scan(&n)
	return n, err
}

func (s *publishedSource) Fetch(ctx context.Context, offset, limit int) ([]*models.Post, error) {
	return s.repo.queryPosts(ctx,
		`SELECT `+postColumns+publishedWhere+` ORDER BY p.publish DESC, p.id DESC LIMIT $2 OFFSET $3`,
		s.tagID, limit, offset)
}

func (r *PostRepository) Similar(ctx context.Context, post *models.Post, limit int) ([]*models.Post, error) {
	if len(post.TagIDs) == 0 || limit <= 0 {
		return nil, nil
	}
	ids := make([]int32, len(post.TagIDs))
	for i, id := range post.TagIDs {
		ids[i] = int32(id)
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+postColumns+`, count(pt.tag_id) AS same_tags
		FROM posts p JOIN post_tags pt ON pt.post_id = p.id
		WHERE p.status = 'PB' AND pt.tag_id = ANY($1) AND p.id <> $2
		GROUP BY p.id
		ORDER BY same_tags DESC, p.publish DESC, p.id DESC
		LIMIT $3`, ids, post.ID, limit)
	if err != nil {
		return nil, err
	}
	posts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Post, error) {
		var shared int
		return scanPost(row, &shared)
	})
	if err != nil {
		return nil, err
	}
	return posts, r.loadTags(ctx, posts)
}

// searchQuery scores every published post against the query. $1 is the
// text search configuration, $2 the raw query, $3 and $4 the cut-offs.
const searchQuery = `
	WITH q AS (
		SELECT websearch_to_tsquery($1::text::regconfig, $2::text) AS query
	), scored AS (
		SELECT ` + postColumns + `,
			ts_rank(
				setweight(to_tsvector($1::text::regconfig, p.title), 'A') ||
				setweight(to_tsvector($1::text::regconfig, p.body), 'B'),
				q.query
			)::float8 AS rank,
			similarity(p.title, $2::text)::float8 AS similarity
		FROM posts p, q
		WHERE p.status = 'PB'
	)
	SELECT %s FROM scored
	WHERE rank >= $3 AND similarity > $4`

const scoredColumns = "id, title, slug, author, body, publish, created, updated, status, language, rank, similarity"

func (r *PostRepository) Search(ctx context.Context, query string, opts repositories.SearchOptions) (pagination.Source[*models.SearchResult], error) {
	cfg, err := search.LookupConfig(opts.Config)
	if err != nil {
		return nil, err
	}
	return &searchSource{repo: r, config: cfg.Name(), query: query, thresholds: opts.Thresholds}, nil
}

type searchSource struct {
	repo       *PostRepository
	config     string
	query      string
	thresholds search.Thresholds
}

func (s *searchSource) args(extra ...any) []any {
	return append([]any{s.config, s.query, s.thresholds.MinRank, s.thresholds.MinSimilarity}, extra...)
}

func (s *searchSource) Count(ctx context.Context) (int, error) {
	var n int
	err := s.repo.pool.QueryRow(ctx, fmt.Sprintf(searchQuery, "count(*)"), s.args()...).Scan(&n)
	return n, err
}

func (s *searchSource) Fetch(ctx context.Context, offset, limit int) ([]*models.SearchResult, error) {
	sql := fmt.Sprintf(searchQuery, scoredColumns) +
		` ORDER BY rank DESC, similarity DESC, publish DESC, id DESC LIMIT $5 OFFSET $6`
	rows, err := s.repo.pool.Query(ctx, sql, s.args(limit, offset)...)
	if err != nil {
		return nil, err
	}
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.SearchResult, error) {
		var res models.SearchResult
		post, err := scanPost(row, &res.Rank, &res.Similarity)
		if err != nil {
			return nil, err
		}
		res.Post = post
		return &res, nil
	})
	if err != nil {
		return nil, err
	}
	posts := make([]*models.Post, len(results))
	for i, res := range results {
		posts[i] = res.Post
	}
	return results, s.repo.loadTags(ctx, posts)
}

var _ repositories.PostRepository = (*PostRepository)(nil)
