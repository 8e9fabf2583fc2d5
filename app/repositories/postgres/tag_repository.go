package postgres

import (
	"context"
	"strings"

	"blogsite/app/models"
	"blogsite/app/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TagRepository implements repositories.TagRepository on PostgreSQL.
type TagRepository struct {
	pool *pgxpool.Pool
}

func NewTagRepository(pool *pgxpool.Pool) *TagRepository {
	return &TagRepository{pool: pool}
}

func (r *TagRepository) Create(ctx context.Context, tag *models.Tag) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tags (name, slug) VALUES ($1, $2) RETURNING id`,
		tag.Name, tag.Slug,
	).Scan(&tag.ID)
	return translate(err)
}

func (r *TagRepository) GetByID(ctx context.Context, id int) (*models.Tag, error) {
	return r.one(ctx, `SELECT id, name, slug FROM tags WHERE id = $1`, id)
}

func (r *TagRepository) GetBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	return r.one(ctx, `SELECT id, name, slug FROM tags WHERE lower(slug) = $1`, strings.ToLower(slug))
}

func (r *TagRepository) one(ctx context.Context, sql string, args ...any) (*models.Tag, error) {
	var t models.Tag
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.Name, &t.Slug); err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *TagRepository) List(ctx context.Context) ([]*models.Tag, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, slug FROM tags ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Tag, error) {
		var t models.Tag
		err := row.Scan(&t.ID, &t.Name, &t.Slug)
		return &t, err
	})
}

var _ repositories.TagRepository = (*TagRepository)(nil)
