package postgres

import (
	"context"
	"fmt"
	"strings"

	"blogsite/app/models"
	"blogsite/app/pagination"
	"blogsite/app/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const commentColumns = "id, post_id, name, email, body, created, updated, active"

// CommentRepository implements repositories.CommentRepository on PostgreSQL.
type CommentRepository struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

func scanComment(row pgx.Row) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.PostID, &c.Name, &c.Email, &c.Body, &c.Created, &c.Updated, &c.Active)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepository) query(ctx context.Context, sql string, args ...any) ([]*models.Comment, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Comment, error) {
		return scanComment(row)
	})
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO comments (post_id, name, email, body, created, updated, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		comment.PostID, comment.Name, comment.Email, comment.Body,
		comment.Created, comment.Updated, comment.Active,
	).Scan(&comment.ID)
	return translate(err)
}

func (r *CommentRepository) GetByID(ctx context.Context, id int) (*models.Comment, error) {
	c, err := scanComment(r.pool.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

func (r *CommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE comments SET name = $2, email = $3, body = $4, updated = $5, active = $6
		WHERE id = $1`,
		comment.ID, comment.Name, comment.Email, comment.Body, comment.Updated, comment.Active)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID int) ([]*models.Comment, error) {
	return r.List(ctx, repositories.CommentFilter{PostID: postID})
}

func (r *CommentRepository) List(ctx context.Context, filter repositories.CommentFilter) ([]*models.Comment, error) {
	var where []string
	var args []any
	if filter.PostID != 0 {
		args = append(args, filter.PostID)
		where = append(where, fmt.Sprintf("post_id = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		where = append(where, fmt.Sprintf("active = $%d", len(args)))
	}
	sql := `SELECT ` + commentColumns + ` FROM comments`
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	return r.query(ctx, sql+" ORDER BY created, id", args...)
}

func (r *CommentRepository) Active(postID int) pagination.Source[*models.Comment] {
	return &activeSource{repo: r, postID: postID}
}

type activeSource struct {
	repo   *CommentRepository
	postID int
}

func (s *activeSource) Count(ctx context.Context) (int, error) {
	var n int
	err := s.repo.pool.QueryRow(ctx,
		`SELECT count(*) FROM comments WHERE post_id = $1 AND active`, s.postID).Scan(&n)
	return n, err
}

func (s *activeSource) Fetch(ctx context.Context, offset, limit int) ([]*models.Comment, error) {
	return s.repo.query(ctx, `
		SELECT `+commentColumns+` FROM comments
		WHERE post_id = $1 AND active
		ORDER BY created, id
		LIMIT $2 OFFSET $3`, s.postID, limit, offset)
}

var _ repositories.CommentRepository = (*CommentRepository)(nil)
