package services

import (
	"context"
	"fmt"
	"time"

	"blogsite/app/metrics"
	"blogsite/app/models"
	"blogsite/app/repositories"

	"github.com/rs/zerolog/log"
)

// CommentService handles business logic for comments
type CommentService struct {
	comments     repositories.CommentRepository
	posts        repositories.PostRepository
	autoActivate bool
}

// NewCommentService creates a new CommentService. New comments start
// inactive unless autoActivate is set.
func NewCommentService(comments repositories.CommentRepository, posts repositories.PostRepository, autoActivate bool) *CommentService {
	return &CommentService{
		comments:     comments,
		posts:        posts,
		autoActivate: autoActivate,
	}
}

// CommentSubmission is the outcome of a comment form post. Comment is nil
// when the form had errors.
type CommentSubmission struct {
	Post    *models.Post       `json:"post"`
	Form    models.CommentForm `json:"form"`
	Comment *models.Comment    `json:"comment,omitempty"`
	Errors  models.FieldErrors `json:"errors,omitempty"`
}

// SubmitComment attaches a reader's comment to a published post.
func (s *CommentService) SubmitComment(ctx context.Context, postID int, form models.CommentForm) (*CommentSubmission, error) {
	post, err := s.posts.GetPublishedByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", postID, err)
	}
	out := &CommentSubmission{Post: post, Form: form}
	if errs := form.Validate(); errs != nil {
		out.Errors = errs
		metrics.CommentsSubmittedTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return out, nil
	}

	comment := &models.Comment{
		PostID: post.ID,
		Name:   form.Name,
		Email:  form.Email,
		Body:   form.Body,
		Active: s.autoActivate,
	}
	comment.BeforeCreate(time.Now())
	if err := s.comments.Create(ctx, comment); err != nil {
		metrics.CommentsSubmittedTotal.WithLabelValues(metrics.ResultError).Inc()
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}
	metrics.CommentsSubmittedTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	log.Ctx(ctx).Info().Int("post", post.ID).Int("comment", comment.ID).Bool("active", comment.Active).Msg("Comment submitted")
	out.Comment = comment
	return out, nil
}

// GetComment retrieves a comment by ID
func (s *CommentService) GetComment(ctx context.Context, id int) (*models.Comment, error) {
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("comment %d: %w", id, err)
	}
	return c, nil
}

// ListComments lists comments for moderation.
func (s *CommentService) ListComments(ctx context.Context, filter repositories.CommentFilter) ([]*models.Comment, error) {
	return s.comments.List(ctx, filter)
}

// SetActive shows or hides a comment on the public site.
func (s *CommentService) SetActive(ctx context.Context, id int, active bool) (*models.Comment, error) {
	c, err := s.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Active = active
	c.Updated = time.Now()
	if err := s.comments.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return c, nil
}

// DeleteComment deletes a comment
func (s *CommentService) DeleteComment(ctx context.Context, id int) error {
	if err := s.comments.Delete(ctx, id); err != nil {
		return fmt.Errorf("comment %d: %w", id, err)
	}
	return nil
}
