package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"blogsite/app/mailer"
	"blogsite/app/metrics"
	"blogsite/app/models"
	"blogsite/app/repositories"
)

// ShareService emails links to posts on behalf of readers.
type ShareService struct {
	posts    repositories.PostRepository
	sender   mailer.Sender
	from     string
	location *time.Location
}

func NewShareService(posts repositories.PostRepository, sender mailer.Sender, from string, loc *time.Location) *ShareService {
	if loc == nil {
		loc = time.UTC
	}
	return &ShareService{posts: posts, sender: sender, from: from, location: loc}
}

// ShareResult drives the share page. Sent is true once the mail went out.
type ShareResult struct {
	Post   *models.Post         `json:"post"`
	Form   models.EmailPostForm `json:"form"`
	Errors models.FieldErrors   `json:"errors,omitempty"`
	Sent   bool                 `json:"sent"`
}

// SharePost looks up a published post and, when form is not nil, validates it
// and mails the recommendation. baseURL is the scheme and host the post link
// is made absolute with.
func (s *ShareService) SharePost(ctx context.Context, postID int, form *models.EmailPostForm, baseURL string) (*ShareResult, error) {
	post, err := s.posts.GetPublishedByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", postID, err)
	}
	out := &ShareResult{Post: post}
	if form == nil {
		return out, nil
	}
	out.Form = *form
	if errs := form.Validate(); errs != nil {
		out.Errors = errs
		metrics.SharesTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return out, nil
	}

	postURL := strings.TrimRight(baseURL, "/") + post.Path(s.location)
	if err := s.sender.Send(ctx, ShareMessage(post, *form, postURL, s.from)); err != nil {
		metrics.SharesTotal.WithLabelValues(metrics.ResultError).Inc()
		return nil, fmt.Errorf("failed to share post %d: %w", post.ID, err)
	}
	metrics.SharesTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	out.Sent = true
	return out, nil
}

// ShareMessage composes the recommendation mail.
func ShareMessage(post *models.Post, form models.EmailPostForm, postURL, from string) mailer.Message {
	return mailer.Message{
		From:    from,
		To:      []string{form.To},
		Subject: fmt.Sprintf("%s (%s) recommends you read %s", form.Name, form.Email, post.Title),
		Body:    fmt.Sprintf("Read %s at %s\n\n%s's comments: %s", post.Title, postURL, form.Name, form.Comments),
	}
}
