package models

import "time"

// Comment is a reader's reaction to a post. Inactive comments are hidden
// until a moderator activates them.
type Comment struct {
	ID      int       `json:"id"`
	PostID  int       `json:"post_id" validate:"required"`
	Name    string    `json:"name" validate:"required,max=80"`
	Email   string    `json:"email" validate:"required,email"`
	Body    string    `json:"body" validate:"required"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
	Active  bool      `json:"active"`
}

// Validate checks the comment's fields.
func (c *Comment) Validate() error {
	if errs := validateStruct(c); errs != nil {
		return errs
	}
	return nil
}

// BeforeCreate sets the timestamps of a new comment.
func (c *Comment) BeforeCreate(now time.Time) {
	if c.Created.IsZero() {
		c.Created = now
	}
	c.Updated = now
}
