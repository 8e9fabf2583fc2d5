package models

import (
	"net/url"
	"strings"
)

// CommentForm is the public comment submission.
type CommentForm struct {
	Name  string `form:"name" json:"name" validate:"required,max=80"`
	Email string `form:"email" json:"email" validate:"required,email"`
	Body  string `form:"body" json:"body" validate:"required"`
}

// CommentFormFromValues reads the form fields from submitted values.
func CommentFormFromValues(v url.Values) CommentForm {
	return CommentForm{
		Name:  strings.TrimSpace(v.Get("name")),
		Email: strings.TrimSpace(v.Get("email")),
		Body:  strings.TrimSpace(v.Get("body")),
	}
}

// Validate returns nil when the form is valid.
func (f CommentForm) Validate() FieldErrors {
	return validateStruct(f)
}

// EmailPostForm is the share-by-email form.
type EmailPostForm struct {
	Name     string `form:"name" json:"name" validate:"required,max=25"`
	Email    string `form:"email" json:"email" validate:"required,email"`
	To       string `form:"to" json:"to" validate:"required,email"`
	Comments string `form:"comments" json:"comments"`
}

// EmailPostFormFromValues reads the form fields from submitted values.
func EmailPostFormFromValues(v url.Values) EmailPostForm {
	return EmailPostForm{
		Name:     strings.TrimSpace(v.Get("name")),
		Email:    strings.TrimSpace(v.Get("email")),
		To:       strings.TrimSpace(v.Get("to")),
		Comments: strings.TrimSpace(v.Get("comments")),
	}
}

// Validate returns nil when the form is valid.
func (f EmailPostForm) Validate() FieldErrors {
	return validateStruct(f)
}

// SearchForm carries the search box input.
type SearchForm struct {
	Query string `form:"query" json:"query" validate:"required"`
}

// Validate returns nil when the form is valid.
func (f SearchForm) Validate() FieldErrors {
	return validateStruct(f)
}

// PostInput is the admin payload for creating or editing a post.
type PostInput struct {
	Title   string   `json:"title" validate:"required,max=250"`
	Slug    string   `json:"slug" validate:"max=250"`
	Author  string   `json:"author" validate:"required,max=150"`
	Body    string   `json:"body" validate:"required"`
	Publish string   `json:"publish"`
	Status  Status   `json:"status" validate:"omitempty,oneof=DF PB"`
	Tags    []string `json:"tags"`
}

// Validate returns nil when the payload is valid.
func (in PostInput) Validate() FieldErrors {
	return validateStruct(in)
}

// TagInput is the admin payload for creating a tag.
type TagInput struct {
	Name string `json:"name" validate:"required,max=100"`
	Slug string `json:"slug" validate:"max=100"`
}

// Validate returns nil when the payload is valid.
func (in TagInput) Validate() FieldErrors {
	return validateStruct(in)
}
