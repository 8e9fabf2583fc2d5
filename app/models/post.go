package models

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

// Status is the publication state of a post.
type Status string

const (
	StatusDraft     Status = "DF"
	StatusPublished Status = "PB"
)

// Label returns the display name of the status.
func (s Status) Label() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusPublished:
		return "Published"
	default:
		return string(s)
	}
}

// Post is a blog entry. Only published posts are visible on the public site.
type Post struct {
	ID       int       `json:"id"`
	Title    string    `json:"title" validate:"required,max=250"`
	Slug     string    `json:"slug" validate:"required,max=250"`
	Author   string    `json:"author" validate:"required,max=150"`
	Body     string    `json:"body" validate:"required"`
	Publish  time.Time `json:"publish"`
	Created  time.Time `json:"created"`
	Updated  time.Time `json:"updated"`
	Status   Status    `json:"status" validate:"required,oneof=DF PB"`
	Language string    `json:"language,omitempty"`
	TagIDs   []int     `json:"tag_ids"`
	Tags     []*Tag    `json:"tags,omitempty"`
}

// Validate checks the post's stored fields.
func (p *Post) Validate() error {
	if errs := validateStruct(p); errs != nil {
		return errs
	}
	return nil
}

// BeforeCreate fills the timestamps and defaults of a new post.
func (p *Post) BeforeCreate(now time.Time) {
	if p.Created.IsZero() {
		p.Created = now
	}
	if p.Publish.IsZero() {
		p.Publish = now
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	p.Updated = now
}

// IsPublished reports whether the post is publicly visible.
func (p *Post) IsPublished() bool {
	return p.Status == StatusPublished
}

// Path is the canonical URL path of the post, built from its publish date in loc.
func (p *Post) Path(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	d := p.Publish.In(loc)
	return fmt.Sprintf("/blog/%d/%d/%d/%s/", d.Year(), int(d.Month()), d.Day(), p.Slug)
}

// HasTag reports whether the post carries tagID.
func (p *Post) HasTag(tagID int) bool {
	return lo.Contains(p.TagIDs, tagID)
}

// SharedTags counts the tags p has in common with tagIDs.
func (p *Post) SharedTags(tagIDs []int) int {
	return len(lo.Intersect(lo.Uniq(p.TagIDs), lo.Uniq(tagIDs)))
}

// SetTags replaces the post's tags and keeps TagIDs in sync.
func (p *Post) SetTags(tags []*Tag) {
	p.Tags = tags
	p.TagIDs = lo.Map(tags, func(t *Tag, _ int) int { return t.ID })
}

// ValidDate reports whether year, month and day name an existing calendar day.
func ValidDate(year, month, day int) bool {
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return d.Year() == year && int(d.Month()) == month && d.Day() == day
}

// DayRange returns the half-open interval covering the given calendar day in loc.
func DayRange(year, month, day int, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
