package models

// Tag labels posts. Slugs are unique.
type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name" validate:"required,max=100"`
	Slug string `json:"slug" validate:"required,max=100"`
}

// Validate checks the tag's fields.
func (t *Tag) Validate() error {
	if errs := validateStruct(t); errs != nil {
		return errs
	}
	return nil
}

// Path is the listing URL for the tag.
func (t *Tag) Path() string {
	return "/blog/tag/" + t.Slug + "/"
}
