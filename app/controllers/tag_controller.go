package controllers

import (
	"net/http"

	"blogsite/app/models"
	"blogsite/app/services"
)

// TagController serves the admin tag endpoints.
type TagController struct {
	base
	tagService *services.TagService
}

func NewTagController(tags *services.TagService) *TagController {
	return &TagController{tagService: tags}
}

// Index lists every tag.
func (tc *TagController) Index(w http.ResponseWriter, r *http.Request) {
	tags, err := tc.tagService.ListTags(r.Context())
	if err != nil {
		tc.handleError(w, r, err)
		return
	}
	if tags == nil {
		tags = []*models.Tag{}
	}
	tc.sendJSON(w, http.StatusOK, tags)
}

// Create handles creating a new tag
func (tc *TagController) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		tc.sendError(w, r, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var in models.TagInput
	if err := decodeJSON(r, &in); err != nil {
		tc.sendError(w, r, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	tag, err := tc.tagService.CreateTag(r.Context(), in)
	if err != nil {
		tc.handleError(w, r, err)
		return
	}
	tc.sendJSON(w, http.StatusCreated, tag)
}
