package controllers

import (
	"html/template"
	"net/http"

	"blogsite/app/models"
	"blogsite/app/repositories"
	"blogsite/app/services"
	"blogsite/app/views"

	"github.com/gorilla/mux"
)

// PostController handles HTTP requests for blog posts
type PostController struct {
	base
	postService  *services.PostService
	shareService *services.ShareService
}

// NewPostController creates a new PostController. baseURL may be empty, in
// which case shared links use the request's host.
func NewPostController(posts *services.PostService, share *services.ShareService, templates map[string]*template.Template, baseURL string) *PostController {
	return &PostController{
		base:         base{templates: templates, baseURL: baseURL},
		postService:  posts,
		shareService: share,
	}
}

// List handles the published post listing, optionally filtered by tag.
func (pc *PostController) List(w http.ResponseWriter, r *http.Request) {
	list, err := pc.postService.ListPosts(r.Context(), mux.Vars(r)["tag"], r.URL.Query().Get("page"))
	if err != nil {
		pc.handleError(w, r, err)
		return
	}
	pc.respond(w, r, views.PostList, list)
}

type detailPage struct {
	*services.PostDetail
	NewComment *services.CommentSubmission `json:"-"`
}

// Detail handles a single published post addressed by date and slug.
func (pc *PostController) Detail(w http.ResponseWriter, r *http.Request) {
	year, okY := intVar(r, "year")
	month, okM := intVar(r, "month")
	day, okD := intVar(r, "day")
	if !okY || !okM || !okD {
		pc.sendError(w, r, "Not found", http.StatusNotFound)
		return
	}

	detail, err := pc.postService.GetPostDetail(r.Context(), year, month, day, mux.Vars(r)["slug"], r.URL.Query().Get("page"))
	if err != nil {
		pc.handleError(w, r, err)
		return
	}
	pc.respond(w, r, views.PostDetail, detailPage{
		PostDetail: detail,
		NewComment: &services.CommentSubmission{Post: detail.Post},
	})
}

// Search handles the full text search page.
func (pc *PostController) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	_, present := q["query"]
	outcome, err := pc.postService.Search(r.Context(), services.SearchRequest{
		Query:   q.Get("query"),
		Present: present,
		Page:    q.Get("page"),
	})
	if err != nil {
		pc.handleError(w, r, err)
		return
	}
	pc.respond(w, r, views.PostSearch, outcome)
}

// Share shows the share-by-email form and sends it.
func (pc *PostController) Share(w http.ResponseWriter, r *http.Request) {
	id, ok := intVar(r, "id")
	if !ok {
		pc.sendError(w, r, "Not found", http.StatusNotFound)
		return
	}

	var form *models.EmailPostForm
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		f, err := readShareForm(r)
		if err != nil {
			pc.sendError(w, r, "Invalid form: "+err.Error(), http.StatusBadRequest)
			return
		}
		form = &f
	default:
		pc.sendError(w, r, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := pc.shareService.SharePost(r.Context(), id, form, pc.absoluteBase(r))
	if err != nil {
		pc.handleError(w, r, err)
		return
	}
	pc.respond(w, r, views.PostShare, result)
}

func readShareForm(r *http.Request) (models.EmailPostForm, error) {
	var form models.EmailPostForm
	if isJSONBody(r) {
		err := decodeJSON(r, &form)
		return form, err
	}
	if err := r.ParseForm(); err != nil {
		return form, err
	}
	return models.EmailPostFormFromValues(r.PostForm), nil
}

// Index lists posts of every status for the admin API.
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	posts, err := pc.postService.ListAllPosts(r.Context(), repositories.PostFilter{
		Status: models.Status(q.Get("status")),
		Query:  q.Get("q"),
	})
	if err != nil {
		pc.handleError(w, r, err)
		return
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	pc.sendJSON(w, http.StatusOK, posts)
}

// Show returns any post by ID for the admin API.
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := intVar(r, "id")
	if !ok {
		pc.sendError(w, r, "Invalid post ID", http.StatusBadRequest)
		return
	}
	post, err := pc.postService.GetPost(r.Context(), id)
	if err != nil {
		pc.handleError(w, r, err)
		return
	}
	pc.sendJSON(w, http.StatusOK, post)
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		pc.sendError(w, r, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var in models.PostInput
	if err := decodeJSON(r, &in); err != nil {
		pc.sendError(w, r, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	post, err := pc.postService.CreatePost(r.Context(), in)
	if err != nil {
		pc.handleError(w, r, err)
		return
	}
	pc.sendJSON(w, http.StatusCreated, post)
}

// Update handles editing an existing post
func (pc *PostController) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		pc.sendError(w, r, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := intVar(r, "id")
	if !ok {
		pc.sendError(w, r, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var in models.PostInput
	if err := decodeJSON(r, &in); err != nil {
		pc.sendError(w, r, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	post, err := pc.postService.UpdatePost(r.Context(), id, in)
	if err != nil {
		pc.handleError(w, r, err)
		return
	}
	pc.sendJSON(w, http.StatusOK, post)
}

// Delete handles deleting a post
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		pc.sendError(w, r, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := intVar(r, "id")
	if !ok {
		pc.sendError(w, r, "Invalid post ID", http.StatusBadRequest)
		return
	}

	if err := pc.postService.DeletePost(r.Context(), id); err != nil {
		pc.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
