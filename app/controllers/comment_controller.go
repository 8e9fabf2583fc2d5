package controllers

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"blogsite/app/models"
	"blogsite/app/repositories"
	"blogsite/app/services"
	"blogsite/app/views"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	base
	commentService *services.CommentService
	location       *time.Location
}

// NewCommentController creates a new CommentController. loc is the time
// zone post URLs are built in.
func NewCommentController(comments *services.CommentService, templates map[string]*template.Template, loc *time.Location) *CommentController {
	if loc == nil {
		loc = time.UTC
	}
	return &CommentController{
		base:           base{templates: templates},
		commentService: comments,
		location:       loc,
	}
}

// Create accepts a reader's comment on a published post. A valid comment
// redirects back to the post, keeping the comment page the reader was on.
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		cc.sendError(w, r, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	postID, ok := intVar(r, "id")
	if !ok {
		cc.sendError(w, r, "Not found", http.StatusNotFound)
		return
	}

	form, err := readCommentForm(r)
	if err != nil {
		cc.sendError(w, r, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	submission, err := cc.commentService.SubmitComment(r.Context(), postID, form)
	if err != nil {
		cc.handleError(w, r, err)
		return
	}

	if submission.Errors != nil {
		cc.respond(w, r, views.PostComment, submission)
		return
	}

	target := redirectTarget(submission.Post.Path(cc.location), r.URL.Query())
	if wantsJSON(r) {
		w.Header().Set("Location", target)
		cc.sendJSON(w, http.StatusCreated, submission)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// redirectTarget appends the raw page parameter of the request, or 1, to path.
func redirectTarget(path string, query url.Values) string {
	page := "1"
	if v, ok := query["page"]; ok && len(v) > 0 {
		page = v[0]
	}
	return path + "?" + url.Values{"page": {page}}.Encode()
}

func readCommentForm(r *http.Request) (models.CommentForm, error) {
	var form models.CommentForm
	if isJSONBody(r) {
		err := decodeJSON(r, &form)
		return form, err
	}
	if err := r.ParseForm(); err != nil {
		return form, err
	}
	return models.CommentFormFromValues(r.PostForm), nil
}

// Index lists comments for moderation, filtered by ?post= and ?active=.
func (cc *CommentController) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter repositories.CommentFilter
	if v := q.Get("post"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			cc.sendError(w, r, "Invalid post ID", http.StatusBadRequest)
			return
		}
		filter.PostID = id
	}
	if v := q.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			cc.sendError(w, r, "Invalid active flag", http.StatusBadRequest)
			return
		}
		filter.Active = &active
	}

	comments, err := cc.commentService.ListComments(r.Context(), filter)
	if err != nil {
		cc.handleError(w, r, err)
		return
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	cc.sendJSON(w, http.StatusOK, comments)
}

// Activate publishes a comment. ?active=false hides it again.
func (cc *CommentController) Activate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		cc.sendError(w, r, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := intVar(r, "id")
	if !ok {
		cc.sendError(w, r, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	active := true
	if v := r.URL.Query().Get("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			cc.sendError(w, r, "Invalid active flag", http.StatusBadRequest)
			return
		}
		active = b
	}

	comment, err := cc.commentService.SetActive(r.Context(), id, active)
	if err != nil {
		cc.handleError(w, r, err)
		return
	}
	cc.sendJSON(w, http.StatusOK, comment)
}

// Delete handles deleting a comment
func (cc *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		cc.sendError(w, r, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := intVar(r, "id")
	if !ok {
		cc.sendError(w, r, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	if err := cc.commentService.DeleteComment(r.Context(), id); err != nil {
		cc.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
