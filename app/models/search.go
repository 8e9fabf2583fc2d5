package models

// SearchResult is a post annotated with its search scores.
type SearchResult struct {
	Post       *Post   `json:"post"`
	Rank       float64 `json:"rank"`
	Similarity float64 `json:"similarity"`
}
