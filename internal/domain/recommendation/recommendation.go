package recommendation

import "math"

// PreviewChars is the default number of body characters shown in a preview.
const PreviewChars = 150

// Result is a single recommended article.
type Result struct {
	id         int
	title      string
	category   string
	similarity float64
	preview    string
}

// New creates a result; similarity is rounded to 4 decimals.
func New(id int, title, category string, similarity float64, preview string) Result {
	return Result{
		id:         id,
		title:      title,
		category:   category,
		similarity: Round(similarity),
		preview:    preview,
	}
}

// ID returns the recommended document id.
func (r *Result) ID() int { return r.id }

// Title returns the recommended document title.
func (r *Result) Title() string { return r.title }

// Category returns the recommended document category.
func (r *Result) Category() string { return r.category }

// Similarity returns the cosine similarity rounded to 4 decimals.
func (r *Result) Similarity() float64 { return r.similarity }

// Preview returns the leading part of the body.
func (r *Result) Preview() string { return r.preview }

// Round rounds v to 4 decimals.
func Round(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// Comparison holds the same request answered by both strategies.
// Semantic is empty when that capability is unavailable.
type Comparison struct {
	Lexical  []Result
	Semantic []Result
}
