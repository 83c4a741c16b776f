package document

import (
	"fmt"
	"strings"
)

// Document is a news article in the corpus (immutable value object).
// The id equals the document's row in every corpus matrix.
type Document struct {
	id       int
	title    string
	body     string
	category string
	date     string
	source   string
}

// New validates and creates a Document.
func New(id int, title, body, category, date, source string) (Document, error) {
	if id < 0 {
		return Document{}, fmt.Errorf("document id must be non-negative, got %d", id)
	}
	return Document{
		id:       id,
		title:    title,
		body:     body,
		category: category,
		date:     date,
		source:   source,
	}, nil
}

// ID returns the dense load-order identifier.
func (d *Document) ID() int { return d.id }

// Title returns the headline.
func (d *Document) Title() string { return d.title }

// Body returns the article body.
func (d *Document) Body() string { return d.body }

// Category returns the section the article was filed under.
func (d *Document) Category() string { return d.category }

// Date returns the publication date as found in the source, unparsed.
func (d *Document) Date() string { return d.date }

// Source returns the file or record the document was loaded from.
func (d *Document) Source() string { return d.source }

// Text returns the content used for vectorization: title and body joined.
func (d *Document) Text() string {
	if d.title == "" {
		return d.body
	}
	return d.title + ". " + d.body
}

// Preview returns the first n characters of the body followed by an ellipsis.
func (d *Document) Preview(n int) string {
	r := []rune(d.body)
	if len(r) > n {
		r = r[:n]
	}
	return string(r) + "..."
}

// Matches reports whether substr occurs in the title or body, ignoring case.
// An empty substr matches every document.
func (d *Document) Matches(substr string) bool {
	if substr == "" {
		return true
	}
	needle := strings.ToLower(substr)
	return strings.Contains(strings.ToLower(d.title), needle) ||
		strings.Contains(strings.ToLower(d.body), needle)
}
