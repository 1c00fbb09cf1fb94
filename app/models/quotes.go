package models

// InputType selects which generation branch a request takes.
type InputType string

const (
	InputTypeBookTitle   InputType = "book_title"
	InputTypeTextSnippet InputType = "text_snippet"
)

// QuoteRecord is one extracted quote with its literary theme and analysis.
// Quote is always non-empty; Theme and Analysis may be empty and are given
// fallbacks at render time.
type QuoteRecord struct {
	Quote    string `json:"quote" bson:"quote"`
	Theme    string `json:"theme" bson:"theme"`
	Analysis string `json:"analysis" bson:"analysis"`
}

// GenerateRequest is the wire shape of a generation call.
type GenerateRequest struct {
	InputType   InputType `json:"input_type"`
	BookTitle   string    `json:"book_title"`
	Author      string    `json:"author"`
	TextSnippet string    `json:"text_snippet"`
}
