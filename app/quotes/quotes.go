// package quotes turns a book title or a text excerpt into a list of
// notable quotes with thematic analysis via one chat completion call.
package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"quotescout/m/v2/app/models"
	"quotescout/m/v2/app/util"
)

const (
	// longer snippets are cut before prompting to bound cost and latency
	MaxSnippetPromptChars = 4000

	completionMaxTokens   = 3000
	completionTemperature = 0.7
)

var (
	ErrEmptyTitle        = errors.New("book_title is required for title-based input")
	ErrEmptySnippet      = errors.New("text_snippet is required for snippet-based input")
	ErrUnknownInputType  = errors.New("unknown input_type")
	ErrMalformedResponse = errors.New("model returned malformed quote data")
)

// Input is the tagged prompt variant: either a title or a snippet.
type Input interface {
	prompt() string
}

type TitleInput struct {
	Title  string
	Author string
}

type SnippetInput struct {
	Text string
}

func (i TitleInput) prompt() string {
	author := i.Author
	if author == "" {
		author = "unknown author"
	}
	return fmt.Sprintf(`You are a literary expert. For the book "%s" by %s, identify 8-10 of the most important and memorable quotes.

For each quote provide:
1. The exact quote text
2. The literary theme (e.g. symbolism, character arc, foreshadowing, irony, motif)
3. A brief 2-3 sentence analysis of its significance

Return ONLY a valid JSON array - no markdown, no extra text:
[{"quote":"...","theme":"...","analysis":"..."}]`, i.Title, author)
}

func (i SnippetInput) prompt() string {
	return fmt.Sprintf(`You are a literary expert. Analyse the following text and identify 6-8 quotes that show literary significance.

TEXT:
%s

For each quote provide:
1. The exact verbatim quote
2. The literary theme (e.g. symbolism, character arc, foreshadowing, irony, motif)
3. A brief 2-3 sentence analysis of its significance

Return ONLY a valid JSON array - no markdown, no extra text:
[{"quote":"...","theme":"...","analysis":"..."}]`, util.TruncateRunes(i.Text, MaxSnippetPromptChars))
}

// ParseInput validates a wire request into its prompt variant.
func ParseInput(req models.GenerateRequest) (Input, error) {
	switch req.InputType {
	case models.InputTypeBookTitle:
		if req.BookTitle == "" {
			return nil, ErrEmptyTitle
		}
		return TitleInput{Title: req.BookTitle, Author: req.Author}, nil
	case models.InputTypeTextSnippet:
		if req.TextSnippet == "" {
			return nil, ErrEmptySnippet
		}
		return SnippetInput{Text: req.TextSnippet}, nil
	default:
		return nil, ErrUnknownInputType
	}
}

// ChatCompleter is the single model operation the extractor needs.
type ChatCompleter interface {
	ChatComplete(ctx context.Context, completion models.ChatCompletion) (string, error)
}

// Extractor calls the model once per request. No retries, no caching;
// identical requests may yield different quotes.
type Extractor struct {
	api ChatCompleter
}

func NewExtractor(api ChatCompleter) *Extractor {
	return &Extractor{api: api}
}

// Extract produces an ordered list of quote records for the given input.
func (e *Extractor) Extract(ctx context.Context, input Input) ([]models.QuoteRecord, error) {
	content, err := e.api.ChatComplete(ctx, models.ChatCompletion{
		Model:       string(models.ChatGpt4o),
		MaxTokens:   completionMaxTokens,
		Temperature: completionTemperature,
		Messages: []models.Message{
			{
				Role:    "user",
				Content: input.prompt(),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("Extract: model call failed: %w", err)
	}
	return parseQuoteRecords(content)
}

// parseQuoteRecords parses the model output as a JSON array of quote
// records. On failure it strips a single code fence and retries once;
// a second failure is final.
func parseQuoteRecords(content string) ([]models.QuoteRecord, error) {
	records, err := decodeRecords(content)
	if err != nil {
		records, err = decodeRecords(stripCodeFence(content))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty quote list", ErrMalformedResponse)
	}
	for i, record := range records {
		if record.Quote == "" {
			return nil, fmt.Errorf("%w: record %d has no quote", ErrMalformedResponse, i)
		}
	}
	return records, nil
}

func decodeRecords(content string) ([]models.QuoteRecord, error) {
	var records []models.QuoteRecord
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &records); err != nil {
		return nil, err
	}
	return records, nil
}

// stripCodeFence removes one leading/trailing ``` pair, tolerating an
// optional language tag after the opening fence.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimPrefix(content, "json")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
