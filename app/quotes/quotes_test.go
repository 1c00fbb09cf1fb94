package quotes

import (
	"context"
	"strings"
	"testing"

	"quotescout/m/v2/app/models"

	"github.com/stretchr/testify/assert"
)

type stubCompleter struct {
	response string
	err      error
	prompts  []string
}

func (s *stubCompleter) ChatComplete(ctx context.Context, completion models.ChatCompletion) (string, error) {
	s.prompts = append(s.prompts, completion.Messages[0].Content)
	return s.response, s.err
}

const validResponse = `[{"quote":"It was a bright cold day in April","theme":"setting","analysis":"Opens the novel with unease."}]`

func TestParseInput(t *testing.T) {
	input, err := ParseInput(models.GenerateRequest{
		InputType: models.InputTypeBookTitle,
		BookTitle: "1984",
		Author:    "George Orwell",
	})
	assert.NoError(t, err)
	assert.Equal(t, TitleInput{Title: "1984", Author: "George Orwell"}, input)

	input, err = ParseInput(models.GenerateRequest{
		InputType:   models.InputTypeTextSnippet,
		TextSnippet: "Call me Ishmael.",
	})
	assert.NoError(t, err)
	assert.Equal(t, SnippetInput{Text: "Call me Ishmael."}, input)

	_, err = ParseInput(models.GenerateRequest{InputType: models.InputTypeBookTitle})
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = ParseInput(models.GenerateRequest{InputType: models.InputTypeTextSnippet})
	assert.ErrorIs(t, err, ErrEmptySnippet)

	_, err = ParseInput(models.GenerateRequest{InputType: "haiku"})
	assert.ErrorIs(t, err, ErrUnknownInputType)
}

func TestTitlePrompt(t *testing.T) {
	prompt := TitleInput{Title: "1984", Author: "George Orwell"}.prompt()
	assert.Contains(t, prompt, `"1984" by George Orwell`)
	assert.Contains(t, prompt, "8-10")
	assert.Contains(t, prompt, "ONLY a valid JSON array")

	prompt = TitleInput{Title: "Beowulf"}.prompt()
	assert.Contains(t, prompt, `"Beowulf" by unknown author`)
}

func TestSnippetPromptTruncation(t *testing.T) {
	long := strings.Repeat("a", MaxSnippetPromptChars+1000)
	prompt := SnippetInput{Text: long}.prompt()
	assert.Contains(t, prompt, "6-8")
	assert.NotContains(t, prompt, strings.Repeat("a", MaxSnippetPromptChars+1))
	assert.Contains(t, prompt, strings.Repeat("a", MaxSnippetPromptChars))
}

func TestExtract(t *testing.T) {
	stub := &stubCompleter{response: validResponse}
	extractor := NewExtractor(stub)

	records, err := extractor.Extract(context.Background(), TitleInput{Title: "1984"})
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "It was a bright cold day in April", records[0].Quote)
	assert.Equal(t, "setting", records[0].Theme)
	assert.Len(t, stub.prompts, 1)
}

func TestParseQuoteRecordsFenced(t *testing.T) {
	unfenced, err := parseQuoteRecords(validResponse)
	assert.NoError(t, err)

	fenced, err := parseQuoteRecords("```json\n" + validResponse + "\n```")
	assert.NoError(t, err)
	assert.Equal(t, unfenced, fenced)

	fencedNoTag, err := parseQuoteRecords("```\n" + validResponse + "\n```")
	assert.NoError(t, err)
	assert.Equal(t, unfenced, fencedNoTag)
}

func TestParseQuoteRecordsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "Not JSON",
			content: "Here are some quotes I found:",
		},
		{
			name:    "Wrong shape",
			content: `{"quote":"x"}`,
		},
		{
			name:    "Empty array",
			content: `[]`,
		},
		{
			name:    "Missing quote key",
			content: `[{"theme":"irony","analysis":"none"}]`,
		},
		{
			name:    "Fenced twice",
			content: "``````json\n[]\n``````",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseQuoteRecords(tt.content)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestParseQuoteRecordsMissingThemeTolerated(t *testing.T) {
	records, err := parseQuoteRecords(`[{"quote":"So it goes."}]`)
	assert.NoError(t, err)
	assert.Equal(t, "", records[0].Theme)
	assert.Equal(t, "", records[0].Analysis)
}
