package pdf

import (
	"testing"
	"time"

	"quotescout/m/v2/app/models"

	"github.com/stretchr/testify/assert"
)

func fixedClockRenderer() *Renderer {
	renderer := NewRenderer()
	renderer.now = func() time.Time {
		return time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	}
	return renderer
}

var sampleRecords = []models.QuoteRecord{
	{
		Quote:    "It was a bright cold day in April, and the clocks were striking thirteen.",
		Theme:    "setting",
		Analysis: "The opening line signals a world slightly, ominously off.",
	},
	{
		Quote:    "Big Brother is watching you.",
		Theme:    "surveillance",
		Analysis: "The regime's omnipresence distilled into a slogan.",
	},
}

func TestRender(t *testing.T) {
	renderer := fixedClockRenderer()

	document, err := renderer.Render(sampleRecords, "1984", "George Orwell")
	assert.NoError(t, err)
	assert.NotEmpty(t, document)
	assert.Equal(t, "%PDF", string(document[:4]))
}

func TestRenderDeterministic(t *testing.T) {
	renderer := fixedClockRenderer()

	first, err := renderer.Render(sampleRecords, "1984", "George Orwell")
	assert.NoError(t, err)
	second, err := renderer.Render(sampleRecords, "1984", "George Orwell")
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderMissingThemeAndAnalysis(t *testing.T) {
	renderer := fixedClockRenderer()

	document, err := renderer.Render([]models.QuoteRecord{
		{Quote: "So it goes."},
	}, "Slaughterhouse-Five", "")
	assert.NoError(t, err)
	assert.NotEmpty(t, document)
}

func TestRenderNoRecords(t *testing.T) {
	renderer := fixedClockRenderer()

	document, err := renderer.Render(nil, "", "")
	assert.NoError(t, err)
	assert.NotEmpty(t, document)
}
