// package to connect to OpenAI API
package openai

import (
	"context"
	"net/http"
	"time"

	"quotescout/m/v2/app/config"
	"quotescout/m/v2/app/models"

	"github.com/DataDog/datadog-go/v5/statsd"
	log "github.com/sirupsen/logrus"
)

const (
	TIMEOUT = 60 * time.Second

	DefaultEndpoint = "https://api.openai.com/v1"
)

// API is a type for OpenAI API
type API struct {
	authToken string
	endpoint  string
	client    *http.Client
	statsd    statsd.ClientInterface
}

// NewAPI creates new OpenAI API
func NewAPI(cfg *config.Config) *API {
	endpoint := cfg.OpenAIAPIEndpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &API{
		authToken: cfg.OpenAIAPIKey,
		endpoint:  endpoint,
		statsd:    cfg.DataDogClient,
		client: &http.Client{
			Timeout: TIMEOUT,
		},
	}
}

// IsAvailable checks whether OpenAI API is available
func (a *API) IsAvailable(ctx context.Context) bool {
	if a.authToken == "" {
		log.Errorf("PING: OpenAI API key is not set")
		return false
	}

	response, err := a.ChatComplete(ctx, models.ChatCompletion{
		Model:     string(models.ChatGpt4oMini),
		MaxTokens: 5,
		Messages: []models.Message{
			{
				Role:    "system",
				Content: "Reply only \"OK\" or \"Not OK\"",
			},
			{
				Role:    "user",
				Content: "test",
			},
		},
	})
	if err != nil {
		log.Errorf("PING: OpenAI API error: %+v", err)
		return false
	}

	log.Debugf("PING: OpenAI API response: %+v", response)
	return true
}
