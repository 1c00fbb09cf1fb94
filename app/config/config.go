package config

import (
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
)

type Config struct {
	AuthServiceKey       string
	AuthURL              string
	DataDogClient        statsd.ClientInterface
	Environment          string
	FrontendURL          string
	ListenAddress        string
	MongoDBConnection    string
	MongoDBName          string
	OpenAIAPIEndpoint    string
	OpenAIAPIKey         string
	Redis                Redis
	StatusWorkerInterval time.Duration
	StripeEndpointSecret string
	StripeEndpointSuffix string
	StripeToken          string
}

type Redis struct {
	Host     string
	Port     string
	Password string
}
