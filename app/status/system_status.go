// Run regularly to check collaborator health and publish system gauges.
package status

import (
	"context"
	"time"

	"quotescout/m/v2/app/db/mongo"
	"quotescout/m/v2/app/db/redis"
	"quotescout/m/v2/app/openai"

	"github.com/DataDog/datadog-go/v5/statsd"
	log "github.com/sirupsen/logrus"
)

const checkTimeout = 10 * time.Second

type SystemStatus struct {
	MongoDB *Status     `json:"mongodb"`
	Redis   *Status     `json:"redis"`
	OpenAI  *Status     `json:"openai"`
	Time    time.Time   `json:"time"`
	Usage   SystemUsage `json:"usage"`
}

type SystemUsage struct {
	TotalProfiles    int64 `json:"total_profiles"`
	TotalSubscribers int64 `json:"total_subscribers"`
}

type Status struct {
	Available bool `json:"available"`
}

// Handler fetches system status and publishes it as gauges.
type Handler struct {
	store  mongo.Storage
	cache  redis.Client
	ai     *openai.API
	statsd statsd.ClientInterface
}

func New(store mongo.Storage, cache redis.Client, ai *openai.API, client statsd.ClientInterface) *Handler {
	return &Handler{
		store:  store,
		cache:  cache,
		ai:     ai,
		statsd: client,
	}
}

func (h *Handler) GetSystemStatus() *SystemStatus {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	systemStatus := &SystemStatus{
		MongoDB: &Status{Available: h.store.Ping(ctx, nil) == nil},
		Redis:   &Status{Available: h.cache.Ping(ctx).Err() == nil},
		OpenAI:  &Status{Available: h.ai.IsAvailable(ctx)},
		Time:    time.Now(),
	}

	if systemStatus.MongoDB.Available {
		profiles, err := h.store.GetProfilesCount(ctx)
		if err != nil {
			log.Errorf("GetSystemStatus: failed to count profiles: %v", err)
		}
		subscribers, err := h.store.GetSubscribersCount(ctx)
		if err != nil {
			log.Errorf("GetSystemStatus: failed to count subscribers: %v", err)
		}
		systemStatus.Usage = SystemUsage{
			TotalProfiles:    profiles,
			TotalSubscribers: subscribers,
		}
	}

	return systemStatus
}

// Publish is the status worker tick.
func (h *Handler) Publish() {
	systemStatus := h.GetSystemStatus()
	h.statsd.Gauge("status_worker.mongo_db_available", boolToFloat64(systemStatus.MongoDB.Available), nil, 1)
	h.statsd.Gauge("status_worker.redis_available", boolToFloat64(systemStatus.Redis.Available), nil, 1)
	h.statsd.Gauge("status_worker.open_ai_available", boolToFloat64(systemStatus.OpenAI.Available), nil, 1)
	h.statsd.Gauge("status_worker.total_profiles", float64(systemStatus.Usage.TotalProfiles), nil, 1)
	h.statsd.Gauge("status_worker.total_subscribers", float64(systemStatus.Usage.TotalSubscribers), nil, 1)
	log.Debugf("system status: %+v", systemStatus)
}

func boolToFloat64(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
