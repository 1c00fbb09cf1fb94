package payments

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"testing"
	"time"

	"quotescout/m/v2/app/config"
	"quotescout/m/v2/app/db/mongo"
	"quotescout/m/v2/app/ledger"
	"quotescout/m/v2/app/models"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v78/webhook"
	"github.com/valyala/fasthttp"
)

const endpointSecret = "whsec_test_secret"

func newTestStripe(store *mongo.MockStorage) *Stripe {
	cfg := &config.Config{
		FrontendURL:          "https://quotescout.test",
		StripeEndpointSecret: endpointSecret,
		DataDogClient:        &statsd.NoOpClient{},
	}
	return NewStripe(cfg, store, ledger.NewLedger(store))
}

func signedRequest(payload string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.SetBodyString(payload)
	now := time.Now()
	signature := webhook.ComputeSignature(now, []byte(payload), endpointSecret)
	ctx.Request.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(signature)))
	return ctx
}

func TestWebhookBadSignature(t *testing.T) {
	store := mongo.NewMockStorage(models.MongoProfile{ID: "u1"})
	stripeBridge := newTestStripe(store)

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.SetBodyString(`{"type":"checkout.session.completed"}`)
	ctx.Request.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")

	stripeBridge.Webhook(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	assert.False(t, store.Profiles["u1"].IsSubscribed)
}

func TestWebhookCheckoutSessionCompleted(t *testing.T) {
	store := mongo.NewMockStorage(models.MongoProfile{ID: "u1"})
	stripeBridge := newTestStripe(store)

	payload := `{"id":"evt_1","api_version":"2024-04-10","type":"checkout.session.completed","data":{"object":{"id":"cs_1","metadata":{"user_id":"u1"},"subscription":"sub_1"}}}`
	ctx := signedRequest(payload)

	stripeBridge.Webhook(ctx)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, `{"status":"success"}`, string(ctx.Response.Body()))
	assert.True(t, store.Profiles["u1"].IsSubscribed)
	assert.Equal(t, "sub_1", store.Profiles["u1"].StripeSubscriptionId)
}

func TestWebhookCheckoutSessionWithoutUserID(t *testing.T) {
	store := mongo.NewMockStorage(models.MongoProfile{ID: "u1"})
	stripeBridge := newTestStripe(store)

	payload := `{"id":"evt_1","api_version":"2024-04-10","type":"checkout.session.completed","data":{"object":{"id":"cs_1","metadata":{}}}}`
	ctx := signedRequest(payload)

	stripeBridge.Webhook(ctx)
	// log-worthy but not fatal: acked, nothing mutated
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.False(t, store.Profiles["u1"].IsSubscribed)
}

func TestWebhookSubscriptionDeleted(t *testing.T) {
	store := mongo.NewMockStorage(models.MongoProfile{
		ID:                   "u1",
		IsSubscribed:         true,
		StripeCustomerId:     "cus_1",
		StripeSubscriptionId: "sub_1",
	})
	stripeBridge := newTestStripe(store)

	payload := `{"id":"evt_2","api_version":"2024-04-10","type":"customer.subscription.deleted","data":{"object":{"id":"sub_1","customer":"cus_1"}}}`
	ctx := signedRequest(payload)

	stripeBridge.Webhook(ctx)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.False(t, store.Profiles["u1"].IsSubscribed)
	assert.Equal(t, "", store.Profiles["u1"].StripeSubscriptionId)
}

func TestWebhookSubscriptionDeletedUnknownCustomer(t *testing.T) {
	store := mongo.NewMockStorage(models.MongoProfile{ID: "u1", IsSubscribed: true, StripeCustomerId: "cus_1"})
	stripeBridge := newTestStripe(store)

	payload := `{"id":"evt_3","api_version":"2024-04-10","type":"customer.subscription.deleted","data":{"object":{"id":"sub_9","customer":"cus_missing"}}}`
	ctx := signedRequest(payload)

	stripeBridge.Webhook(ctx)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.True(t, store.Profiles["u1"].IsSubscribed)
}

func TestWebhookUnknownEventAcked(t *testing.T) {
	store := mongo.NewMockStorage(models.MongoProfile{ID: "u1"})
	stripeBridge := newTestStripe(store)

	payload := `{"id":"evt_4","api_version":"2024-04-10","type":"invoice.payment_succeeded","data":{"object":{}}}`
	ctx := signedRequest(payload)

	stripeBridge.Webhook(ctx)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, `{"status":"success"}`, string(ctx.Response.Body()))
	assert.False(t, store.Profiles["u1"].IsSubscribed)
}
