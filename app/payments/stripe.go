package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"quotescout/m/v2/app/config"
	"quotescout/m/v2/app/db/mongo"
	"quotescout/m/v2/app/ledger"

	log "github.com/sirupsen/logrus"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/customer"
	"github.com/stripe/stripe-go/v78/webhook"
	"github.com/valyala/fasthttp"
)

const (
	ProPlanName       = "QuoteScout Pro"
	ProPlanPriceCents = 999
	UserID            = "user_id"
	AppID             = "app_id"
	appName           = "quotescout"
)

// Stripe is the billing bridge: it starts checkout sessions and applies
// webhook events to the ledger.
type Stripe struct {
	cfg    *config.Config
	store  mongo.Storage
	ledger *ledger.Ledger
}

func NewStripe(cfg *config.Config, store mongo.Storage, l *ledger.Ledger) *Stripe {
	return &Stripe{
		cfg:    cfg,
		store:  store,
		ledger: l,
	}
}

// CreateCheckoutSession returns the redirect URL for a subscription
// purchase, creating and caching a Stripe customer for the profile first
// if one does not exist yet.
func (s *Stripe) CreateCheckoutSession(ctx context.Context, userID, email, customerID string) (string, error) {
	if customerID == "" {
		c, err := s.createCustomer(ctx, userID, email)
		if err != nil {
			return "", err
		}
		customerID = c.ID
		if err := s.store.UpdateProfileStripeCustomerId(ctx, userID, customerID); err != nil {
			log.Errorf("CreateCheckoutSession: failed to cache customer id for user %s: %v", userID, err)
		}
	}

	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(s.cfg.FrontendURL + "/dashboard?success=true"),
		CancelURL:          stripe.String(s.cfg.FrontendURL + "/dashboard?canceled=true"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(ProPlanName),
					},
					UnitAmount: stripe.Int64(ProPlanPriceCents),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String(string(stripe.PriceRecurringIntervalMonth)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata(UserID, userID)
	params.AddMetadata(AppID, appName)

	checkoutSession, err := session.New(params)
	if err != nil {
		log.Errorf("CreateCheckoutSession: %v", err)
		return "", err
	}
	return checkoutSession.URL, nil
}

func (s *Stripe) createCustomer(ctx context.Context, userID, email string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.AddMetadata(UserID, userID)
	params.AddMetadata(AppID, appName)

	c, err := customer.New(params)
	if err != nil {
		log.Errorf("createCustomer: %v", err)
		return nil, err
	}
	return c, nil
}

// Webhook verifies and dispatches Stripe events. Unknown event kinds are
// acknowledged without processing; providers expect a fast 2xx either way.
func (s *Stripe) Webhook(ctx *fasthttp.RequestCtx) {
	payload := ctx.Request.Body()
	signatureHeader := string(ctx.Request.Header.Peek("Stripe-Signature"))

	event, err := webhook.ConstructEvent(payload, signatureHeader, s.cfg.StripeEndpointSecret)
	if err != nil {
		log.Errorf("Webhook signature verification failed. %v", err)
		ctx.Response.Header.SetStatusCode(http.StatusBadRequest) // Return a 400 error on a bad signature
		return
	}
	s.cfg.DataDogClient.Incr("stripe.webhook", []string{"event_type:" + string(event.Type)}, 1)

	switch event.Type {
	case "checkout.session.completed":
		var checkoutSession stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &checkoutSession); err != nil {
			log.Errorf("Error parsing %s webhook JSON: %v", event.Type, err)
			ctx.Response.Header.SetStatusCode(http.StatusBadRequest)
			return
		}
		s.handleCheckoutSessionCompleted(ctx, checkoutSession)
	case "customer.subscription.deleted":
		var subscription stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
			log.Errorf("Error parsing %s webhook JSON: %v", event.Type, err)
			ctx.Response.Header.SetStatusCode(http.StatusBadRequest)
			return
		}
		s.handleCustomerSubscriptionDeleted(ctx, subscription)
	default:
		log.Debugf("Ignoring Stripe event type: %s", event.Type)
	}

	ctx.Response.Header.SetStatusCode(http.StatusOK)
	ctx.Response.Header.SetContentType("application/json")
	_, _ = ctx.WriteString(`{"status":"success"}`)
}

func (s *Stripe) handleCheckoutSessionCompleted(ctx context.Context, checkoutSession stripe.CheckoutSession) {
	userID := checkoutSession.Metadata[UserID]
	if userID == "" {
		log.Errorf("handleCheckoutSessionCompleted: session %s carries no user id, skipping", checkoutSession.ID)
		return
	}

	subscriptionID := ""
	if checkoutSession.Subscription != nil {
		subscriptionID = checkoutSession.Subscription.ID
	}

	if err := s.ledger.SetSubscribed(ctx, userID, true, subscriptionID); err != nil {
		log.Errorf("handleCheckoutSessionCompleted: failed to upgrade user %s: %v", userID, err)
		return
	}
	log.Infof("Successfully processed checkout session %s, user_id: %s", checkoutSession.ID, userID)
}

func (s *Stripe) handleCustomerSubscriptionDeleted(ctx context.Context, subscription stripe.Subscription) {
	if subscription.Customer == nil {
		log.Errorf("handleCustomerSubscriptionDeleted: subscription %s carries no customer, skipping", subscription.ID)
		return
	}
	customerID := subscription.Customer.ID

	profile, err := s.store.GetProfileByStripeCustomerId(ctx, customerID)
	if errors.Is(err, mongo.ErrProfileNotFound) {
		log.Infof("handleCustomerSubscriptionDeleted: no profile for customer %s, skipping", customerID)
		return
	}
	if err != nil {
		log.Errorf("handleCustomerSubscriptionDeleted: failed to look up customer %s: %v", customerID, err)
		return
	}

	if err := s.ledger.SetSubscribed(ctx, profile.ID, false, ""); err != nil {
		log.Errorf("handleCustomerSubscriptionDeleted: failed to downgrade user %s: %v", profile.ID, err)
		return
	}
	log.Infof("Canceled subscription for customer %s, user_id: %s", customerID, profile.ID)
}
