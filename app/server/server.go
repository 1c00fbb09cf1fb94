// package server is the HTTP surface: it authenticates callers and
// sequences the generation pipeline.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"quotescout/m/v2/app/auth"
	"quotescout/m/v2/app/config"
	"quotescout/m/v2/app/db/mongo"
	"quotescout/m/v2/app/ledger"
	"quotescout/m/v2/app/models"
	"quotescout/m/v2/app/pdf"
	"quotescout/m/v2/app/quotes"
	"quotescout/m/v2/app/util"

	"github.com/fasthttp/router"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

const paywallMessage = "Free tier limit reached. Please upgrade to Pro."

// TokenVerifier resolves bearer tokens to identities.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Identity, error)
}

// CheckoutCreator starts a subscription purchase and returns the redirect URL.
type CheckoutCreator interface {
	CreateCheckoutSession(ctx context.Context, userID, email, customerID string) (string, error)
}

// WebhookHandler processes signed billing provider events.
type WebhookHandler interface {
	Webhook(ctx *fasthttp.RequestCtx)
}

type Server struct {
	cfg       *config.Config
	verifier  TokenVerifier
	store     mongo.Storage
	ledger    *ledger.Ledger
	extractor *quotes.Extractor
	renderer  *pdf.Renderer
	billing   CheckoutCreator
	webhook   WebhookHandler
}

func NewServer(
	cfg *config.Config,
	verifier TokenVerifier,
	store mongo.Storage,
	l *ledger.Ledger,
	extractor *quotes.Extractor,
	renderer *pdf.Renderer,
	billing CheckoutCreator,
	webhook WebhookHandler,
) *Server {
	return &Server{
		cfg:       cfg,
		verifier:  verifier,
		store:     store,
		ledger:    l,
		extractor: extractor,
		renderer:  renderer,
		billing:   billing,
		webhook:   webhook,
	}
}

func (s *Server) Router() *router.Router {
	rtr := router.New()
	rtr.GET("/health", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		_, _ = ctx.WriteString("❤️ from quotescout")
	})
	rtr.POST("/generate-quotes", s.authenticated(s.GenerateQuotes))
	rtr.GET("/profile", s.authenticated(s.GetProfile))
	rtr.GET("/history", s.authenticated(s.GetHistory))
	rtr.POST("/create-checkout-session", s.authenticated(s.CreateCheckoutSession))

	webhookPath := "/stripe-webhook"
	if s.cfg.StripeEndpointSuffix != "" {
		webhookPath = fmt.Sprintf("%s-%s", webhookPath, s.cfg.StripeEndpointSuffix)
	}
	rtr.POST(webhookPath, s.webhook.Webhook)
	return rtr
}

type authedHandler func(ctx *fasthttp.RequestCtx, identity *auth.Identity)

func (s *Server) authenticated(next authedHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		header := string(ctx.Request.Header.Peek("Authorization"))
		if !strings.HasPrefix(header, "Bearer ") {
			respondError(ctx, http.StatusUnauthorized, "missing bearer token")
			return
		}
		identity, err := s.verifier.Verify(ctx, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			respondError(ctx, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next(ctx, identity)
	}
}

// GenerateQuotes runs the whole pipeline: quota check, extraction,
// rendering, then history write and counter increment as best-effort
// trailing writes before streaming the document back.
func (s *Server) GenerateQuotes(ctx *fasthttp.RequestCtx, identity *auth.Identity) {
	var req models.GenerateRequest
	if err := json.Unmarshal(ctx.Request.Body(), &req); err != nil {
		respondError(ctx, http.StatusBadRequest, "invalid request body")
		return
	}
	input, err := quotes.ParseInput(req)
	if err != nil {
		respondError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := s.store.GetProfile(ctx, identity.ID)
	if errors.Is(err, mongo.ErrProfileNotFound) {
		respondError(ctx, http.StatusNotFound, "Profile not found")
		return
	}
	if err != nil {
		log.Errorf("GenerateQuotes: profile lookup failed for user %s: %v", identity.ID, err)
		respondError(ctx, http.StatusInternalServerError, "storage error")
		return
	}

	if err := s.ledger.CheckQuota(profile); err != nil {
		s.cfg.DataDogClient.Incr("server.generate_quotes.paywalled", nil, 1)
		respondError(ctx, http.StatusPaymentRequired, paywallMessage)
		return
	}

	records, err := s.extractor.Extract(ctx, input)
	if err != nil {
		log.Errorf("GenerateQuotes: extraction failed for user %s: %v", identity.ID, err)
		respondError(ctx, http.StatusInternalServerError, "quote extraction failed")
		return
	}

	title := req.BookTitle
	if title == "" {
		title = "Text Snippet"
	}
	document, err := s.renderer.Render(records, title, req.Author)
	if err != nil {
		log.Errorf("GenerateQuotes: render failed for user %s: %v", identity.ID, err)
		respondError(ctx, http.StatusInternalServerError, "document rendering failed")
		return
	}

	// trailing writes: their failure must not cost the user the document
	generation := &models.MongoGeneration{
		ID:        uuid.NewString(),
		UserID:    identity.ID,
		InputType: req.InputType,
		BookTitle: req.BookTitle,
		Author:    req.Author,
		InputText: util.TruncateRunes(req.TextSnippet, 500),
		Quotes:    records,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.InsertGeneration(ctx, generation); err != nil {
		log.Errorf("GenerateQuotes: history write failed for user %s: %v", identity.ID, err)
	}
	_ = s.ledger.Increment(ctx, identity.ID)

	s.cfg.DataDogClient.Incr("server.generate_quotes.success", []string{"input_type:" + string(req.InputType)}, 1)
	ctx.Response.Header.SetContentType("application/pdf")
	ctx.Response.Header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="quotes-%s.pdf"`, util.Slug(title)))
	ctx.Response.SetBody(document)
}

type profileResponse struct {
	Email        string `json:"email"`
	UsageCount   int    `json:"usage_count"`
	IsSubscribed bool   `json:"is_subscribed"`
}

func (s *Server) GetProfile(ctx *fasthttp.RequestCtx, identity *auth.Identity) {
	profile, err := s.store.GetProfile(ctx, identity.ID)
	if errors.Is(err, mongo.ErrProfileNotFound) {
		respondError(ctx, http.StatusNotFound, "Profile not found")
		return
	}
	if err != nil {
		respondError(ctx, http.StatusInternalServerError, "storage error")
		return
	}
	respondJSON(ctx, http.StatusOK, profileResponse{
		Email:        profile.Email,
		UsageCount:   profile.UsageCount,
		IsSubscribed: profile.IsSubscribed,
	})
}

func (s *Server) GetHistory(ctx *fasthttp.RequestCtx, identity *auth.Identity) {
	generations, err := s.store.ListGenerations(ctx, identity.ID)
	if err != nil {
		log.Errorf("GetHistory: failed for user %s: %v", identity.ID, err)
		respondError(ctx, http.StatusInternalServerError, "storage error")
		return
	}
	respondJSON(ctx, http.StatusOK, generations)
}

func (s *Server) CreateCheckoutSession(ctx *fasthttp.RequestCtx, identity *auth.Identity) {
	profile, err := s.store.GetProfile(ctx, identity.ID)
	if errors.Is(err, mongo.ErrProfileNotFound) {
		respondError(ctx, http.StatusNotFound, "Profile not found")
		return
	}
	if err != nil {
		respondError(ctx, http.StatusInternalServerError, "storage error")
		return
	}

	url, err := s.billing.CreateCheckoutSession(ctx, profile.ID, identity.Email, profile.StripeCustomerId)
	if err != nil {
		respondError(ctx, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(ctx, http.StatusOK, map[string]string{"url": url})
}

func respondJSON(ctx *fasthttp.RequestCtx, code int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		respondError(ctx, http.StatusInternalServerError, "internal server error")
		return
	}
	ctx.Response.Header.SetStatusCode(code)
	ctx.Response.Header.SetContentType("application/json")
	ctx.Response.SetBody(body)
}

func respondError(ctx *fasthttp.RequestCtx, code int, message string) {
	respondJSON(ctx, code, map[string]string{"error": message})
}
