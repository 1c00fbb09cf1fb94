// package auth resolves bearer tokens to user identities against the
// identity service.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"quotescout/m/v2/app/config"
	"quotescout/m/v2/app/db/redis"

	log "github.com/sirupsen/logrus"
)

const (
	TIMEOUT = 10 * time.Second

	// tokens are re-verified after at most a minute; short enough that a
	// revoked token stops working promptly
	cacheTTL = time.Minute
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the resolved caller of an authenticated request.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Verifier exchanges bearer tokens for identities.
type Verifier struct {
	baseURL    string
	serviceKey string
	client     *http.Client
	cache      redis.Client
}

// NewVerifier creates a verifier backed by the identity service. The cache
// is optional; pass nil to verify every request remotely.
func NewVerifier(cfg *config.Config, cache redis.Client) *Verifier {
	return &Verifier{
		baseURL:    cfg.AuthURL,
		serviceKey: cfg.AuthServiceKey,
		cache:      cache,
		client: &http.Client{
			Timeout: TIMEOUT,
		},
	}
}

// Verify resolves a bearer token to an identity or fails with ErrInvalidToken.
func (v *Verifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	fetch := func() (string, error) {
		return v.fetchIdentity(ctx, token)
	}
	if v.cache != nil {
		fetch = redis.WrapInCache(v.cache, cacheKey(token), cacheTTL, fetch)
	}

	raw, err := fetch()
	if err != nil {
		return nil, err
	}

	var identity Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return nil, fmt.Errorf("Verify: failed to decode identity: %w", err)
	}
	if identity.ID == "" {
		return nil, ErrInvalidToken
	}
	return &identity, nil
}

func (v *Verifier) fetchIdentity(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", v.serviceKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetchIdentity: identity service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Debugf("fetchIdentity: identity service returned %s", resp.Status)
		return "", ErrInvalidToken
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "auth:" + hex.EncodeToString(sum[:])
}
