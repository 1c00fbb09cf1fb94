// package ledger enforces the free-tier quota: one free generation,
// unlimited once subscribed.
package ledger

import (
	"context"
	"errors"

	"quotescout/m/v2/app/db/mongo"
	"quotescout/m/v2/app/models"

	log "github.com/sirupsen/logrus"
)

const FreeTierLimit = 1

// ErrLimitReached is the paywall signal. Callers must be able to tell it
// apart from other failures to present an upgrade prompt.
var ErrLimitReached = errors.New("free tier limit reached")

type Ledger struct {
	store mongo.Storage
}

func NewLedger(store mongo.Storage) *Ledger {
	return &Ledger{store: store}
}

// CheckQuota passes when the profile has free generations left or an
// active subscription.
func (l *Ledger) CheckQuota(profile *models.MongoProfile) error {
	if profile.UsageCount >= FreeTierLimit && !profile.IsSubscribed {
		return ErrLimitReached
	}
	return nil
}

// Increment bumps the usage counter after a fully successful generation.
// Two racing requests can both pass CheckQuota before either lands here;
// the stake is one free generation, so no lock is taken.
func (l *Ledger) Increment(ctx context.Context, userID string) error {
	err := l.store.IncrementUsageCount(ctx, userID)
	if err != nil {
		log.Errorf("Increment: failed to bump usage count for user %s: %v", userID, err)
	}
	return err
}

// SetSubscribed flips the subscription flag. Idempotent; driven by billing
// webhook events.
func (l *Ledger) SetSubscribed(ctx context.Context, userID string, subscribed bool, subscriptionID string) error {
	return l.store.UpdateProfileSubscription(ctx, userID, subscribed, subscriptionID)
}
