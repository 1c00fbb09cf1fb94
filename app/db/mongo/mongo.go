package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quotescout/m/v2/app/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	ProfilesCollection    = "profiles"
	GenerationsCollection = "generations"

	HistoryLimit = 20
)

// ErrProfileNotFound means an authenticated identity has no profile row.
// Distinct from quota errors so the caller can answer 404 instead of 402.
var ErrProfileNotFound = errors.New("profile not found")

// Client is a mongo client
type Client struct {
	*mongo.Client
	dbName string
}

type Storage interface {
	Disconnect(ctx context.Context) error
	GetProfile(ctx context.Context, userID string) (*models.MongoProfile, error)
	GetProfileByStripeCustomerId(ctx context.Context, customerID string) (*models.MongoProfile, error)
	GetProfilesCount(ctx context.Context) (int64, error)
	GetSubscribersCount(ctx context.Context) (int64, error)
	IncrementUsageCount(ctx context.Context, userID string) error
	InsertGeneration(ctx context.Context, generation *models.MongoGeneration) error
	ListGenerations(ctx context.Context, userID string) ([]models.MongoGeneration, error)
	Ping(ctx context.Context, rp *readpref.ReadPref) error
	UpdateProfileStripeCustomerId(ctx context.Context, userID, customerID string) error
	UpdateProfileSubscription(ctx context.Context, userID string, subscribed bool, subscriptionID string) error
}

// NewClient creates a new mongo client
func NewClient(connection string, dbName string) *Client {
	return &Client{
		Client: mustConnect(connection),
		dbName: dbName,
	}
}

// mustConnect connects to mongo and panics on error
func mustConnect(connection string) *mongo.Client {
	client, err := mongo.NewClient(options.Client().ApplyURI(connection).SetMaxConnecting(25))
	if err != nil {
		logrus.WithError(err).Panic("failed to create mongo client")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = client.Connect(ctx)
	if err != nil {
		logrus.WithError(err).Panic("failed to connect to mongo")
	}

	return client
}

func (c *Client) profiles() *mongo.Collection {
	return c.Database(c.dbName).Collection(ProfilesCollection)
}

func (c *Client) generations() *mongo.Collection {
	return c.Database(c.dbName).Collection(GenerationsCollection)
}

func (c *Client) GetProfile(ctx context.Context, userID string) (*models.MongoProfile, error) {
	var profile models.MongoProfile
	err := c.profiles().FindOne(ctx, bson.M{"_id": userID}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetProfile: failed to find profile: %w", err)
	}
	return &profile, nil
}

func (c *Client) GetProfileByStripeCustomerId(ctx context.Context, customerID string) (*models.MongoProfile, error) {
	var profile models.MongoProfile
	err := c.profiles().FindOne(ctx, bson.M{"stripe_customer_id": customerID}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetProfileByStripeCustomerId: failed to find profile: %w", err)
	}
	return &profile, nil
}

func (c *Client) GetProfilesCount(ctx context.Context) (int64, error) {
	count, err := c.profiles().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("GetProfilesCount: failed to count profiles: %w", err)
	}
	return count, nil
}

func (c *Client) GetSubscribersCount(ctx context.Context) (int64, error) {
	count, err := c.profiles().CountDocuments(ctx, bson.M{"is_subscribed": true})
	if err != nil {
		return 0, fmt.Errorf("GetSubscribersCount: failed to count subscribers: %w", err)
	}
	return count, nil
}

func (c *Client) IncrementUsageCount(ctx context.Context, userID string) error {
	update := bson.M{
		"$inc": bson.M{
			"usage_count": 1,
		},
	}
	_, err := c.profiles().UpdateOne(ctx, bson.M{"_id": userID}, update)
	return err
}

func (c *Client) UpdateProfileSubscription(ctx context.Context, userID string, subscribed bool, subscriptionID string) error {
	update := bson.M{
		"$set": bson.M{
			"is_subscribed":          subscribed,
			"stripe_subscription_id": subscriptionID,
		},
	}
	_, err := c.profiles().UpdateOne(ctx, bson.M{"_id": userID}, update)
	return err
}

func (c *Client) UpdateProfileStripeCustomerId(ctx context.Context, userID, customerID string) error {
	update := bson.M{
		"$set": bson.M{
			"stripe_customer_id": customerID,
		},
	}
	_, err := c.profiles().UpdateOne(ctx, bson.M{"_id": userID}, update)
	return err
}

func (c *Client) InsertGeneration(ctx context.Context, generation *models.MongoGeneration) error {
	_, err := c.generations().InsertOne(ctx, generation)
	if err != nil {
		return fmt.Errorf("InsertGeneration: failed to insert generation: %w", err)
	}
	return nil
}

func (c *Client) ListGenerations(ctx context.Context, userID string) ([]models.MongoGeneration, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(HistoryLimit)
	cursor, err := c.generations().Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("ListGenerations: failed to query generations: %w", err)
	}
	defer cursor.Close(ctx)

	generations := []models.MongoGeneration{}
	if err := cursor.All(ctx, &generations); err != nil {
		return nil, fmt.Errorf("ListGenerations: failed to decode generations: %w", err)
	}
	return generations, nil
}
