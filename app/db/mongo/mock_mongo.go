package mongo

import (
	"context"

	"quotescout/m/v2/app/models"

	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MockStorage is a mock for the MongoDB client in the mongo package.
type MockStorage struct {
	Storage
	Profiles    map[string]*models.MongoProfile
	Generations []models.MongoGeneration

	IncrementErr error
	InsertErr    error
}

func NewMockStorage(profiles ...models.MongoProfile) *MockStorage {
	m := &MockStorage{
		Profiles: make(map[string]*models.MongoProfile),
	}
	for i := range profiles {
		p := profiles[i]
		m.Profiles[p.ID] = &p
	}
	return m
}

func (m *MockStorage) Ping(ctx context.Context, rp *readpref.ReadPref) error {
	return nil
}

func (m *MockStorage) GetProfile(ctx context.Context, userID string) (*models.MongoProfile, error) {
	profile, ok := m.Profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

func (m *MockStorage) GetProfileByStripeCustomerId(ctx context.Context, customerID string) (*models.MongoProfile, error) {
	for _, profile := range m.Profiles {
		if profile.StripeCustomerId == customerID {
			return profile, nil
		}
	}
	return nil, ErrProfileNotFound
}

func (m *MockStorage) GetProfilesCount(ctx context.Context) (int64, error) {
	return int64(len(m.Profiles)), nil
}

func (m *MockStorage) GetSubscribersCount(ctx context.Context) (int64, error) {
	count := int64(0)
	for _, profile := range m.Profiles {
		if profile.IsSubscribed {
			count++
		}
	}
	return count, nil
}

func (m *MockStorage) IncrementUsageCount(ctx context.Context, userID string) error {
	if m.IncrementErr != nil {
		return m.IncrementErr
	}
	if profile, ok := m.Profiles[userID]; ok {
		profile.UsageCount++
	}
	return nil
}

func (m *MockStorage) UpdateProfileSubscription(ctx context.Context, userID string, subscribed bool, subscriptionID string) error {
	if profile, ok := m.Profiles[userID]; ok {
		profile.IsSubscribed = subscribed
		profile.StripeSubscriptionId = subscriptionID
	}
	return nil
}

func (m *MockStorage) UpdateProfileStripeCustomerId(ctx context.Context, userID, customerID string) error {
	if profile, ok := m.Profiles[userID]; ok {
		profile.StripeCustomerId = customerID
	}
	return nil
}

func (m *MockStorage) InsertGeneration(ctx context.Context, generation *models.MongoGeneration) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.Generations = append(m.Generations, *generation)
	return nil
}

func (m *MockStorage) ListGenerations(ctx context.Context, userID string) ([]models.MongoGeneration, error) {
	generations := []models.MongoGeneration{}
	for i := len(m.Generations) - 1; i >= 0; i-- {
		if m.Generations[i].UserID == userID {
			generations = append(generations, m.Generations[i])
		}
		if len(generations) == HistoryLimit {
			break
		}
	}
	return generations, nil
}
