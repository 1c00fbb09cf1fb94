package models

import "time"

type MongoProfile struct {
	ID                   string `bson:"_id" json:"id"`
	Email                string `bson:"email" json:"email"`
	UsageCount           int    `bson:"usage_count" json:"usage_count"`
	IsSubscribed         bool   `bson:"is_subscribed" json:"is_subscribed"`
	StripeCustomerId     string `bson:"stripe_customer_id,omitempty" json:"-"`
	StripeSubscriptionId string `bson:"stripe_subscription_id,omitempty" json:"-"`
}

// MongoGeneration is one persisted generation run. Append-only, never mutated.
type MongoGeneration struct {
	ID        string        `bson:"_id" json:"id"`
	UserID    string        `bson:"user_id" json:"-"`
	InputType InputType     `bson:"input_type" json:"input_type"`
	BookTitle string        `bson:"book_title,omitempty" json:"book_title,omitempty"`
	Author    string        `bson:"author,omitempty" json:"author,omitempty"`
	InputText string        `bson:"input_text,omitempty" json:"-"`
	Quotes    []QuoteRecord `bson:"quotes" json:"-"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
}
