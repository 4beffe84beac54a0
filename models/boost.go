package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Boost types and statuses
const (
	BoostType24Hours = "24h"
	BoostType7Days   = "7d"
	BoostType30Days  = "30d"

	BoostStatusActive  = "active"
	BoostStatusExpired = "expired"
)

// Boost holds the structure for the boosts collection in mongo
type Boost struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CaseID          string             `bson:"caseId" json:"caseId"`
	UserID          string             `bson:"userId" json:"userId"`
	BoostType       string             `bson:"boostType" json:"boostType"`
	PricePaid       float64            `bson:"pricePaid" json:"pricePaid"`
	FeaturedUntil   primitive.DateTime `bson:"featuredUntil" json:"featuredUntil"`
	Impressions     int64              `bson:"impressions" json:"impressions"`
	Clicks          int64              `bson:"clicks" json:"clicks"`
	Status          string             `bson:"status" json:"status"`
	StripeSessionID string             `bson:"stripeSessionId,omitempty" json:"stripeSessionId,omitempty"`
	CreatedAt       primitive.DateTime `bson:"createdAt" json:"createdAt"`
}

// BoostWithROI is a boost plus the derived performance figures returned by
// the listing endpoint. Pure display math, never persisted.
type BoostWithROI struct {
	Boost              `bson:",inline"`
	ImpressionsPerEuro float64 `json:"impressionsPerEuro"`
	ClicksPerEuro      float64 `json:"clicksPerEuro"`
	CTR                float64 `json:"ctr"`
}
