package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Verification request statuses
const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

// VerificationRequest holds the structure for the verifications collection
// in mongo. Approval flips the user's investigatorStatus to approved and
// grants the verified badge.
type VerificationRequest struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID       string             `bson:"userId" json:"userId"`
	DocumentURLs []string           `bson:"documentUrls" json:"documentUrls"`
	Note         string             `bson:"note,omitempty" json:"note,omitempty"`
	Status       string             `bson:"status" json:"status"`
	ReviewedBy   string             `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	CreatedAt    primitive.DateTime `bson:"createdAt" json:"createdAt"`
	ReviewedAt   primitive.DateTime `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
}
