package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Transaction types
const (
	TransactionDeposit      = "deposit"
	TransactionWithdrawal   = "withdrawal"
	TransactionDonation     = "donation"
	TransactionReward       = "reward"
	TransactionSubscription = "subscription"
	TransactionPlatformFee  = "platform_fee"
	TransactionTransfer     = "transfer"
)

// Transaction statuses
const (
	TransactionPending   = "pending"
	TransactionCompleted = "completed"
	TransactionFailed    = "failed"
	TransactionRefunded  = "refunded"
)

// Wallet holds the structure for the wallets collection in mongo.
// Balance is authoritative here; handlers never return a locally
// computed figure.
type Wallet struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    string             `bson:"userId" json:"userId"`
	Balance   float64            `bson:"balance" json:"balance"`
	CreatedAt primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}

// Transaction holds the structure for the transactions collection in mongo,
// an append-only ledger entry against a user's wallet
type Transaction struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID          string             `bson:"userId" json:"userId"`
	CaseID          string             `bson:"caseId,omitempty" json:"caseId,omitempty"`
	Type            string             `bson:"type" json:"type"`
	Status          string             `bson:"status" json:"status"`
	Amount          float64            `bson:"amount" json:"amount"`
	Fee             float64            `bson:"fee" json:"fee"`
	Net             float64            `bson:"net" json:"net"`
	StripeSessionID string             `bson:"stripeSessionId,omitempty" json:"stripeSessionId,omitempty"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt       primitive.DateTime `bson:"createdAt" json:"createdAt"`
}
