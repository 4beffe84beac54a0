package models

// User roles
const (
	RoleUser         = "user"
	RoleInvestigator = "investigator"
	RoleAdmin        = "admin"
)

// Investigator approval statuses
const (
	InvestigatorNone     = "none"
	InvestigatorPending  = "pending"
	InvestigatorApproved = "approved"
	InvestigatorRejected = "rejected"
)

// User holds the structure for the user collection in mongo
type User struct {
	ID      string      `json:"_id" bson:"_id"`
	Details UserDetails `json:"user" bson:"user"`
	Version int32       `json:"__v" bson:"__v"`
}

// UserDetails holds the structure for the inner user structure as defined in
// the user collection in mongo
type UserDetails struct {
	Email              string      `json:"email" bson:"email"`
	Name               string      `json:"name" bson:"name"`
	Username           string      `json:"username" bson:"username"`
	Password           string      `json:"password,omitempty" bson:"password"`
	ProfilePicture     string      `json:"profilePicture" bson:"profilePicture"`
	Role               string      `json:"role" bson:"role"`
	InvestigatorStatus string      `json:"investigatorStatus" bson:"investigatorStatus"`
	Reputation         int         `json:"reputation" bson:"reputation"`
	VerifiedBadge      bool        `json:"verifiedBadge" bson:"verifiedBadge"`
	CreatedAt          interface{} `json:"createdAt" bson:"createdAt"`
	UpdatedAt          interface{} `json:"updatedAt" bson:"updatedAt"`
}
