package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Team member roles
const (
	TeamRoleLeader = "leader"
	TeamRoleMember = "member"
)

// Invitation statuses
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationRejected = "rejected"
	InvitationCanceled = "canceled"
)

// TeamMember holds the structure for the teamMembers collection in mongo.
// One document per {case, investigator} pair.
type TeamMember struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CaseID                 string             `bson:"caseId" json:"caseId"`
	UserID                 string             `bson:"userId" json:"userId"`
	Role                   string             `bson:"role" json:"role"`
	ContributionPercentage int                `bson:"contributionPercentage" json:"contributionPercentage"`
	JoinedAt               primitive.DateTime `bson:"joinedAt" json:"joinedAt"`
}

// Invitation holds the structure for the teamInvitations collection in mongo
type Invitation struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CaseID      string             `bson:"caseId" json:"caseId"`
	InviterID   string             `bson:"inviterId" json:"inviterId"`
	InviteeID   string             `bson:"inviteeId" json:"inviteeId"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   primitive.DateTime `bson:"createdAt" json:"createdAt"`
	RespondedAt primitive.DateTime `bson:"respondedAt,omitempty" json:"respondedAt,omitempty"`
}

// ChatMessage holds the structure for the teamChat collection in mongo
type ChatMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CaseID    string             `bson:"caseId" json:"caseId"`
	UserID    string             `bson:"userId" json:"userId"`
	Body      string             `bson:"body" json:"body"`
	CreatedAt primitive.DateTime `bson:"createdAt" json:"createdAt"`
}
