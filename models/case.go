package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// CaseStatus is the lifecycle status of a case. Values are stored lowercase
// in mongo and on the wire.
type CaseStatus string

// Case lifecycle statuses
const (
	CaseStatusOpen          CaseStatus = "open"
	CaseStatusInvestigating CaseStatus = "investigating"
	CaseStatusPendingReview CaseStatus = "pending_review"
	CaseStatusResolved      CaseStatus = "resolved"
	CaseStatusDisputed      CaseStatus = "disputed"
	CaseStatusVoting        CaseStatus = "voting"
)

// Case holds the structure for the cases collection in mongo
type Case struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title                string             `bson:"title" json:"title"`
	Description          string             `bson:"description" json:"description"`
	DetailedDescription  string             `bson:"detailedDescription" json:"detailedDescription"`
	Category             string             `bson:"category" json:"category"`
	Location             string             `bson:"location" json:"location"`
	Latitude             *float64           `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude            *float64           `bson:"longitude,omitempty" json:"longitude,omitempty"`
	IncidentDate         primitive.DateTime `bson:"incidentDate,omitempty" json:"incidentDate,omitempty"`
	MediaURLs            []string           `bson:"mediaUrls" json:"mediaUrls"`
	Evidence             []EvidenceFile     `bson:"evidence" json:"evidence"`
	SubmittedBy          string             `bson:"submittedBy" json:"submittedBy"`
	AssignedInvestigator string             `bson:"assignedInvestigator" json:"assignedInvestigator"`
	Status               CaseStatus         `bson:"status" json:"status"`
	Reward               float64            `bson:"reward" json:"reward"`
	InvestigatorNotes    string             `bson:"investigatorNotes" json:"investigatorNotes"`
	ResolutionProposal   string             `bson:"resolutionProposal" json:"resolutionProposal"`
	Resolution           string             `bson:"resolution" json:"resolution"`
	UserReview           *UserReview        `bson:"userReview,omitempty" json:"userReview,omitempty"`
	CommunityVotes       VoteTally          `bson:"communityVotes" json:"communityVotes"`
	Analysis             string             `bson:"analysis,omitempty" json:"analysis,omitempty"`
	CreatedAt            primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt            primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}

// EvidenceFile is a single evidence attachment on a case
type EvidenceFile struct {
	URL        string             `bson:"url" json:"url"`
	Name       string             `bson:"name" json:"name"`
	Type       string             `bson:"type" json:"type"`
	Uploader   string             `bson:"uploader" json:"uploader"`
	UploadedAt primitive.DateTime `bson:"uploadedAt" json:"uploadedAt"`
}

// UserReview is the submitter's review recorded when a resolution is processed.
// Rating 0 means no rating was recorded (omit policy on rejection).
type UserReview struct {
	Rating  int    `bson:"rating" json:"rating"`
	Comment string `bson:"comment" json:"comment"`
}

// VoteTally holds the running agree/disagree counters for a case
type VoteTally struct {
	Agree    int `bson:"agree" json:"agree"`
	Disagree int `bson:"disagree" json:"disagree"`
}
