package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Vote target types
const (
	VoteTargetComment       = "comment"
	VoteTargetTheory        = "theory"
	VoteTargetCaseDispute   = "case_dispute"
	VoteTargetCaseSentiment = "case_sentiment"
)

// Comment holds the structure for the comments collection in mongo.
// ParentID allows a single level of nesting; a reply's parent must be
// a top-level comment.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CaseID    string             `bson:"caseId" json:"caseId"`
	UserID    string             `bson:"userId" json:"userId"`
	ParentID  string             `bson:"parentId,omitempty" json:"parentId,omitempty"`
	Body      string             `bson:"body" json:"body"`
	Votes     int64              `bson:"-" json:"votes"`
	CreatedAt primitive.DateTime `bson:"createdAt" json:"createdAt"`
}

// Theory holds the structure for the theories collection in mongo
type Theory struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CaseID    string             `bson:"caseId" json:"caseId"`
	UserID    string             `bson:"userId" json:"userId"`
	Title     string             `bson:"title" json:"title"`
	Body      string             `bson:"body" json:"body"`
	Votes     int64              `bson:"-" json:"votes"`
	CreatedAt primitive.DateTime `bson:"createdAt" json:"createdAt"`
}

// Vote holds the structure for the votes collection in mongo. One document
// per {user, target} pair; toggling removes the document for comment and
// theory targets.
type Vote struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID     string             `bson:"userId" json:"userId"`
	TargetID   string             `bson:"targetId" json:"targetId"`
	TargetType string             `bson:"targetType" json:"targetType"`
	Agree      bool               `bson:"agree" json:"agree"`
	CreatedAt  primitive.DateTime `bson:"createdAt" json:"createdAt"`
}
