package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unexplained-archive/unexplained-archive-api/config"
	"github.com/unexplained-archive/unexplained-archive-api/databases"
	"github.com/unexplained-archive/unexplained-archive-api/models"
)

// Comment exported for testing purposes
type Comment struct {
	DB  databases.CommentDatabase
	TDB databases.TheoryDatabase
	VDB databases.VoteDatabase
	CDB databases.CaseDatabase
}

type createCommentRequest struct {
	UserID   string `json:"userId"`
	ParentID string `json:"parentId"`
	Body     string `json:"body"`
}

// CreateCommentHandler adds a comment to a case. Replies nest a single
// level: the parent must itself be a top-level comment on the same case.
func (c Comment) CreateCommentHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Body == "" {
		config.ErrorStatus("comment body is required", http.StatusBadRequest, w, fmt.Errorf("empty body"))
		return
	}

	if _, err := c.CDB.FindOne(context.Background(), bson.M{"_id": cID}); err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}

	if req.ParentID != "" {
		pID, err := primitive.ObjectIDFromHex(req.ParentID)
		if err != nil {
			config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
			return
		}
		parent, err := c.DB.FindOne(context.Background(), bson.M{"_id": pID})
		if err != nil {
			config.ErrorStatus("failed to get parent comment", http.StatusNotFound, w, err)
			return
		}
		if parent.ParentID != "" {
			config.ErrorStatus("replies cannot be nested further", http.StatusBadRequest, w, fmt.Errorf("parent %v is itself a reply", req.ParentID))
			return
		}
		if parent.CaseID != caseID {
			config.ErrorStatus("parent comment belongs to another case", http.StatusBadRequest, w, fmt.Errorf("parent case %v", parent.CaseID))
			return
		}
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		CaseID:    caseID,
		UserID:    req.UserID,
		ParentID:  req.ParentID,
		Body:      req.Body,
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}
	_, err = c.DB.InsertOne(context.Background(), comment)
	if err != nil {
		config.ErrorStatus("failed to create comment", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(comment)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// CommentsByCaseHandler returns a case's comments oldest first, each with
// its current vote count
func (c Comment) CommentsByCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	sort := bson.M{"createdAt": 1}
	comments, err := c.DB.Find(context.Background(), bson.M{"caseId": caseID}, &options.FindOptions{Sort: sort})
	if err != nil {
		config.ErrorStatus("failed to get comments", http.StatusNotFound, w, err)
		return
	}
	if len(comments) == 0 {
		comments = []models.Comment{}
	}

	for i := range comments {
		count, err := c.VDB.CountDocuments(context.Background(), bson.M{
			"targetId":   comments[i].ID.Hex(),
			"targetType": models.VoteTargetComment,
		})
		if err != nil {
			config.ErrorStatus("failed to count votes", http.StatusInternalServerError, w, err)
			return
		}
		comments[i].Votes = count
	}

	b, err := json.Marshal(comments)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type createTheoryRequest struct {
	UserID string `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// CreateTheoryHandler adds a theory to a case
func (c Comment) CreateTheoryHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req createTheoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Title == "" || req.Body == "" {
		config.ErrorStatus("title and body are required", http.StatusBadRequest, w, fmt.Errorf("missing fields"))
		return
	}

	if _, err := c.CDB.FindOne(context.Background(), bson.M{"_id": cID}); err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}

	theory := models.Theory{
		ID:        primitive.NewObjectID(),
		CaseID:    caseID,
		UserID:    req.UserID,
		Title:     req.Title,
		Body:      req.Body,
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}
	_, err = c.TDB.InsertOne(context.Background(), theory)
	if err != nil {
		config.ErrorStatus("failed to create theory", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(theory)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// TheoriesByCaseHandler returns a case's theories with their vote counts
func (c Comment) TheoriesByCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	sort := bson.M{"createdAt": 1}
	theories, err := c.TDB.Find(context.Background(), bson.M{"caseId": caseID}, &options.FindOptions{Sort: sort})
	if err != nil {
		config.ErrorStatus("failed to get theories", http.StatusNotFound, w, err)
		return
	}
	if len(theories) == 0 {
		theories = []models.Theory{}
	}

	for i := range theories {
		count, err := c.VDB.CountDocuments(context.Background(), bson.M{
			"targetId":   theories[i].ID.Hex(),
			"targetType": models.VoteTargetTheory,
		})
		if err != nil {
			config.ErrorStatus("failed to count votes", http.StatusInternalServerError, w, err)
			return
		}
		theories[i].Votes = count
	}

	b, err := json.Marshal(theories)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type toggleVoteRequest struct {
	UserID string `json:"userId"`
}

// CommentVoteHandler toggles a user's vote on a comment
func (c Comment) CommentVoteHandler(w http.ResponseWriter, r *http.Request) {
	commentID := mux.Vars(r)["comment_id"]

	oID, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	if _, err := c.DB.FindOne(context.Background(), bson.M{"_id": oID}); err != nil {
		config.ErrorStatus("failed to get comment", http.StatusNotFound, w, err)
		return
	}

	c.toggleVote(w, r, commentID, models.VoteTargetComment)
}

// TheoryVoteHandler toggles a user's vote on a theory
func (c Comment) TheoryVoteHandler(w http.ResponseWriter, r *http.Request) {
	theoryID := mux.Vars(r)["theory_id"]

	oID, err := primitive.ObjectIDFromHex(theoryID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	if _, err := c.TDB.FindOne(context.Background(), bson.M{"_id": oID}); err != nil {
		config.ErrorStatus("failed to get theory", http.StatusNotFound, w, err)
		return
	}

	c.toggleVote(w, r, theoryID, models.VoteTargetTheory)
}

// toggleVote flips the {user, target} vote: a second vote on the same
// target removes the first one
func (c Comment) toggleVote(w http.ResponseWriter, r *http.Request, targetID, targetType string) {
	var req toggleVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.UserID == "" {
		config.ErrorStatus("userId is required", http.StatusBadRequest, w, fmt.Errorf("missing userId"))
		return
	}

	filter := bson.M{"userId": req.UserID, "targetId": targetID, "targetType": targetType}
	existing, err := c.VDB.FindOne(context.Background(), filter)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		config.ErrorStatus("failed to look up existing vote", http.StatusInternalServerError, w, err)
		return
	}
	voted := true
	if existing != nil {
		if err := c.VDB.DeleteOne(context.Background(), filter); err != nil {
			config.ErrorStatus("failed to remove vote", http.StatusInternalServerError, w, err)
			return
		}
		voted = false
	} else {
		_, err := c.VDB.InsertOne(context.Background(), models.Vote{
			ID:         primitive.NewObjectID(),
			UserID:     req.UserID,
			TargetID:   targetID,
			TargetType: targetType,
			Agree:      true,
			CreatedAt:  primitive.NewDateTimeFromTime(time.Now()),
		})
		if err != nil {
			config.ErrorStatus("failed to record vote", http.StatusInternalServerError, w, err)
			return
		}
	}

	count, err := c.VDB.CountDocuments(context.Background(), bson.M{"targetId": targetID, "targetType": targetType})
	if err != nil {
		config.ErrorStatus("failed to count votes", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"voted": voted,
		"votes": count,
	})
}
