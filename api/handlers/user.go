package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/unexplained-archive/unexplained-archive-api/config"
	"github.com/unexplained-archive/unexplained-archive-api/databases"
	"github.com/unexplained-archive/unexplained-archive-api/models"
)

// User exported for testing purposes
type User struct {
	DB  databases.UserDatabase
	VDB databases.VerificationDatabase
}

// UserHandler returns a user given a userID
func (u User) UserHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	zap.S().Debugf("user_id: %v", userID)

	dbResp, err := u.DB.FindOne(context.Background(), userIDFilter(userID))
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}
	dbResp.Details.Password = ""

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UserCreateHandler creates a user. New accounts start with the plain user
// role and no investigator standing; verification is a separate step.
func (u User) UserCreateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var user models.UserDetails
	err := json.NewDecoder(r.Body).Decode(&user)
	if err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if user.Email == "" || user.Password == "" {
		config.ErrorStatus("email and password are required", http.StatusBadRequest, w, fmt.Errorf("missing fields"))
		return
	}

	count, err := u.DB.CountDocuments(context.Background(), bson.M{"user.email": user.Email})
	if err != nil {
		config.ErrorStatus("failed to check email", http.StatusInternalServerError, w, err)
		return
	}
	if count > 0 {
		config.ErrorStatus("email already exists", http.StatusConflict, w, fmt.Errorf("duplicate email"))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}
	user.Password = string(hashedPassword)
	user.Role = models.RoleUser
	user.InvestigatorStatus = models.InvestigatorNone
	user.Reputation = 0
	user.VerifiedBadge = false
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = u.DB.InsertOne(context.Background(), user)
	if err != nil {
		config.ErrorStatus("failed to insert user", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

type verificationRequest struct {
	DocumentURLs []string `json:"documentUrls"`
	Note         string   `json:"note"`
}

// SubmitVerificationHandler files an identity verification request so the
// user can become an investigator. One pending request per user.
func (u User) SubmitVerificationHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	var req verificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if len(req.DocumentURLs) == 0 {
		config.ErrorStatus("documentUrls are required", http.StatusBadRequest, w, fmt.Errorf("no documents supplied"))
		return
	}

	user, err := u.DB.FindOne(context.Background(), userIDFilter(userID))
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}
	if user.Details.InvestigatorStatus == models.InvestigatorApproved {
		config.ErrorStatus("user is already an approved investigator", http.StatusConflict, w, fmt.Errorf("status: %v", user.Details.InvestigatorStatus))
		return
	}

	pending, err := u.VDB.CountDocuments(context.Background(), bson.M{
		"userId": userID,
		"status": models.VerificationPending,
	})
	if err != nil {
		config.ErrorStatus("failed to check verifications", http.StatusInternalServerError, w, err)
		return
	}
	if pending > 0 {
		config.ErrorStatus("a verification request is already pending", http.StatusConflict, w, fmt.Errorf("pending request exists"))
		return
	}

	verification := models.VerificationRequest{
		ID:           primitive.NewObjectID(),
		UserID:       userID,
		DocumentURLs: req.DocumentURLs,
		Note:         req.Note,
		Status:       models.VerificationPending,
		CreatedAt:    primitive.NewDateTimeFromTime(time.Now()),
	}
	_, err = u.VDB.InsertOne(context.Background(), verification)
	if err != nil {
		config.ErrorStatus("failed to create verification request", http.StatusInternalServerError, w, err)
		return
	}

	_, err = u.DB.UpdateOne(context.Background(), userIDFilter(userID),
		bson.M{"$set": bson.M{"user.investigatorStatus": models.InvestigatorPending, "user.updatedAt": time.Now()}},
	)
	if err != nil {
		config.ErrorStatus("failed to update user", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(verification)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}
