package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/unexplained-archive/unexplained-archive-api/config"
	"github.com/unexplained-archive/unexplained-archive-api/databases"
	"github.com/unexplained-archive/unexplained-archive-api/models"
)

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminLoginResponse struct {
	Token string `json:"token"`
	Admin struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"admin"`
}

// Admin represents the admin handler
type Admin struct {
	UDB databases.UserDatabase
	VDB databases.VerificationDatabase
}

// AdminLoginHandler handles admin login via email/password and returns a JWT
func (h Admin) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid request"})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "email and password required"})
		return
	}

	admin, err := h.UDB.FindOne(r.Context(), bson.M{"user.email": email, "user.role": models.RoleAdmin})
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Details.Password), []byte(req.Password)); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{
			Success: false,
			Error:   "Invalid credentials",
			Code:    "INVALID_CREDENTIALS",
		})
		return
	}

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "server misconfigured"})
		return
	}

	claims := jwt.MapClaims{
		"sub":   admin.ID,
		"email": admin.Details.Email,
		"scope": "admin",
		"typ":   "access",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "token generation failed"})
		return
	}

	var resp adminLoginResponse
	resp.Token = signed
	resp.Admin.ID = admin.ID
	resp.Admin.Email = admin.Details.Email

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// PendingVerificationsHandler lists verification requests awaiting review
func (h Admin) PendingVerificationsHandler(w http.ResponseWriter, r *http.Request) {
	dbResp, err := h.VDB.Find(context.Background(), bson.M{"status": models.VerificationPending})
	if err != nil {
		config.ErrorStatus("failed to get verification requests", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.VerificationRequest{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type reviewVerificationRequest struct {
	Action     string `json:"action"`
	ReviewerID string `json:"reviewerId"`
}

// ReviewVerificationHandler approves or rejects a pending verification
// request. Approval promotes the user to an approved investigator with the
// verified badge; two admins racing on the same request resolve to a single
// winner via the pending-status filter.
func (h Admin) ReviewVerificationHandler(w http.ResponseWriter, r *http.Request) {
	verificationID := mux.Vars(r)["verification_id"]

	vID, err := primitive.ObjectIDFromHex(verificationID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req reviewVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Action != "approve" && req.Action != "reject" {
		config.ErrorStatus("action must be approve or reject", http.StatusBadRequest, w, fmt.Errorf("got %q", req.Action))
		return
	}

	verification, err := h.VDB.FindOne(context.Background(), bson.M{"_id": vID})
	if err != nil {
		config.ErrorStatus("failed to get verification request", http.StatusNotFound, w, err)
		return
	}

	newStatus := models.VerificationApproved
	userStatus := models.InvestigatorApproved
	if req.Action == "reject" {
		newStatus = models.VerificationRejected
		userStatus = models.InvestigatorRejected
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	res, err := h.VDB.UpdateOne(context.Background(),
		bson.M{"_id": vID, "status": models.VerificationPending},
		bson.M{"$set": bson.M{"status": newStatus, "reviewedBy": req.ReviewerID, "reviewedAt": now}},
	)
	if err != nil {
		config.ErrorStatus("failed to update verification request", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		config.ErrorStatus("verification request is no longer pending", http.StatusConflict, w, fmt.Errorf("lost update race"))
		return
	}

	userUpdate := bson.M{"user.investigatorStatus": userStatus, "user.updatedAt": time.Now()}
	if req.Action == "approve" {
		userUpdate["user.role"] = models.RoleInvestigator
		userUpdate["user.verifiedBadge"] = true
	}
	_, err = h.UDB.UpdateOne(context.Background(), userIDFilter(verification.UserID), bson.M{"$set": userUpdate})
	if err != nil {
		config.ErrorStatus("failed to update user", http.StatusInternalServerError, w, err)
		return
	}

	go sendNotificationToUser(verification.UserID, map[string]interface{}{
		"type":   "verification_reviewed",
		"status": newStatus,
	})

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Verification " + newStatus,
	})
}
