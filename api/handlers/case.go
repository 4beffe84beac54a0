package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/unexplained-archive/unexplained-archive-api/api"
	"github.com/unexplained-archive/unexplained-archive-api/config"
	"github.com/unexplained-archive/unexplained-archive-api/databases"
	"github.com/unexplained-archive/unexplained-archive-api/models"
	"github.com/unexplained-archive/unexplained-archive-api/payments"
)

// Case exported for testing purposes
type Case struct {
	DB     databases.CaseDatabase
	UDB    databases.UserDatabase
	TDB    databases.TeamDatabase
	WDB    databases.WalletDatabase
	TXDB   databases.TransactionDatabase
	VDB    databases.VoteDatabase
	Config config.Config
	Policy payments.Policy
}

// CreateCaseHandler creates a case. Status is forced to open and no
// investigator is assigned regardless of what the body carries.
func (c Case) CreateCaseHandler(w http.ResponseWriter, r *http.Request) {
	var caseDoc models.Case
	if err := json.NewDecoder(r.Body).Decode(&caseDoc); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if caseDoc.Title == "" || caseDoc.Description == "" {
		config.ErrorStatus("title and description are required", http.StatusBadRequest, w, fmt.Errorf("missing required fields"))
		return
	}
	if caseDoc.Reward < 0 {
		config.ErrorStatus("reward cannot be negative", http.StatusBadRequest, w, fmt.Errorf("got %v", caseDoc.Reward))
		return
	}

	caseDoc.ID = primitive.NewObjectID()
	caseDoc.Status = models.CaseStatusOpen
	caseDoc.AssignedInvestigator = ""
	caseDoc.Resolution = ""
	caseDoc.ResolutionProposal = ""
	caseDoc.UserReview = nil
	caseDoc.CommunityVotes = models.VoteTally{}
	caseDoc.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	caseDoc.UpdatedAt = caseDoc.CreatedAt

	_, err := c.DB.InsertOne(context.Background(), caseDoc)
	if err != nil {
		config.ErrorStatus("failed to create case", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Case created successfully",
		"id":      caseDoc.ID.Hex(),
	})
}

// CaseByIDHandler returns a case by ID
func (c Case) CaseByIDHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	zap.S().Debugf("case_id: %v", caseID)

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := c.DB.FindOne(context.Background(), bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CaseHandler returns all cases, paginated. Optional status and category
// query filters.
func (c Case) CaseHandler(w http.ResponseWriter, r *http.Request) {
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		zap.S().Warnf(fmt.Sprintf("limit not set, using default of %v, err: %v", Limit|10, err))
	}
	limit64 := int64(Limit)
	page := getPage(r)
	skip64 := int64(page * Limit)

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	if category := r.URL.Query().Get("category"); category != "" {
		filter["category"] = category
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := c.DB.Find(ctx, filter, &options.FindOptions{Limit: &limit64, Skip: &skip64})
	if err != nil {
		config.ErrorStatus("failed to get cases", http.StatusNotFound, w, err)
		return
	}
	// Because the frontend requires that the data elements exist, if
	// len == 0 then we will just return an empty data object
	if len(dbResp) == 0 {
		dbResp = []models.Case{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CasesByUserIDHandler returns all cases submitted by the given user
func (c Case) CasesByUserIDHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		zap.S().Warnf(fmt.Sprintf("limit not set, using default of %v", Limit|10))
	}
	limit64 := int64(Limit)
	page := getPage(r)
	skip64 := int64(page * Limit)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := c.DB.Find(ctx, bson.M{"submittedBy": userID}, &options.FindOptions{Limit: &limit64, Skip: &skip64})
	if err != nil {
		config.ErrorStatus("failed to get cases by user ID", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Case{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type assignRequest struct {
	InvestigatorID string `json:"investigatorId"`
}

// AssignInvestigatorHandler assigns an approved investigator to an open case.
// The status filter makes the update conditional so a concurrent assign
// loses the race and gets a conflict.
func (c Case) AssignInvestigatorHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.InvestigatorID == "" {
		config.ErrorStatus("investigatorId is required", http.StatusBadRequest, w, fmt.Errorf("empty investigatorId"))
		return
	}

	investigator, err := c.UDB.FindOne(context.Background(), userIDFilter(req.InvestigatorID))
	if err != nil {
		config.ErrorStatus("failed to get investigator", http.StatusNotFound, w, err)
		return
	}
	if investigator.Details.Role != models.RoleInvestigator || investigator.Details.InvestigatorStatus != models.InvestigatorApproved {
		config.ErrorStatus("user is not an approved investigator", http.StatusForbidden, w, fmt.Errorf("role: %v, status: %v", investigator.Details.Role, investigator.Details.InvestigatorStatus))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	res, err := c.DB.UpdateOne(context.Background(),
		bson.M{"_id": cID, "status": models.CaseStatusOpen, "assignedInvestigator": ""},
		bson.M{"$set": bson.M{
			"status":               models.CaseStatusInvestigating,
			"assignedInvestigator": req.InvestigatorID,
			"updatedAt":            now,
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to assign investigator", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		config.ErrorStatus("case is not open for assignment", http.StatusConflict, w, fmt.Errorf("case %v already assigned or not open", caseID))
		return
	}

	// the investigator leads the team with the full share until a split is set
	_, err = c.TDB.InsertOne(context.Background(), models.TeamMember{
		ID:                     primitive.NewObjectID(),
		CaseID:                 caseID,
		UserID:                 req.InvestigatorID,
		Role:                   models.TeamRoleLeader,
		ContributionPercentage: 100,
		JoinedAt:               now,
	})
	if err != nil {
		config.ErrorStatus("failed to create team leader", http.StatusInternalServerError, w, err)
		return
	}

	dbResp, err := c.DB.FindOne(context.Background(), bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}

	go sendNotificationToUser(dbResp.SubmittedBy, map[string]interface{}{
		"type":   "case_assigned",
		"caseId": caseID,
	})

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type resolutionRequest struct {
	InvestigatorID string `json:"investigatorId"`
	Notes          string `json:"notes"`
	Proposal       string `json:"proposal"`
}

// SubmitResolutionHandler lets the assigned investigator propose a resolution.
// Allowed from investigating or disputed (the re-submit path after a
// dispute); moves the case to pending_review. No money moves here.
func (c Case) SubmitResolutionHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req resolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Proposal == "" {
		config.ErrorStatus("proposal is required", http.StatusBadRequest, w, fmt.Errorf("empty proposal"))
		return
	}

	caseDoc, err := c.DB.FindOne(context.Background(), bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}
	if caseDoc.AssignedInvestigator != req.InvestigatorID {
		config.ErrorStatus("only the assigned investigator can submit a resolution", http.StatusForbidden, w, fmt.Errorf("investigator mismatch"))
		return
	}

	res, err := c.DB.UpdateOne(context.Background(),
		bson.M{"_id": cID, "status": bson.M{"$in": []models.CaseStatus{models.CaseStatusInvestigating, models.CaseStatusDisputed}}},
		bson.M{"$set": bson.M{
			"status":             models.CaseStatusPendingReview,
			"investigatorNotes":  req.Notes,
			"resolutionProposal": req.Proposal,
			"updatedAt":          primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to submit resolution", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		config.ErrorStatus("case is not accepting resolutions", http.StatusConflict, w, fmt.Errorf("case %v not in investigating or disputed", caseID))
		return
	}

	go sendNotificationToUser(caseDoc.SubmittedBy, map[string]interface{}{
		"type":   "resolution_submitted",
		"caseId": caseID,
	})

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Resolution submitted for review",
	})
}

type processResolutionRequest struct {
	SubmitterID string `json:"submitterId"`
	Rating      int    `json:"rating"`
	Accepted    bool   `json:"accepted"`
	Feedback    string `json:"feedback"`
}

// ProcessResolutionHandler records the submitter's verdict on a proposed
// resolution. Accepting releases the escrowed reward to the team and credits
// reputation; rejecting moves the case to disputed without touching money.
func (c Case) ProcessResolutionHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req processResolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Accepted && (req.Rating < 1 || req.Rating > 5) {
		config.ErrorStatus("rating must be between 1 and 5", http.StatusBadRequest, w, fmt.Errorf("got %v", req.Rating))
		return
	}

	caseDoc, err := c.DB.FindOne(context.Background(), bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}
	if caseDoc.SubmittedBy != req.SubmitterID {
		config.ErrorStatus("only the case submitter can process the resolution", http.StatusForbidden, w, fmt.Errorf("submitter mismatch"))
		return
	}
	if caseDoc.Status != models.CaseStatusPendingReview {
		config.ErrorStatus("case is not pending review", http.StatusConflict, w, fmt.Errorf("status: %v", caseDoc.Status))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())

	if !req.Accepted {
		review := &models.UserReview{Comment: req.Feedback}
		if c.Config.RejectionRating == config.RejectionRatingFixed {
			review.Rating = 1
		}
		res, err := c.DB.UpdateOne(context.Background(),
			bson.M{"_id": cID, "status": models.CaseStatusPendingReview},
			bson.M{"$set": bson.M{
				"status":     models.CaseStatusDisputed,
				"userReview": review,
				"updatedAt":  now,
			}},
		)
		if err != nil {
			config.ErrorStatus("failed to record dispute", http.StatusInternalServerError, w, err)
			return
		}
		if res.ModifiedCount == 0 {
			config.ErrorStatus("case is not pending review", http.StatusConflict, w, fmt.Errorf("lost update race"))
			return
		}

		go sendNotificationToUser(caseDoc.AssignedInvestigator, map[string]interface{}{
			"type":   "resolution_rejected",
			"caseId": caseID,
		})

		dbResp, err := c.DB.FindOne(context.Background(), bson.M{"_id": cID})
		if err != nil {
			config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
			return
		}
		b, err := json.Marshal(dbResp)
		if err != nil {
			config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write(b)
		return
	}

	// accepted: claim the case first so a concurrent process loses the race,
	// then release the escrow
	res, err := c.DB.UpdateOne(context.Background(),
		bson.M{"_id": cID, "status": models.CaseStatusPendingReview},
		bson.M{"$set": bson.M{
			"status":     models.CaseStatusResolved,
			"resolution": caseDoc.ResolutionProposal,
			"userReview": &models.UserReview{Rating: req.Rating, Comment: req.Feedback},
			"updatedAt":  now,
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to resolve case", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		config.ErrorStatus("case is not pending review", http.StatusConflict, w, fmt.Errorf("lost update race"))
		return
	}

	if err := c.releaseEscrow(context.Background(), caseDoc, req.Rating); err != nil {
		config.ErrorStatus("failed to release reward", http.StatusInternalServerError, w, err)
		return
	}

	go sendNotificationToUser(caseDoc.AssignedInvestigator, map[string]interface{}{
		"type":   "resolution_accepted",
		"caseId": caseID,
	})

	dbResp, err := c.DB.FindOne(context.Background(), bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// releaseEscrow pays the case reward out to the team wallets per contribution
// percentages, withholding the platform fee from each payout, credits
// rating*5 reputation to each member and zeroes the case reward pool.
func (c Case) releaseEscrow(ctx context.Context, caseDoc *models.Case, rating int) error {
	caseID := caseDoc.ID.Hex()
	now := primitive.NewDateTimeFromTime(time.Now())

	members, err := c.TDB.Find(ctx, bson.M{"caseId": caseID})
	if err != nil {
		return err
	}
	if len(members) == 0 && caseDoc.AssignedInvestigator != "" {
		// a case assigned before team records existed still pays its investigator
		members = []models.TeamMember{{
			CaseID:                 caseID,
			UserID:                 caseDoc.AssignedInvestigator,
			Role:                   models.TeamRoleLeader,
			ContributionPercentage: 100,
		}}
	}

	upsert := true
	for _, member := range members {
		if member.ContributionPercentage == 0 {
			continue
		}
		gross := caseDoc.Reward * float64(member.ContributionPercentage) / 100
		fee := c.Policy.CalculateFee(gross, payments.KindCaseReward, payments.FeeOptions{})
		net := gross - fee

		_, err := c.WDB.UpdateOne(ctx,
			bson.M{"userId": member.UserID},
			bson.M{
				"$inc":         bson.M{"balance": net},
				"$set":         bson.M{"updatedAt": now},
				"$setOnInsert": bson.M{"userId": member.UserID, "createdAt": now},
			},
			&options.UpdateOptions{Upsert: &upsert},
		)
		if err != nil {
			return err
		}

		_, err = c.TXDB.InsertOne(ctx, models.Transaction{
			ID:          primitive.NewObjectID(),
			UserID:      member.UserID,
			CaseID:      caseID,
			Type:        models.TransactionReward,
			Status:      models.TransactionCompleted,
			Amount:      gross,
			Fee:         fee,
			Net:         net,
			Description: "case reward payout",
			CreatedAt:   now,
		})
		if err != nil {
			return err
		}

		_, err = c.UDB.UpdateOne(ctx, userIDFilter(member.UserID),
			bson.M{"$inc": bson.M{"user.reputation": rating * 5}})
		if err != nil {
			zap.S().Warnw("failed to credit reputation", "userId", member.UserID, "error", err)
		}
	}

	_, err = c.DB.UpdateOne(ctx, bson.M{"_id": caseDoc.ID},
		bson.M{"$set": bson.M{"reward": float64(0), "updatedAt": now}})
	return err
}

// refundEscrow returns the reward pool to its donors pro-rata to what each
// donated, then zeroes the pool.
func (c Case) refundEscrow(ctx context.Context, caseDoc *models.Case) error {
	caseID := caseDoc.ID.Hex()
	now := primitive.NewDateTimeFromTime(time.Now())

	donations, err := c.TXDB.Find(ctx, bson.M{
		"caseId": caseID,
		"type":   models.TransactionDonation,
		"status": models.TransactionCompleted,
	})
	if err != nil {
		return err
	}

	var total float64
	for _, d := range donations {
		total += d.Net
	}
	if total <= 0 {
		_, err = c.DB.UpdateOne(ctx, bson.M{"_id": caseDoc.ID},
			bson.M{"$set": bson.M{"reward": float64(0), "updatedAt": now}})
		return err
	}

	upsert := true
	for _, d := range donations {
		share := caseDoc.Reward * d.Net / total
		_, err := c.WDB.UpdateOne(ctx,
			bson.M{"userId": d.UserID},
			bson.M{
				"$inc":         bson.M{"balance": share},
				"$set":         bson.M{"updatedAt": now},
				"$setOnInsert": bson.M{"userId": d.UserID, "createdAt": now},
			},
			&options.UpdateOptions{Upsert: &upsert},
		)
		if err != nil {
			return err
		}
		_, err = c.TXDB.InsertOne(ctx, models.Transaction{
			ID:          primitive.NewObjectID(),
			UserID:      d.UserID,
			CaseID:      caseID,
			Type:        models.TransactionDonation,
			Status:      models.TransactionRefunded,
			Amount:      share,
			Net:         share,
			Description: "dispute vote refund",
			CreatedAt:   now,
		})
		if err != nil {
			return err
		}
	}

	_, err = c.DB.UpdateOne(ctx, bson.M{"_id": caseDoc.ID},
		bson.M{"$set": bson.M{"reward": float64(0), "updatedAt": now}})
	return err
}

// OpenVoteHandler moves a disputed case to community voting. Admin only.
func (c Case) OpenVoteHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	res, err := c.DB.UpdateOne(context.Background(),
		bson.M{"_id": cID, "status": models.CaseStatusDisputed},
		bson.M{"$set": bson.M{
			"status":    models.CaseStatusVoting,
			"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to open vote", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		config.ErrorStatus("case is not disputed", http.StatusConflict, w, fmt.Errorf("case %v not in disputed", caseID))
		return
	}

	go broadcastCaseEvent("vote_opened", map[string]interface{}{
		"caseId": caseID,
	})

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Community vote opened",
	})
}

type voteRequest struct {
	UserID string `json:"userId"`
	Agree  bool   `json:"agree"`
}

// DisputeVoteHandler records one dispute vote per user per case. When the
// quorum is reached the majority decides the outcome: agree releases the
// escrow to the team, disagree refunds the donors. Either way the case
// resolves.
func (c Case) DisputeVoteHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.UserID == "" {
		config.ErrorStatus("userId is required", http.StatusBadRequest, w, fmt.Errorf("empty userId"))
		return
	}

	caseDoc, err := c.DB.FindOne(context.Background(), bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}
	if caseDoc.Status != models.CaseStatusVoting {
		config.ErrorStatus("case is not open for dispute voting", http.StatusConflict, w, fmt.Errorf("status: %v", caseDoc.Status))
		return
	}

	existing, err := c.VDB.FindOne(context.Background(), bson.M{
		"userId":     req.UserID,
		"targetId":   caseID,
		"targetType": models.VoteTargetCaseDispute,
	})
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		config.ErrorStatus("failed to look up existing vote", http.StatusInternalServerError, w, err)
		return
	}
	if existing != nil {
		config.ErrorStatus("user has already voted on this case", http.StatusConflict, w, fmt.Errorf("duplicate vote"))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	_, err = c.VDB.InsertOne(context.Background(), models.Vote{
		ID:         primitive.NewObjectID(),
		UserID:     req.UserID,
		TargetID:   caseID,
		TargetType: models.VoteTargetCaseDispute,
		Agree:      req.Agree,
		CreatedAt:  now,
	})
	if err != nil {
		config.ErrorStatus("failed to record vote", http.StatusInternalServerError, w, err)
		return
	}

	tallyField := "communityVotes.disagree"
	if req.Agree {
		tallyField = "communityVotes.agree"
	}
	_, err = c.DB.UpdateOne(context.Background(), bson.M{"_id": cID},
		bson.M{"$inc": bson.M{tallyField: 1}, "$set": bson.M{"updatedAt": now}})
	if err != nil {
		config.ErrorStatus("failed to update vote tally", http.StatusInternalServerError, w, err)
		return
	}

	total, err := c.VDB.CountDocuments(context.Background(), bson.M{
		"targetId":   caseID,
		"targetType": models.VoteTargetCaseDispute,
	})
	if err != nil {
		config.ErrorStatus("failed to count votes", http.StatusInternalServerError, w, err)
		return
	}

	if int(total) >= c.Config.VoteQuorum {
		agreeCount, err := c.VDB.CountDocuments(context.Background(), bson.M{
			"targetId":   caseID,
			"targetType": models.VoteTargetCaseDispute,
			"agree":      true,
		})
		if err != nil {
			config.ErrorStatus("failed to count votes", http.StatusInternalServerError, w, err)
			return
		}

		// claim the transition so only one request settles the vote
		res, err := c.DB.UpdateOne(context.Background(),
			bson.M{"_id": cID, "status": models.CaseStatusVoting},
			bson.M{"$set": bson.M{
				"status":     models.CaseStatusResolved,
				"resolution": caseDoc.ResolutionProposal,
				"updatedAt":  now,
			}},
		)
		if err != nil {
			config.ErrorStatus("failed to settle vote", http.StatusInternalServerError, w, err)
			return
		}
		if res.ModifiedCount > 0 {
			if agreeCount*2 > total {
				// the community sided with the investigator; treat it as a
				// middling review for reputation purposes
				if err := c.releaseEscrow(context.Background(), caseDoc, 3); err != nil {
					config.ErrorStatus("failed to release reward", http.StatusInternalServerError, w, err)
					return
				}
			} else {
				if err := c.refundEscrow(context.Background(), caseDoc); err != nil {
					config.ErrorStatus("failed to refund donors", http.StatusInternalServerError, w, err)
					return
				}
			}
			go sendNotificationToUser(caseDoc.AssignedInvestigator, map[string]interface{}{
				"type":   "dispute_vote_settled",
				"caseId": caseID,
			})
		}
	}

	dbResp, err := c.DB.FindOne(context.Background(), bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// SentimentVoteHandler toggles an agree/disagree sentiment vote on a
// resolved case. Counter only, no side effects on money or status.
func (c Case) SentimentVoteHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.UserID == "" {
		config.ErrorStatus("userId is required", http.StatusBadRequest, w, fmt.Errorf("empty userId"))
		return
	}

	caseDoc, err := c.DB.FindOne(context.Background(), bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}
	if caseDoc.Status != models.CaseStatusResolved {
		config.ErrorStatus("sentiment voting is only open on resolved cases", http.StatusConflict, w, fmt.Errorf("status: %v", caseDoc.Status))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	voteFilter := bson.M{
		"userId":     req.UserID,
		"targetId":   caseID,
		"targetType": models.VoteTargetCaseSentiment,
	}

	existing, err := c.VDB.FindOne(context.Background(), voteFilter)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		config.ErrorStatus("failed to look up existing vote", http.StatusInternalServerError, w, err)
		return
	}
	inc := bson.M{}
	switch {
	case existing == nil:
		// first vote
		_, err = c.VDB.InsertOne(context.Background(), models.Vote{
			ID:         primitive.NewObjectID(),
			UserID:     req.UserID,
			TargetID:   caseID,
			TargetType: models.VoteTargetCaseSentiment,
			Agree:      req.Agree,
			CreatedAt:  now,
		})
		if err != nil {
			config.ErrorStatus("failed to record vote", http.StatusInternalServerError, w, err)
			return
		}
		inc = bson.M{tallyKey(req.Agree): 1}
	case existing.Agree == req.Agree:
		// same direction again toggles the vote off
		if err := c.VDB.DeleteOne(context.Background(), voteFilter); err != nil {
			config.ErrorStatus("failed to remove vote", http.StatusInternalServerError, w, err)
			return
		}
		inc = bson.M{tallyKey(req.Agree): -1}
	default:
		// switching sides
		if err := c.VDB.DeleteOne(context.Background(), voteFilter); err != nil {
			config.ErrorStatus("failed to remove vote", http.StatusInternalServerError, w, err)
			return
		}
		_, err = c.VDB.InsertOne(context.Background(), models.Vote{
			ID:         primitive.NewObjectID(),
			UserID:     req.UserID,
			TargetID:   caseID,
			TargetType: models.VoteTargetCaseSentiment,
			Agree:      req.Agree,
			CreatedAt:  now,
		})
		if err != nil {
			config.ErrorStatus("failed to record vote", http.StatusInternalServerError, w, err)
			return
		}
		inc = bson.M{tallyKey(req.Agree): 1, tallyKey(!req.Agree): -1}
	}

	_, err = c.DB.UpdateOne(context.Background(), bson.M{"_id": cID},
		bson.M{"$inc": inc, "$set": bson.M{"updatedAt": now}})
	if err != nil {
		config.ErrorStatus("failed to update vote tally", http.StatusInternalServerError, w, err)
		return
	}

	dbResp, err := c.DB.FindOne(context.Background(), bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func tallyKey(agree bool) string {
	if agree {
		return "communityVotes.agree"
	}
	return "communityVotes.disagree"
}

// userIDFilter matches a user document whether its _id is stored as a hex
// ObjectID or a plain string.
func userIDFilter(userID string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(userID); err == nil {
		return bson.M{"$or": []bson.M{{"_id": userID}, {"_id": oid}}}
	}
	return bson.M{"_id": userID}
}

func getPage(r *http.Request) int {
	page := 0
	if r.URL.Query().Get("page") == "" {
		zap.S().Warnf("page not set, using default of %v", page)
	} else {
		var err error
		page, err = strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil {
			zap.S().Errorf(fmt.Sprintf("error parsing page number: %v", err))
		}
		if page < 0 {
			zap.S().Warnf(fmt.Sprintf("cannot process page number less than 1. Got: %v", page))
			return 0
		}
	}
	return page
}
