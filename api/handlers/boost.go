package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/unexplained-archive/unexplained-archive-api/config"
	"github.com/unexplained-archive/unexplained-archive-api/databases"
	"github.com/unexplained-archive/unexplained-archive-api/models"
	"github.com/unexplained-archive/unexplained-archive-api/payments"
)

type boostTier struct {
	Price    float64
	Duration time.Duration
}

var boostTiers = map[string]boostTier{
	models.BoostType24Hours: {Price: 9.99, Duration: 24 * time.Hour},
	models.BoostType7Days:   {Price: 39.99, Duration: 7 * 24 * time.Hour},
	models.BoostType30Days:  {Price: 99.99, Duration: 30 * 24 * time.Hour},
}

// Boost exported for testing purposes
type Boost struct {
	DB       databases.BoostDatabase
	CDB      databases.CaseDatabase
	WDB      databases.WalletDatabase
	TXDB     databases.TransactionDatabase
	Checkout payments.CheckoutClient
	Policy   payments.Policy
	Redis    *redis.Client
}

type createBoostRequest struct {
	UserID        string `json:"userId"`
	BoostType     string `json:"boostType"`
	PaymentMethod string `json:"paymentMethod"`
}

// CreateBoostHandler promotes a case for the chosen tier. Wallet payments
// debit the balance atomically and activate immediately; card payments go
// through Stripe and activate on the success redirect. A case can carry at
// most one active boost.
func (h Boost) CreateBoostHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req createBoostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	tier, ok := boostTiers[req.BoostType]
	if !ok {
		config.ErrorStatus("unknown boost type", http.StatusBadRequest, w, fmt.Errorf("got %q", req.BoostType))
		return
	}
	if req.PaymentMethod != payments.MethodWallet && req.PaymentMethod != payments.MethodCard {
		config.ErrorStatus("paymentMethod must be wallet or card", http.StatusBadRequest, w, fmt.Errorf("got %q", req.PaymentMethod))
		return
	}

	if _, err := h.CDB.FindOne(context.Background(), bson.M{"_id": cID}); err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	active, err := h.DB.CountDocuments(context.Background(), bson.M{
		"caseId":        caseID,
		"status":        models.BoostStatusActive,
		"featuredUntil": bson.M{"$gt": now},
	})
	if err != nil {
		config.ErrorStatus("failed to check active boosts", http.StatusInternalServerError, w, err)
		return
	}
	if active > 0 {
		config.ErrorStatus("case is already boosted", http.StatusConflict, w, fmt.Errorf("active boost exists for case %v", caseID))
		return
	}

	if req.PaymentMethod == payments.MethodCard {
		sess, err := h.Checkout.NewBoostSession(req.UserID, caseID, req.BoostType, tier.Price)
		if err != nil {
			config.ErrorStatus("failed to create checkout session", http.StatusBadGateway, w, err)
			return
		}
		_, err = h.TXDB.InsertOne(context.Background(), models.Transaction{
			ID:              primitive.NewObjectID(),
			UserID:          req.UserID,
			CaseID:          caseID,
			Type:            models.TransactionTransfer,
			Status:          models.TransactionPending,
			Amount:          tier.Price,
			Net:             tier.Price,
			StripeSessionID: sess.ID,
			Description:     "case boost " + req.BoostType,
			CreatedAt:       now,
		})
		if err != nil {
			config.ErrorStatus("failed to record boost purchase", http.StatusInternalServerError, w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"url":       sess.URL,
			"sessionId": sess.ID,
		})
		return
	}

	// wallet path: check locally before any write so an underfunded request
	// leaves no trace, then debit with the balance condition in the filter
	wallet, err := h.WDB.FindOne(context.Background(), bson.M{"userId": req.UserID})
	if err != nil {
		config.ErrorStatus("failed to get wallet", http.StatusNotFound, w, err)
		return
	}
	if wallet.Balance < tier.Price {
		config.ErrorStatus("insufficient wallet balance", http.StatusConflict, w, fmt.Errorf("balance %v below price %v", wallet.Balance, tier.Price))
		return
	}

	res, err := h.WDB.UpdateOne(context.Background(),
		bson.M{"userId": req.UserID, "balance": bson.M{"$gte": tier.Price}},
		bson.M{"$inc": bson.M{"balance": -tier.Price}, "$set": bson.M{"updatedAt": now}},
	)
	if err != nil {
		config.ErrorStatus("failed to debit wallet", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		config.ErrorStatus("insufficient wallet balance", http.StatusConflict, w, fmt.Errorf("balance below %v", tier.Price))
		return
	}

	boost := models.Boost{
		ID:            primitive.NewObjectID(),
		CaseID:        caseID,
		UserID:        req.UserID,
		BoostType:     req.BoostType,
		PricePaid:     tier.Price,
		FeaturedUntil: primitive.NewDateTimeFromTime(now.Time().Add(tier.Duration)),
		Status:        models.BoostStatusActive,
		CreatedAt:     now,
	}
	_, err = h.DB.InsertOne(context.Background(), boost)
	if err != nil {
		config.ErrorStatus("failed to create boost", http.StatusInternalServerError, w, err)
		return
	}

	_, err = h.TXDB.InsertOne(context.Background(), models.Transaction{
		ID:          primitive.NewObjectID(),
		UserID:      req.UserID,
		CaseID:      caseID,
		Type:        models.TransactionTransfer,
		Status:      models.TransactionCompleted,
		Amount:      tier.Price,
		Net:         tier.Price,
		Description: "case boost " + req.BoostType,
		CreatedAt:   now,
	})
	if err != nil {
		config.ErrorStatus("failed to record boost purchase", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(boost)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// ActiveBoostHandler returns the active boost on a case, or 404 when the
// case is not currently boosted
func (h Boost) ActiveBoostHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	now := primitive.NewDateTimeFromTime(time.Now())
	boost, err := h.DB.FindOne(context.Background(), bson.M{
		"caseId":        caseID,
		"status":        models.BoostStatusActive,
		"featuredUntil": bson.M{"$gt": now},
	})
	if err != nil {
		config.ErrorStatus("case has no active boost", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(boost)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ImpressionHandler bumps the impression counter for a boost. Fire and
// forget: the write goes to redis and is flushed to mongo by the scheduler;
// failures are logged and never surface to the caller.
func (h Boost) ImpressionHandler(w http.ResponseWriter, r *http.Request) {
	h.bumpCounter(mux.Vars(r)["boost_id"], "impressions")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{"message": "recorded"})
}

// ClickHandler bumps the click counter for a boost
func (h Boost) ClickHandler(w http.ResponseWriter, r *http.Request) {
	h.bumpCounter(mux.Vars(r)["boost_id"], "clicks")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{"message": "recorded"})
}

func (h Boost) bumpCounter(boostID, counter string) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf("boost:%s:%s", boostID, counter)
	go func() {
		if err := h.Redis.Incr(context.Background(), key).Err(); err != nil {
			zap.S().Warnw("failed to bump boost counter", "key", key, "error", err)
		}
	}()
}

// BoostsByUserIDHandler returns a user's boosts with ROI figures computed at
// read time
func (h Boost) BoostsByUserIDHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	boosts, err := h.DB.Find(context.Background(), bson.M{"userId": userID})
	if err != nil {
		config.ErrorStatus("failed to get boosts", http.StatusNotFound, w, err)
		return
	}

	resp := make([]models.BoostWithROI, 0, len(boosts))
	for _, boost := range boosts {
		withROI := models.BoostWithROI{Boost: boost}
		if boost.PricePaid > 0 {
			withROI.ImpressionsPerEuro = float64(boost.Impressions) / boost.PricePaid
			withROI.ClicksPerEuro = float64(boost.Clicks) / boost.PricePaid
		}
		if boost.Impressions > 0 {
			withROI.CTR = float64(boost.Clicks) / float64(boost.Impressions)
		}
		resp = append(resp, withROI)
	}

	b, err := json.Marshal(resp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
