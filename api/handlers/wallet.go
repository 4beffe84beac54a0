package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v82"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/unexplained-archive/unexplained-archive-api/config"
	"github.com/unexplained-archive/unexplained-archive-api/databases"
	"github.com/unexplained-archive/unexplained-archive-api/models"
	"github.com/unexplained-archive/unexplained-archive-api/payments"
)

// Wallet exported for testing purposes
type Wallet struct {
	DB       databases.WalletDatabase
	TXDB     databases.TransactionDatabase
	CDB      databases.CaseDatabase
	BDB      databases.BoostDatabase
	Checkout payments.CheckoutClient
	Policy   payments.Policy
}

type walletResponse struct {
	Wallet       *models.Wallet       `json:"wallet"`
	Transactions []models.Transaction `json:"transactions"`
}

// WalletHandler returns the wallet balance and recent transactions for a user.
// The balance always comes from a fresh read, never a local sum.
func (h Wallet) WalletHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	wallet, err := h.DB.FindOne(context.Background(), bson.M{"userId": userID})
	if err != nil {
		config.ErrorStatus("failed to get wallet", http.StatusNotFound, w, err)
		return
	}

	limit := int64(20)
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = int64(l)
	}
	sort := bson.M{"createdAt": -1}
	transactions, err := h.TXDB.Find(context.Background(), bson.M{"userId": userID},
		&options.FindOptions{Limit: &limit, Sort: sort})
	if err != nil {
		config.ErrorStatus("failed to get transactions", http.StatusInternalServerError, w, err)
		return
	}
	if len(transactions) == 0 {
		transactions = []models.Transaction{}
	}

	b, err := json.Marshal(walletResponse{Wallet: wallet, Transactions: transactions})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type depositRequest struct {
	UserID string  `json:"userId"`
	Amount float64 `json:"amount"`
}

// DepositHandler creates a Stripe checkout session for a card-funded wallet
// deposit. The wallet is credited by the success redirect handler once
// Stripe confirms payment.
func (h Wallet) DepositHandler(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.UserID == "" {
		config.ErrorStatus("userId is required", http.StatusBadRequest, w, fmt.Errorf("empty userId"))
		return
	}
	if req.Amount < h.Policy.MinStripeAmount {
		config.ErrorStatus("deposit is below the minimum", http.StatusBadRequest, w, fmt.Errorf("minimum is %v, got %v", h.Policy.MinStripeAmount, req.Amount))
		return
	}

	sess, err := h.Checkout.NewDepositSession(req.UserID, req.Amount)
	if err != nil {
		config.ErrorStatus("failed to create checkout session", http.StatusBadGateway, w, err)
		return
	}

	_, err = h.TXDB.InsertOne(context.Background(), models.Transaction{
		ID:              primitive.NewObjectID(),
		UserID:          req.UserID,
		Type:            models.TransactionDeposit,
		Status:          models.TransactionPending,
		Amount:          req.Amount,
		Net:             req.Amount,
		StripeSessionID: sess.ID,
		Description:     "wallet deposit",
		CreatedAt:       primitive.NewDateTimeFromTime(time.Now()),
	})
	if err != nil {
		config.ErrorStatus("failed to record deposit", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"url":       sess.URL,
		"sessionId": sess.ID,
	})
}

type donateRequest struct {
	CaseID        string  `json:"caseId"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"paymentMethod"`
}

// DonateHandler routes a donation to a case reward pool (or the platform when
// no caseId is given). Wallet donations debit the balance atomically with no
// fee; card donations go through Stripe and carry the card fee schedule.
func (h Wallet) DonateHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	var req donateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Amount < h.Policy.MinStripeAmount {
		config.ErrorStatus("donation is below the minimum", http.StatusBadRequest, w, fmt.Errorf("minimum is %v, got %v", h.Policy.MinStripeAmount, req.Amount))
		return
	}
	if req.PaymentMethod != payments.MethodWallet && req.PaymentMethod != payments.MethodCard {
		config.ErrorStatus("paymentMethod must be wallet or card", http.StatusBadRequest, w, fmt.Errorf("got %q", req.PaymentMethod))
		return
	}

	var cID primitive.ObjectID
	if req.CaseID != "" {
		var err error
		cID, err = primitive.ObjectIDFromHex(req.CaseID)
		if err != nil {
			config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
			return
		}
		if _, err := h.CDB.FindOne(context.Background(), bson.M{"_id": cID}); err != nil {
			config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
			return
		}
	}

	fee := h.Policy.CalculateFee(req.Amount, payments.KindDonation, payments.FeeOptions{
		Method:           req.PaymentMethod,
		PlatformDonation: req.CaseID == "",
	})
	now := primitive.NewDateTimeFromTime(time.Now())

	if req.PaymentMethod == payments.MethodCard {
		sess, err := h.Checkout.NewDonationSession(userID, req.CaseID, req.Amount, fee)
		if err != nil {
			config.ErrorStatus("failed to create checkout session", http.StatusBadGateway, w, err)
			return
		}
		_, err = h.TXDB.InsertOne(context.Background(), models.Transaction{
			ID:              primitive.NewObjectID(),
			UserID:          userID,
			CaseID:          req.CaseID,
			Type:            models.TransactionDonation,
			Status:          models.TransactionPending,
			Amount:          req.Amount,
			Fee:             fee,
			Net:             req.Amount - fee,
			StripeSessionID: sess.ID,
			Description:     "card donation",
			CreatedAt:       now,
		})
		if err != nil {
			config.ErrorStatus("failed to record donation", http.StatusInternalServerError, w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"url":       sess.URL,
			"sessionId": sess.ID,
		})
		return
	}

	// wallet path: the balance condition in the filter makes the debit atomic
	res, err := h.DB.UpdateOne(context.Background(),
		bson.M{"userId": userID, "balance": bson.M{"$gte": req.Amount}},
		bson.M{"$inc": bson.M{"balance": -req.Amount}, "$set": bson.M{"updatedAt": now}},
	)
	if err != nil {
		config.ErrorStatus("failed to debit wallet", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		config.ErrorStatus("insufficient wallet balance", http.StatusConflict, w, fmt.Errorf("balance below %v", req.Amount))
		return
	}

	if req.CaseID != "" {
		_, err = h.CDB.UpdateOne(context.Background(), bson.M{"_id": cID},
			bson.M{"$inc": bson.M{"reward": req.Amount}, "$set": bson.M{"updatedAt": now}})
		if err != nil {
			config.ErrorStatus("failed to credit case reward", http.StatusInternalServerError, w, err)
			return
		}
	}

	_, err = h.TXDB.InsertOne(context.Background(), models.Transaction{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		CaseID:      req.CaseID,
		Type:        models.TransactionDonation,
		Status:      models.TransactionCompleted,
		Amount:      req.Amount,
		Net:         req.Amount,
		Description: "wallet donation",
		CreatedAt:   now,
	})
	if err != nil {
		config.ErrorStatus("failed to record donation", http.StatusInternalServerError, w, err)
		return
	}

	wallet, err := h.DB.FindOne(context.Background(), bson.M{"userId": userID})
	if err != nil {
		config.ErrorStatus("failed to get wallet", http.StatusNotFound, w, err)
		return
	}
	b, err := json.Marshal(wallet)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type withdrawRequest struct {
	Amount float64 `json:"amount"`
}

// WithdrawHandler debits the wallet and records a pending withdrawal. The
// balance is re-checked server-side inside the conditional update.
func (h Wallet) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Amount < h.Policy.MinWithdrawal {
		config.ErrorStatus("withdrawal is below the minimum", http.StatusBadRequest, w, fmt.Errorf("minimum is %v, got %v", h.Policy.MinWithdrawal, req.Amount))
		return
	}

	fee := h.Policy.CalculateFee(req.Amount, payments.KindWithdrawal, payments.FeeOptions{})
	now := primitive.NewDateTimeFromTime(time.Now())

	res, err := h.DB.UpdateOne(context.Background(),
		bson.M{"userId": userID, "balance": bson.M{"$gte": req.Amount}},
		bson.M{"$inc": bson.M{"balance": -req.Amount}, "$set": bson.M{"updatedAt": now}},
	)
	if err != nil {
		config.ErrorStatus("failed to debit wallet", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		config.ErrorStatus("insufficient wallet balance", http.StatusConflict, w, fmt.Errorf("balance below %v", req.Amount))
		return
	}

	_, err = h.TXDB.InsertOne(context.Background(), models.Transaction{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Type:        models.TransactionWithdrawal,
		Status:      models.TransactionPending,
		Amount:      req.Amount,
		Fee:         fee,
		Net:         req.Amount - fee,
		Description: "wallet withdrawal",
		CreatedAt:   now,
	})
	if err != nil {
		config.ErrorStatus("failed to record withdrawal", http.StatusInternalServerError, w, err)
		return
	}

	wallet, err := h.DB.FindOne(context.Background(), bson.M{"userId": userID})
	if err != nil {
		config.ErrorStatus("failed to get wallet", http.StatusNotFound, w, err)
		return
	}
	b, err := json.Marshal(wallet)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type subscribeRequest struct {
	UserID string `json:"userId"`
}

// SubscribeHandler creates a Stripe subscription checkout session
func (h Wallet) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.UserID == "" {
		config.ErrorStatus("userId is required", http.StatusBadRequest, w, fmt.Errorf("empty userId"))
		return
	}

	sess, err := h.Checkout.NewSubscriptionSession(req.UserID)
	if err != nil {
		config.ErrorStatus("failed to create checkout session", http.StatusBadGateway, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"url":       sess.URL,
		"sessionId": sess.ID,
	})
}

// PaymentSuccessHandler is the checkout success landing route. It verifies
// the session with Stripe before finalizing whatever the session metadata
// says was being paid for.
func (h Wallet) PaymentSuccessHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		config.ErrorStatus("session_id is required", http.StatusBadRequest, w, fmt.Errorf("missing session_id"))
		return
	}

	sess, err := h.Checkout.GetSession(sessionID)
	if err != nil {
		config.ErrorStatus("failed to verify checkout session", http.StatusBadGateway, w, err)
		return
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid &&
		sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusNoPaymentRequired {
		config.ErrorStatus("checkout session is not paid", http.StatusConflict, w, fmt.Errorf("payment status: %v", sess.PaymentStatus))
		return
	}

	kind := sess.Metadata["kind"]
	userID := sess.Metadata["userId"]
	amount, _ := strconv.ParseFloat(sess.Metadata["amount"], 64)
	now := primitive.NewDateTimeFromTime(time.Now())

	// completing the pending transaction first makes this idempotent: a
	// replayed redirect finds no pending row and changes nothing
	claimed := true
	if kind != payments.CheckoutKindSubscription {
		res, err := h.TXDB.UpdateOne(context.Background(),
			bson.M{"stripeSessionId": sessionID, "status": models.TransactionPending},
			bson.M{"$set": bson.M{"status": models.TransactionCompleted}},
		)
		if err != nil {
			config.ErrorStatus("failed to complete transaction", http.StatusInternalServerError, w, err)
			return
		}
		claimed = res.ModifiedCount > 0
	}

	if claimed {
		switch kind {
		case payments.CheckoutKindDeposit:
			if err := h.creditWallet(context.Background(), userID, amount, now); err != nil {
				config.ErrorStatus("failed to credit wallet", http.StatusInternalServerError, w, err)
				return
			}
		case payments.CheckoutKindDonation:
			caseID := sess.Metadata["caseId"]
			fee, _ := strconv.ParseFloat(sess.Metadata["fee"], 64)
			if caseID != "" {
				cID, err := primitive.ObjectIDFromHex(caseID)
				if err != nil {
					config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
					return
				}
				_, err = h.CDB.UpdateOne(context.Background(), bson.M{"_id": cID},
					bson.M{"$inc": bson.M{"reward": amount - fee}, "$set": bson.M{"updatedAt": now}})
				if err != nil {
					config.ErrorStatus("failed to credit case reward", http.StatusInternalServerError, w, err)
					return
				}
			}
		case payments.CheckoutKindBoost:
			if err := h.activateBoost(context.Background(), sess.Metadata, sessionID, now); err != nil {
				config.ErrorStatus("failed to activate boost", http.StatusInternalServerError, w, err)
				return
			}
		case payments.CheckoutKindSubscription:
			fee := h.Policy.CalculateFee(amount, payments.KindSubscription, payments.FeeOptions{})
			_, err = h.TXDB.InsertOne(context.Background(), models.Transaction{
				ID:              primitive.NewObjectID(),
				UserID:          userID,
				Type:            models.TransactionSubscription,
				Status:          models.TransactionCompleted,
				Amount:          amount,
				Fee:             fee,
				Net:             amount - fee,
				StripeSessionID: sessionID,
				Description:     "subscription payment",
				CreatedAt:       now,
			})
			if err != nil {
				config.ErrorStatus("failed to record subscription", http.StatusInternalServerError, w, err)
				return
			}
		default:
			zap.S().Warnw("unknown checkout kind", "kind", kind, "sessionId", sessionID)
		}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Payment processed successfully",
		"kind":    kind,
	})
}

// PaymentCancelHandler is the checkout cancel landing route. Pending
// transactions for abandoned sessions stay pending; nothing is credited.
func (h Wallet) PaymentCancelHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Payment canceled",
	})
}

func (h Wallet) creditWallet(ctx context.Context, userID string, amount float64, now primitive.DateTime) error {
	upsert := true
	_, err := h.DB.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$inc":         bson.M{"balance": amount},
			"$set":         bson.M{"updatedAt": now},
			"$setOnInsert": bson.M{"userId": userID, "createdAt": now},
		},
		&options.UpdateOptions{Upsert: &upsert},
	)
	return err
}

func (h Wallet) activateBoost(ctx context.Context, metadata map[string]string, sessionID string, now primitive.DateTime) error {
	caseID := metadata["caseId"]
	userID := metadata["userId"]
	boostType := metadata["boostType"]
	price, _ := strconv.ParseFloat(metadata["amount"], 64)

	tier, ok := boostTiers[boostType]
	if !ok {
		return fmt.Errorf("unknown boost type %q", boostType)
	}

	// a boost bought while another one went active loses quietly; the money
	// was already taken by Stripe, so log loudly for support to refund
	active, err := h.BDB.CountDocuments(ctx, bson.M{
		"caseId":        caseID,
		"status":        models.BoostStatusActive,
		"featuredUntil": bson.M{"$gt": now},
	})
	if err != nil {
		return err
	}
	if active > 0 {
		zap.S().Errorw("paid boost collided with an active boost",
			"caseId", caseID, "sessionId", sessionID)
		return nil
	}

	_, err = h.BDB.InsertOne(ctx, models.Boost{
		ID:              primitive.NewObjectID(),
		CaseID:          caseID,
		UserID:          userID,
		BoostType:       boostType,
		PricePaid:       price,
		FeaturedUntil:   primitive.NewDateTimeFromTime(now.Time().Add(tier.Duration)),
		Status:          models.BoostStatusActive,
		StripeSessionID: sessionID,
		CreatedAt:       now,
	})
	return err
}
