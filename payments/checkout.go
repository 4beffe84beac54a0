package payments

import (
	"fmt"
	"os"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// Checkout kinds carried in session metadata so the redirect handlers know
// what to finalize
const (
	CheckoutKindDeposit      = "deposit"
	CheckoutKindDonation     = "donation"
	CheckoutKindBoost        = "boost"
	CheckoutKindSubscription = "subscription"
)

// CheckoutClient creates Stripe checkout sessions. The stripe API key is
// set globally at app initialization.
type CheckoutClient struct {
	BaseURL string
}

func (c CheckoutClient) successURL() string {
	return c.BaseURL + "/api/v1/payments/success?session_id={CHECKOUT_SESSION_ID}"
}

func (c CheckoutClient) cancelURL() string {
	return c.BaseURL + "/api/v1/payments/cancel"
}

func (c CheckoutClient) newPaymentSession(name string, amount float64, metadata map[string]string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyEUR)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(name),
					},
					UnitAmount: stripe.Int64(int64(amount * 100)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(c.successURL()),
		CancelURL:  stripe.String(c.cancelURL()),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	return session.New(params)
}

// NewDepositSession creates a checkout session for a wallet deposit
func (c CheckoutClient) NewDepositSession(userID string, amount float64) (*stripe.CheckoutSession, error) {
	return c.newPaymentSession("Wallet deposit", amount, map[string]string{
		"kind":   CheckoutKindDeposit,
		"userId": userID,
		"amount": fmt.Sprintf("%.2f", amount),
	})
}

// NewDonationSession creates a checkout session for a card-paid donation.
// caseID is empty for platform-wide donations.
func (c CheckoutClient) NewDonationSession(userID, caseID string, amount, fee float64) (*stripe.CheckoutSession, error) {
	name := "Donation to Unexplained Archive"
	if caseID != "" {
		name = "Case reward donation"
	}
	return c.newPaymentSession(name, amount, map[string]string{
		"kind":   CheckoutKindDonation,
		"userId": userID,
		"caseId": caseID,
		"amount": fmt.Sprintf("%.2f", amount),
		"fee":    fmt.Sprintf("%.2f", fee),
	})
}

// NewBoostSession creates a checkout session for a card-paid case boost
func (c CheckoutClient) NewBoostSession(userID, caseID, boostType string, price float64) (*stripe.CheckoutSession, error) {
	return c.newPaymentSession("Case boost "+boostType, price, map[string]string{
		"kind":      CheckoutKindBoost,
		"userId":    userID,
		"caseId":    caseID,
		"boostType": boostType,
		"amount":    fmt.Sprintf("%.2f", price),
	})
}

// NewSubscriptionSession creates a recurring checkout session against the
// configured subscription price
func (c CheckoutClient) NewSubscriptionSession(userID string) (*stripe.CheckoutSession, error) {
	priceID := os.Getenv("STRIPE_SUBSCRIPTION_PRICE_ID")
	if priceID == "" {
		return nil, fmt.Errorf("stripe subscription price is not set")
	}
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(c.successURL()),
		CancelURL:  stripe.String(c.cancelURL()),
	}
	params.AddMetadata("kind", CheckoutKindSubscription)
	params.AddMetadata("userId", userID)
	return session.New(params)
}

// GetSession fetches a checkout session so redirect handlers can verify
// payment status before crediting anything
func (c CheckoutClient) GetSession(id string) (*stripe.CheckoutSession, error) {
	return session.Get(id, nil)
}
