package payments

import "math"

// Transaction kinds that carry a platform fee schedule
const (
	KindDeposit      = "deposit"
	KindDonation     = "donation"
	KindWithdrawal   = "withdrawal"
	KindSubscription = "subscription"
	KindCaseReward   = "case_reward"
)

// Payment methods accepted for donations and boosts
const (
	MethodWallet = "wallet"
	MethodCard   = "card"
)

// Policy is the single authority for fee rates and minimum amounts. Every
// component reads these values from here; there are no local minimums.
type Policy struct {
	MinStripeAmount     float64 // minimum for any Stripe-routed deposit/donation
	MinWithdrawal       float64 // minimum wallet withdrawal request
	DonationCardFeeRate float64
	CaseRewardFeeRate   float64
	WithdrawalFlatFee   float64
	WithdrawalFeeRate   float64
	SubscriptionFeeRate float64
}

// DefaultPolicy returns the platform fee schedule
func DefaultPolicy() Policy {
	return Policy{
		MinStripeAmount:     5,
		MinWithdrawal:       10,
		DonationCardFeeRate: 0.10,
		CaseRewardFeeRate:   0.15,
		WithdrawalFlatFee:   2,
		WithdrawalFeeRate:   0.02,
		SubscriptionFeeRate: 0.05,
	}
}

// FeeOptions qualify a fee calculation. PlatformDonation marks donations to
// the platform itself rather than a case; Method distinguishes card from
// wallet funding.
type FeeOptions struct {
	Method           string
	PlatformDonation bool
}

// CalculateFee returns the platform fee in euros for the given amount and
// transaction kind, rounded to cents.
//
// Donations paid by card against a case carry 10%; wallet-funded donations
// are internal transfers and carry nothing, as do platform-wide donations
// regardless of method. Reward payouts carry 15%, withdrawals a flat fee
// plus 2%, subscriptions 5%. Deposits are free.
func (p Policy) CalculateFee(amount float64, kind string, opts FeeOptions) float64 {
	switch kind {
	case KindDonation:
		if opts.PlatformDonation || opts.Method == MethodWallet {
			return 0
		}
		return roundCents(amount * p.DonationCardFeeRate)
	case KindCaseReward:
		return roundCents(amount * p.CaseRewardFeeRate)
	case KindWithdrawal:
		return roundCents(p.WithdrawalFlatFee + amount*p.WithdrawalFeeRate)
	case KindSubscription:
		return roundCents(amount * p.SubscriptionFeeRate)
	default:
		return 0
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
