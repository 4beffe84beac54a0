package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateFeeDonationByCard(t *testing.T) {
	p := DefaultPolicy()
	fee := p.CalculateFee(100, KindDonation, FeeOptions{Method: MethodCard})
	assert.Equal(t, 10.00, fee)
}

func TestCalculateFeeDonationFromWallet(t *testing.T) {
	p := DefaultPolicy()
	fee := p.CalculateFee(100, KindDonation, FeeOptions{Method: MethodWallet})
	assert.Equal(t, 0.00, fee)
}

func TestCalculateFeePlatformDonation(t *testing.T) {
	p := DefaultPolicy()
	fee := p.CalculateFee(100, KindDonation, FeeOptions{Method: MethodCard, PlatformDonation: true})
	assert.Equal(t, 0.00, fee)
}

func TestCalculateFeeWithdrawal(t *testing.T) {
	p := DefaultPolicy()
	fee := p.CalculateFee(100, KindWithdrawal, FeeOptions{})
	assert.Equal(t, 4.00, fee)
}

func TestCalculateFeeCaseReward(t *testing.T) {
	p := DefaultPolicy()
	fee := p.CalculateFee(100, KindCaseReward, FeeOptions{})
	assert.Equal(t, 15.00, fee)
}

func TestCalculateFeeSubscription(t *testing.T) {
	p := DefaultPolicy()
	fee := p.CalculateFee(100, KindSubscription, FeeOptions{})
	assert.Equal(t, 5.00, fee)
}

func TestCalculateFeeDeposit(t *testing.T) {
	p := DefaultPolicy()
	fee := p.CalculateFee(100, KindDeposit, FeeOptions{})
	assert.Equal(t, 0.00, fee)
}

func TestCalculateFeeRoundsToCents(t *testing.T) {
	p := DefaultPolicy()
	fee := p.CalculateFee(33.33, KindDonation, FeeOptions{Method: MethodCard})
	assert.Equal(t, 3.33, fee)

	fee = p.CalculateFee(9.99, KindCaseReward, FeeOptions{})
	assert.Equal(t, 1.50, fee)
}
