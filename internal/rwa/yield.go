package rwa

import (
	"github.com/shopspring/decimal"

	"github.com/LeJamon/rwaxrpl/internal/errs"
)

// Frequency is how often yield is paid out.
type Frequency string

const (
	Monthly    Frequency = "monthly"
	Quarterly  Frequency = "quarterly"
	SemiAnnual Frequency = "semi_annual"
	Annual     Frequency = "annual"
)

// PeriodsPerYear returns the number of payouts per year, or 0 if unknown.
func (f Frequency) PeriodsPerYear() int64 {
	switch f {
	case Monthly:
		return 12
	case Quarterly:
		return 4
	case SemiAnnual:
		return 2
	case Annual:
		return 1
	default:
		return 0
	}
}

// YieldSchedule is the payout plan for one year.
type YieldSchedule struct {
	PeriodsPerYear    int64           `json:"periodsPerYear"`
	RatePerPeriod     decimal.Decimal `json:"ratePerPeriod"`
	AmountPerPeriod   decimal.Decimal `json:"amountPerPeriod"`
	TotalAnnualAmount decimal.Decimal `json:"totalAnnualAmount"`
}

// CalculateYieldDistribution splits an annual percentage rate on principal
// into equal payouts.
func CalculateYieldDistribution(principal, annualRate decimal.Decimal, freq Frequency) (*YieldSchedule, error) {
	periods := freq.PeriodsPerYear()
	if periods == 0 {
		return nil, errs.Invalid("frequency", "%q is not one of monthly, quarterly, semi_annual, annual", freq)
	}
	if !principal.IsPositive() {
		return nil, errs.Invalid("principal", "must be positive")
	}
	if annualRate.IsNegative() || annualRate.GreaterThan(MaxYieldRate) {
		return nil, errs.Invalid("annualRate", "must be between 0 and %s percent", MaxYieldRate)
	}

	n := decimal.NewFromInt(periods)
	rate := annualRate.DivRound(n, 18)
	perPeriod := principal.Mul(rate).DivRound(decimal.NewFromInt(100), 18)
	return &YieldSchedule{
		PeriodsPerYear:    periods,
		RatePerPeriod:     rate,
		AmountPerPeriod:   perPeriod,
		TotalAnnualAmount: perPeriod.Mul(n),
	}, nil
}
