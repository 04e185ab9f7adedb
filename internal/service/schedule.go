package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankledger/account-processing/internal/models"
)

// ratePrecision matches the fixed-point precision used for the monthly rate
// and the annuity coefficient: 10 fractional digits, round half up.
const ratePrecision = 10

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

func monthlyRate(annualRate decimal.Decimal) decimal.Decimal {
	return annualRate.
		DivRound(hundred, ratePrecision).
		DivRound(twelve, ratePrecision)
}

// MonthlyAnnuityPayment computes the fixed monthly payment for a loan of the
// given principal at annualRate percent over months:
//
//	P × [i × (1+i)^n] / [(1+i)^n − 1]
//
// rounded to 2 decimals. A zero rate degrades to an even principal split.
func MonthlyAnnuityPayment(principal, annualRate decimal.Decimal, months int) decimal.Decimal {
	rate := monthlyRate(annualRate)
	if rate.IsZero() {
		return principal.DivRound(decimal.NewFromInt(int64(months)), 2)
	}

	powered := one
	base := one.Add(rate)
	for i := 0; i < months; i++ {
		powered = powered.Mul(base)
	}

	coefficient := rate.Mul(powered).DivRound(powered.Sub(one), ratePrecision)
	return principal.Mul(coefficient).Round(2)
}

// BuildPaymentSchedule produces one PENDING payment row per month, offsets
// 1..months from start, for a disbursement of principal against the account.
// Each row carries the interest/principal split against the running remaining
// debt, and expires graceDays after its due date.
func BuildPaymentSchedule(account models.Account, principal decimal.Decimal, start time.Time, months, graceDays int) []models.Payment {
	annualRate := decimal.Zero
	if account.InterestRate.Valid {
		annualRate = account.InterestRate.Decimal
	}
	monthly := MonthlyAnnuityPayment(principal, annualRate, months)
	rate := monthlyRate(annualRate)

	schedule := make([]models.Payment, 0, months)
	remaining := principal
	for i := 1; i <= months; i++ {
		dueDate := start.AddDate(0, i, 0)
		expiration := dueDate.AddDate(0, 0, graceDays)

		interest := remaining.Mul(rate).Round(2)
		principalPart := monthly.Sub(interest).Round(2)
		remaining = remaining.Sub(principalPart).Round(2)

		schedule = append(schedule, models.Payment{
			AccountID:       account.ID,
			PaymentDate:     dueDate,
			ExpirationDate:  &expiration,
			Amount:          monthly,
			MonthlyPayment:  monthly,
			InterestAmount:  interest,
			PrincipalAmount: principalPart,
			IsCredit:        true,
			Type:            models.PaymentLoan,
			Status:          models.PaymentPending,
			Expired:         false,
		})
	}
	return schedule
}
