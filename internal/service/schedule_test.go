package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankledger/account-processing/internal/models"
)

func TestMonthlyAnnuityPayment(t *testing.T) {
	tests := []struct {
		name       string
		principal  string
		annualRate string
		months     int
		want       string
	}{
		{
			name:       "twelve percent over a year",
			principal:  "100000",
			annualRate: "12",
			months:     12,
			want:       "8884.88",
		},
		{
			name:       "zero rate splits principal evenly",
			principal:  "1200",
			annualRate: "0",
			months:     12,
			want:       "100",
		},
		{
			name:       "zero rate with rounding",
			principal:  "500000",
			annualRate: "0",
			months:     12,
			want:       "41666.67",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal := decimal.RequireFromString(tt.principal)
			rate := decimal.RequireFromString(tt.annualRate)
			got := MonthlyAnnuityPayment(principal, rate, tt.months)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("MonthlyAnnuityPayment(%s, %s, %d) = %s, want %s",
					tt.principal, tt.annualRate, tt.months, got, tt.want)
			}
		})
	}
}

func TestBuildPaymentSchedule(t *testing.T) {
	account := models.Account{
		ID:           7,
		InterestRate: decimal.NewNullDecimal(decimal.RequireFromString("8.5")),
	}
	principal := decimal.RequireFromString("500000")
	start := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	schedule := BuildPaymentSchedule(account, principal, start, 12, 10)

	if len(schedule) != 12 {
		t.Fatalf("expected 12 schedule rows, got %d", len(schedule))
	}

	monthly := MonthlyAnnuityPayment(principal, account.InterestRate.Decimal, 12)
	principalSum := decimal.Zero
	for i, p := range schedule {
		if p.AccountID != account.ID {
			t.Errorf("row %d: account id = %d, want %d", i, p.AccountID, account.ID)
		}
		if !p.MonthlyPayment.Equal(monthly) {
			t.Errorf("row %d: monthly payment = %s, want %s", i, p.MonthlyPayment, monthly)
		}
		if !p.Amount.Equal(monthly) {
			t.Errorf("row %d: amount = %s, want %s", i, p.Amount, monthly)
		}
		if p.Status != models.PaymentPending {
			t.Errorf("row %d: status = %s, want PENDING", i, p.Status)
		}
		if p.Type != models.PaymentLoan {
			t.Errorf("row %d: type = %s, want LOAN_PAYMENT", i, p.Type)
		}
		if !p.IsCredit {
			t.Errorf("row %d: expected is_credit", i)
		}

		wantDue := start.AddDate(0, i+1, 0)
		if !p.PaymentDate.Equal(wantDue) {
			t.Errorf("row %d: due date = %s, want %s", i, p.PaymentDate, wantDue)
		}
		if p.ExpirationDate == nil {
			t.Fatalf("row %d: missing expiration date", i)
		}
		if want := wantDue.AddDate(0, 0, 10); !p.ExpirationDate.Equal(want) {
			t.Errorf("row %d: expiration = %s, want %s", i, p.ExpirationDate, want)
		}

		if !p.InterestAmount.Add(p.PrincipalAmount).Equal(monthly) {
			t.Errorf("row %d: interest %s + principal %s != monthly %s",
				i, p.InterestAmount, p.PrincipalAmount, monthly)
		}
		principalSum = principalSum.Add(p.PrincipalAmount)
	}

	// Rounding noise only: the principal parts must reassemble the loan.
	drift := principalSum.Sub(principal).Abs()
	if drift.GreaterThan(decimal.RequireFromString("0.15")) {
		t.Errorf("principal parts sum to %s, want %s within 0.15", principalSum, principal)
	}

	// Interest falls as the debt amortizes.
	for i := 1; i < len(schedule); i++ {
		if schedule[i].InterestAmount.GreaterThan(schedule[i-1].InterestAmount) {
			t.Errorf("row %d: interest %s grew from %s", i, schedule[i].InterestAmount, schedule[i-1].InterestAmount)
		}
	}

	first := schedule[0]
	wantFirstInterest := principal.Mul(monthlyRate(account.InterestRate.Decimal)).Round(2)
	if !first.InterestAmount.Equal(wantFirstInterest) {
		t.Errorf("first interest = %s, want %s", first.InterestAmount, wantFirstInterest)
	}
}

func TestBuildPaymentScheduleZeroRate(t *testing.T) {
	account := models.Account{ID: 1}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	schedule := BuildPaymentSchedule(account, decimal.NewFromInt(1200), start, 12, 10)

	if len(schedule) != 12 {
		t.Fatalf("expected 12 rows, got %d", len(schedule))
	}
	for i, p := range schedule {
		if !p.InterestAmount.IsZero() {
			t.Errorf("row %d: interest = %s, want 0", i, p.InterestAmount)
		}
		if !p.MonthlyPayment.Equal(decimal.NewFromInt(100)) {
			t.Errorf("row %d: monthly = %s, want 100", i, p.MonthlyPayment)
		}
	}
}
