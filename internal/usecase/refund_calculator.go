package usecase

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"placement-backoffice/internal/domain"
)

var oneHundred = decimal.NewFromInt(100)

// RefundContext carries the non-ledger inputs of a refund computation.
type RefundContext struct {
	CancellationType domain.CancellationType
	Flags            domain.CandidateFlags
	ArrivalDate      *time.Time
	Now              time.Time
}

// ComputeRefund replays a payment ledger against a cancellation rule set and
// returns an itemized refund. Pure and deterministic: no clock reads, no
// side effects, safe for concurrent estimate calls.
//
// The breakdown is display-only. Line refund amounts are allocated
// proportionally and rounded per line, so they may not sum exactly to
// FinalRefund; FinalRefund is the authoritative total and no remainder
// forcing is applied.
func ComputeRefund(payments []domain.Payment, rc RefundContext, rules domain.CancellationSetting, overrides domain.RefundOverrides) (*domain.RefundCalculation, error) {
	if len(payments) == 0 {
		return &domain.RefundCalculation{RefundBreakdown: []domain.RefundLine{}}, nil
	}

	currencies := map[string]struct{}{}
	for _, p := range payments {
		currencies[p.Currency] = struct{}{}
	}
	if len(currencies) > 1 {
		var list []string
		for c := range currencies {
			list = append(list, c)
		}
		sort.Strings(list)
		return nil, &domain.MixedCurrencyError{Currencies: list}
	}

	totalPaid := decimal.Zero
	refundable := decimal.Zero
	for _, p := range payments {
		totalPaid = totalPaid.Add(p.Amount)
		if p.ResolveRefundable(rules.NonRefundableFees) {
			refundable = refundable.Add(p.Amount)
		}
	}
	nonRefundable := totalPaid.Sub(refundable)

	penalty := rules.PenaltyFee
	if overrides.OverrideFee != nil {
		penalty = *overrides.OverrideFee
	}

	serviceFees := decimal.NewFromInt(int64(monthsElapsed(rc))).Mul(rules.MonthlyServiceFee)

	calculated := refundable.Mul(rules.RefundPercentage).Div(oneHundred).
		Sub(penalty).
		Sub(serviceFees)
	if calculated.IsNegative() {
		calculated = decimal.Zero
	}
	if rules.MaxRefundAmount != nil && calculated.GreaterThan(*rules.MaxRefundAmount) {
		calculated = *rules.MaxRefundAmount
	}

	final := calculated
	if overrides.CustomRefundAmount != nil {
		// Explicit admin override is recorded verbatim.
		final = *overrides.CustomRefundAmount
	}

	breakdown := make([]domain.RefundLine, 0, len(payments))
	for _, p := range payments {
		line := domain.RefundLine{
			PaymentID:    p.ID,
			PaymentType:  p.TypeName,
			Amount:       p.Amount,
			IsRefundable: p.ResolveRefundable(rules.NonRefundableFees),
			RefundAmount: decimal.Zero,
		}
		if line.IsRefundable && !refundable.IsZero() {
			line.RefundAmount = p.Amount.Mul(calculated).Div(refundable).Round(2)
		}
		breakdown = append(breakdown, line)
	}

	return &domain.RefundCalculation{
		TotalPaid:           totalPaid,
		RefundableAmount:    refundable,
		NonRefundableAmount: nonRefundable,
		CalculatedRefund:    calculated,
		FinalRefund:         final,
		Currency:            payments[0].Currency,
		RefundBreakdown:     breakdown,
	}, nil
}

// monthsElapsed is the whole-month count since arrival for the two
// post-arrival types, and 0 otherwise. Partial months round down.
func monthsElapsed(rc RefundContext) int {
	if rc.CancellationType != domain.CancelPostArrivalWithin3 && rc.CancellationType != domain.CancelPostArrivalAfter3 {
		return 0
	}
	if rc.ArrivalDate == nil {
		return 0
	}
	return wholeMonthsBetween(*rc.ArrivalDate, rc.Now)
}

// wholeMonthsBetween counts complete calendar months from a to b.
func wholeMonthsBetween(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
