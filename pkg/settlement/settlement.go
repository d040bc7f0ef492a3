package settlement

import (
	"fmt"
	"math"

	"github.com/samkassa/samkassa/pkg/expense"
	"github.com/samkassa/samkassa/pkg/scope"
	"github.com/samkassa/samkassa/pkg/user"
)

// settledEpsilon is the threshold under which a balance counts as settled.
// Half an öre: anything smaller cannot be transferred anyway.
const settledEpsilon = 0.005

const (
	msgSettled     = "All settled up!"
	msgLinkPartner = "Link a partner to calculate settlements."
)

// Totals holds what one user paid out of pocket and what their share of the
// shared costs is.
type Totals struct {
	Paid  float64
	Share float64
}

// Balances is the result of running the engine over a set of expenses.
type Balances struct {
	Totals map[int]Totals
	// TotalShared is the sum of all non-personal expense amounts processed.
	TotalShared float64
}

// Payload is the settlement record returned to clients. Amount is always a
// non-negative string with two decimals.
type Payload struct {
	Amount   string  `json:"amount"`
	Creditor *string `json:"creditor"`
	Debtor   *string `json:"debtor"`
	Message  string  `json:"message"`
}

// ComputeBalances accumulates paid and share totals for the viewer and their
// partner. Personal expenses never participate. Malformed ratios and amounts
// fail soft: a bad ratio falls back to an even split, a bad amount skips the
// expense entirely. The engine never returns an error by design of the
// calling contract.
func ComputeBalances(expenses []expense.Expense, viewerId int, partnerId int) Balances {
	totals := map[int]Totals{
		viewerId:  {},
		partnerId: {},
	}
	totalShared := 0.0

	for _, e := range expenses {
		if e.SplitType == expense.SplitPersonal {
			continue
		}
		if e.Amount <= 0 || math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
			continue
		}

		viewerRatio, partnerRatio := deriveRatios(e)

		viewerTotals := totals[viewerId]
		viewerTotals.Share += e.Amount * viewerRatio
		totals[viewerId] = viewerTotals

		partnerTotals := totals[partnerId]
		partnerTotals.Share += e.Amount * partnerRatio
		totals[partnerId] = partnerTotals

		payerTotals := totals[e.PaidByUserId]
		payerTotals.Paid += e.Amount
		totals[e.PaidByUserId] = payerTotals

		totalShared += e.Amount
	}

	return Balances{Totals: totals, TotalShared: totalShared}
}

// deriveRatios returns the (viewer, partner) cost ratio pair summing to 1.
// Custom and bill splits read the stored percentages; bill differs from
// custom only in intent (who fronted the bill), both default to an even
// split when no usable ratio is present. Everything else is a fixed 50/50.
func deriveRatios(e expense.Expense) (float64, float64) {
	if e.SplitType != expense.SplitCustom && e.SplitType != expense.SplitBill {
		return 0.5, 0.5
	}

	r1, ok1 := validRatio(e.SplitRatioUser1)
	r2, ok2 := validRatio(e.SplitRatioUser2)

	switch {
	case ok1 && ok2:
		sum := r1 + r2
		if sum <= 0 {
			return 0.5, 0.5
		}
		return r1 / sum, r2 / sum
	case ok1:
		return r1 / 100, (100 - r1) / 100
	case ok2:
		return (100 - r2) / 100, r2 / 100
	default:
		return 0.5, 0.5
	}
}

// validRatio accepts percentages in [0, 100]; everything else is treated as absent.
func validRatio(r *float64) (float64, bool) {
	if r == nil {
		return 0, false
	}
	v := *r
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 100 {
		return 0, false
	}
	return v, true
}

// BuildSettlementPayload turns accumulated balances into the settlement
// record. With no partner linked it always reports the link-a-partner
// message and never attempts computation. The partner scope nets the
// balance from the partner's perspective; every other scope nets from the
// viewer's.
func BuildSettlementPayload(balances Balances, viewer user.User, partner *user.User, scopeName scope.Name) Payload {
	if partner == nil {
		return Payload{Amount: "0.00", Message: msgLinkPartner}
	}

	perspective := viewer
	counterpart := *partner
	if scopeName == scope.Partner {
		perspective = *partner
		counterpart = viewer
	}

	totals := balances.Totals[perspective.Id]
	balance := totals.Paid - totals.Share
	if math.Abs(balance) < settledEpsilon {
		return Payload{Amount: "0.00", Message: msgSettled}
	}

	amount := fmt.Sprintf("%.2f", math.Abs(balance))
	var creditor, debtor user.User
	if balance > 0 {
		creditor, debtor = perspective, counterpart
	} else {
		creditor, debtor = counterpart, perspective
	}
	return Payload{
		Amount:   amount,
		Creditor: &creditor.Name,
		Debtor:   &debtor.Name,
		Message:  fmt.Sprintf("%s owes %s %s", debtor.Name, creditor.Name, amount),
	}
}
