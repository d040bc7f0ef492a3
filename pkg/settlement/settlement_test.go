package settlement

import (
	"math"
	"testing"
	"time"

	"github.com/samkassa/samkassa/pkg/expense"
	"github.com/samkassa/samkassa/pkg/scope"
	"github.com/samkassa/samkassa/pkg/user"
	"github.com/stretchr/testify/assert"
)

const (
	aliceId = 1
	bobId   = 2
)

func ratio(v float64) *float64 {
	return &v
}

func shared(amount float64, payerId int, splitType expense.SplitType) expense.Expense {
	return expense.Expense{
		Date:         time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		Amount:       amount,
		PaidByUserId: payerId,
		SplitType:    splitType,
	}
}

func TestComputeBalances_EqualSplit(t *testing.T) {
	expenses := []expense.Expense{shared(100, aliceId, expense.SplitEqual)}

	balances := ComputeBalances(expenses, aliceId, bobId)

	assert.Equal(t, 100.0, balances.Totals[aliceId].Paid)
	assert.Equal(t, 50.0, balances.Totals[aliceId].Share)
	assert.Equal(t, 0.0, balances.Totals[bobId].Paid)
	assert.Equal(t, 50.0, balances.Totals[bobId].Share)
	assert.Equal(t, 100.0, balances.TotalShared)
}

func TestComputeBalances_PersonalExpensesNeverParticipate(t *testing.T) {
	withPersonal := []expense.Expense{
		shared(100, aliceId, expense.SplitEqual),
		shared(999, aliceId, expense.SplitPersonal),
		shared(500, bobId, expense.SplitPersonal),
	}
	without := []expense.Expense{shared(100, aliceId, expense.SplitEqual)}

	assert.Equal(t, ComputeBalances(without, aliceId, bobId), ComputeBalances(withPersonal, aliceId, bobId))
}

func TestComputeBalances_CustomRatios(t *testing.T) {
	e := shared(100, aliceId, expense.SplitCustom)
	e.SplitRatioUser1 = ratio(70)
	e.SplitRatioUser2 = ratio(30)

	balances := ComputeBalances([]expense.Expense{e}, aliceId, bobId)

	assert.InDelta(t, 70.0, balances.Totals[aliceId].Share, 1e-9)
	assert.InDelta(t, 30.0, balances.Totals[bobId].Share, 1e-9)
	// shares of a full ratio pair always reconstruct the amount
	assert.InDelta(t, e.Amount, balances.Totals[aliceId].Share+balances.Totals[bobId].Share, 1e-9)
}

func TestComputeBalances_RatioDerivation(t *testing.T) {
	tests := []struct {
		name        string
		splitType   expense.SplitType
		ratio1      *float64
		ratio2      *float64
		wantViewer  float64
		wantPartner float64
	}{
		{name: "custom single ratio derives complement", splitType: expense.SplitCustom, ratio1: ratio(80), wantViewer: 0.8, wantPartner: 0.2},
		{name: "custom only second ratio derives complement", splitType: expense.SplitCustom, ratio2: ratio(25), wantViewer: 0.75, wantPartner: 0.25},
		{name: "custom ratios normalized when not summing to 100", splitType: expense.SplitCustom, ratio1: ratio(60), ratio2: ratio(60), wantViewer: 0.5, wantPartner: 0.5},
		{name: "custom no ratios defaults to even", splitType: expense.SplitCustom, wantViewer: 0.5, wantPartner: 0.5},
		{name: "custom negative ratio ignored", splitType: expense.SplitCustom, ratio1: ratio(-20), wantViewer: 0.5, wantPartner: 0.5},
		{name: "custom ratio above 100 ignored", splitType: expense.SplitCustom, ratio1: ratio(150), wantViewer: 0.5, wantPartner: 0.5},
		{name: "custom both zero falls back to even", splitType: expense.SplitCustom, ratio1: ratio(0), ratio2: ratio(0), wantViewer: 0.5, wantPartner: 0.5},
		{name: "bill without ratios defaults to even", splitType: expense.SplitBill, wantViewer: 0.5, wantPartner: 0.5},
		{name: "bill with ratios behaves like custom", splitType: expense.SplitBill, ratio1: ratio(90), ratio2: ratio(10), wantViewer: 0.9, wantPartner: 0.1},
		{name: "equal ignores stored ratios", splitType: expense.SplitEqual, ratio1: ratio(90), ratio2: ratio(10), wantViewer: 0.5, wantPartner: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := shared(100, aliceId, tt.splitType)
			e.SplitRatioUser1 = tt.ratio1
			e.SplitRatioUser2 = tt.ratio2

			balances := ComputeBalances([]expense.Expense{e}, aliceId, bobId)

			assert.InDelta(t, tt.wantViewer*100, balances.Totals[aliceId].Share, 1e-9)
			assert.InDelta(t, tt.wantPartner*100, balances.Totals[bobId].Share, 1e-9)
		})
	}
}

func TestComputeBalances_SkipsBrokenAmounts(t *testing.T) {
	expenses := []expense.Expense{
		shared(100, aliceId, expense.SplitEqual),
		shared(0, aliceId, expense.SplitEqual),
		shared(-50, bobId, expense.SplitEqual),
		shared(math.NaN(), bobId, expense.SplitEqual),
		shared(math.Inf(1), bobId, expense.SplitEqual),
	}

	balances := ComputeBalances(expenses, aliceId, bobId)

	assert.Equal(t, 100.0, balances.TotalShared)
	assert.Equal(t, 100.0, balances.Totals[aliceId].Paid)
	assert.Equal(t, 0.0, balances.Totals[bobId].Paid)
}

func alice() user.User {
	partnerId := bobId
	return user.User{Id: aliceId, Name: "Alice", PartnerId: &partnerId}
}

func bob() user.User {
	partnerId := aliceId
	return user.User{Id: bobId, Name: "Bob", PartnerId: &partnerId}
}

func TestBuildSettlementPayload_DebtorOwesCreditor(t *testing.T) {
	// Alice paid 100 split evenly: Bob owes Alice 50.
	balances := ComputeBalances([]expense.Expense{shared(100, aliceId, expense.SplitEqual)}, aliceId, bobId)
	b := bob()

	payload := BuildSettlementPayload(balances, alice(), &b, scope.Ours)

	assert.Equal(t, "50.00", payload.Amount)
	assert.Equal(t, "Alice", *payload.Creditor)
	assert.Equal(t, "Bob", *payload.Debtor)
	assert.Equal(t, "Bob owes Alice 50.00", payload.Message)
}

func TestBuildSettlementPayload_PartnerScopeNetsFromPartnerPerspective(t *testing.T) {
	balances := ComputeBalances([]expense.Expense{shared(100, aliceId, expense.SplitEqual)}, aliceId, bobId)
	b := bob()

	payload := BuildSettlementPayload(balances, alice(), &b, scope.Partner)

	// From Bob's perspective the debt is the same, just named from his side.
	assert.Equal(t, "50.00", payload.Amount)
	assert.Equal(t, "Alice", *payload.Creditor)
	assert.Equal(t, "Bob", *payload.Debtor)
}

func TestBuildSettlementPayload_SettledUp(t *testing.T) {
	expenses := []expense.Expense{
		shared(100, aliceId, expense.SplitEqual),
		shared(100, bobId, expense.SplitEqual),
	}
	balances := ComputeBalances(expenses, aliceId, bobId)
	b := bob()

	payload := BuildSettlementPayload(balances, alice(), &b, scope.Ours)

	assert.Equal(t, "0.00", payload.Amount)
	assert.Nil(t, payload.Creditor)
	assert.Nil(t, payload.Debtor)
	assert.Equal(t, "All settled up!", payload.Message)
}

func TestBuildSettlementPayload_SubEpsilonBalanceIsSettled(t *testing.T) {
	balances := Balances{Totals: map[int]Totals{
		aliceId: {Paid: 50.004, Share: 50.0},
		bobId:   {Paid: 50.0, Share: 50.004},
	}}
	b := bob()

	payload := BuildSettlementPayload(balances, alice(), &b, scope.Ours)

	assert.Equal(t, "0.00", payload.Amount)
	assert.Equal(t, "All settled up!", payload.Message)
}

func TestBuildSettlementPayload_NoPartner(t *testing.T) {
	single := user.User{Id: aliceId, Name: "Alice"}

	payload := BuildSettlementPayload(Balances{}, single, nil, scope.Mine)

	assert.Equal(t, "0.00", payload.Amount)
	assert.Nil(t, payload.Creditor)
	assert.Nil(t, payload.Debtor)
	assert.Equal(t, "Link a partner to calculate settlements.", payload.Message)
}

func TestBuildSettlementPayload_CreditorNeverEqualsDebtor(t *testing.T) {
	expenses := []expense.Expense{
		shared(321.45, aliceId, expense.SplitEqual),
		shared(78.22, bobId, expense.SplitBill),
	}
	balances := ComputeBalances(expenses, aliceId, bobId)
	b := bob()

	payload := BuildSettlementPayload(balances, alice(), &b, scope.Ours)

	if payload.Amount != "0.00" {
		assert.NotNil(t, payload.Creditor)
		assert.NotNil(t, payload.Debtor)
		assert.NotEqual(t, *payload.Creditor, *payload.Debtor)
	}
	// amount string is never negative
	assert.NotContains(t, payload.Amount, "-")
}
