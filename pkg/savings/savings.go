package savings

import "time"

// Goal is a shared savings target. CurrentAmount is maintained by the
// contribution transactions and never drifts from the contribution rows.
type Goal struct {
	Id            int
	Name          string
	TargetAmount  float64
	CurrentAmount float64
	TargetDate    *time.Time
}

// Remaining is the capacity left before the goal is fully funded.
func (g Goal) Remaining() float64 {
	remaining := g.TargetAmount - g.CurrentAmount
	if remaining < 0 {
		return 0
	}
	return remaining
}

type Contribution struct {
	Id        int
	GoalId    int
	UserId    int
	Amount    float64
	Note      string
	CreatedAt time.Time
}

// ContributionResult reports what a contribution actually did after clamping.
type ContributionResult struct {
	Contribution Contribution
	// Capped is true when the requested amount exceeded the remaining
	// capacity and was reduced to fit.
	Capped bool
	// RemainingBefore is the capacity that was left before this contribution.
	RemainingBefore float64
}
