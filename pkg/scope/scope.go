package scope

import (
	"strings"

	"github.com/samkassa/samkassa/pkg/user"
)

type Name string

const (
	Ours    Name = "ours"
	Mine    Name = "mine"
	Partner Name = "partner"
)

// Scope is a structured filter descriptor for expense queries. Repositories
// translate it into parameterized WHERE clauses; no SQL is assembled here.
type Scope struct {
	Name Name
	// PayerIds is the set of paid_by_user_id values to include. Empty means
	// the scope matches nothing (partner view without a linked partner).
	PayerIds []int
	// SharedOnly excludes expenses with the personal split type.
	SharedOnly    bool
	ViewerId      int
	CounterpartId int
}

// HasCounterpart reports whether a linked partner participates in this scope.
func (s Scope) HasCounterpart() bool {
	return s.CounterpartId != 0
}

// Resolve maps a free-text requested scope onto a concrete filter for the
// given viewer. Unrecognized input falls back to "ours". Requesting the
// partner view without a linked partner silently downgrades to "mine";
// that is a policy choice, not an error.
func Resolve(viewer user.User, requested string) Scope {
	name := sanitize(requested)
	if name == Partner && !viewer.Partnered() {
		name = Mine
	}

	counterpartId := 0
	if viewer.Partnered() {
		counterpartId = *viewer.PartnerId
	}

	s := Scope{
		Name:          name,
		ViewerId:      viewer.Id,
		CounterpartId: counterpartId,
	}

	switch name {
	case Mine:
		s.PayerIds = []int{viewer.Id}
	case Partner:
		s.PayerIds = []int{counterpartId}
	default: // Ours
		s.PayerIds = []int{viewer.Id}
		if counterpartId != 0 {
			s.PayerIds = append(s.PayerIds, counterpartId)
		}
		s.SharedOnly = true
	}
	return s
}

func sanitize(requested string) Name {
	switch Name(strings.ToLower(strings.TrimSpace(requested))) {
	case Mine:
		return Mine
	case Partner:
		return Partner
	default:
		return Ours
	}
}
