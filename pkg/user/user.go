package user

import "time"

type User struct {
	Id    int
	Uid   string
	Name  string
	Email string
	// PartnerId is a mutual back-reference: once two users are linked, both
	// rows point at each other. Nil means unlinked.
	PartnerId *int
	Color     string
}

// Partnered reports whether the user has a linked partner.
func (u User) Partnered() bool {
	return u.PartnerId != nil
}

// PartnerInvite is a one-time code another user can accept to link accounts.
type PartnerInvite struct {
	Code          string
	InviterUserId int
	CreatedAt     time.Time
	AcceptedAt    *time.Time
}
