package user

import (
	"context"
	"time"
)

type StubUserRepo struct {
	nextId  int
	users   map[int]User
	invites map[string]PartnerInvite
}

func NewStubUserRepo() *StubUserRepo {
	return &StubUserRepo{
		nextId:  0,
		users:   map[int]User{},
		invites: map[string]PartnerInvite{},
	}
}

func (s *StubUserRepo) CreateUser(ctx context.Context, user User) (int, error) {
	s.nextId++
	user.Id = s.nextId
	s.users[user.Id] = user
	return user.Id, nil
}

func (s *StubUserRepo) GetUser(ctx context.Context, id int) (User, error) {
	user, ok := s.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (s *StubUserRepo) GetUserByUid(ctx context.Context, uid string) (User, error) {
	for _, user := range s.users {
		if user.Uid == uid {
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (s *StubUserRepo) UpdateUser(ctx context.Context, userId int, user User) (User, error) {
	existing, ok := s.users[userId]
	if !ok {
		return User{}, ErrUserNotFound
	}
	existing.Name = user.Name
	existing.Email = user.Email
	existing.Color = user.Color
	s.users[userId] = existing
	return existing, nil
}

func (s *StubUserRepo) GetAllUsers(ctx context.Context) ([]User, error) {
	users := make([]User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	return users, nil
}

func (s *StubUserRepo) CreateInvite(ctx context.Context, code string, inviterUserId int) error {
	s.invites[code] = PartnerInvite{Code: code, InviterUserId: inviterUserId, CreatedAt: time.Now()}
	return nil
}

func (s *StubUserRepo) GetInvite(ctx context.Context, code string) (PartnerInvite, error) {
	invite, ok := s.invites[code]
	if !ok {
		return PartnerInvite{}, ErrInviteNotFound
	}
	return invite, nil
}

func (s *StubUserRepo) AcceptInvite(ctx context.Context, code string, inviterUserId int, accepterUserId int) error {
	inviter := s.users[inviterUserId]
	accepter := s.users[accepterUserId]
	inviter.PartnerId = &accepter.Id
	accepter.PartnerId = &inviter.Id
	s.users[inviterUserId] = inviter
	s.users[accepterUserId] = accepter
	invite := s.invites[code]
	now := time.Now()
	invite.AcceptedAt = &now
	s.invites[code] = invite
	return nil
}

func (s *StubUserRepo) UnlinkPartners(ctx context.Context, userId int, partnerId int) error {
	u := s.users[userId]
	p := s.users[partnerId]
	u.PartnerId = nil
	p.PartnerId = nil
	s.users[userId] = u
	s.users[partnerId] = p
	return nil
}

func (s *StubUserRepo) Cleanup() {
	s.users = map[int]User{}
	s.invites = map[string]PartnerInvite{}
	s.nextId = 0
}
