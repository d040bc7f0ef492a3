package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNoPartner         = errors.New("no partner linked")
	ErrAlreadyPartnered  = errors.New("user already has a partner")
	ErrSelfInvite        = errors.New("cannot accept own invite")
	ErrInviteAlreadyUsed = errors.New("partner invite already accepted")
)

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	GetAllUsers(ctx context.Context) ([]User, error)

	// GetPartner returns the current user's linked partner, or ErrNoPartner.
	GetPartner(ctx context.Context) (User, error)
	InvitePartner(ctx context.Context) (string, error)
	AcceptInvite(ctx context.Context, code string) (User, error)
	UnlinkPartner(ctx context.Context) error
}

type ServiceImpl struct {
	repo Repo
}

func NewUserService(repo Repo) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetUser(ctx, userId)
}

func (s *ServiceImpl) CreateUser(ctx context.Context, user User) (User, error) {
	if user.Uid == "" {
		user.Uid = uuid.NewString()
	}
	userId, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return User{}, err
	}
	user.Id = userId
	return user, nil
}

func (s *ServiceImpl) GetUser(ctx context.Context, id int) (User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *ServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return s.repo.GetUserByUid(ctx, uid)
}

func (s *ServiceImpl) UpdateUser(ctx context.Context, user User) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.UpdateUser(ctx, userId, user)
}

func (s *ServiceImpl) GetAllUsers(ctx context.Context) ([]User, error) {
	return s.repo.GetAllUsers(ctx)
}

func (s *ServiceImpl) GetPartner(ctx context.Context) (User, error) {
	current, err := CurrentUser(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if current.PartnerId == nil {
		return User{}, ErrNoPartner
	}
	return s.repo.GetUser(ctx, *current.PartnerId)
}

func (s *ServiceImpl) InvitePartner(ctx context.Context) (string, error) {
	current, err := CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}
	if current.Partnered() {
		return "", ErrAlreadyPartnered
	}
	code := uuid.NewString()
	if err := s.repo.CreateInvite(ctx, code, current.Id); err != nil {
		return "", err
	}
	log.Debugf("user %d created partner invite", current.Id)
	return code, nil
}

func (s *ServiceImpl) AcceptInvite(ctx context.Context, code string) (User, error) {
	current, err := CurrentUser(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if current.Partnered() {
		return User{}, ErrAlreadyPartnered
	}

	invite, err := s.repo.GetInvite(ctx, code)
	if err != nil {
		return User{}, err
	}
	if invite.AcceptedAt != nil {
		return User{}, ErrInviteAlreadyUsed
	}
	if invite.InviterUserId == current.Id {
		return User{}, ErrSelfInvite
	}

	inviter, err := s.repo.GetUser(ctx, invite.InviterUserId)
	if err != nil {
		return User{}, err
	}
	if inviter.Partnered() {
		return User{}, ErrAlreadyPartnered
	}

	if err := s.repo.AcceptInvite(ctx, code, inviter.Id, current.Id); err != nil {
		return User{}, err
	}
	log.Infof("linked users %d and %d as partners", inviter.Id, current.Id)
	return s.repo.GetUser(ctx, inviter.Id)
}

func (s *ServiceImpl) UnlinkPartner(ctx context.Context) error {
	current, err := CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	if current.PartnerId == nil {
		return ErrNoPartner
	}
	return s.repo.UnlinkPartners(ctx, current.Id, *current.PartnerId)
}
