package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/nudgr/delegation-api/internal/constants"
	"github.com/nudgr/delegation-api/internal/models"
	"github.com/nudgr/delegation-api/internal/repository"
	"github.com/nudgr/delegation-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrInviteNotFound       = errors.New("invite not found")
	ErrInviteExpired        = errors.New("invite has expired")
	ErrInviteAlreadyUsed    = errors.New("invite has already been used")
	ErrInviteTokenExhausted = errors.New("failed to generate a unique invite token")
)

// InviteService manages the invite lifecycle: pending -> accepted on
// redemption, pending -> expired terminally. Expiry is enforced at use time
// by comparing against ExpiresAt; unused invites stay pending in storage.
type InviteService struct {
	inviteRepo     repository.InviteRepository
	groupRepo      repository.GroupRepository
	userRepo       repository.UserRepository
	frontendOrigin string
	ttl            time.Duration
}

// NewInviteService creates a new InviteService.
func NewInviteService(inviteRepo repository.InviteRepository, groupRepo repository.GroupRepository, userRepo repository.UserRepository, frontendOrigin string, ttl time.Duration) *InviteService {
	return &InviteService{
		inviteRepo:     inviteRepo,
		groupRepo:      groupRepo,
		userRepo:       userRepo,
		frontendOrigin: frontendOrigin,
		ttl:            ttl,
	}
}

// GenerateInviteLink creates a pending invite bound to the inviter and group
// and returns the URL embedding its token. Token collisions are retried
// against the unique constraint.
func (s *InviteService) GenerateInviteLink(groupID, inviterID uint64) (string, error) {
	if _, err := s.groupRepo.FindByID(groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrGroupNotFound
		}
		return "", fmt.Errorf("failed to find group: %w", err)
	}

	if _, err := s.groupRepo.FindMember(groupID, inviterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotGroupMember
		}
		return "", fmt.Errorf("failed to verify membership: %w", err)
	}

	var invite *models.Invite
	for attempt := 0; attempt < constants.MaxInviteTokenAttempts; attempt++ {
		token, err := utils.GenerateInviteToken()
		if err != nil {
			return "", fmt.Errorf("failed to generate invite token: %w", err)
		}

		invite = &models.Invite{
			Token:     token,
			GroupID:   groupID,
			InviterID: inviterID,
			Status:    models.InvitePending,
			ExpiresAt: time.Now().Add(s.ttl),
		}

		err = s.inviteRepo.Create(invite)
		if err == nil {
			return fmt.Sprintf("%s/invite/%s", s.frontendOrigin, token), nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", fmt.Errorf("failed to create invite: %w", err)
		}
	}

	return "", ErrInviteTokenExhausted
}

// CheckInvite is a read-only validity probe: it reports whether the token can
// still be redeemed without mutating the invite.
func (s *InviteService) CheckInvite(token string) (bool, error) {
	invite, err := s.inviteRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to find invite: %w", err)
	}

	if invite.Status != models.InvitePending {
		return false, nil
	}
	if time.Now().After(invite.ExpiresAt) {
		return false, nil
	}

	return true, nil
}

// AcceptInvite redeems a pending invite for the invitee: the new member
// enters one level below the inviter, and the membership row, the delegation
// edge, and the invite status flip commit atomically.
func (s *InviteService) AcceptInvite(token string, inviteeID uint64) (*models.GroupMember, *models.SubUser, error) {
	invite, err := s.inviteRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInviteNotFound
		}
		return nil, nil, fmt.Errorf("failed to find invite: %w", err)
	}

	if invite.Status == models.InviteAccepted {
		return nil, nil, ErrInviteAlreadyUsed
	}
	// An expired-but-unused invite keeps its pending status; it is simply
	// rejected on redemption.
	if invite.Status == models.InviteExpired || time.Now().After(invite.ExpiresAt) {
		return nil, nil, ErrInviteExpired
	}

	if _, err := s.userRepo.FindByID(inviteeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to find invitee: %w", err)
	}

	inviterMember, err := s.groupRepo.FindMember(invite.GroupID, invite.InviterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotGroupMember
		}
		return nil, nil, fmt.Errorf("failed to find inviter membership: %w", err)
	}

	if _, err := s.groupRepo.FindMember(invite.GroupID, inviteeID); err == nil {
		return nil, nil, ErrAlreadyGroupMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	now := time.Now()
	level := inviterMember.Level + 1

	member := &models.GroupMember{
		GroupID:  invite.GroupID,
		UserID:   inviteeID,
		ParentID: invite.InviterID,
		Role:     models.RoleMember,
		Level:    level,
		JoinedAt: now,
	}

	edge := &models.SubUser{
		ParentID: invite.InviterID,
		UserID:   inviteeID,
		GroupID:  invite.GroupID,
		Role:     models.RoleSubUser,
		Level:    level,
		JoinedAt: now,
	}

	if err := s.inviteRepo.Accept(invite, member, edge); err != nil {
		switch {
		case errors.Is(err, repository.ErrInviteNotPending):
			return nil, nil, ErrInviteAlreadyUsed
		case errors.Is(err, repository.ErrDuplicateMember):
			return nil, nil, ErrAlreadyGroupMember
		default:
			return nil, nil, fmt.Errorf("failed to accept invite: %w", err)
		}
	}

	return member, edge, nil
}
