package repository

import (
	"errors"
	"time"

	"github.com/nudgr/delegation-api/internal/models"
	"gorm.io/gorm"
)

// GormInviteRepository is a GORM implementation of InviteRepository
type GormInviteRepository struct {
	db *gorm.DB
}

var (
	// ErrInviteNotPending is returned when redemption loses the race: the
	// invite row was no longer pending at commit time.
	ErrInviteNotPending = errors.New("invite repository: invite is not pending")
)

// NewInviteRepository creates a new InviteRepository
func NewInviteRepository(db *gorm.DB) InviteRepository {
	return &GormInviteRepository{db: db}
}

// Create inserts a new pending invite. A duplicate token surfaces as
// gorm.ErrDuplicatedKey for the caller's retry loop.
func (r *GormInviteRepository) Create(invite *models.Invite) error {
	return r.db.Create(invite).Error
}

// FindByToken finds an invite by its token
func (r *GormInviteRepository) FindByToken(token string) (*models.Invite, error) {
	var invite models.Invite
	if err := r.db.Where("token = ?", token).First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// Accept redeems an invite: the status flip, the GroupMember row and the
// SubUser edge commit together or not at all. The guarded UPDATE on
// status = pending makes double redemption lose cleanly.
func (r *GormInviteRepository) Accept(invite *models.Invite, member *models.GroupMember, edge *models.SubUser) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.Invite{}).
			Where("id = ? AND status = ?", invite.ID, models.InvitePending).
			Updates(map[string]interface{}{
				"status":     models.InviteAccepted,
				"invitee_id": member.UserID,
				"used_at":    now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInviteNotPending
		}

		if err := tx.Create(member).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateMember
			}
			return err
		}

		if err := tx.Create(edge).Error; err != nil {
			return err
		}

		invite.Status = models.InviteAccepted
		invite.InviteeID = &member.UserID
		invite.UsedAt = &now
		return nil
	})
}
