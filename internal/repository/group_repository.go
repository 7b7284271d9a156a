package repository

import (
	"errors"
	"fmt"

	"github.com/nudgr/delegation-api/internal/models"
	"gorm.io/gorm"
)

// GormGroupRepository is a GORM implementation of GroupRepository
type GormGroupRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateGroup is returned when the group insert fails inside the creation transaction.
	ErrCreateGroup = errors.New("group repository: create group failed")
	// ErrCreateFounder is returned when the founding membership insert fails inside the creation transaction.
	ErrCreateFounder = errors.New("group repository: create founding member failed")
	// ErrDuplicateMember is returned when the (group, user) membership already exists.
	ErrDuplicateMember = errors.New("group repository: member already exists")
)

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &GormGroupRepository{db: db}
}

// Create creates a group and its founding level-1 membership atomically
func (r *GormGroupRepository) Create(group *models.Group, founder *models.GroupMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateGroup, err)
		}

		founder.GroupID = group.ID

		if err := tx.Create(founder).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateFounder, err)
		}

		return nil
	})
}

// FindByID finds a group by ID
func (r *GormGroupRepository) FindByID(id uint64) (*models.Group, error) {
	var group models.Group
	if err := r.db.First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// Delete removes a group with its tasks, delegation edges and memberships in
// one transaction. Tasks cascade with the group.
func (r *GormGroupRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("group_id = ?", id).Delete(&models.SubUser{}).Error; err != nil {
			return err
		}

		if err := tx.Where("group_id = ?", id).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}

		if err := tx.Where("group_id = ?", id).Delete(&models.Invite{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Group{}, id).Error
	})
}

// ListForUser lists groups the user owns or is a member of
func (r *GormGroupRepository) ListForUser(userID uint64) ([]models.Group, error) {
	var groups []models.Group
	memberSubQuery := r.db.Model(&models.GroupMember{}).
		Select("group_id").
		Where("user_id = ?", userID)

	if err := r.db.
		Where("owner_id = ? OR id IN (?)", userID, memberSubQuery).
		Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// FindMember finds the membership row for (groupID, userID)
func (r *GormGroupRepository) FindMember(groupID, userID uint64) (*models.GroupMember, error) {
	var member models.GroupMember
	if err := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a group with their users
func (r *GormGroupRepository) ListMembers(groupID uint64) ([]models.GroupMember, error) {
	var members []models.GroupMember
	if err := r.db.Preload("User").
		Where("group_id = ?", groupID).
		Order("level ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListMembershipsByUserID lists all memberships of a user
func (r *GormGroupRepository) ListMembershipsByUserID(userID uint64) ([]models.GroupMember, error) {
	var memberships []models.GroupMember
	if err := r.db.Preload("Group").
		Where("user_id = ?", userID).
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// AddMembership inserts a GroupMember row and its SubUser edge atomically.
// The unique (group_id, user_id) index is the backstop against concurrent
// duplicate joins.
func (r *GormGroupRepository) AddMembership(member *models.GroupMember, edge *models.SubUser) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(member).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateMember
			}
			return err
		}

		return tx.Create(edge).Error
	})
}

// FindSubUserEdge finds the delegation edge (groupID, parentID, userID)
func (r *GormGroupRepository) FindSubUserEdge(groupID, parentID, userID uint64) (*models.SubUser, error) {
	var edge models.SubUser
	if err := r.db.Where("group_id = ? AND parent_id = ? AND user_id = ?", groupID, parentID, userID).
		First(&edge).Error; err != nil {
		return nil, err
	}
	return &edge, nil
}

// ListDirectReports lists the SubUser edges fanning out from the given parents
func (r *GormGroupRepository) ListDirectReports(groupID uint64, parentIDs []uint64) ([]models.SubUser, error) {
	if len(parentIDs) == 0 {
		return []models.SubUser{}, nil
	}

	var edges []models.SubUser
	if err := r.db.Preload("User").
		Where("group_id = ? AND parent_id IN ?", groupID, parentIDs).
		Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}

// RemoveSubUser removes the delegation edge, the membership, and the removed
// member's tasks in that group as one transaction
func (r *GormGroupRepository) RemoveSubUser(groupID, parentID, userID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ? AND parent_id = ? AND user_id = ?", groupID, parentID, userID).
			Delete(&models.SubUser{}).Error; err != nil {
			return err
		}

		if err := tx.Where("group_id = ? AND user_id = ?", groupID, userID).
			Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}

		return tx.Where("group_id = ? AND user_id = ?", groupID, userID).
			Delete(&models.Task{}).Error
	})
}
