package dto

import (
	"time"

	"github.com/nudgr/delegation-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MembershipDTO represents the new membership produced by invite acceptance
// or explicit sub-user creation.
type MembershipDTO struct {
	GroupID  uint64            `json:"groupId"`
	UserID   uint64            `json:"userId"`
	ParentID uint64            `json:"parentId"`
	Role     models.MemberRole `json:"role"`
	Level    int               `json:"level"`
	JoinedAt time.Time         `json:"joinedAt"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

// ToMembershipDTO converts a GroupMember model to MembershipDTO
func ToMembershipDTO(member models.GroupMember) MembershipDTO {
	return MembershipDTO{
		GroupID:  member.GroupID,
		UserID:   member.UserID,
		ParentID: member.ParentID,
		Role:     member.Role,
		Level:    member.Level,
		JoinedAt: member.JoinedAt,
	}
}
