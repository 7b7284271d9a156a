package models

import "time"

type MemberRole string

const (
	RoleCreator MemberRole = "creator"
	RoleMember  MemberRole = "member"
	RoleSubUser MemberRole = "subUser"
)

// GroupMember is the flat membership edge: it answers "is user X in group G,
// and at which level". Level is assigned once at creation time (inviting
// parent's level + 1, or 1 for the founder) and never re-derived.
type GroupMember struct {
	ID       uint64     `gorm:"primarykey" json:"id"`
	GroupID  uint64     `gorm:"not null;uniqueIndex:idx_group_user" json:"groupId"`
	UserID   uint64     `gorm:"not null;uniqueIndex:idx_group_user" json:"userId"`
	ParentID uint64     `gorm:"not null;index" json:"parentId"`
	Role     MemberRole `gorm:"type:varchar(20);not null" json:"role"`
	Level    int        `gorm:"not null" json:"level"`
	JoinedAt time.Time  `json:"joinedAt"`

	// Relations
	Group Group `gorm:"foreignKey:GroupID" json:"-"`
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
