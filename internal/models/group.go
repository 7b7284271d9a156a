package models

import "time"

type Group struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	OwnerID   uint64    `gorm:"not null;index" json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`

	// Relations
	Owner   User          `gorm:"foreignKey:OwnerID" json:"-"`
	Members []GroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"`
	Tasks   []Task        `gorm:"foreignKey:GroupID" json:"tasks,omitempty"`
}
