package models

import "time"

type TaskPriority string

const (
	PriorityLow  TaskPriority = "Low"
	PriorityHigh TaskPriority = "High"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "InProgress"
	TaskStatusCompleted  TaskStatus = "Completed"
	TaskStatusBlocked    TaskStatus = "Blocked"
)

// ValidPriority reports whether p is a known priority value.
func ValidPriority(p TaskPriority) bool {
	return p == PriorityLow || p == PriorityHigh
}

// ValidStatus reports whether s is a known status value.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusBlocked:
		return true
	}
	return false
}

// Task JSON keys follow the wire contract of the existing clients
// (TaskName/DeadLine casing included).
type Task struct {
	ID        uint64       `gorm:"primarykey" json:"id"`
	Name      string       `gorm:"column:task_name;type:varchar(255);not null" json:"TaskName"`
	Priority  TaskPriority `gorm:"type:varchar(10);not null" json:"Priority"`
	Deadline  time.Time    `gorm:"column:dead_line;not null" json:"DeadLine"`
	Status    TaskStatus   `gorm:"type:varchar(20);not null;default:'Pending'" json:"Status"`
	GroupID   uint64       `gorm:"not null;index" json:"groupId"`
	UserID    uint64       `gorm:"not null;index" json:"userId"`
	ParentID  uint64       `gorm:"not null;index" json:"parentId"`
	CreatedAt time.Time    `json:"CreatedAt"`
	UpdatedAt time.Time    `json:"UpdatedAt"`

	// Relations
	Group    Group `gorm:"foreignKey:GroupID" json:"-"`
	Assignee User  `gorm:"foreignKey:UserID" json:"-"`
}
