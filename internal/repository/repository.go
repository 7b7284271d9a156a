package repository

import (
	"time"

	"github.com/nudgr/delegation-api/internal/models"
)

// GroupRepository defines the interface for group and membership data access.
// Multi-row mutations (group creation with its founder row, edge insertion,
// cascading deletes) are single transactions.
type GroupRepository interface {
	// Create creates a group and its founding level-1 membership atomically
	Create(group *models.Group, founder *models.GroupMember) error

	// FindByID finds a group by ID
	FindByID(id uint64) (*models.Group, error)

	// Delete removes a group with its tasks, edges and memberships
	Delete(id uint64) error

	// ListForUser lists groups the user owns or is a member of
	ListForUser(userID uint64) ([]models.Group, error)

	// FindMember finds the membership row for (groupID, userID)
	FindMember(groupID, userID uint64) (*models.GroupMember, error)

	// ListMembers lists all members of a group with their users
	ListMembers(groupID uint64) ([]models.GroupMember, error)

	// ListMembershipsByUserID lists all memberships of a user
	ListMembershipsByUserID(userID uint64) ([]models.GroupMember, error)

	// AddMembership inserts a GroupMember row and its SubUser edge atomically
	AddMembership(member *models.GroupMember, edge *models.SubUser) error

	// FindSubUserEdge finds the delegation edge (groupID, parentID, userID)
	FindSubUserEdge(groupID, parentID, userID uint64) (*models.SubUser, error)

	// ListDirectReports lists the SubUser edges fanning out from the given
	// parents within a group; this is one BFS frontier
	ListDirectReports(groupID uint64, parentIDs []uint64) ([]models.SubUser, error)

	// RemoveSubUser removes the edge, the membership, and the removed
	// member's tasks in that group atomically
	RemoveSubUser(groupID, parentID, userID uint64) error
}

// InviteRepository defines the interface for invite data access
type InviteRepository interface {
	// Create inserts a new pending invite
	Create(invite *models.Invite) error

	// FindByToken finds an invite by its token
	FindByToken(token string) (*models.Invite, error)

	// Accept transitions a pending invite to accepted and inserts the new
	// member's GroupMember row and SubUser edge in one transaction. Returns
	// ErrInviteNotPending when the invite was already redeemed concurrently.
	Accept(invite *models.Invite, member *models.GroupMember, edge *models.SubUser) error
}

// TaskFilter holds filtering options for listing a user's tasks
type TaskFilter struct {
	UserID      uint64
	GroupID     *uint64
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	PageSize    int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID
	FindByID(id uint64) (*models.Task, error)

	// Update persists changes to a task
	Update(task *models.Task) error

	// Delete removes a task
	Delete(id uint64) error

	// List retrieves a user's tasks narrowed by filter
	List(filter TaskFilter) ([]models.Task, int64, error)

	// ListByUserAndGroup lists a user's tasks within one group ordered by
	// deadline ascending, High priority first on ties
	ListByUserAndGroup(userID, groupID uint64) ([]models.Task, error)

	// ListByGroup lists every task in a group
	ListByGroup(groupID uint64) ([]models.Task, error)

	// ListByUser lists every task assigned to a user
	ListByUser(userID uint64) ([]models.Task, error)

	// ListCompletedByUser lists a user's completed tasks
	ListCompletedByUser(userID uint64) ([]models.Task, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}
