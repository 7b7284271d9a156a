package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nudgr/delegation-api/internal/models"
	"github.com/nudgr/delegation-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrGroupNameRequired    = errors.New("group name is required")
	ErrGroupNotFound        = errors.New("group not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotGroupMember       = errors.New("user is not a member of the group")
	ErrParentNotGroupMember = errors.New("parent is not a member of the group")
	ErrOnlyFounderCanDelete = errors.New("only the level-1 member can delete the group")
	ErrSubUserEdgeNotFound  = errors.New("sub-user edge not found")
	ErrInsufficientLevel    = errors.New("caller's level is not high enough for this action")
	ErrAlreadyGroupMember   = errors.New("user is already a member of this group")
)

// HierarchyService owns group creation, membership-level assignment, sub-user
// graph construction and deletion, and the bounded tree reads. A member's
// level is written once at creation (parent's level + 1, 1 for the founder)
// and never re-derived.
type HierarchyService struct {
	groupRepo repository.GroupRepository
	taskRepo  repository.TaskRepository
	userRepo  repository.UserRepository
	maxDepth  int
}

// NewHierarchyService creates a new HierarchyService. maxDepth caps the
// breadth-first expansion of the delegation tree.
func NewHierarchyService(groupRepo repository.GroupRepository, taskRepo repository.TaskRepository, userRepo repository.UserRepository, maxDepth int) *HierarchyService {
	return &HierarchyService{
		groupRepo: groupRepo,
		taskRepo:  taskRepo,
		userRepo:  userRepo,
		maxDepth:  maxDepth,
	}
}

// CreateGroup creates a group whose founder is the only level-1 member.
func (s *HierarchyService) CreateGroup(name string, callerID uint64) (*models.Group, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrGroupNameRequired
	}

	if _, err := s.userRepo.FindByID(callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	group := &models.Group{
		Name:    name,
		OwnerID: callerID,
	}

	founder := &models.GroupMember{
		UserID:   callerID,
		ParentID: callerID,
		Role:     models.RoleCreator,
		Level:    1,
		JoinedAt: time.Now(),
	}

	if err := s.groupRepo.Create(group, founder); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	return group, nil
}

// DeleteGroup removes a group with all of its memberships, delegation edges
// and tasks. Only the level-1 member may delete.
func (s *HierarchyService) DeleteGroup(groupID, callerID uint64) error {
	if _, err := s.groupRepo.FindByID(groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to find group: %w", err)
	}

	member, err := s.groupRepo.FindMember(groupID, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotGroupMember
		}
		return fmt.Errorf("failed to verify membership: %w", err)
	}

	if member.Level != 1 {
		return ErrOnlyFounderCanDelete
	}

	if err := s.groupRepo.Delete(groupID); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	return nil
}

// CreateSubUser grafts an existing user under a parent member. The new
// member's level is the parent's level + 1; both the flat membership row and
// the delegation edge are written in one transaction.
func (s *HierarchyService) CreateSubUser(parentID, userID, groupID uint64, role models.MemberRole) (*models.SubUser, *models.GroupMember, error) {
	if _, err := s.userRepo.FindByID(parentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to find parent user: %w", err)
	}
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}
	if _, err := s.groupRepo.FindByID(groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrGroupNotFound
		}
		return nil, nil, fmt.Errorf("failed to find group: %w", err)
	}

	parentMember, err := s.groupRepo.FindMember(groupID, parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrParentNotGroupMember
		}
		return nil, nil, fmt.Errorf("failed to verify parent membership: %w", err)
	}

	if role == "" {
		role = models.RoleSubUser
	}

	now := time.Now()
	level := parentMember.Level + 1

	member := &models.GroupMember{
		GroupID:  groupID,
		UserID:   userID,
		ParentID: parentID,
		Role:     role,
		Level:    level,
		JoinedAt: now,
	}

	edge := &models.SubUser{
		ParentID: parentID,
		UserID:   userID,
		GroupID:  groupID,
		Role:     models.RoleSubUser,
		Level:    level,
		JoinedAt: now,
	}

	if err := s.groupRepo.AddMembership(member, edge); err != nil {
		if errors.Is(err, repository.ErrDuplicateMember) {
			return nil, nil, ErrAlreadyGroupMember
		}
		return nil, nil, fmt.Errorf("failed to add membership: %w", err)
	}

	return edge, member, nil
}

// DeleteSubUser removes a delegation edge and the sub-user's membership.
// Deletion is allowed when the caller sits at or above the target's level.
func (s *HierarchyService) DeleteSubUser(groupID, parentID, subUserID, callerID uint64) error {
	callerMember, err := s.groupRepo.FindMember(groupID, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotGroupMember
		}
		return fmt.Errorf("failed to verify membership: %w", err)
	}

	edge, err := s.groupRepo.FindSubUserEdge(groupID, parentID, subUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubUserEdgeNotFound
		}
		return fmt.Errorf("failed to find sub-user edge: %w", err)
	}

	if callerMember.Level > edge.Level {
		return ErrInsufficientLevel
	}

	if err := s.groupRepo.RemoveSubUser(groupID, parentID, subUserID); err != nil {
		return fmt.Errorf("failed to remove sub-user: %w", err)
	}

	return nil
}

// MemberNode is one node of an expanded delegation tree.
type MemberNode struct {
	UserID   uint64            `json:"userId"`
	Name     string            `json:"name"`
	Email    string            `json:"email"`
	ParentID uint64            `json:"parentId"`
	Role     models.MemberRole `json:"role"`
	Level    int               `json:"level"`
	Tasks    []models.Task     `json:"tasks"`
	SubUsers []*MemberNode     `json:"subUsers"`
}

// GroupTree is a group with its membership tree expanded from the founder.
type GroupTree struct {
	ID        uint64        `json:"id"`
	Name      string        `json:"name"`
	OwnerID   uint64        `json:"ownerId"`
	CreatedAt time.Time     `json:"createdAt"`
	Members   []*MemberNode `json:"members"`
	Tasks     []models.Task `json:"tasks"`
}

// GetAllGroupsForUser returns every group the caller owns or belongs to, each
// with its delegation tree expanded breadth-first down to the configured
// depth cap and each member's tasks filtered to that group.
func (s *HierarchyService) GetAllGroupsForUser(callerID uint64) ([]*GroupTree, error) {
	groups, err := s.groupRepo.ListForUser(callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	trees := make([]*GroupTree, 0, len(groups))
	for _, group := range groups {
		tree, err := s.expandGroup(&group)
		if err != nil {
			return nil, err
		}
		trees = append(trees, tree)
	}

	return trees, nil
}

func (s *HierarchyService) expandGroup(group *models.Group) (*GroupTree, error) {
	members, err := s.groupRepo.ListMembers(group.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	tasks, err := s.taskRepo.ListByGroup(group.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group tasks: %w", err)
	}

	tasksByUser := make(map[uint64][]models.Task)
	for _, task := range tasks {
		tasksByUser[task.UserID] = append(tasksByUser[task.UserID], task)
	}

	roots := make([]uint64, 0, 1)
	for _, m := range members {
		if m.Level == 1 {
			roots = append(roots, m.UserID)
		}
	}

	nodes, err := s.expandSubtree(group.ID, roots, members, tasksByUser)
	if err != nil {
		return nil, err
	}

	return &GroupTree{
		ID:        group.ID,
		Name:      group.Name,
		OwnerID:   group.OwnerID,
		CreatedAt: group.CreatedAt,
		Members:   nodes,
		Tasks:     tasks,
	}, nil
}

// expandSubtree performs an iterative breadth-first expansion over the
// SubUser table starting from the given root user IDs. Depth is bounded by
// maxDepth; the roots count as depth 1.
func (s *HierarchyService) expandSubtree(groupID uint64, rootIDs []uint64, members []models.GroupMember, tasksByUser map[uint64][]models.Task) ([]*MemberNode, error) {
	memberByUser := make(map[uint64]models.GroupMember, len(members))
	for _, m := range members {
		memberByUser[m.UserID] = m
	}

	newNode := func(userID, parentID uint64) *MemberNode {
		m := memberByUser[userID]
		node := &MemberNode{
			UserID:   userID,
			ParentID: parentID,
			Role:     m.Role,
			Level:    m.Level,
			Tasks:    tasksByUser[userID],
			SubUsers: []*MemberNode{},
		}
		if node.Tasks == nil {
			node.Tasks = []models.Task{}
		}
		if m.User.ID != 0 {
			node.Name = m.User.Name
			node.Email = m.User.Email
		}
		return node
	}

	nodeByUser := make(map[uint64]*MemberNode)
	roots := make([]*MemberNode, 0, len(rootIDs))
	frontier := make([]uint64, 0, len(rootIDs))
	for _, id := range rootIDs {
		m, ok := memberByUser[id]
		if !ok {
			continue
		}
		node := newNode(id, m.ParentID)
		nodeByUser[id] = node
		roots = append(roots, node)
		frontier = append(frontier, id)
	}

	for depth := 1; depth < s.maxDepth && len(frontier) > 0; depth++ {
		edges, err := s.groupRepo.ListDirectReports(groupID, frontier)
		if err != nil {
			return nil, fmt.Errorf("failed to expand delegation tree: %w", err)
		}

		next := make([]uint64, 0, len(edges))
		for _, edge := range edges {
			if _, seen := nodeByUser[edge.UserID]; seen {
				continue
			}

			child := newNode(edge.UserID, edge.ParentID)
			if child.Name == "" && edge.User.ID != 0 {
				child.Name = edge.User.Name
				child.Email = edge.User.Email
			}

			nodeByUser[edge.UserID] = child
			if parent, ok := nodeByUser[edge.ParentID]; ok {
				parent.SubUsers = append(parent.SubUsers, child)
			}
			next = append(next, edge.UserID)
		}
		frontier = next
	}

	return roots, nil
}

// LevelWiseUser is one flattened entry of a caller's subtree.
type LevelWiseUser struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ParentID uint64 `json:"parentId"`
	Level    int    `json:"level"`
}

// GroupLevelWise is the flattened subtree of one group, scoped to the caller.
type GroupLevelWise struct {
	GroupID   uint64          `json:"groupId"`
	GroupName string          `json:"groupName"`
	Users     []LevelWiseUser `json:"users"`
}

// GetGroupLevelWise flattens, for each group the caller belongs to, the
// delegation subtree rooted at the caller's own node. The result scopes
// assignment choices to the caller's own reports.
func (s *HierarchyService) GetGroupLevelWise(callerID uint64) (map[uint64]*GroupLevelWise, error) {
	memberships, err := s.groupRepo.ListMembershipsByUserID(callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	caller, err := s.userRepo.FindByID(callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find caller: %w", err)
	}

	result := make(map[uint64]*GroupLevelWise, len(memberships))
	for _, membership := range memberships {
		users := []LevelWiseUser{{
			ID:       callerID,
			Name:     caller.Name,
			Email:    caller.Email,
			ParentID: membership.ParentID,
			Level:    membership.Level,
		}}

		seen := map[uint64]struct{}{callerID: {}}
		frontier := []uint64{callerID}
		for depth := 1; depth < s.maxDepth && len(frontier) > 0; depth++ {
			edges, err := s.groupRepo.ListDirectReports(membership.GroupID, frontier)
			if err != nil {
				return nil, fmt.Errorf("failed to flatten delegation tree: %w", err)
			}

			next := make([]uint64, 0, len(edges))
			for _, edge := range edges {
				if _, ok := seen[edge.UserID]; ok {
					continue
				}
				seen[edge.UserID] = struct{}{}

				entry := LevelWiseUser{
					ID:       edge.UserID,
					ParentID: edge.ParentID,
					Level:    edge.Level,
				}
				if edge.User.ID != 0 {
					entry.Name = edge.User.Name
					entry.Email = edge.User.Email
				}
				users = append(users, entry)
				next = append(next, edge.UserID)
			}
			frontier = next
		}

		result[membership.GroupID] = &GroupLevelWise{
			GroupID:   membership.GroupID,
			GroupName: membership.Group.Name,
			Users:     users,
		}
	}

	return result, nil
}
