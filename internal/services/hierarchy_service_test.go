package services

import (
	"testing"

	"github.com/nudgr/delegation-api/internal/models"
	"github.com/nudgr/delegation-api/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupHierarchyTest(t *testing.T, maxDepth int) (*gorm.DB, *HierarchyService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.SubUser{},
		&models.Task{},
		&models.Invite{},
	)
	require.NoError(t, err)

	groupRepo := repository.NewGroupRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db, NewHierarchyService(groupRepo, taskRepo, userRepo, maxDepth)
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Name: email, Email: email, PasswordHash: "hashedpassword"}
	require.NoError(t, db.Create(user).Error)
	return user
}

// seedChain builds a straight delegation chain of the given length under a
// fresh group and returns the group plus the users, founder first.
func seedChain(t *testing.T, db *gorm.DB, svc *HierarchyService, length int) (*models.Group, []*models.User) {
	t.Helper()

	users := make([]*models.User, length)
	for i := range users {
		users[i] = seedUser(t, db, "user"+string(rune('a'+i))+"@example.com")
	}

	group, err := svc.CreateGroup("Chain", users[0].ID)
	require.NoError(t, err)

	for i := 1; i < length; i++ {
		_, _, err := svc.CreateSubUser(users[i-1].ID, users[i].ID, group.ID, "")
		require.NoError(t, err)
	}

	return group, users
}

// TestGetAllGroupsForUser_DepthCap verifies that tree expansion stops at the
// configured depth even when the stored chain is deeper.
func TestGetAllGroupsForUser_DepthCap(t *testing.T) {
	db, svc := setupHierarchyTest(t, 3)
	_, users := seedChain(t, db, svc, 5)

	trees, err := svc.GetAllGroupsForUser(users[0].ID)
	require.NoError(t, err)
	require.Len(t, trees, 1)
	require.Len(t, trees[0].Members, 1)

	root := trees[0].Members[0]
	require.Equal(t, users[0].ID, root.UserID)
	require.Len(t, root.SubUsers, 1)

	second := root.SubUsers[0]
	require.Equal(t, users[1].ID, second.UserID)
	require.Len(t, second.SubUsers, 1)

	// level 3 is the last expanded frontier; level 4 is cut off
	third := second.SubUsers[0]
	require.Equal(t, users[2].ID, third.UserID)
	require.Empty(t, third.SubUsers)
}

// TestGetAllGroupsForUser_FullChainWithinCap verifies the same chain expands
// fully when the cap allows it.
func TestGetAllGroupsForUser_FullChainWithinCap(t *testing.T) {
	db, svc := setupHierarchyTest(t, 5)
	_, users := seedChain(t, db, svc, 4)

	trees, err := svc.GetAllGroupsForUser(users[0].ID)
	require.NoError(t, err)
	require.Len(t, trees, 1)

	node := trees[0].Members[0]
	for i := 1; i < 4; i++ {
		require.Len(t, node.SubUsers, 1)
		node = node.SubUsers[0]
		require.Equal(t, users[i].ID, node.UserID)
		require.Equal(t, i+1, node.Level)
	}
	require.Empty(t, node.SubUsers)
}

// TestGetGroupLevelWise_DepthCap verifies the flattened view honors the cap
// relative to the caller's own node.
func TestGetGroupLevelWise_DepthCap(t *testing.T) {
	db, svc := setupHierarchyTest(t, 2)
	group, users := seedChain(t, db, svc, 4)

	result, err := svc.GetGroupLevelWise(users[1].ID)
	require.NoError(t, err)

	entry, ok := result[group.ID]
	require.True(t, ok)

	// caller plus one frontier; the grandchild is beyond the cap
	require.Len(t, entry.Users, 2)
	require.Equal(t, users[1].ID, entry.Users[0].ID)
	require.Equal(t, users[2].ID, entry.Users[1].ID)
}
