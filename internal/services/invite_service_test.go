package services

import (
	"strings"
	"testing"
	"time"

	"github.com/nudgr/delegation-api/internal/models"
	"github.com/nudgr/delegation-api/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// collidingInviteRepo wraps a real repository and fails the first N Create
// calls with a duplicate-key error, simulating token collisions.
type collidingInviteRepo struct {
	repository.InviteRepository
	failures int
	calls    int
}

func (r *collidingInviteRepo) Create(invite *models.Invite) error {
	r.calls++
	if r.calls <= r.failures {
		return gorm.ErrDuplicatedKey
	}
	return r.InviteRepository.Create(invite)
}

func setupInviteServiceTest(t *testing.T, failures int) (*gorm.DB, *InviteService, *collidingInviteRepo) {
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
	userRepo := repository.NewUserRepository(db)
	inviteRepo := &collidingInviteRepo{
		InviteRepository: repository.NewInviteRepository(db),
		failures:         failures,
	}

	svc := NewInviteService(inviteRepo, groupRepo, userRepo, "http://localhost:3000", 24*time.Hour)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db, svc, inviteRepo
}

func seedGroupWithFounder(t *testing.T, db *gorm.DB) (*models.Group, *models.User) {
	t.Helper()

	founder := &models.User{Name: "founder", Email: "founder@example.com", PasswordHash: "hashedpassword"}
	require.NoError(t, db.Create(founder).Error)

	group := &models.Group{Name: "Engineering", OwnerID: founder.ID}
	require.NoError(t, db.Create(group).Error)

	member := &models.GroupMember{
		GroupID:  group.ID,
		UserID:   founder.ID,
		ParentID: founder.ID,
		Role:     models.RoleCreator,
		Level:    1,
		JoinedAt: time.Now(),
	}
	require.NoError(t, db.Create(member).Error)

	return group, founder
}

// TestGenerateInviteLink_RetriesOnCollision verifies that a duplicate token
// is retried with a fresh one rather than surfaced to the caller.
func TestGenerateInviteLink_RetriesOnCollision(t *testing.T) {
	db, svc, repo := setupInviteServiceTest(t, 2)
	group, founder := seedGroupWithFounder(t, db)

	link, err := svc.GenerateInviteLink(group.ID, founder.ID)
	require.NoError(t, err)
	require.Equal(t, 3, repo.calls)
	require.True(t, strings.HasPrefix(link, "http://localhost:3000/invite/"))

	var count int64
	db.Model(&models.Invite{}).Where("group_id = ?", group.ID).Count(&count)
	require.Equal(t, int64(1), count)
}

// TestGenerateInviteLink_RetriesExhausted verifies the bounded retry loop
// eventually gives up.
func TestGenerateInviteLink_RetriesExhausted(t *testing.T) {
	db, svc, repo := setupInviteServiceTest(t, 3)
	group, founder := seedGroupWithFounder(t, db)

	_, err := svc.GenerateInviteLink(group.ID, founder.ID)
	require.ErrorIs(t, err, ErrInviteTokenExhausted)
	require.Equal(t, 3, repo.calls)
}

// TestGenerateInviteLink_GroupMissing verifies the existence checks run
// before any token work.
func TestGenerateInviteLink_GroupMissing(t *testing.T) {
	_, svc, repo := setupInviteServiceTest(t, 0)

	_, err := svc.GenerateInviteLink(999, 1)
	require.ErrorIs(t, err, ErrGroupNotFound)
	require.Zero(t, repo.calls)
}
