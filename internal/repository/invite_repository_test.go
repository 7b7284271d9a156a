package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/nudgr/delegation-api/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func pendingInvite() (*models.Invite, *models.GroupMember, *models.SubUser) {
	now := time.Now()
	invite := &models.Invite{
		ID:        7,
		Token:     "tok",
		GroupID:   1,
		InviterID: 2,
		Status:    models.InvitePending,
		ExpiresAt: now.Add(time.Hour),
	}
	member := &models.GroupMember{
		GroupID:  1,
		UserID:   3,
		ParentID: 2,
		Role:     models.RoleMember,
		Level:    2,
		JoinedAt: now,
	}
	edge := &models.SubUser{
		ParentID: 2,
		UserID:   3,
		GroupID:  1,
		Role:     models.RoleSubUser,
		Level:    2,
		JoinedAt: now,
	}
	return invite, member, edge
}

// TestAccept_WritesAllThreeRows verifies the redemption transaction: the
// guarded status flip, the membership row, and the delegation edge commit
// together.
func TestAccept_WritesAllThreeRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInviteRepository(db)

	invite, member, edge := pendingInvite()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `invites` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `group_members`").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("INSERT INTO `sub_users`").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectCommit()

	err := repo.Accept(invite, member, edge)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Equal(t, models.InviteAccepted, invite.Status)
	require.NotNil(t, invite.InviteeID)
	require.Equal(t, member.UserID, *invite.InviteeID)
	require.NotNil(t, invite.UsedAt)
}

// TestAccept_LostRace verifies that a concurrent redemption rolls back: when
// the guarded UPDATE matches no pending row, nothing else is written.
func TestAccept_LostRace(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInviteRepository(db)

	invite, member, edge := pendingInvite()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `invites` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Accept(invite, member, edge)
	require.ErrorIs(t, err, ErrInviteNotPending)
	require.NoError(t, mock.ExpectationsWereMet())

	// the in-memory invite stays untouched on failure
	require.Equal(t, models.InvitePending, invite.Status)
	require.Nil(t, invite.InviteeID)
	require.Nil(t, invite.UsedAt)
}

func TestFindByToken(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInviteRepository(db)

	rows := sqlmock.NewRows([]string{"id", "token", "group_id", "inviter_id", "status"}).
		AddRow(7, "tok", 1, 2, "pending")
	mock.ExpectQuery("SELECT \\* FROM `invites` WHERE token = ").
		WillReturnRows(rows)

	invite, err := repo.FindByToken("tok")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	require.Equal(t, uint64(7), invite.ID)
	require.Equal(t, models.InvitePending, invite.Status)
}
