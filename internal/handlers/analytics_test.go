package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nudgr/delegation-api/internal/constants"
	"github.com/nudgr/delegation-api/internal/models"
	"github.com/nudgr/delegation-api/internal/repository"
	"github.com/nudgr/delegation-api/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type analyticsTestEnv struct {
	db      *gorm.DB
	handler *AnalyticsHandler
}

func setupAnalyticsTestEnv(t *testing.T) analyticsTestEnv {
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

	taskRepo := repository.NewTaskRepository(db)
	handler := NewAnalyticsHandler(services.NewAnalyticsService(taskRepo))

	gin.SetMode(gin.TestMode)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return analyticsTestEnv{db: db, handler: handler}
}

// seedTask inserts a task and pins its timestamps, bypassing the GORM
// auto-update hooks so the fold inputs are deterministic.
func (env analyticsTestEnv) seedTask(t *testing.T, userID, groupID uint64, status models.TaskStatus, createdAt, updatedAt, deadline time.Time) {
	t.Helper()

	task := &models.Task{
		Name:     "seeded",
		Priority: models.PriorityLow,
		Deadline: deadline,
		Status:   status,
		GroupID:  groupID,
		UserID:   userID,
		ParentID: 1,
	}
	require.NoError(t, env.db.Create(task).Error)
	require.NoError(t, env.db.Model(task).UpdateColumns(map[string]interface{}{
		"created_at": createdAt,
		"updated_at": updatedAt,
	}).Error)
}

func analyticsContext(callerID uint64, targetID string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(constants.ContextKeyUserID, callerID)
	c.Params = gin.Params{{Key: "userId", Value: targetID}}
	return c, w
}

func TestAnalyticsHandler_GetUserAnalysis(t *testing.T) {
	env := setupAnalyticsTestEnv(t)

	base := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	deadline := base.Add(24 * time.Hour)

	// one on-time completion, one delayed, one still pending
	env.seedTask(t, 1, 1, models.TaskStatusCompleted, base, base.Add(12*time.Hour), deadline)
	env.seedTask(t, 1, 1, models.TaskStatusCompleted, base, base.Add(36*time.Hour), deadline)
	env.seedTask(t, 1, 1, models.TaskStatusPending, base, base, deadline)
	// someone else's task must not leak in
	env.seedTask(t, 2, 1, models.TaskStatusCompleted, base, base.Add(time.Hour), deadline)

	c, w := analyticsContext(1, "1")
	env.handler.GetUserAnalysis(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		CollectiveStats services.CollectiveStats `json:"collectiveStats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	stats := response.CollectiveStats
	require.Equal(t, 3, stats.TotalTasks)
	require.Equal(t, 2, stats.CompletedTasks)
	require.Equal(t, 1, stats.OnTimeTasks)
	require.Equal(t, 1, stats.DelayedTasks)
	require.InDelta(t, 24.0, stats.AvgCompletionTime, 0.01) // mean of 12h and 36h
}

func TestAnalyticsHandler_GetTrends(t *testing.T) {
	env := setupAnalyticsTestEnv(t)

	march := time.Date(2026, time.March, 5, 10, 0, 0, 0, time.UTC)
	may := time.Date(2026, time.May, 5, 10, 0, 0, 0, time.UTC)

	env.seedTask(t, 1, 1, models.TaskStatusCompleted, march.Add(-time.Hour), march, march.Add(time.Hour))
	env.seedTask(t, 1, 1, models.TaskStatusCompleted, march.Add(-time.Hour), march, march.Add(time.Hour))
	env.seedTask(t, 1, 2, models.TaskStatusCompleted, may.Add(-time.Hour), may, may.Add(time.Hour))
	env.seedTask(t, 1, 1, models.TaskStatusPending, march, march, march.Add(time.Hour))

	c, w := analyticsContext(1, "1")
	env.handler.GetTrends(c)

	require.Equal(t, http.StatusOK, w.Code)

	var trends services.TrendsData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trends))

	require.Equal(t, 2, trends.CollectiveTrends["3"])
	require.Equal(t, 1, trends.CollectiveTrends["5"])
	require.Equal(t, 2, trends.GroupWiseTrends["1"]["3"])
	require.Equal(t, 1, trends.GroupWiseTrends["2"]["5"])
}

func TestAnalyticsHandler_GetPeakHours(t *testing.T) {
	env := setupAnalyticsTestEnv(t)

	morning := time.Date(2026, time.March, 5, 9, 30, 0, 0, time.UTC)
	evening := time.Date(2026, time.March, 6, 21, 15, 0, 0, time.UTC)

	env.seedTask(t, 1, 1, models.TaskStatusCompleted, morning.Add(-time.Hour), morning, morning.Add(time.Hour))
	env.seedTask(t, 1, 1, models.TaskStatusCompleted, evening.Add(-time.Hour), evening, evening.Add(time.Hour))
	env.seedTask(t, 1, 1, models.TaskStatusCompleted, evening.Add(-time.Hour), evening, evening.Add(time.Hour))

	c, w := analyticsContext(1, "1")
	env.handler.GetPeakHours(c)

	require.Equal(t, http.StatusOK, w.Code)

	var peaks services.PeaksData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &peaks))

	require.Equal(t, 1, peaks.CollectivePeakHours["9"])
	require.Equal(t, 2, peaks.CollectivePeakHours["21"])
	require.Equal(t, 2, peaks.GroupWisePeakHours["1"]["21"])
}

func TestAnalyticsHandler_InvalidUserID(t *testing.T) {
	env := setupAnalyticsTestEnv(t)

	c, w := analyticsContext(1, "not-a-number")
	env.handler.GetUserAnalysis(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
