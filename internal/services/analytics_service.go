package services

import (
	"fmt"
	"strconv"

	"github.com/nudgr/delegation-api/internal/models"
	"github.com/nudgr/delegation-api/internal/repository"
)

// CollectiveStats summarizes a user's assignment history. A completed task is
// on time when its completion (last update) is at or before the deadline.
// AvgCompletionTime is the mean of (UpdatedAt - CreatedAt) in hours across
// completed tasks.
type CollectiveStats struct {
	TotalTasks        int     `json:"totalTasks"`
	CompletedTasks    int     `json:"completedTasks"`
	OnTimeTasks       int     `json:"onTimeTasks"`
	DelayedTasks      int     `json:"delayedTasks"`
	AvgCompletionTime float64 `json:"avgCompletionTime"`
}

// TrendsData buckets completed-task counts by calendar month (keys "1"-"12"),
// collectively and per group.
type TrendsData struct {
	CollectiveTrends map[string]int            `json:"collectiveTrends"`
	GroupWiseTrends  map[string]map[string]int `json:"groupWiseTrends"`
}

// PeaksData buckets completed-task counts by hour of day (keys "0"-"23"),
// collectively and per group.
type PeaksData struct {
	CollectivePeakHours map[string]int            `json:"collectivePeakHours"`
	GroupWisePeakHours  map[string]map[string]int `json:"groupWisePeakHours"`
}

// AnalyticsService derives read-only charting aggregates from the task table.
// It has no hierarchy awareness beyond grouping by group ID.
type AnalyticsService struct {
	taskRepo repository.TaskRepository
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(taskRepo repository.TaskRepository) *AnalyticsService {
	return &AnalyticsService{taskRepo: taskRepo}
}

// GetCollectiveStats folds the user's tasks into the summary counters.
func (s *AnalyticsService) GetCollectiveStats(userID uint64) (*CollectiveStats, error) {
	tasks, err := s.taskRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	stats := &CollectiveStats{TotalTasks: len(tasks)}
	var totalHours float64

	for _, task := range tasks {
		if task.Status != models.TaskStatusCompleted {
			continue
		}

		stats.CompletedTasks++
		if !task.UpdatedAt.After(task.Deadline) {
			stats.OnTimeTasks++
		} else {
			stats.DelayedTasks++
		}
		totalHours += task.UpdatedAt.Sub(task.CreatedAt).Hours()
	}

	if stats.CompletedTasks > 0 {
		stats.AvgCompletionTime = totalHours / float64(stats.CompletedTasks)
	}

	return stats, nil
}

// GetProductivityTrends buckets the user's completed tasks by calendar month.
func (s *AnalyticsService) GetProductivityTrends(userID uint64) (*TrendsData, error) {
	tasks, err := s.taskRepo.ListCompletedByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed tasks: %w", err)
	}

	trends := &TrendsData{
		CollectiveTrends: make(map[string]int),
		GroupWiseTrends:  make(map[string]map[string]int),
	}

	for _, task := range tasks {
		month := strconv.Itoa(int(task.UpdatedAt.Month()))
		trends.CollectiveTrends[month]++

		groupKey := strconv.FormatUint(task.GroupID, 10)
		if trends.GroupWiseTrends[groupKey] == nil {
			trends.GroupWiseTrends[groupKey] = make(map[string]int)
		}
		trends.GroupWiseTrends[groupKey][month]++
	}

	return trends, nil
}

// GetPeakHours buckets the user's completed tasks by hour of day.
func (s *AnalyticsService) GetPeakHours(userID uint64) (*PeaksData, error) {
	tasks, err := s.taskRepo.ListCompletedByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed tasks: %w", err)
	}

	peaks := &PeaksData{
		CollectivePeakHours: make(map[string]int),
		GroupWisePeakHours:  make(map[string]map[string]int),
	}

	for _, task := range tasks {
		hour := strconv.Itoa(task.UpdatedAt.Hour())
		peaks.CollectivePeakHours[hour]++

		groupKey := strconv.FormatUint(task.GroupID, 10)
		if peaks.GroupWisePeakHours[groupKey] == nil {
			peaks.GroupWisePeakHours[groupKey] = make(map[string]int)
		}
		peaks.GroupWisePeakHours[groupKey][hour]++
	}

	return peaks, nil
}
