package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/nudgr/delegation-api/internal/errors"
	"github.com/nudgr/delegation-api/internal/middleware"
	"github.com/nudgr/delegation-api/internal/models"
	"github.com/nudgr/delegation-api/internal/services"
	"github.com/nudgr/delegation-api/internal/utils"
)

// TaskHandler exposes the task mutation gateway over HTTP.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTask creates a task delegated from a strictly higher-level member to
// the assignee.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	if _, exists := middleware.GetUserID(c); !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		TaskName string              `json:"TaskName" binding:"required"`
		Priority models.TaskPriority `json:"Priority" binding:"required"`
		DeadLine time.Time           `json:"DeadLine" binding:"required"`
		Status   models.TaskStatus   `json:"Status" binding:"required"`
		GroupID  uint64              `json:"groupId" binding:"required"`
		ParentID uint64              `json:"parentId" binding:"required"`
		UserID   uint64              `json:"userId" binding:"required"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "All fields are required")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Name:     req.TaskName,
		Priority: req.Priority,
		Deadline: req.DeadLine,
		Status:   req.Status,
		GroupID:  req.GroupID,
		ParentID: req.ParentID,
		UserID:   req.UserID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Task created successfully",
		"data":    task,
	})
}

// UpdateTask updates a task under the level-ordered permission rule. The task
// ID travels in the body.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	// Pointer fields distinguish "absent" from "zero" so the same-level
	// status-only rule can reject any other field that was sent.
	type UpdateTaskRequest struct {
		ID       uint64               `json:"id" binding:"required"`
		TaskName *string              `json:"TaskName"`
		Priority *models.TaskPriority `json:"Priority"`
		DeadLine *time.Time           `json:"DeadLine"`
		Status   *models.TaskStatus   `json:"Status"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Task id is required")
		return
	}

	task, statusOnly, err := h.taskService.UpdateTask(req.ID, services.UpdateTaskInput{
		Name:     req.TaskName,
		Priority: req.Priority,
		Deadline: req.DeadLine,
		Status:   req.Status,
	}, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	message := "Task updated successfully"
	if statusOnly {
		message = "Task status updated successfully"
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    task,
	})
}

// DeleteTask removes a task when the caller sits strictly above the assignee.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("taskId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	if err := h.taskService.DeleteTask(taskID, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// GetUserAllTasks lists the caller's own tasks with optional status,
// priority, and creation-window filters.
func (h *TaskHandler) GetUserAllTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	input := services.ListUserTasksInput{
		UserID:   userID,
		Page:     params.Page,
		PageSize: params.Limit,
	}

	if status := c.Query("status"); status != "" {
		s := models.TaskStatus(status)
		if !models.ValidStatus(s) {
			apierrors.BadRequest(c, "Invalid status filter")
			return
		}
		input.Status = &s
	}
	if priority := c.Query("priority"); priority != "" {
		p := models.TaskPriority(priority)
		if !models.ValidPriority(p) {
			apierrors.BadRequest(c, "Invalid priority filter")
			return
		}
		input.Priority = &p
	}
	if start := c.Query("startDate"); start != "" {
		t, err := parseDate(start)
		if err != nil {
			apierrors.BadRequest(c, "Invalid startDate")
			return
		}
		input.CreatedFrom = &t
	}
	if end := c.Query("endDate"); end != "" {
		t, err := parseDate(end)
		if err != nil {
			apierrors.BadRequest(c, "Invalid endDate")
			return
		}
		input.CreatedTo = &t
	}

	tasks, total, err := h.taskService.ListUserTasks(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tasks fetched successfully",
		"Data":    tasks,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetUserTasks lists the caller's tasks within one group, nearest deadline
// first.
func (h *TaskHandler) GetUserTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	groupID, err := strconv.ParseUint(c.Param("groupId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid group ID")
		return
	}

	tasks, err := h.taskService.ListUserTasksInGroup(userID, groupID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tasks fetched successfully",
		"Data":    tasks,
	})
}

// parseDate accepts RFC3339 timestamps or bare dates.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskFieldsRequired),
		errors.Is(err, services.ErrInvalidTaskPriority),
		errors.Is(err, services.ErrInvalidTaskStatus),
		errors.Is(err, services.ErrStatusOnlyUpdate):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAssigneeNotMember),
		errors.Is(err, services.ErrDelegatorNotMember),
		errors.Is(err, services.ErrNotGroupMember),
		errors.Is(err, services.ErrLevelNotLower),
		errors.Is(err, services.ErrTaskPermissionDenied):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
