package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nudgr/delegation-api/internal/models"
	"github.com/nudgr/delegation-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskFieldsRequired   = errors.New("all task fields are required")
	ErrInvalidTaskPriority  = errors.New("priority must be Low or High")
	ErrInvalidTaskStatus    = errors.New("invalid task status")
	ErrAssigneeNotMember    = errors.New("assigned user is not part of the group")
	ErrDelegatorNotMember   = errors.New("delegating user is not part of the group")
	ErrLevelNotLower        = errors.New("delegator's level must be strictly less than the assignee's level")
	ErrTaskPermissionDenied = errors.New("user does not have permission to modify this task")
	ErrStatusOnlyUpdate     = errors.New("only the Status field may be updated at the same level")
)

// notificationTimeout bounds the fire-and-forget email send so a slow SMTP
// round-trip never holds a goroutine indefinitely.
const notificationTimeout = 10 * time.Second

// Notifier delivers the task-assigned notification. Failures must never
// surface into the task-creation response.
type Notifier interface {
	SendTaskAssigned(recipientEmail string, task *models.Task) error
}

// TaskService validates task mutations against the hierarchy's level ordering
// before touching task rows. Membership levels are re-read fresh on every
// call; nothing is cached across requests.
type TaskService struct {
	taskRepo  repository.TaskRepository
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
	notifier  Notifier
}

// NewTaskService creates a new TaskService. notifier may be nil, in which
// case assignment notifications are skipped.
func NewTaskService(taskRepo repository.TaskRepository, groupRepo repository.GroupRepository, userRepo repository.UserRepository, notifier Notifier) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		groupRepo: groupRepo,
		userRepo:  userRepo,
		notifier:  notifier,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Name     string
	Priority models.TaskPriority
	Deadline time.Time
	Status   models.TaskStatus
	GroupID  uint64
	ParentID uint64
	UserID   uint64
}

// CreateTask creates a task assigned by a delegator strictly above the
// assignee in level. The assignee is notified by email on a best-effort
// basis.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if input.Name == "" || input.Priority == "" || input.Deadline.IsZero() ||
		input.Status == "" || input.GroupID == 0 || input.ParentID == 0 || input.UserID == 0 {
		return nil, ErrTaskFieldsRequired
	}
	if !models.ValidPriority(input.Priority) {
		return nil, ErrInvalidTaskPriority
	}
	if !models.ValidStatus(input.Status) {
		return nil, ErrInvalidTaskStatus
	}

	assignee, err := s.groupRepo.FindMember(input.GroupID, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssigneeNotMember
		}
		return nil, fmt.Errorf("failed to verify assignee membership: %w", err)
	}

	delegator, err := s.groupRepo.FindMember(input.GroupID, input.ParentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDelegatorNotMember
		}
		return nil, fmt.Errorf("failed to verify delegator membership: %w", err)
	}

	if delegator.Level >= assignee.Level {
		return nil, ErrLevelNotLower
	}

	task := &models.Task{
		Name:     input.Name,
		Priority: input.Priority,
		Deadline: input.Deadline,
		Status:   input.Status,
		GroupID:  input.GroupID,
		ParentID: input.ParentID,
		UserID:   input.UserID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.notifyAssignee(input.UserID, task)

	return task, nil
}

// notifyAssignee sends the assignment email without blocking or failing the
// request.
func (s *TaskService) notifyAssignee(userID uint64, task *models.Task) {
	if s.notifier == nil {
		return
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		log.Printf("task notification skipped: failed to load assignee %d: %v", userID, err)
		return
	}

	go func(email string, task models.Task) {
		done := make(chan error, 1)
		go func() {
			done <- s.notifier.SendTaskAssigned(email, &task)
		}()

		select {
		case err := <-done:
			if err != nil {
				log.Printf("task notification failed for %s: %v", email, err)
			}
		case <-time.After(notificationTimeout):
			log.Printf("task notification timed out for %s", email)
		}
	}(user.Email, *task)
}

// UpdateTaskInput carries the fields present in an update request. Nil means
// the field was absent.
type UpdateTaskInput struct {
	Name     *string
	Priority *models.TaskPriority
	Deadline *time.Time
	Status   *models.TaskStatus
}

// UpdateTask applies the level-ordered permission rule: a caller strictly
// above the assignee edits every field, a caller at the same level may change
// only Status, a caller below the assignee is rejected. The returned bool
// reports whether this was a status-only update.
func (s *TaskService) UpdateTask(taskID uint64, input UpdateTaskInput, callerID uint64) (*models.Task, bool, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrTaskNotFound
		}
		return nil, false, fmt.Errorf("failed to find task: %w", err)
	}

	caller, assignee, err := s.resolveLevels(task, callerID)
	if err != nil {
		return nil, false, err
	}

	if caller.Level > assignee.Level {
		return nil, false, ErrTaskPermissionDenied
	}

	statusOnly := caller.Level == assignee.Level
	if statusOnly {
		if input.Name != nil || input.Priority != nil || input.Deadline != nil {
			return nil, false, ErrStatusOnlyUpdate
		}
		if input.Status == nil {
			return nil, false, ErrStatusOnlyUpdate
		}
	}

	if input.Name != nil {
		task.Name = *input.Name
	}
	if input.Priority != nil {
		if !models.ValidPriority(*input.Priority) {
			return nil, false, ErrInvalidTaskPriority
		}
		task.Priority = *input.Priority
	}
	if input.Deadline != nil {
		task.Deadline = *input.Deadline
	}
	if input.Status != nil {
		if !models.ValidStatus(*input.Status) {
			return nil, false, ErrInvalidTaskStatus
		}
		task.Status = *input.Status
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, false, fmt.Errorf("failed to update task: %w", err)
	}

	return task, statusOnly, nil
}

// DeleteTask removes a task. Only a caller strictly above the assignee may
// delete; same-level deletion is disallowed.
func (s *TaskService) DeleteTask(taskID, callerID uint64) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	caller, assignee, err := s.resolveLevels(task, callerID)
	if err != nil {
		return err
	}

	if caller.Level >= assignee.Level {
		return ErrTaskPermissionDenied
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// ListUserTasksInput represents filters for a user's task list
type ListUserTasksInput struct {
	UserID      uint64
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	PageSize    int
}

// ListUserTasks returns the user's tasks narrowed by the optional filters.
func (s *TaskService) ListUserTasks(input ListUserTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		UserID:      input.UserID,
		Status:      input.Status,
		Priority:    input.Priority,
		CreatedFrom: input.CreatedFrom,
		CreatedTo:   input.CreatedTo,
		Page:        input.Page,
		PageSize:    input.PageSize,
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// ListUserTasksInGroup returns the user's tasks in one group, sorted by
// nearest deadline first and High priority before Low on ties.
func (s *TaskService) ListUserTasksInGroup(userID, groupID uint64) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListByUserAndGroup(userID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group tasks: %w", err)
	}
	return tasks, nil
}

// resolveLevels re-reads the caller's and the assignee's membership rows for
// the task's group.
func (s *TaskService) resolveLevels(task *models.Task, callerID uint64) (caller, assignee *models.GroupMember, err error) {
	caller, err = s.groupRepo.FindMember(task.GroupID, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotGroupMember
		}
		return nil, nil, fmt.Errorf("failed to verify caller membership: %w", err)
	}

	assignee, err = s.groupRepo.FindMember(task.GroupID, task.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrAssigneeNotMember
		}
		return nil, nil, fmt.Errorf("failed to verify assignee membership: %w", err)
	}

	return caller, assignee, nil
}
