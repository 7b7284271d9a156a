package repository

import (
	"github.com/nudgr/delegation-api/internal/database"
	"github.com/nudgr/delegation-api/internal/models"
	"github.com/nudgr/delegation-api/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Update persists changes to a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete removes a task
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}

// List retrieves a user's tasks narrowed by filter. The created-at range is
// inclusive of the start and exclusive of the end.
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).Where("user_id = ?", filter.UserID)

	if filter.GroupID != nil {
		query = query.Where("group_id = ?", *filter.GroupID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at < ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ListByUserAndGroup lists a user's tasks within one group, nearest deadline
// first, High priority before Low on deadline ties
func (r *GormTaskRepository) ListByUserAndGroup(userID, groupID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Order("dead_line ASC, CASE priority WHEN 'High' THEN 0 ELSE 1 END").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByGroup lists every task in a group
func (r *GormTaskRepository) ListByGroup(groupID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("group_id = ?", groupID).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByUser lists every task assigned to a user
func (r *GormTaskRepository) ListByUser(userID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("user_id = ?", userID).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListCompletedByUser lists a user's completed tasks
func (r *GormTaskRepository) ListCompletedByUser(userID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.
		Where("user_id = ? AND status = ?", userID, models.TaskStatusCompleted).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
