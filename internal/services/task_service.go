// internal/services/task_service.go
package services

import (
	"context"
	"errors"

	"vectora/internal/errs"
	"vectora/internal/models"
	"vectora/internal/repositories"
)

// TaskService defines the interface for task-related business logic.
// Every method is scoped to the calling user.
type TaskService interface {
	Create(ctx context.Context, userID int64, in models.TaskCreate) (*models.Task, error)
	GetByID(ctx context.Context, userID, id int64) (*models.Task, error)
	GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, userID, id int64, upd models.TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, userID, id int64) error
}

type taskService struct {
	repo repositories.TaskRepository
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(repo repositories.TaskRepository) TaskService {
	return &taskService{repo: repo}
}

func (s *taskService) Create(ctx context.Context, userID int64, in models.TaskCreate) (*models.Task, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	description, err := normalizeDescription(in.Description)
	if err != nil {
		return nil, err
	}
	priority, err := normalizePriority(in.Priority)
	if err != nil {
		return nil, err
	}
	category, err := normalizeCategory(in.Category)
	if err != nil {
		return nil, err
	}
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}
	if err := validatePosition(in.Position); err != nil {
		return nil, err
	}
	minutes := defaultReminderMinutes
	if in.ReminderMinutesBefore != nil {
		minutes = *in.ReminderMinutesBefore
	}
	if err := validateReminderMinutes(minutes); err != nil {
		return nil, err
	}

	if in.ParentTaskID != nil {
		if _, err := s.repo.FindByID(ctx, userID, *in.ParentTaskID); err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return nil, invalid("parent task does not exist")
			}
			return nil, err
		}
	}

	task := &models.Task{
		UserID:                userID,
		ParentTaskID:          in.ParentTaskID,
		Title:                 title,
		Description:           description,
		DateTime:              in.DateTime,
		Priority:              priority,
		Position:              in.Position,
		Category:              category,
		Tags:                  tags,
		ReminderEnabled:       in.ReminderEnabled,
		ReminderMinutesBefore: minutes,
	}
	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, userID, id int64) (*models.Task, error) {
	return s.repo.FindByID(ctx, userID, id)
}

func (s *taskService) GetAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	if filter.Priority != nil {
		p, err := normalizePriority(*filter.Priority)
		if err != nil {
			return nil, err
		}
		filter.Priority = &p
	}
	return s.repo.FindAll(ctx, filter)
}

func (s *taskService) Update(ctx context.Context, userID, id int64, upd models.TaskUpdate) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		if task.Title, err = normalizeTitle(*upd.Title); err != nil {
			return nil, err
		}
	}
	if upd.Description != nil {
		if task.Description, err = normalizeDescription(*upd.Description); err != nil {
			return nil, err
		}
	}
	if upd.DateTime != nil {
		task.DateTime = upd.DateTime
		// a moved deadline opens a new reminder window
		task.LastRemindedAt = nil
	}
	if upd.Priority != nil {
		if task.Priority, err = normalizePriority(*upd.Priority); err != nil {
			return nil, err
		}
	}
	if upd.Status != nil {
		task.Status = *upd.Status
	}
	if upd.Position != nil {
		if err := validatePosition(*upd.Position); err != nil {
			return nil, err
		}
		task.Position = *upd.Position
	}
	if upd.Category != nil {
		if task.Category, err = normalizeCategory(upd.Category); err != nil {
			return nil, err
		}
	}
	if upd.Tags != nil {
		if task.Tags, err = normalizeTags(*upd.Tags); err != nil {
			return nil, err
		}
	}
	if upd.ReminderEnabled != nil {
		task.ReminderEnabled = *upd.ReminderEnabled
	}
	if upd.ReminderMinutesBefore != nil {
		if err := validateReminderMinutes(*upd.ReminderMinutesBefore); err != nil {
			return nil, err
		}
		task.ReminderMinutesBefore = *upd.ReminderMinutesBefore
		task.LastRemindedAt = nil
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.Delete(ctx, userID, id)
}
