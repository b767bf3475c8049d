package inventory

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/vehicle-inventory/internal/models"
	"github.com/ukydev/vehicle-inventory/internal/session"
)

// CreateTask validates fields and stores a new task.
func (s *Service) CreateTask(ctx context.Context, sess session.Session, fields map[string]any) (*models.Task, error) {
	if err := authorize(sess, models.PermManageTasks); err != nil {
		return nil, err
	}
	rec, violations := s.validator.Task(fields)
	if len(violations) > 0 {
		return nil, violations
	}

	task := &models.Task{TaskFields: rec, CreatedBy: sess.UserID()}
	if err := s.store.Tasks.InsertTask(ctx, task); err != nil {
		return nil, s.backendError("create_task", err, logrus.Fields{"task_name": rec.TaskName})
	}
	return task, nil
}

// UpdateTask validates fields and replaces the writable attributes of task
// id.
func (s *Service) UpdateTask(ctx context.Context, sess session.Session, id string, fields map[string]any) (*models.Task, error) {
	if err := authorize(sess, models.PermManageTasks); err != nil {
		return nil, err
	}
	rec, violations := s.validator.Task(fields)
	if len(violations) > 0 {
		return nil, violations
	}

	task, err := s.store.Tasks.UpdateTask(ctx, id, rec)
	if err != nil {
		return nil, s.backendError("update_task", err, logrus.Fields{"task_id": id})
	}
	return task, nil
}

// ListTasks lists the tasks matching the given filter fields.
func (s *Service) ListTasks(ctx context.Context, sess session.Session, filters map[string]any) ([]models.Task, error) {
	if err := authorize(sess, models.PermViewTasks); err != nil {
		return nil, err
	}
	f, violations := s.validator.TaskFilters(filters)
	if len(violations) > 0 {
		return nil, violations
	}

	tasks, err := s.store.Tasks.FindTasks(ctx, f)
	if err != nil {
		return nil, s.backendError("list_tasks", err, logrus.Fields{"filters": f})
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}
