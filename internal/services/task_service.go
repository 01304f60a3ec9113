package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/study-tracker-api/internal/constants"
	"github.com/yukikurage/study-tracker-api/internal/gamification"
	"github.com/yukikurage/study-tracker-api/internal/models"
	"github.com/yukikurage/study-tracker-api/internal/repository"
)

var (
	ErrSubjectRequired        = errors.New("subject is required")
	ErrTypeRequired           = errors.New("type is required")
	ErrInvalidDate            = errors.New("dates must use the YYYY-MM-DD format")
	ErrDueBeforeAssigned      = errors.New("due date cannot be before the assigned date")
	ErrInvalidPriority        = errors.New("priority must be one of alta, media or baja")
	ErrInvalidMonth           = errors.New("month must use the YYYY-MM format")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskService handles task business logic. Every mutation re-evaluates the
// workspace streak.
type TaskService struct {
	streaks   *StreakService
	aiService *AIService
}

// NewTaskService creates a new TaskService
func NewTaskService(streaks *StreakService, aiService *AIService) *TaskService {
	return &TaskService{
		streaks:   streaks,
		aiService: aiService,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Subject      string
	Type         string
	Description  string
	AssignedDate string
	DueDate      string
	Priority     models.Priority
	Attachment   *string
}

// UpdateTaskInput represents input for updating a task. Nil fields are left
// untouched.
type UpdateTaskInput struct {
	Subject         *string
	Type            *string
	Description     *string
	AssignedDate    *string
	DueDate         *string
	Priority        *models.Priority
	Completed       *bool
	Attachment      *string
	ClearAttachment bool
}

// TaskResult is a task mutation together with the streak evaluation it
// triggered.
type TaskResult struct {
	Task     *models.Task
	Progress Progress
}

// ListTasks returns the workspace tasks selected by filter
func (s *TaskService) ListTasks(ctx context.Context, ws Workspace, filter repository.TaskFilter) ([]models.Task, int64, error) {
	if filter.DueFrom != "" && !gamification.ValidDate(filter.DueFrom) {
		return nil, 0, ErrInvalidDate
	}
	if filter.DueTo != "" && !gamification.ValidDate(filter.DueTo) {
		return nil, 0, ErrInvalidDate
	}
	return ws.ListTasks(ctx, filter)
}

// GetTask returns a single task
func (s *TaskService) GetTask(ctx context.Context, ws Workspace, id string) (*models.Task, error) {
	return ws.FindTask(ctx, id)
}

// CreateTask validates and stores a new, not yet completed task
func (s *TaskService) CreateTask(ctx context.Context, ws Workspace, input CreateTaskInput) (*TaskResult, error) {
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}

	task := &models.Task{
		Subject:      strings.TrimSpace(input.Subject),
		Type:         strings.TrimSpace(input.Type),
		Description:  strings.TrimSpace(input.Description),
		AssignedDate: strings.TrimSpace(input.AssignedDate),
		DueDate:      strings.TrimSpace(input.DueDate),
		Priority:     input.Priority,
		Attachment:   input.Attachment,
	}
	if task.AssignedDate == "" {
		task.AssignedDate = s.streaks.Today()
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}

	if err := ws.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return s.withProgress(ctx, ws, task)
}

// UpdateTask applies input to an existing task
func (s *TaskService) UpdateTask(ctx context.Context, ws Workspace, id string, input UpdateTaskInput) (*TaskResult, error) {
	task, err := ws.FindTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Subject != nil {
		task.Subject = strings.TrimSpace(*input.Subject)
	}
	if input.Type != nil {
		task.Type = strings.TrimSpace(*input.Type)
	}
	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
	}
	if input.AssignedDate != nil {
		task.AssignedDate = strings.TrimSpace(*input.AssignedDate)
	}
	if input.DueDate != nil {
		task.DueDate = strings.TrimSpace(*input.DueDate)
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Completed != nil {
		task.Completed = *input.Completed
	}
	if input.ClearAttachment {
		task.Attachment = nil
	} else if input.Attachment != nil {
		task.Attachment = input.Attachment
	}

	if err := validateTask(task); err != nil {
		return nil, err
	}
	if err := ws.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return s.withProgress(ctx, ws, task)
}

// ToggleTask flips the completion flag of a task
func (s *TaskService) ToggleTask(ctx context.Context, ws Workspace, id string) (*TaskResult, error) {
	task, err := ws.FindTask(ctx, id)
	if err != nil {
		return nil, err
	}

	task.Completed = !task.Completed
	if err := ws.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return s.withProgress(ctx, ws, task)
}

// DeleteTask removes a task
func (s *TaskService) DeleteTask(ctx context.Context, ws Workspace, id string) (Progress, error) {
	if err := ws.DeleteTask(ctx, id); err != nil {
		return Progress{}, err
	}
	return s.streaks.Refresh(ctx, ws)
}

// CalendarDay is one day holding tasks due on it.
type CalendarDay struct {
	Date  string
	Tasks []models.Task
}

// Calendar groups the tasks due in month (YYYY-MM, default the current
// month) by due date, in date order. Days without tasks are omitted. The
// resolved month is returned with the days.
func (s *TaskService) Calendar(ctx context.Context, ws Workspace, month string) (string, []CalendarDay, error) {
	if month == "" {
		month = s.streaks.Today()[:7]
	}
	if !gamification.ValidDate(month + "-01") {
		return "", nil, ErrInvalidMonth
	}

	tasks, _, err := ws.ListTasks(ctx, repository.TaskFilter{
		DueFrom:       month + "-01",
		DueTo:         month + "-31",
		SortByDueDate: true,
	})
	if err != nil {
		return "", nil, err
	}

	days := make([]CalendarDay, 0)
	for _, t := range tasks {
		if n := len(days); n > 0 && days[n-1].Date == t.DueDate {
			days[n-1].Tasks = append(days[n-1].Tasks, t)
			continue
		}
		days = append(days, CalendarDay{Date: t.DueDate, Tasks: []models.Task{t}})
	}
	return month, days, nil
}

// GenerateTasksInput represents input for AI task generation
type GenerateTasksInput struct {
	Text string
}

// GenerateTasks uses AI to draft tasks from free text. Drafts are not
// stored; the client confirms them through CreateTask.
func (s *TaskService) GenerateTasks(ctx context.Context, input GenerateTasksInput) ([]GeneratedTask, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	today := s.streaks.Today()
	aiTasks, err := s.aiService.GenerateTasksFromText(ctx, input.Text, today)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		return nil, fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	for _, aiTask := range aiTasks {
		aiTask.Subject = strings.TrimSpace(aiTask.Subject)
		aiTask.Type = strings.TrimSpace(aiTask.Type)
		if aiTask.Subject == "" || aiTask.Type == "" {
			continue
		}
		if !gamification.ValidDate(aiTask.DueDate) || aiTask.DueDate < today {
			aiTask.DueDate = today
		}
		if !aiTask.Priority.Valid() {
			aiTask.Priority = models.PriorityMedium
		}
		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

func (s *TaskService) withProgress(ctx context.Context, ws Workspace, task *models.Task) (*TaskResult, error) {
	progress, err := s.streaks.Refresh(ctx, ws)
	if err != nil {
		return nil, err
	}
	return &TaskResult{Task: task, Progress: progress}, nil
}

func validateTask(task *models.Task) error {
	if task.Subject == "" {
		return ErrSubjectRequired
	}
	if task.Type == "" {
		return ErrTypeRequired
	}
	if !gamification.ValidDate(task.AssignedDate) || !gamification.ValidDate(task.DueDate) {
		return ErrInvalidDate
	}
	if task.DueDate < task.AssignedDate {
		return ErrDueBeforeAssigned
	}
	if !task.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}
