package dto

import (
	"time"

	"github.com/yukikurage/study-tracker-api/internal/models"
	"github.com/yukikurage/study-tracker-api/internal/services"
	"github.com/yukikurage/study-tracker-api/internal/utils"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID           string          `json:"id"`
	Subject      string          `json:"subject"`
	Type         string          `json:"type"`
	Description  string          `json:"description"`
	AssignedDate string          `json:"assigned_date"`
	DueDate      string          `json:"due_date"`
	Priority     models.Priority `json:"priority"`
	Completed    bool            `json:"completed"`
	Attachment   *string         `json:"attachment"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// TaskMutationResponse is a changed task with the streak evaluation it caused
type TaskMutationResponse struct {
	Task     TaskDTO     `json:"task"`
	Progress ProgressDTO `json:"progress"`
}

// CalendarDayDTO holds the tasks due on one date
type CalendarDayDTO struct {
	Date  string    `json:"date"`
	Tasks []TaskDTO `json:"tasks"`
}

// CalendarResponse is a month of due tasks
type CalendarResponse struct {
	Month string           `json:"month"`
	Days  []CalendarDayDTO `json:"days"`
}

// SubjectStatDTO is the completion ratio of one subject
type SubjectStatDTO struct {
	Subject    string `json:"subject"`
	Completed  int    `json:"completed"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}

// HistoryResponse summarizes completed work
type HistoryResponse struct {
	Completed      []TaskDTO        `json:"completed"`
	TotalTasks     int              `json:"total_tasks"`
	TotalCompleted int              `json:"total_completed"`
	CompletionRate int              `json:"completion_rate"`
	Subjects       []string         `json:"subjects"`
	Months         []string         `json:"months"`
	SubjectStats   []SubjectStatDTO `json:"subject_stats"`
}

// Conversion functions

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:           task.ID,
		Subject:      task.Subject,
		Type:         task.Type,
		Description:  task.Description,
		AssignedDate: task.AssignedDate,
		DueDate:      task.DueDate,
		Priority:     task.Priority,
		Completed:    task.Completed,
		Attachment:   task.Attachment,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
}

// ToTaskDTOs converts tasks, never returning nil
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, params utils.PaginationParams, totalCount int64) TaskListResponse {
	return TaskListResponse{
		Tasks:      ToTaskDTOs(tasks),
		Pagination: params.Response(totalCount),
	}
}

// ToTaskMutationResponse converts a task mutation result
func ToTaskMutationResponse(result services.TaskResult) TaskMutationResponse {
	return TaskMutationResponse{
		Task:     ToTaskDTO(*result.Task),
		Progress: ToProgressDTO(result.Progress),
	}
}

// ToCalendarResponse converts calendar days for month
func ToCalendarResponse(month string, days []services.CalendarDay) CalendarResponse {
	items := make([]CalendarDayDTO, len(days))
	for i, day := range days {
		items[i] = CalendarDayDTO{
			Date:  day.Date,
			Tasks: ToTaskDTOs(day.Tasks),
		}
	}
	return CalendarResponse{Month: month, Days: items}
}

// ToHistoryResponse converts a History summary
func ToHistoryResponse(h services.History) HistoryResponse {
	stats := make([]SubjectStatDTO, len(h.SubjectStats))
	for i, s := range h.SubjectStats {
		stats[i] = SubjectStatDTO{
			Subject:    s.Subject,
			Completed:  s.Completed,
			Total:      s.Total,
			Percentage: s.Percentage,
		}
	}
	return HistoryResponse{
		Completed:      ToTaskDTOs(h.Completed),
		TotalTasks:     h.TotalTasks,
		TotalCompleted: h.TotalCompleted,
		CompletionRate: h.CompletionRate,
		Subjects:       nonNil(h.Subjects),
		Months:         nonNil(h.Months),
		SubjectStats:   stats,
	}
}
