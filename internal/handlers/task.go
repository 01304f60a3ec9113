package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/study-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/study-tracker-api/internal/errors"
	"github.com/yukikurage/study-tracker-api/internal/logger"
	"github.com/yukikurage/study-tracker-api/internal/middleware"
	"github.com/yukikurage/study-tracker-api/internal/models"
	"github.com/yukikurage/study-tracker-api/internal/repository"
	"github.com/yukikurage/study-tracker-api/internal/services"
	"github.com/yukikurage/study-tracker-api/internal/utils"
	"go.uber.org/zap"
)

type TaskHandler struct {
	taskService    *services.TaskService
	historyService *services.HistoryService
	logger         *zap.Logger
}

func NewTaskHandler(taskService *services.TaskService, historyService *services.HistoryService, log *zap.Logger) *TaskHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &TaskHandler{
		taskService:    taskService,
		historyService: historyService,
		logger:         log,
	}
}

// ListTasks returns the current workspace's tasks
// Can filter by completed, subject, due_from and due_to
func (h *TaskHandler) ListTasks(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)
	filter := repository.TaskFilter{
		Subject:       c.Query("subject"),
		DueFrom:       c.Query("due_from"),
		DueTo:         c.Query("due_to"),
		SortByDueDate: c.Query("sort") == "due_date",
		Pagination:    params,
	}
	if raw := c.Query("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid completed filter")
			return
		}
		filter.Completed = &completed
	}

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), ws, filter)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params, total))
}

// GetTask returns a specific task by ID
// Task is already loaded by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Subject      string          `json:"subject" binding:"required"`
		Type         string          `json:"type" binding:"required"`
		Description  string          `json:"description"`
		AssignedDate string          `json:"assigned_date"`
		DueDate      string          `json:"due_date" binding:"required"`
		Priority     models.Priority `json:"priority"`
		Attachment   *string         `json:"attachment"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.taskService.CreateTask(c.Request.Context(), ws, services.CreateTaskInput{
		Subject:      req.Subject,
		Type:         req.Type,
		Description:  req.Description,
		AssignedDate: req.AssignedDate,
		DueDate:      req.DueDate,
		Priority:     req.Priority,
		Attachment:   req.Attachment,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskMutationResponse(*result))
}

// UpdateTask updates an existing task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateTaskInput
	input.Subject = stringField(rawReq, "subject")
	input.Type = stringField(rawReq, "type")
	input.Description = stringField(rawReq, "description")
	input.AssignedDate = stringField(rawReq, "assigned_date")
	input.DueDate = stringField(rawReq, "due_date")
	if p := stringField(rawReq, "priority"); p != nil {
		priority := models.Priority(*p)
		input.Priority = &priority
	}
	if completed, ok := rawReq["completed"].(bool); ok {
		input.Completed = &completed
	}
	if value, ok := rawReq["attachment"]; ok {
		// attachment was provided (might be null)
		if value == nil {
			input.ClearAttachment = true
		} else {
			input.Attachment = stringField(rawReq, "attachment")
		}
	}

	result, err := h.taskService.UpdateTask(c.Request.Context(), ws, task.ID, input)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskMutationResponse(*result))
}

// ToggleTask flips the completion flag and re-evaluates the streak
func (h *TaskHandler) ToggleTask(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	result, err := h.taskService.ToggleTask(c.Request.Context(), ws, task.ID)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskMutationResponse(*result))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	progress, err := h.taskService.DeleteTask(c.Request.Context(), ws, task.ID)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Task deleted successfully",
		"progress": dto.ToProgressDTO(progress),
	})
}

// Calendar returns the tasks due in a month grouped by day
func (h *TaskHandler) Calendar(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	month, days, err := h.taskService.Calendar(c.Request.Context(), ws, c.Query("month"))
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCalendarResponse(month, days))
}

// History returns completed tasks and per-subject completion statistics
func (h *TaskHandler) History(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	history, err := h.historyService.History(c.Request.Context(), ws, services.HistoryFilter{
		Subject: c.Query("subject"),
		Month:   c.Query("month"),
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToHistoryResponse(*history))
}

// GenerateTasks drafts tasks from free text using AI
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.GenerateTasks(c.Request.Context(), services.GenerateTasksInput{Text: req.Text})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": drafts,
	})
}

func stringField(raw map[string]any, key string) *string {
	value, ok := raw[key].(string)
	if !ok {
		return nil
	}
	return &value
}

func (h *TaskHandler) respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSubjectRequired),
		errors.Is(err, services.ErrTypeRequired),
		errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrDueBeforeAssigned),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidMonth):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrGuestSessionNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.Unauthorized(c, "Session expired")
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, err.Error())
	default:
		logger.FromContext(c.Request.Context(), h.logger).Error("task request failed", zap.Error(err))
		apierrors.InternalError(c, "Internal server error")
	}
}
