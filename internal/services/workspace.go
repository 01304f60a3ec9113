package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/study-tracker-api/internal/models"
	"github.com/yukikurage/study-tracker-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrTaskNotFound     = errors.New("task not found")
	ErrUserNotFound     = errors.New("user not found")
)

// Principal identifies who is acting: a registered user or a guest session.
type Principal struct {
	UserID   uint64
	GuestKey string
}

// IsGuest reports whether the principal is a guest session.
func (p Principal) IsGuest() bool {
	return p.GuestKey != ""
}

// Valid reports whether the principal identifies anyone.
func (p Principal) Valid() bool {
	return p.UserID != 0 || p.GuestKey != ""
}

// Workspace is the profile and task list a principal works on. Registered
// users are backed by SQL, guests by the key-value store.
type Workspace interface {
	Profile(ctx context.Context) (*models.User, error)
	SaveProgress(ctx context.Context, user *models.User) error
	AllTasks(ctx context.Context) ([]models.Task, error)
	ListTasks(ctx context.Context, filter repository.TaskFilter) ([]models.Task, int64, error)
	FindTask(ctx context.Context, id string) (*models.Task, error)
	CreateTask(ctx context.Context, task *models.Task) error
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id string) error
}

// Workspaces resolves principals to their workspace.
type Workspaces struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
	guests   *GuestStore
}

// NewWorkspaces creates a new Workspaces resolver.
func NewWorkspaces(userRepo repository.UserRepository, taskRepo repository.TaskRepository, guests *GuestStore) *Workspaces {
	return &Workspaces{
		userRepo: userRepo,
		taskRepo: taskRepo,
		guests:   guests,
	}
}

// For returns the workspace of p.
func (w *Workspaces) For(p Principal) (Workspace, error) {
	switch {
	case p.IsGuest():
		if w.guests == nil {
			return nil, ErrGuestSessionNotFound
		}
		return &guestWorkspace{store: w.guests, key: p.GuestKey}, nil
	case p.UserID != 0:
		return &sqlWorkspace{userRepo: w.userRepo, taskRepo: w.taskRepo, userID: p.UserID}, nil
	default:
		return nil, ErrNotAuthenticated
	}
}

type sqlWorkspace struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
	userID   uint64
}

func (w *sqlWorkspace) Profile(ctx context.Context) (*models.User, error) {
	user, err := w.userRepo.FindByID(ctx, w.userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (w *sqlWorkspace) SaveProgress(ctx context.Context, user *models.User) error {
	if err := w.userRepo.UpdateProgress(ctx, user); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

func (w *sqlWorkspace) AllTasks(ctx context.Context) ([]models.Task, error) {
	tasks, err := w.taskRepo.ListAll(ctx, w.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return tasks, nil
}

func (w *sqlWorkspace) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]models.Task, int64, error) {
	filter.OwnerID = w.userID
	tasks, total, err := w.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

func (w *sqlWorkspace) FindTask(ctx context.Context, id string) (*models.Task, error) {
	task, err := w.taskRepo.FindByID(ctx, w.userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (w *sqlWorkspace) CreateTask(ctx context.Context, task *models.Task) error {
	task.OwnerID = w.userID
	if err := w.taskRepo.Create(ctx, task); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (w *sqlWorkspace) UpdateTask(ctx context.Context, task *models.Task) error {
	task.OwnerID = w.userID
	if err := w.taskRepo.Update(ctx, task); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

func (w *sqlWorkspace) DeleteTask(ctx context.Context, id string) error {
	if err := w.taskRepo.Delete(ctx, w.userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
