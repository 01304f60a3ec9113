package repository

import (
	"context"

	"github.com/yukikurage/study-tracker-api/internal/models"
	"github.com/yukikurage/study-tracker-api/internal/utils"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task owned by ownerID
	FindByID(ctx context.Context, ownerID uint64, id string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// ListAll returns the owner's complete task list
	ListAll(ctx context.Context, ownerID uint64) ([]models.Task, error)

	// Update saves every field of a task
	Update(ctx context.Context, task *models.Task) error

	// Delete soft deletes a task
	Delete(ctx context.Context, ownerID uint64, id string) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	OwnerID       uint64
	Completed     *bool
	Subject       string
	DueFrom       string
	DueTo         string
	SortByDueDate bool
	Pagination    utils.PaginationParams
}

// Matches applies the filter to a single task. Owner and pagination are
// not considered.
func (f TaskFilter) Matches(task models.Task) bool {
	if f.Completed != nil && task.Completed != *f.Completed {
		return false
	}
	if f.Subject != "" && task.Subject != f.Subject {
		return false
	}
	if f.DueFrom != "" && task.DueDate < f.DueFrom {
		return false
	}
	if f.DueTo != "" && task.DueDate > f.DueTo {
		return false
	}
	return true
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdateProgress persists streak, last completion date and badges only
	UpdateProgress(ctx context.Context, user *models.User) error
}

// GroupRepository defines the interface for group data access
type GroupRepository interface {
	// ListAll returns every group with its ordered roster
	ListAll(ctx context.Context) ([]models.Group, error)

	// FindByID finds a group with its ordered roster
	FindByID(ctx context.Context, id string) (*models.Group, error)

	// ListByIDs returns the groups among ids that exist, in creation order
	ListByIDs(ctx context.Context, ids []string) ([]models.Group, error)

	// CreateWithCreator stores a group, its roster and the creator's group
	// list within a single transaction.
	CreateWithCreator(ctx context.Context, group *models.Group, creator *models.User) error

	// AddMemberAndLink stores a new roster entry and the user's group list
	// within a single transaction.
	AddMemberAndLink(ctx context.Context, member *models.GroupMember, user *models.User) error

	// SyncMemberStreak refreshes the streak snapshot of memberID in every group
	SyncMemberStreak(ctx context.Context, memberID string, streak int) (int64, error)
}
