package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/study-tracker-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrCreateGroup is returned when inserting the group row fails inside the create transaction.
	ErrCreateGroup = errors.New("group repository: create group failed")
	// ErrCreateGroupMember is returned when inserting a roster entry fails.
	ErrCreateGroupMember = errors.New("group repository: create group member failed")
	// ErrLinkUser is returned when updating the user's group list fails.
	ErrLinkUser = errors.New("group repository: link user to group failed")
)

// GormGroupRepository is a GORM implementation of GroupRepository
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &GormGroupRepository{db: db}
}

func orderedMembers(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// ListAll returns every group with its ordered roster
func (r *GormGroupRepository) ListAll(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := r.db.WithContext(ctx).
		Preload("Members", orderedMembers).
		Order("created_at ASC").
		Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// FindByID finds a group with its ordered roster
func (r *GormGroupRepository) FindByID(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).
		Preload("Members", orderedMembers).
		Where("id = ?", id).
		First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// ListByIDs returns the groups among ids that exist, in creation order
func (r *GormGroupRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Group, error) {
	if len(ids) == 0 {
		return []models.Group{}, nil
	}
	var groups []models.Group
	if err := r.db.WithContext(ctx).
		Preload("Members", orderedMembers).
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// CreateWithCreator stores a group, its roster and the creator's group list atomically.
func (r *GormGroupRepository) CreateWithCreator(ctx context.Context, group *models.Group, creator *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(group).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateGroup, err)
		}

		if len(group.Members) > 0 {
			if err := tx.Create(&group.Members).Error; err != nil {
				return fmt.Errorf("%w: %w", ErrCreateGroupMember, err)
			}
		}

		if err := linkUser(tx, creator); err != nil {
			return err
		}

		return nil
	})
}

// AddMemberAndLink stores a new roster entry and the user's group list atomically.
func (r *GormGroupRepository) AddMemberAndLink(ctx context.Context, member *models.GroupMember, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateGroupMember, err)
		}

		return linkUser(tx, user)
	})
}

// linkUser merges user.GroupIDs into the stored list, re-read under a row
// lock so concurrent links by the same user keep each other's ids.
func linkUser(tx *gorm.DB, user *models.User) error {
	var stored models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("group_ids").
		Where("id = ?", user.ID).
		Take(&stored).Error; err != nil {
		return fmt.Errorf("%w: %w", ErrLinkUser, err)
	}

	user.GroupIDs = mergeIDs(stored.GroupIDs, user.GroupIDs)
	if err := tx.Model(user).Select("group_ids").Updates(user).Error; err != nil {
		return fmt.Errorf("%w: %w", ErrLinkUser, err)
	}
	return nil
}

// mergeIDs appends the ids of added missing from base, keeping order.
func mergeIDs(base, added []string) []string {
	merged := make([]string, 0, len(base)+len(added))
	seen := make(map[string]struct{}, len(base)+len(added))
	for _, id := range append(append([]string{}, base...), added...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}
	return merged
}

// SyncMemberStreak refreshes the streak snapshot of memberID in every group
func (r *GormGroupRepository) SyncMemberStreak(ctx context.Context, memberID string, streak int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("user_id = ?", memberID).
		Update("streak", streak)
	return result.RowsAffected, result.Error
}
