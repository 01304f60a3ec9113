package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/study-tracker-api/internal/gamification"
	"github.com/yukikurage/study-tracker-api/internal/logger"
	"github.com/yukikurage/study-tracker-api/internal/models"
	"github.com/yukikurage/study-tracker-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxCreateAttempts = 3

var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrNotGroupMember = errors.New("user is not a member of the group")
)

// GroupService runs the group directory over the stored groups and persists
// the outcome transactionally.
type GroupService struct {
	groupRepo repository.GroupRepository
	directory *gamification.Directory
	calendar  Calendar
	logger    *zap.Logger
}

// NewGroupService creates a new GroupService
func NewGroupService(groupRepo repository.GroupRepository, directory *gamification.Directory, calendar Calendar, log *zap.Logger) *GroupService {
	if directory == nil {
		directory = gamification.NewDirectory()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GroupService{
		groupRepo: groupRepo,
		directory: directory,
		calendar:  calendar,
		logger:    log,
	}
}

// CreateGroup creates a group with user as its first member.
func (s *GroupService) CreateGroup(ctx context.Context, user *models.User, name string) (*models.Group, *models.User, error) {
	if user.IsGuest {
		return nil, nil, gamification.ErrNotPermitted
	}

	var (
		group   models.Group
		updated models.User
	)
	for attempt := 1; ; attempt++ {
		groups, err := s.groupRepo.ListAll(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load groups: %w", err)
		}

		group, updated, err = s.directory.CreateGroup(groups, name, *user, s.calendar.Now())
		if err != nil {
			return nil, nil, err
		}

		err = s.groupRepo.CreateWithCreator(ctx, &group, &updated)
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, fmt.Errorf("failed to create group: %w", err)
		}
		// a concurrent writer took the name or the code; the next snapshot
		// tells the two apart
		if attempt == maxCreateAttempts {
			return nil, nil, fmt.Errorf("failed to create group: %w", gamification.ErrCodeSpaceExhausted)
		}
	}

	logger.FromContext(ctx, s.logger).Info("group created",
		zap.String("group_id", group.ID),
		zap.String("creator", gamification.MemberIdentifier(updated)),
	)
	return &group, &updated, nil
}

// JoinGroup adds user to the group holding code.
func (s *GroupService) JoinGroup(ctx context.Context, user *models.User, code string) (*models.Group, *models.User, error) {
	if user.IsGuest {
		return nil, nil, gamification.ErrNotPermitted
	}

	groups, err := s.groupRepo.ListAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load groups: %w", err)
	}

	group, updated, err := s.directory.JoinGroup(groups, code, *user, s.calendar.Now())
	if err != nil {
		return nil, nil, err
	}

	member := group.Members[len(group.Members)-1]
	if err := s.groupRepo.AddMemberAndLink(ctx, &member, &updated); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, gamification.ErrAlreadyMember
		}
		return nil, nil, fmt.Errorf("failed to join group: %w", err)
	}

	logger.FromContext(ctx, s.logger).Info("group joined",
		zap.String("group_id", group.ID),
		zap.String("member", member.UserID),
	)
	return &group, &updated, nil
}

// ListGroups returns the groups user belongs to.
func (s *GroupService) ListGroups(ctx context.Context, user *models.User) ([]models.Group, error) {
	groups, err := s.groupRepo.ListByIDs(ctx, user.GroupIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// GetGroup returns a group the user is a member of.
func (s *GroupService) GetGroup(ctx context.Context, user *models.User, id string) (*models.Group, error) {
	group, err := s.groupRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to find group: %w", err)
	}

	if !group.HasMember(gamification.MemberIdentifier(*user)) {
		return nil, ErrNotGroupMember
	}

	// the viewer's own roster entry always reflects the live streak
	synced, _ := gamification.SyncMember(*group, *user)
	return &synced, nil
}
