package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/study-tracker-api/internal/gamification"
	"github.com/yukikurage/study-tracker-api/internal/logger"
	"github.com/yukikurage/study-tracker-api/internal/models"
	"github.com/yukikurage/study-tracker-api/internal/repository"
	"go.uber.org/zap"
)

// Progress is the outcome of a streak evaluation.
type Progress struct {
	Profile   *models.User
	Changed   bool
	NewBadges []string
}

// StreakService re-evaluates a workspace's streak after its task list
// changes and persists the profile when anything moved.
type StreakService struct {
	groupRepo repository.GroupRepository
	calendar  Calendar
	logger    *zap.Logger
}

// NewStreakService creates a new StreakService. groupRepo may be nil when
// group snapshots are not kept.
func NewStreakService(groupRepo repository.GroupRepository, calendar Calendar, log *zap.Logger) *StreakService {
	if log == nil {
		log = zap.NewNop()
	}
	return &StreakService{
		groupRepo: groupRepo,
		calendar:  calendar,
		logger:    log,
	}
}

// Today returns the date used for evaluations.
func (s *StreakService) Today() string {
	return s.calendar.Today()
}

// Refresh evaluates the workspace against today's date.
func (s *StreakService) Refresh(ctx context.Context, ws Workspace) (Progress, error) {
	user, err := ws.Profile(ctx)
	if err != nil {
		return Progress{}, err
	}
	tasks, err := ws.AllTasks(ctx)
	if err != nil {
		return Progress{}, err
	}

	today := s.Today()
	updated, changed := gamification.Evaluate(tasks, user, today)
	if !changed {
		return Progress{Profile: user}, nil
	}

	if err := ws.SaveProgress(ctx, &updated); err != nil {
		return Progress{}, fmt.Errorf("failed to persist streak: %w", err)
	}

	log := logger.FromContext(ctx, s.logger)
	newBadges := append([]string{}, updated.Badges[len(user.Badges):]...)
	log.Info("streak updated",
		zap.String("member", gamification.MemberIdentifier(updated)),
		zap.Int("streak", updated.Streak),
		zap.String("day", today),
		zap.Strings("new_badges", newBadges),
	)

	if updated.Streak != user.Streak && !updated.IsGuest && len(updated.GroupIDs) > 0 && s.groupRepo != nil {
		rows, err := s.groupRepo.SyncMemberStreak(ctx, gamification.MemberIdentifier(updated), updated.Streak)
		if err != nil {
			// the snapshot catches up on the next streak write
			log.Warn("failed to sync group snapshots", zap.Error(err))
		} else {
			log.Debug("group snapshots synced", zap.Int64("rows", rows))
		}
	}

	return Progress{Profile: &updated, Changed: true, NewBadges: newBadges}, nil
}
