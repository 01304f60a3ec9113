package dto

import (
	"github.com/yukikurage/study-tracker-api/internal/gamification"
	"github.com/yukikurage/study-tracker-api/internal/models"
	"github.com/yukikurage/study-tracker-api/internal/services"
)

// UserDTO represents a profile in API responses
type UserDTO struct {
	ID                 uint64   `json:"id,omitempty"`
	Email              string   `json:"email"`
	Name               string   `json:"name"`
	IsGuest            bool     `json:"is_guest"`
	Streak             int      `json:"streak"`
	LastCompletionDate *string  `json:"last_completion_date"`
	Badges             []string `json:"badges"`
	GroupIDs           []string `json:"group_ids"`
	Points             int      `json:"points"`
}

// ProgressDTO reports the streak evaluation triggered by a task mutation
type ProgressDTO struct {
	Changed   bool     `json:"changed"`
	Streak    int      `json:"streak"`
	NewBadges []string `json:"new_badges"`
}

// BadgeDTO is one row of the badge table
type BadgeDTO struct {
	Threshold int    `json:"threshold"`
	Label     string `json:"label"`
	Unlocked  bool   `json:"unlocked"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:                 user.ID,
		Email:              user.Email,
		Name:               user.Name,
		IsGuest:            user.IsGuest,
		Streak:             user.Streak,
		LastCompletionDate: user.LastCompletionDate,
		Badges:             nonNil(user.Badges),
		GroupIDs:           nonNil(user.GroupIDs),
		Points:             user.Points,
	}
}

// ToProgressDTO converts a streak evaluation to ProgressDTO
func ToProgressDTO(progress services.Progress) ProgressDTO {
	dto := ProgressDTO{
		Changed:   progress.Changed,
		NewBadges: nonNil(progress.NewBadges),
	}
	if progress.Profile != nil {
		dto.Streak = progress.Profile.Streak
	}
	return dto
}

// ToBadgeDTOs lists the badge table with the user's unlock state
func ToBadgeDTOs(user models.User) []BadgeDTO {
	table := gamification.Badges()
	badges := make([]BadgeDTO, len(table))
	for i, b := range table {
		badges[i] = BadgeDTO{
			Threshold: b.Threshold,
			Label:     b.Label,
			Unlocked:  user.HasBadge(b.Label),
		}
	}
	return badges
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
