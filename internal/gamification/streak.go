// Package gamification holds the rules that turn task completions into a
// daily streak and badges, and the group directory behind leaderboards.
// Everything here is pure: callers load a snapshot, call in, and persist
// whatever comes back.
package gamification

import "github.com/yukikurage/study-tracker-api/internal/models"

// HasCompletedOn reports whether any completed task is due on day.
// The due date stands in for the completion day.
func HasCompletedOn(tasks []models.Task, day string) bool {
	for _, t := range tasks {
		if t.Completed && t.DueDate == day {
			return true
		}
	}
	return false
}

// Evaluate applies the streak rules for today to user given the full task
// list. It returns the resulting profile and whether it differs from user.
// A nil user, a malformed today, or no qualifying completion yields the
// unchanged profile and false. Only Streak, LastCompletionDate and Badges
// are ever modified.
func Evaluate(tasks []models.Task, user *models.User, today string) (models.User, bool) {
	if user == nil {
		return models.User{}, false
	}
	if !ValidDate(today) || !HasCompletedOn(tasks, today) {
		return user.Clone(), false
	}

	next := user.Clone()
	next.Streak = nextStreak(user.Streak, user.LastCompletionDate, today)
	day := today
	next.LastCompletionDate = &day
	next.Badges = unlockBadges(user.Badges, next.Streak)

	changed := next.Streak != user.Streak ||
		user.LastCompletionDate == nil ||
		*user.LastCompletionDate != today ||
		len(next.Badges) != len(user.Badges)

	return next, changed
}

func nextStreak(streak int, last *string, today string) int {
	if last == nil {
		return 1
	}
	if *last == today {
		return streak
	}
	if yesterday, ok := PreviousDay(today); ok && *last == yesterday {
		return streak + 1
	}
	return 1
}
