package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/study-tracker-api/internal/gamification"
	"github.com/yukikurage/study-tracker-api/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStreakService_ContinuesFromYesterday(t *testing.T) {
	env := setupTestEnv(t)
	user := env.signup(t, "ana@example.com", "Ana")
	ws := env.workspace(t, Principal{UserID: user.ID})

	user.Streak = 2
	user.LastCompletionDate = strPtr("2026-01-10")
	require.NoError(t, env.userRepo.UpdateProgress(env.ctx, user))

	created, err := env.tasks.CreateTask(env.ctx, ws, taskInput("Biología", "2026-01-11"))
	require.NoError(t, err)

	result, err := env.tasks.ToggleTask(env.ctx, ws, created.Task.ID)
	require.NoError(t, err)
	require.True(t, result.Progress.Changed)
	assert.Equal(t, 3, result.Progress.Profile.Streak)
	assert.Equal(t, []string{gamification.BadgeBeginner}, result.Progress.NewBadges)

	stored, err := env.auth.GetUser(env.ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Streak)
	assert.Equal(t, []string{gamification.BadgeBeginner}, stored.Badges)

	// same-day re-evaluation is a no-op
	again, err := env.streaks.Refresh(env.ctx, ws)
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.Empty(t, again.NewBadges)
	assert.Equal(t, 3, again.Profile.Streak)
}

func TestStreakService_SyncsGroupSnapshots(t *testing.T) {
	env := setupTestEnv(t)
	user := env.signup(t, "ana@example.com", "Ana")
	ws := env.workspace(t, Principal{UserID: user.ID})

	group, _, err := env.groups.CreateGroup(env.ctx, user, "Mi clase")
	require.NoError(t, err)
	require.Equal(t, 0, group.Members[0].Streak)

	created, err := env.tasks.CreateTask(env.ctx, ws, taskInput("Biología", "2026-01-11"))
	require.NoError(t, err)
	_, err = env.tasks.ToggleTask(env.ctx, ws, created.Task.ID)
	require.NoError(t, err)

	stored, err := env.groupRepo.FindByID(env.ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, stored.Members, 1)
	assert.Equal(t, 1, stored.Members[0].Streak)
}

func TestStreakService_LogsUpdates(t *testing.T) {
	env := setupTestEnv(t)
	core, logs := observer.New(zap.InfoLevel)
	streaks := NewStreakService(env.groupRepo, env.calendar, zap.New(core))

	_, ws := env.guest(t, "Invitada")
	require.NoError(t, ws.CreateTask(env.ctx, &models.Task{
		Subject:      "Arte",
		Type:         "Dibujo",
		AssignedDate: "2026-01-11",
		DueDate:      "2026-01-11",
		Priority:     models.PriorityLow,
		Completed:    true,
	}))

	progress, err := streaks.Refresh(env.ctx, ws)
	require.NoError(t, err)
	require.True(t, progress.Changed)
	assert.True(t, progress.Profile.IsGuest)

	entries := logs.FilterMessage("streak updated").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ContextMap()["streak"])
}

func TestStreakService_UsesConfiguredZone(t *testing.T) {
	env := setupTestEnv(t)
	zone := time.FixedZone("UTC-5", -5*60*60)
	// 03:00 UTC on the 11th is still the 10th five hours west
	cal := NewCalendar(func() time.Time { return time.Date(2026, 1, 11, 3, 0, 0, 0, time.UTC) }, zone)
	streaks := NewStreakService(nil, cal, nil)

	assert.Equal(t, "2026-01-10", streaks.Today())

	_, ws := env.guest(t, "Invitada")
	require.NoError(t, ws.CreateTask(env.ctx, &models.Task{
		Subject:      "Arte",
		Type:         "Dibujo",
		AssignedDate: "2026-01-10",
		DueDate:      "2026-01-10",
		Priority:     models.PriorityLow,
		Completed:    true,
	}))

	progress, err := streaks.Refresh(env.ctx, ws)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-10", *progress.Profile.LastCompletionDate)
}
