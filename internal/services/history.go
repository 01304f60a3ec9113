package services

import (
	"context"
	"math"
	"sort"

	"github.com/yukikurage/study-tracker-api/internal/models"
)

// SubjectStat is the completion ratio of one subject.
type SubjectStat struct {
	Subject    string
	Completed  int
	Total      int
	Percentage int
}

// History summarizes completed work.
type History struct {
	Completed      []models.Task
	TotalTasks     int
	TotalCompleted int
	CompletionRate int
	Subjects       []string
	Months         []string
	SubjectStats   []SubjectStat
}

// HistoryFilter narrows the completed list. Empty fields match everything.
// Month is YYYY-MM and is compared against the due date.
type HistoryFilter struct {
	Subject string
	Month   string
}

// HistoryService builds completion history for a workspace.
type HistoryService struct{}

// NewHistoryService creates a new HistoryService
func NewHistoryService() *HistoryService {
	return &HistoryService{}
}

// History loads the workspace tasks and summarizes them.
func (s *HistoryService) History(ctx context.Context, ws Workspace, filter HistoryFilter) (*History, error) {
	tasks, err := ws.AllTasks(ctx)
	if err != nil {
		return nil, err
	}
	h := BuildHistory(tasks, filter)
	return &h, nil
}

// BuildHistory computes the history view over tasks. Totals and
// per-subject statistics always cover every task; only the completed list
// honors filter.
func BuildHistory(tasks []models.Task, filter HistoryFilter) History {
	h := History{
		Completed:    []models.Task{},
		Subjects:     []string{},
		Months:       []string{},
		SubjectStats: []SubjectStat{},
		TotalTasks:   len(tasks),
	}

	subjects := make(map[string]*SubjectStat)
	months := make(map[string]struct{})
	for _, t := range tasks {
		stat, ok := subjects[t.Subject]
		if !ok {
			stat = &SubjectStat{Subject: t.Subject}
			subjects[t.Subject] = stat
		}
		stat.Total++

		month := monthOf(t.DueDate)
		months[month] = struct{}{}

		if !t.Completed {
			continue
		}
		stat.Completed++
		h.TotalCompleted++

		if filter.Subject != "" && t.Subject != filter.Subject {
			continue
		}
		if filter.Month != "" && month != filter.Month {
			continue
		}
		h.Completed = append(h.Completed, t)
	}

	sort.SliceStable(h.Completed, func(i, j int) bool {
		return h.Completed[i].DueDate > h.Completed[j].DueDate
	})

	for subject, stat := range subjects {
		h.Subjects = append(h.Subjects, subject)
		stat.Percentage = percentage(stat.Completed, stat.Total)
		h.SubjectStats = append(h.SubjectStats, *stat)
	}
	sort.Strings(h.Subjects)
	sort.Slice(h.SubjectStats, func(i, j int) bool {
		a, b := h.SubjectStats[i], h.SubjectStats[j]
		if a.Percentage != b.Percentage {
			return a.Percentage > b.Percentage
		}
		return a.Subject < b.Subject
	})

	for month := range months {
		h.Months = append(h.Months, month)
	}
	sort.Strings(h.Months)

	h.CompletionRate = percentage(h.TotalCompleted, h.TotalTasks)
	return h
}

func monthOf(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
