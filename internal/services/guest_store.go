package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/study-tracker-api/internal/constants"
	"github.com/yukikurage/study-tracker-api/internal/kvstore"
	"github.com/yukikurage/study-tracker-api/internal/models"
	"github.com/yukikurage/study-tracker-api/internal/repository"
)

var ErrGuestSessionNotFound = errors.New("guest session not found or expired")

// guestDocument is everything a guest owns, stored under one key.
type guestDocument struct {
	Profile models.User   `json:"profile"`
	Tasks   []models.Task `json:"tasks"`
}

// GuestStore keeps guest workspaces in a key-value store. Every write
// refreshes the expiry, so an active guest never loses state.
type GuestStore struct {
	kv    kvstore.Store
	ttl   time.Duration
	clock Clock

	// serializes read-modify-write cycles on guest documents
	mu sync.Mutex
}

// NewGuestStore creates a GuestStore. A zero ttl uses the default guest
// session lifetime.
func NewGuestStore(kv kvstore.Store, ttl time.Duration, clock Clock) *GuestStore {
	if ttl <= 0 {
		ttl = constants.GuestSessionTTL
	}
	if clock == nil {
		clock = time.Now
	}
	return &GuestStore{kv: kv, ttl: ttl, clock: clock}
}

// Start creates a fresh guest workspace and returns its session key.
func (s *GuestStore) Start(ctx context.Context, name string) (string, *models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = constants.DefaultGuestName
	}

	now := s.clock()
	doc := guestDocument{
		Profile: models.User{
			Name:      name,
			IsGuest:   true,
			Badges:    []string{},
			GroupIDs:  []string{},
			CreatedAt: now,
			UpdatedAt: now,
		},
		Tasks: []models.Task{},
	}

	key := uuid.NewString()
	if err := s.save(ctx, key, &doc); err != nil {
		return "", nil, err
	}
	return key, &doc.Profile, nil
}

// End destroys the guest workspace.
func (s *GuestStore) End(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, storageKey(key)); err != nil {
		return fmt.Errorf("failed to delete guest session: %w", err)
	}
	return nil
}

func (s *GuestStore) load(ctx context.Context, key string) (*guestDocument, error) {
	var doc guestDocument
	if err := kvstore.LoadJSON(ctx, s.kv, storageKey(key), &doc); err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, ErrGuestSessionNotFound
		}
		return nil, fmt.Errorf("failed to load guest session: %w", err)
	}
	if doc.Profile.Badges == nil {
		doc.Profile.Badges = []string{}
	}
	if doc.Profile.GroupIDs == nil {
		doc.Profile.GroupIDs = []string{}
	}
	return &doc, nil
}

func (s *GuestStore) save(ctx context.Context, key string, doc *guestDocument) error {
	if err := kvstore.SaveJSON(ctx, s.kv, storageKey(key), doc, s.ttl); err != nil {
		return fmt.Errorf("failed to save guest session: %w", err)
	}
	return nil
}

func (s *GuestStore) update(ctx context.Context, key string, fn func(doc *guestDocument) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx, key)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(ctx, key, doc)
}

func storageKey(key string) string {
	return constants.GuestKeyPrefix + key
}

type guestWorkspace struct {
	store *GuestStore
	key   string
}

func (w *guestWorkspace) Profile(ctx context.Context) (*models.User, error) {
	doc, err := w.store.load(ctx, w.key)
	if err != nil {
		return nil, err
	}
	return &doc.Profile, nil
}

func (w *guestWorkspace) SaveProgress(ctx context.Context, user *models.User) error {
	return w.store.update(ctx, w.key, func(doc *guestDocument) error {
		doc.Profile.Streak = user.Streak
		doc.Profile.LastCompletionDate = user.LastCompletionDate
		doc.Profile.Badges = append([]string{}, user.Badges...)
		doc.Profile.UpdatedAt = w.store.clock()
		return nil
	})
}

func (w *guestWorkspace) AllTasks(ctx context.Context) ([]models.Task, error) {
	doc, err := w.store.load(ctx, w.key)
	if err != nil {
		return nil, err
	}
	return doc.Tasks, nil
}

func (w *guestWorkspace) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]models.Task, int64, error) {
	doc, err := w.store.load(ctx, w.key)
	if err != nil {
		return nil, 0, err
	}

	matched := make([]models.Task, 0, len(doc.Tasks))
	for _, t := range doc.Tasks {
		if filter.Matches(t) {
			matched = append(matched, t)
		}
	}

	if filter.SortByDueDate {
		sort.SliceStable(matched, func(i, j int) bool {
			if matched[i].DueDate != matched[j].DueDate {
				return matched[i].DueDate < matched[j].DueDate
			}
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		})
	} else {
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	}

	start, end := filter.Pagination.Window(len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (w *guestWorkspace) FindTask(ctx context.Context, id string) (*models.Task, error) {
	doc, err := w.store.load(ctx, w.key)
	if err != nil {
		return nil, err
	}
	for i := range doc.Tasks {
		if doc.Tasks[i].ID == id {
			return &doc.Tasks[i], nil
		}
	}
	return nil, ErrTaskNotFound
}

func (w *guestWorkspace) CreateTask(ctx context.Context, task *models.Task) error {
	return w.store.update(ctx, w.key, func(doc *guestDocument) error {
		now := w.store.clock()
		if task.ID == "" {
			task.ID = uuid.NewString()
		}
		task.CreatedAt = now
		task.UpdatedAt = now
		doc.Tasks = append(doc.Tasks, *task)
		return nil
	})
}

func (w *guestWorkspace) UpdateTask(ctx context.Context, task *models.Task) error {
	return w.store.update(ctx, w.key, func(doc *guestDocument) error {
		for i := range doc.Tasks {
			if doc.Tasks[i].ID == task.ID {
				task.CreatedAt = doc.Tasks[i].CreatedAt
				task.UpdatedAt = w.store.clock()
				doc.Tasks[i] = *task
				return nil
			}
		}
		return ErrTaskNotFound
	})
}

func (w *guestWorkspace) DeleteTask(ctx context.Context, id string) error {
	return w.store.update(ctx, w.key, func(doc *guestDocument) error {
		for i := range doc.Tasks {
			if doc.Tasks[i].ID == id {
				doc.Tasks = append(doc.Tasks[:i], doc.Tasks[i+1:]...)
				return nil
			}
		}
		return ErrTaskNotFound
	})
}
