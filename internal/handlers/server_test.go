package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/study-tracker-api/internal/constants"
	"github.com/yukikurage/study-tracker-api/internal/database"
	"github.com/yukikurage/study-tracker-api/internal/gamification"
	"github.com/yukikurage/study-tracker-api/internal/handlers"
	"github.com/yukikurage/study-tracker-api/internal/kvstore"
	"github.com/yukikurage/study-tracker-api/internal/repository"
	"github.com/yukikurage/study-tracker-api/internal/router"
	"github.com/yukikurage/study-tracker-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var fixedNow = time.Date(2026, 1, 11, 10, 0, 0, 0, time.UTC)

// testClock is a settable clock shared by every service of a test router.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return setupRouterWithClock(t, &testClock{now: fixedNow})
}

func setupRouterWithClock(t *testing.T, tc *testClock) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})
	require.NoError(t, db.AutoMigrate(database.Models()...))

	clock := tc.Now
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	groupRepo := repository.NewGroupRepository(db)

	calendar := services.NewCalendar(clock, time.UTC)
	guests := services.NewGuestStore(kvstore.NewMemoryStore(), constants.GuestSessionTTL, clock)
	workspaces := services.NewWorkspaces(userRepo, taskRepo, guests)
	streaks := services.NewStreakService(groupRepo, calendar, nil)
	groupService := services.NewGroupService(groupRepo, gamification.NewDirectory(), calendar, nil)

	return router.New(router.Deps{
		Handlers: router.Handlers{
			Auth:  handlers.NewAuthHandler(services.NewAuthService(userRepo, guests), workspaces, streaks, nil),
			Task:  handlers.NewTaskHandler(services.NewTaskService(streaks, nil), services.NewHistoryService(), nil),
			Group: handlers.NewGroupHandler(groupService, nil),
		},
		Workspaces:   workspaces,
		GroupService: groupService,
		SessionStore: cookie.NewStore([]byte("secret")),
	})
}

// client replays the session cookie across requests.
type client struct {
	t       *testing.T
	router  *gin.Engine
	cookies []*http.Cookie
}

func newClient(t *testing.T, r *gin.Engine) *client {
	return &client{t: t, router: r}
}

func (c *client) do(method, path string, payload any) *httptest.ResponseRecorder {
	c.t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(c.t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	if set := w.Result().Cookies(); len(set) > 0 {
		c.cookies = set
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (c *client) signup(email, name string) {
	c.t.Helper()
	w := c.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    email,
		"name":     name,
		"password": "supersecret",
	})
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())
}

func TestHealth(t *testing.T) {
	r := setupRouter(t)

	w := newClient(t, r).do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
