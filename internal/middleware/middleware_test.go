package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/study-tracker-api/internal/constants"
	"github.com/yukikurage/study-tracker-api/internal/kvstore"
	"github.com/yukikurage/study-tracker-api/internal/services"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
	assert.EqualValues(t, http.StatusOK, entries[0].ContextMap()["status"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := func() time.Time { return time.Date(2026, 1, 11, 10, 0, 0, 0, time.UTC) }
	guests := services.NewGuestStore(kvstore.NewMemoryStore(), constants.GuestSessionTTL, now)
	workspaces := services.NewWorkspaces(nil, nil, guests)

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	r.GET("/login/:key", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(constants.SessionKeyGuestKey, c.Param("key"))
		require.NoError(t, session.Save())
	})
	r.GET("/me", RequireAuth(workspaces), func(c *gin.Context) {
		profile, ok := GetProfile(c)
		require.True(t, ok)
		principal, ok := GetPrincipal(c)
		require.True(t, ok)
		assert.True(t, principal.IsGuest())
		c.String(http.StatusOK, profile.Name)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	key, _, err := guests.Start(t.Context(), "Invitada")
	require.NoError(t, err)

	me := func(key string) *httptest.ResponseRecorder {
		login := httptest.NewRecorder()
		r.ServeHTTP(login, httptest.NewRequest(http.MethodGet, "/login/"+key, nil))

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		for _, c := range login.Result().Cookies() {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w = me(key)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Invitada", w.Body.String())

	// a session whose guest workspace is gone is rejected
	w = me("expired")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestToUint64(t *testing.T) {
	assert.Equal(t, uint64(7), toUint64(uint64(7)))
	assert.Equal(t, uint64(7), toUint64(7))
	assert.Equal(t, uint64(7), toUint64(int64(7)))
	assert.Zero(t, toUint64(-1))
	assert.Zero(t, toUint64("7"))
	assert.Zero(t, toUint64(nil))
}
