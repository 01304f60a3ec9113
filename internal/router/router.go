package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/study-tracker-api/internal/constants"
	"github.com/yukikurage/study-tracker-api/internal/handlers"
	"github.com/yukikurage/study-tracker-api/internal/middleware"
	"github.com/yukikurage/study-tracker-api/internal/services"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth  *handlers.AuthHandler
	Task  *handlers.TaskHandler
	Group *handlers.GroupHandler
}

type Deps struct {
	Handlers     Handlers
	Workspaces   *services.Workspaces
	GroupService *services.GroupService
	SessionStore sessions.Store
	Logger       *zap.Logger
}

// New builds the HTTP routes.
func New(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(deps.Logger), gin.Recovery())
	r.Use(sessions.Sessions(constants.SessionCookieName, deps.SessionStore))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Study Tracker API is running",
		})
	})

	requireAuth := middleware.RequireAuth(deps.Workspaces)
	h := deps.Handlers

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", h.Auth.Signup)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/guest", h.Auth.StartGuest)
			auth.POST("/logout", h.Auth.Logout)
			auth.GET("/me", requireAuth, h.Auth.GetCurrentUser)
		}

		// Task routes (protected, guests included)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", h.Task.ListTasks)
			tasks.POST("", h.Task.CreateTask)
			tasks.GET("/calendar", h.Task.Calendar)
			tasks.POST("/generate", h.Task.GenerateTasks)
			tasks.GET("/:id", middleware.RequireTaskAccess(), h.Task.GetTask)
			tasks.PATCH("/:id", middleware.RequireTaskAccess(), h.Task.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireTaskAccess(), h.Task.DeleteTask)
			tasks.POST("/:id/toggle", middleware.RequireTaskAccess(), h.Task.ToggleTask)
		}

		api.GET("/history", requireAuth, h.Task.History)

		// Group routes (protected, registered users only for writes)
		groups := api.Group("/groups")
		groups.Use(requireAuth)
		{
			groups.GET("", h.Group.ListGroups)
			groups.POST("", h.Group.CreateGroup)
			groups.POST("/join", h.Group.JoinGroup)
			groups.GET("/:id", middleware.RequireGroupMember(deps.GroupService), h.Group.GetGroup)
			groups.GET("/:id/leaderboard", middleware.RequireGroupMember(deps.GroupService), h.Group.Leaderboard)
		}
	}

	return r
}
