package router

import (
	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"github.com/valyala/fasthttp/pprofhandler"

	apiHandler "github.com/sorayamlj/FocusTache/api/handler"
)

type Handlers struct {
	Task       *apiHandler.TaskHandler
	Collection *apiHandler.CollectionHandler
	Dashboard  *apiHandler.DashboardHandler
	Health     *apiHandler.HealthHandler
}

type Options struct {
	EnableMetrics bool
	EnablePprof   bool
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler, opts Options) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)
	if opts.EnableMetrics {
		r.GET("/metrics", fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()))
	}
	if opts.EnablePprof {
		r.GET("/debug/pprof/{profile:*}", pprofhandler.PprofHandler)
	}

	// Protected routes
	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.GET("/api/v1/tasks/search", authMiddleware(handlers.Task.SearchTasks))
	r.GET("/api/v1/tasks/active", authMiddleware(handlers.Task.GetActive))
	r.GET("/api/v1/tasks/overdue", authMiddleware(handlers.Task.GetOverdue))
	r.GET("/api/v1/tasks/modules", authMiddleware(handlers.Task.GetModules))
	r.GET("/api/v1/tasks/stats", authMiddleware(handlers.Task.GetStats))
	r.GET("/api/v1/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	r.PUT("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))
	r.PATCH("/api/v1/tasks/{id}/status", authMiddleware(handlers.Task.UpdateStatus))
	r.POST("/api/v1/tasks/{id}/restore", authMiddleware(handlers.Task.RestoreTask))
	r.POST("/api/v1/tasks/{id}/comments", authMiddleware(handlers.Task.AddComment))
	r.POST("/api/v1/tasks/{id}/time", authMiddleware(handlers.Task.AddTime))
	r.POST("/api/v1/tasks/{id}/pomodoro", authMiddleware(handlers.Task.IncrementPomodoro))
	r.POST("/api/v1/tasks/{id}/share", authMiddleware(handlers.Task.ShareTask))
	r.POST("/api/v1/tasks/{id}/reminders", authMiddleware(handlers.Task.AddReminder))

	r.GET("/api/v1/sessions", authMiddleware(handlers.Collection.GetSessions))
	r.POST("/api/v1/sessions", authMiddleware(handlers.Collection.RecordSession))
	r.GET("/api/v1/notes", authMiddleware(handlers.Collection.GetNotes))
	r.GET("/api/v1/calendar/events", authMiddleware(handlers.Collection.GetEvents))

	r.GET("/api/v1/dashboard", authMiddleware(handlers.Dashboard.GetSnapshot))

	return r
}
