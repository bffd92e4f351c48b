package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/medirent/opsdesk/internal/api"
	apiMiddleware "github.com/medirent/opsdesk/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace)

	taskHandler := api.NewTaskHandler(app.aggregator, app.lifecycle, app.manualTasks, app.logger)
	userHandler := api.NewUserHandler(app.users, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/tasks", taskHandler.ListTasks)
		r.Post("/tasks", taskHandler.CreateTask)
		r.Post("/tasks/{id}/complete", taskHandler.CompleteTask)
		r.Patch("/tasks/{id}/notes", taskHandler.UpdateTaskNotes)

		r.Get("/users", userHandler.ListUsers)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
