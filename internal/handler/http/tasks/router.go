package tasks

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/EricGoj/Middleware/internal/app/tasks"
)

func RegisterRoutes(r chi.Router, s tasks.TaskService, l *zap.Logger) {
	handler := NewTaskHandler(s, l.With(zap.String("component", "TaskHTTPHandler")))

	r.Route("/api/tasks", func(r chi.Router) {
		r.Post("/", handler.CreateTask)
		r.Get("/", handler.ListTasks)
		r.Get("/{taskID}", handler.GetTask)
		r.Patch("/{taskID}", handler.UpdateTask)
		r.Delete("/{taskID}", handler.DeleteTask)
	})
}
