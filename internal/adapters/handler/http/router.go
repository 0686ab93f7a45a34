package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/slate-notes/api/internal/core/ports"
)

type Handlers struct {
	Auth   *AuthHandler
	Note   *NoteHandler
	Task   *TaskHandler
	Folder *FolderHandler
	Tag    *TagHandler
	Upload *UploadHandler
}

func NewHandler(h Handlers, authService ports.AuthService, uploadDir string, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(allowedOrigins))

	requireAuth := AuthMiddleware(authService)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	if uploadDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.Auth.Signup)
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.Refresh)
			r.Post("/logout", h.Auth.Logout)
			r.Post("/forgot-password", h.Auth.ForgotPassword)
			r.Post("/reset-password", h.Auth.ResetPassword)
			r.With(requireAuth).Get("/me", h.Auth.Me)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", h.Note.Create)
			r.Get("/", h.Note.List)
			r.Get("/trash", h.Note.ListTrashed)
			r.Get("/{id}", h.Note.Get)
			r.Put("/{id}", h.Note.Update)
			r.Delete("/{id}", h.Note.Delete)
			r.Post("/{id}/restore", h.Note.Restore)
			r.Get("/{id}/versions", h.Note.ListVersions)
			r.Post("/{id}/versions/restore", h.Note.RestoreVersion)
			r.Post("/{id}/tags/{tagId}", h.Note.AddTag)
			r.Delete("/{id}/tags/{tagId}", h.Note.RemoveTag)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", h.Task.Create)
			r.Get("/", h.Task.List)
			r.Get("/{id}", h.Task.Get)
			r.Put("/{id}", h.Task.Update)
			r.Delete("/{id}", h.Task.Delete)
			r.Post("/sync/{noteId}", h.Task.Sync)
		})

		r.Route("/folders", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", h.Folder.Create)
			r.Get("/", h.Folder.List)
			r.Put("/{id}", h.Folder.Rename)
			r.Delete("/{id}", h.Folder.Delete)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", h.Tag.Create)
			r.Get("/", h.Tag.List)
			r.Put("/{id}", h.Tag.Update)
			r.Delete("/{id}", h.Tag.Delete)
		})

		r.Route("/upload", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/image", h.Upload.UploadImage)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, http.StatusNotFound, "Route not found")
	})

	return r
}
