package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/slate-notes/api/internal/core/domain"
	"github.com/slate-notes/api/internal/core/ports"
)

type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

type createTaskRequest struct {
	Title    string     `json:"title"`
	Done     bool       `json:"done"`
	Priority string     `json:"priority"`
	DueDate  *time.Time `json:"dueDate"`
	NoteID   *uuid.UUID `json:"noteId"`
	Source   string     `json:"source"`
	SourceID *string    `json:"sourceId"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	input := ports.CreateTaskInput{
		Title:    req.Title,
		Done:     req.Done,
		DueDate:  req.DueDate,
		NoteID:   req.NoteID,
		SourceID: req.SourceID,
	}
	if req.Priority != "" {
		priority := domain.TaskPriority(req.Priority)
		if !priority.Valid() {
			respondError(w, http.StatusBadRequest, "priority must be LOW, MEDIUM or HIGH")
			return
		}
		input.Priority = priority
	}
	if req.Source != "" {
		source := domain.TaskSource(req.Source)
		if source != domain.SourceStandalone && source != domain.SourceNote {
			respondError(w, http.StatusBadRequest, "source must be STANDALONE or NOTE")
			return
		}
		input.Source = source
	}

	task, err := h.service.Create(r.Context(), userID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusCreated, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	filters, err := taskFiltersFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tasks, err := h.service.List(r.Context(), userID, filters)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user context")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := h.service.GetByID(r.Context(), userID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, task)
}

type updateTaskRequest struct {
	Title    *string    `json:"title"`
	Done     *bool      `json:"done"`
	Priority *string    `json:"priority"`
	DueDate  *time.Time `json:"dueDate"`
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user context")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var req updateTaskRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	_, dueDateSet := raw["dueDate"]

	input := ports.UpdateTaskInput{
		Title:      req.Title,
		Done:       req.Done,
		DueDate:    req.DueDate,
		DueDateSet: dueDateSet,
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		if !priority.Valid() {
			respondError(w, http.StatusBadRequest, "priority must be LOW, MEDIUM or HIGH")
			return
		}
		input.Priority = &priority
	}

	task, err := h.service.Update(r.Context(), userID, id, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user context")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]string{"message": "Task deleted"})
}

type syncTasksRequest struct {
	Tasks []ports.SyncTaskInput `json:"tasks"`
}

// Sync godoc
// @Summary      Reconciles a note's embedded tasks with the incoming list
// @Tags         tasks
// @Accept       json
// @Success      200
// @Failure      404
// @Router       /api/tasks/sync/{noteId} [post]
func (h *TaskHandler) Sync(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user context")
		return
	}
	noteID, err := uuid.Parse(chi.URLParam(r, "noteId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	var req syncTasksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for _, t := range req.Tasks {
		if t.SourceID == "" || t.Title == "" {
			respondError(w, http.StatusBadRequest, "each task needs a sourceId and a title")
			return
		}
	}

	tasks, err := h.service.Sync(r.Context(), userID, noteID, req.Tasks)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, tasks)
}

func taskFiltersFromQuery(r *http.Request) (ports.TaskFilters, error) {
	var filters ports.TaskFilters
	q := r.URL.Query()

	if v := q.Get("done"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filters, errInvalidQuery("done")
		}
		filters.Done = &b
	}
	if v := q.Get("priority"); v != "" {
		priority := domain.TaskPriority(v)
		if !priority.Valid() {
			return filters, errInvalidQuery("priority")
		}
		filters.Priority = &priority
	}
	if v := q.Get("noteId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filters, errInvalidQuery("noteId")
		}
		filters.NoteID = &id
	}
	filters.Search = q.Get("search")

	return filters, nil
}
