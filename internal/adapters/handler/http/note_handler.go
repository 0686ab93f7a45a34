package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/slate-notes/api/internal/core/ports"
)

type NoteHandler struct {
	service ports.NoteService
}

func NewNoteHandler(service ports.NoteService) *NoteHandler {
	return &NoteHandler{service: service}
}

type createNoteRequest struct {
	Title    string          `json:"title"`
	Content  json.RawMessage `json:"content"`
	FolderID *uuid.UUID      `json:"folderId"`
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := h.service.Create(r.Context(), userID, ports.CreateNoteInput{
		Title:    req.Title,
		Content:  normalizeRaw(req.Content),
		FolderID: req.FolderID,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusCreated, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	filters, err := noteFiltersFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	notes, err := h.service.List(r.Context(), userID, filters)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, notes)
}

func (h *NoteHandler) ListTrashed(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	notes, err := h.service.ListTrashed(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, notes)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user context")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	note, err := h.service.GetByID(r.Context(), userID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, note)
}

type updateNoteRequest struct {
	Title      *string         `json:"title"`
	Content    json.RawMessage `json:"content"`
	IsPinned   *bool           `json:"isPinned"`
	IsFavorite *bool           `json:"isFavorite"`
	FolderID   *uuid.UUID      `json:"folderId"`
}

// Update godoc
// @Summary      Applies a partial update; content changes snapshot a version
// @Tags         notes
// @Accept       json
// @Success      200
// @Failure      404
// @Router       /api/notes/{id} [put]
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user context")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var req updateNoteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// A second decode into a raw map tells "folderId absent" apart from
	// "folderId: null" (move to root).
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	_, folderSet := raw["folderId"]

	note, err := h.service.Update(r.Context(), userID, id, ports.UpdateNoteInput{
		Title:      req.Title,
		Content:    normalizeRaw(req.Content),
		IsPinned:   req.IsPinned,
		IsFavorite: req.IsFavorite,
		FolderID:   req.FolderID,
		FolderSet:  folderSet,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, note)
}

// Delete godoc
// @Summary      Trashes a note; deleting a trashed note removes it for good
// @Tags         notes
// @Success      200
// @Failure      404
// @Router       /api/notes/{id} [delete]
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user context")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	permanent, err := h.service.SoftDelete(r.Context(), userID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	message := "Note moved to trash"
	if permanent {
		message = "Note permanently deleted"
	}
	respondData(w, http.StatusOK, map[string]string{"message": message})
}

func (h *NoteHandler) Restore(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user context")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	if err := h.service.Restore(r.Context(), userID, id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]string{"message": "Note restored"})
}

func (h *NoteHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user context")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	versions, err := h.service.ListVersions(r.Context(), userID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, versions)
}

type restoreVersionRequest struct {
	VersionID uuid.UUID `json:"versionId"`
}

func (h *NoteHandler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user context")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	var req restoreVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VersionID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "versionId is required")
		return
	}

	if err := h.service.RestoreVersion(r.Context(), userID, id, req.VersionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]string{"message": "Version restored"})
}

func (h *NoteHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user context")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid note id")
		return
	}
	tagID, err := uuid.Parse(chi.URLParam(r, "tagId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tag id")
		return
	}

	if err := h.service.AddTag(r.Context(), userID, id, tagID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]string{"message": "Tag added to note"})
}

func (h *NoteHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user context")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid note id")
		return
	}
	tagID, err := uuid.Parse(chi.URLParam(r, "tagId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tag id")
		return
	}

	if err := h.service.RemoveTag(r.Context(), userID, id, tagID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]string{"message": "Tag removed from note"})
}

// normalizeRaw treats a JSON null the same as an absent field.
func normalizeRaw(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}

func noteFiltersFromQuery(r *http.Request) (ports.NoteFilters, error) {
	var filters ports.NoteFilters
	q := r.URL.Query()

	if v := q.Get("folderId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filters, errInvalidQuery("folderId")
		}
		filters.FolderID = &id
	}
	if v := q.Get("tagId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filters, errInvalidQuery("tagId")
		}
		filters.TagID = &id
	}
	if v := q.Get("isPinned"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filters, errInvalidQuery("isPinned")
		}
		filters.IsPinned = &b
	}
	if v := q.Get("isFavorite"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filters, errInvalidQuery("isFavorite")
		}
		filters.IsFavorite = &b
	}
	filters.Search = q.Get("search")

	return filters, nil
}
