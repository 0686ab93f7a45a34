package http

import (
	"io"
	"net/http"

	"github.com/slate-notes/api/internal/core/ports"
)

const maxUploadMemory = 6 << 20 // leave headroom over the 5 MB service cap

type UploadHandler struct {
	service ports.UploadService
}

func NewUploadHandler(service ports.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := userIDFrom(r); !ok {
		respondError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadMemory)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, http.StatusBadRequest, "no file uploaded")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	result, err := h.service.UploadImage(r.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, result)
}
