package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"equion/internal/apperr"
	"equion/internal/service"
)

// requestValidator validates header-derived structs for the raw-body
// upload endpoint (grounded on the teacher's internal/api/validation.go
// decodeAndValidate, adapted from JSON bodies to HTTP headers since the
// upload endpoint's body is raw bytes, not JSON).
var requestValidator = validator.New()

// FileHandler serves the file download/upload endpoints (spec §4.8).
type FileHandler struct {
	files *service.Files
}

// NewFileHandler constructs a FileHandler.
func NewFileHandler(files *service.Files) *FileHandler {
	return &FileHandler{files: files}
}

// GetFile implements GET /api/v1/files/{id} (spec §6).
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	file, err := h.files.GetFile(r.Context(), id)
	if err != nil {
		badRequest(w, apperr.ErrFileNotFound.Error())
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(file.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Content)
}

// uploadImageHeaders validates the two headers the profile-image upload
// endpoint requires (spec §4.8 "headers X-File-Name and X-Equion-Token").
type uploadImageHeaders struct {
	FileName string `validate:"required"`
	Token    string `validate:"required"`
}

func validateUploadHeaders(r *http.Request) (*uploadImageHeaders, error) {
	h := &uploadImageHeaders{
		FileName: r.Header.Get("X-File-Name"),
		Token:    r.Header.Get("X-Equion-Token"),
	}
	if err := requestValidator.Struct(h); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch strings.ToLower(verrs[0].Field()) {
			case "filename":
				return nil, apperr.ErrNoFileName
			case "token":
				return nil, apperr.ErrNoToken
			}
		}
		return nil, fmt.Errorf("invalid upload headers")
	}
	return h, nil
}

// UpdateUserImage implements POST /api/v1/updateUserImage (spec §4.8: "a
// raw upload with headers X-File-Name and X-Equion-Token … the body is the
// raw bytes").
func (h *FileHandler) UpdateUserImage(w http.ResponseWriter, r *http.Request) {
	headers, err := validateUploadHeaders(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		badRequest(w, apperr.ErrNoFileContent.Error())
		return
	}
	if len(data) == 0 {
		badRequest(w, apperr.ErrNoFileContent.Error())
		return
	}

	if err := h.files.UpdateUserImage(r.Context(), headers.Token, headers.FileName, data); err != nil {
		badRequest(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
