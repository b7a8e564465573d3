package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/study-cards/internal/apperror"
	"github.com/sakif/study-cards/internal/auth"
	"github.com/sakif/study-cards/internal/service"
	"github.com/sakif/study-cards/internal/upload"
)

const (
	// UploadField is the multipart field carrying the PDF.
	UploadField = "pdfFile"

	// multipartMemory is how much of a form is held in memory before the
	// standard library spills it to disk.
	multipartMemory = 8 << 20

	// multipartOverhead is headroom for boundaries and other form fields on
	// top of the file size limit.
	multipartOverhead = 1 << 20
)

// FlashcardHandler serves the upload pipeline and the set endpoints.
type FlashcardHandler struct {
	flashcards *service.FlashcardService
	maxUpload  int64
	resp       *Responder
	logger     *slog.Logger
}

func NewFlashcardHandler(svc *service.FlashcardService, maxUpload int64, resp *Responder, logger *slog.Logger) *FlashcardHandler {
	if maxUpload <= 0 {
		maxUpload = upload.MaxFileSize
	}
	return &FlashcardHandler{flashcards: svc, maxUpload: maxUpload, resp: resp, logger: logger}
}

// HandleUpload runs the generation pipeline for one PDF.
//
// HTTP: POST /flashcards/upload  (multipart/form-data, field "pdfFile")
//
// The body is capped before parsing, so a huge upload is cut off at the
// limit instead of being buffered in full.
func (h *FlashcardHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig), strings.Contains(err.Error(), "request body too large"):
			h.resp.writeError(w, r, apperror.FileTooLarge(h.maxUpload), "")
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			h.resp.fail(w, http.StatusBadRequest, "No file uploaded. Please upload a PDF file.")
		default:
			h.logger.Warn("multipart parse failed", slog.String("error", err.Error()))
			h.resp.fail(w, http.StatusBadRequest, "File upload error.")
		}
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(UploadField)
	if err != nil {
		h.resp.fail(w, http.StatusBadRequest, "No file uploaded. Please upload a PDF file.")
		return
	}
	defer file.Close()

	set, err := h.flashcards.GenerateFromUpload(r.Context(), userID, UploadField, upload.File{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.resp.writeError(w, r, err, "Failed to generate flashcards.")
		return
	}

	h.resp.ok(w, http.StatusCreated, "Flashcards generated and saved successfully!", set)
}

// HandleList returns every set the caller owns, newest first.
//
// HTTP: GET /flashcards
func (h *FlashcardHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	sets, err := h.flashcards.List(r.Context(), userID)
	if err != nil {
		h.resp.writeError(w, r, err, "Server error fetching flashcard sets")
		return
	}

	count := len(sets)
	writeJSON(w, http.StatusOK, Response{Success: true, Count: &count, Data: sets})
}

// HandleGet returns one set owned by the caller.
//
// HTTP: GET /flashcards/{id}
func (h *FlashcardHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	set, err := h.flashcards.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			h.resp.fail(w, http.StatusNotFound, "Flashcard set not found or access denied.")
			return
		}
		h.resp.writeError(w, r, err, "Server error fetching flashcard set")
		return
	}

	h.resp.ok(w, http.StatusOK, "", set)
}

// HandleDelete removes one set owned by the caller.
//
// HTTP: DELETE /flashcards/{id}
func (h *FlashcardHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.flashcards.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			h.resp.fail(w, http.StatusNotFound, "Flashcard set not found.")
			return
		}
		h.resp.writeError(w, r, err, "Server error deleting flashcard set")
		return
	}

	h.resp.ok(w, http.StatusOK, "Flashcard set deleted successfully.", struct{}{})
}
