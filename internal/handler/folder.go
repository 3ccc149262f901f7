package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	models "casedocs/internal/domain/models/casework"
	caseSvc "casedocs/internal/domain/services/casework"
	"casedocs/internal/httputil"
	"casedocs/internal/service/casework"
)

// FolderHandler serves folder queries and case folder creation.
type FolderHandler struct {
	docService caseSvc.DocumentService
	formatter  *casework.Formatter
	logger     *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(docService caseSvc.DocumentService, formatter *casework.Formatter, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{docService: docService, formatter: formatter, logger: logger}
}

// CreateCaseFolders instantiates the default folder set for a case.
// POST /appeals/{caseID}/folders
func (h *FolderHandler) CreateCaseFolders(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathInt64(w, r, "caseID")
	if !ok {
		return
	}

	folders, err := h.docService.CreateCaseFolders(r.Context(), caseID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folders)
}

// ListFolders lists a case's folders, optionally narrowed to a stage.
// GET /appeals/{caseID}/folders?stage=
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathInt64(w, r, "caseID")
	if !ok {
		return
	}

	folders, err := h.docService.GetFoldersForCase(r.Context(), caseID, r.URL.Query().Get("stage"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	views := make([]models.FolderView, 0, len(folders))
	for i := range folders {
		if view := h.formatter.FormatFolder(r.Context(), &folders[i]); view != nil {
			views = append(views, *view)
		}
	}

	httputil.RespondJSON(w, http.StatusOK, views)
}

// GetFolder returns one folder with its live documents.
// GET /appeals/{caseID}/folders/{folderID}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathInt64(w, r, "caseID")
	if !ok {
		return
	}
	folderID, ok := pathInt64(w, r, "folderID")
	if !ok {
		return
	}

	folder, err := h.docService.GetFolder(r.Context(), caseID, folderID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	view := h.formatter.FormatFolder(r.Context(), folder)
	if view == nil {
		httputil.RespondError(w, http.StatusNotFound, "folder not found")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}

// pathInt64 parses a numeric path value, writing a 400 on failure.
func pathInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || v < 1 {
		httputil.RespondError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}
