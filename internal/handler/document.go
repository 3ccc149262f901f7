package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	models "casedocs/internal/domain/models/casework"
	caseRepo "casedocs/internal/domain/repositories/casework"
	caseSvc "casedocs/internal/domain/services/casework"
	"casedocs/internal/httputil"
	"casedocs/internal/service/casework"
)

// DocumentHandler serves the document/version lifecycle endpoints.
type DocumentHandler struct {
	docService caseSvc.DocumentService
	downloads  *casework.DownloadService
	auditRepo  caseRepo.AuditRepository
	formatter  *casework.Formatter
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(
	docService caseSvc.DocumentService,
	downloads *casework.DownloadService,
	auditRepo caseRepo.AuditRepository,
	formatter *casework.Formatter,
	logger *slog.Logger,
) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		downloads:  downloads,
		auditRepo:  auditRepo,
		formatter:  formatter,
		logger:     logger,
	}
}

// AddDocuments persists an upload batch for a case.
// POST /appeals/{caseID}/documents
func (h *DocumentHandler) AddDocuments(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathInt64(w, r, "caseID")
	if !ok {
		return
	}

	var req caseSvc.AddDocumentsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.CaseID = caseID

	created, err := h.docService.AddDocuments(r.Context(), &req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, created)
}

// GetDocument returns a document with its latest version and audit.
// GET /documents/{guid}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	h.getDocument(w, r, false)
}

// GetDocumentVersions returns a document with its full version chain.
// GET /documents/{guid}/versions
func (h *DocumentHandler) GetDocumentVersions(w http.ResponseWriter, r *http.Request) {
	h.getDocument(w, r, true)
}

func (h *DocumentHandler) getDocument(w http.ResponseWriter, r *http.Request, withVersions bool) {
	guid := r.PathValue("guid")

	var (
		doc *models.Document
		err error
	)
	if withVersions {
		doc, err = h.docService.GetDocumentWithVersions(r.Context(), guid)
	} else {
		doc, err = h.docService.GetDocument(r.Context(), guid)
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}

	view := h.formatter.FormatDocument(r.Context(), doc, withVersions)

	if audit, err := h.auditRepo.ListVersionAudit(r.Context(), guid); err == nil && audit != nil {
		view.VersionAudit = audit
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}

// AddVersion appends a new version to an existing document.
// POST /documents/{guid}/versions
func (h *DocumentHandler) AddVersion(w http.ResponseWriter, r *http.Request) {
	var req caseSvc.AddVersionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.DocumentGUID = r.PathValue("guid")

	created, err := h.docService.AddVersion(r.Context(), &req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if created == nil {
		// Empty result means nothing was added
		httputil.RespondJSON(w, http.StatusOK, struct{}{})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, created)
}

// DeleteVersion soft-deletes one version.
// DELETE /documents/{guid}/versions/{version}
func (h *DocumentHandler) DeleteVersion(w http.ResponseWriter, r *http.Request) {
	guid := r.PathValue("guid")
	version, ok := pathInt(w, r, "version")
	if !ok {
		return
	}

	deleted, err := h.docService.DeleteVersion(r.Context(), guid, version)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !deleted {
		httputil.RespondError(w, http.StatusNotFound, "version not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// avStatusRequest is the scanner's verdict callback body.
type avStatusRequest struct {
	VirusCheckStatus models.VirusCheckStatus `json:"virusCheckStatus"`
}

// RecordScanResult records an externally reported scan verdict.
// POST /documents/{guid}/versions/{version}/av-status
func (h *DocumentHandler) RecordScanResult(w http.ResponseWriter, r *http.Request) {
	guid := r.PathValue("guid")
	version, ok := pathInt(w, r, "version")
	if !ok {
		return
	}

	var req avStatusRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.docService.RecordScanResult(r.Context(), guid, version, req.VirusCheckStatus); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RecordScanResults records a batch of scan verdicts.
// POST /documents/av-status
func (h *DocumentHandler) RecordScanResults(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Documents []caseSvc.ScanResult `json:"documents"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.docService.RecordScanResults(r.Context(), req.Documents); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateDocuments applies a bulk metadata update.
// PATCH /documents
func (h *DocumentHandler) UpdateDocuments(w http.ResponseWriter, r *http.Request) {
	var req caseSvc.UpdateDocumentsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.docService.UpdateDocuments(r.Context(), &req); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Download streams a scanned version's bytes.
// GET /documents/{guid}/versions/{version}/download
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	guid := r.PathValue("guid")
	version, ok := pathInt(w, r, "version")
	if !ok {
		return
	}

	stream, v, err := h.downloads.Download(r.Context(), guid, version)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	defer stream.Close()

	if v.Mime != "" {
		w.Header().Set("Content-Type", v.Mime)
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+casework.StripDedupePrefix(v.FileName)+`"`)

	if _, err := io.Copy(w, stream); err != nil {
		h.logger.Error("download stream interrupted",
			"guid", guid,
			"version", version,
			"error", err,
		)
	}
}

// UploadFile stores a version's bytes at the location derived when the
// version row was created.
// PUT /documents/{guid}/versions/{version}/file
func (h *DocumentHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	guid := r.PathValue("guid")
	version, ok := pathInt(w, r, "version")
	if !ok {
		return
	}

	if err := h.downloads.UploadVersion(r.Context(), guid, version, r.Body); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathInt parses a small numeric path value, writing a 400 on failure.
func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(r.PathValue(name))
	if err != nil || v < 1 {
		httputil.RespondError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}
