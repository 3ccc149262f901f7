package handler

import (
	"net/http"
)

// Routes wires the document engine's endpoints onto a mux. Auth and
// request middleware live with the embedding service, not here.
func Routes(docs *DocumentHandler, folders *FolderHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /appeals/{caseID}/folders", folders.CreateCaseFolders)
	mux.HandleFunc("GET /appeals/{caseID}/folders", folders.ListFolders)
	mux.HandleFunc("GET /appeals/{caseID}/folders/{folderID}", folders.GetFolder)

	mux.HandleFunc("POST /appeals/{caseID}/documents", docs.AddDocuments)
	mux.HandleFunc("PATCH /documents", docs.UpdateDocuments)
	mux.HandleFunc("POST /documents/av-status", docs.RecordScanResults)
	mux.HandleFunc("GET /documents/{guid}", docs.GetDocument)
	mux.HandleFunc("GET /documents/{guid}/versions", docs.GetDocumentVersions)
	mux.HandleFunc("POST /documents/{guid}/versions", docs.AddVersion)
	mux.HandleFunc("DELETE /documents/{guid}/versions/{version}", docs.DeleteVersion)
	mux.HandleFunc("POST /documents/{guid}/versions/{version}/av-status", docs.RecordScanResult)
	mux.HandleFunc("PUT /documents/{guid}/versions/{version}/file", docs.UploadFile)
	mux.HandleFunc("GET /documents/{guid}/versions/{version}/download", docs.Download)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return mux
}
