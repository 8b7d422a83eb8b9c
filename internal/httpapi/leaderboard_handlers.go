package httpapi

import (
	"io"
	"net/http"
	"strings"
)

func (a *API) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.requireAccount(w, r); !ok {
		return
	}
	board, err := a.board.Compute(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (a *API) handleFileDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.requireAccount(w, r); !ok {
		return
	}
	if a.files == nil {
		writeError(w, r, http.StatusServiceUnavailable, "file storage disabled")
		return
	}
	locator := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/files/"), "/")
	if locator == "" || strings.Contains(locator, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	f, err := a.files.Open(r.Context(), locator)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+locator+`"`)
	_, _ = io.Copy(w, f)
}
