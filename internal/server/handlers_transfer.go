package server

import (
	"net/http"

	"github.com/claude/setflow/internal/planfile"
)

// maxImportBytes caps the request body accepted by the import endpoint.
const maxImportBytes = 16 << 20

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	plans, err := planfile.Export(r.Context(), s.store)
	if err != nil {
		s.internalError(w, "export plans", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="setflow-plans.json"`)
	if err := planfile.Encode(w, plans); err != nil {
		s.log.Error("export encode", "error", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	plans, err := planfile.Decode(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.editMu.Lock()
	n, err := planfile.Import(r.Context(), s.store, plans)
	s.editMu.Unlock()
	if err != nil {
		s.log.Error("import plans", "imported", n, "total", len(plans), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"imported": n, "error": "internal server error"})
		return
	}

	s.log.Info("plans imported", "count", n)
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}
