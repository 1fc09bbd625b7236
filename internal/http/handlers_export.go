package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"saldo/internal/log"
	"saldo/internal/services"
)

// handleExportCSV renders the whole export before writing, so a failure
// still yields a proper error status.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		s.fail(w, r, err, log.OpExport)
		return
	}

	var buf bytes.Buffer
	n, err := s.deps.Exports.WriteCSV(r.Context(), owner(r), filter, &buf)
	if err != nil {
		s.fail(w, r, err, log.OpExport)
		return
	}

	filename := fmt.Sprintf("transactions-%s.csv", s.today().String())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("X-Export-Rows", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	if !s.deps.Exports.HasSink() {
		ServiceUnavailableError(services.ErrSinkNotConfigured.Error()).Write(w)
		return
	}
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		s.fail(w, r, err, log.OpExport)
		return
	}

	ref, n, err := s.deps.Exports.PushToSheet(r.Context(), owner(r), filter)
	if errors.Is(err, services.ErrSinkNotConfigured) {
		ServiceUnavailableError(err.Error()).Write(w)
		return
	}
	if err != nil {
		s.fail(w, r, err, log.OpExport)
		return
	}
	writeJSON(w, http.StatusOK, SheetExportResponse{Range: ref, Rows: n})
}
