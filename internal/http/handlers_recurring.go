package http

import (
	"net/http"

	"saldo/internal/log"
)

// handleProcessRecurring runs the recurring engine for the caller only,
// as of the server's current date. A request body is ignored.
func (s *Server) handleProcessRecurring(w http.ResponseWriter, r *http.Request) {
	o := owner(r)
	if o == "" {
		UnauthorizedError("missing owner").Write(w)
		return
	}

	today := s.today()
	n, err := s.deps.Recurring.ProcessDue(r.Context(), o, today)
	if err != nil {
		s.fail(w, r, err, log.OpProcess)
		return
	}
	writeJSON(w, http.StatusOK, ProcessResponse{Date: today.String(), Processed: n})
}
