package http

import (
	"net/http"
	"strconv"
	"strings"

	"saldo/internal/core"
	"saldo/internal/log"
)

// handleDashboard builds the overview for the month containing ?date
// (default today).
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	day, err := ParseDateParam(r.URL.Query(), "date")
	if err != nil {
		s.fail(w, r, err, log.OpRead)
		return
	}
	if day.IsEmpty() {
		day = s.today()
	}

	d, err := s.deps.Dashboards.Build(r.Context(), owner(r), day)
	if err != nil {
		s.fail(w, r, err, log.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, newDashboardResponse(d))
}

func (s *Server) handleMonthOverview(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query(), s.today())
	if err != nil {
		s.fail(w, r, err, log.OpRead)
		return
	}
	o, err := s.deps.Dashboards.MonthOverview(r.Context(), owner(r), params.Year, params.Month)
	if err != nil {
		s.fail(w, r, err, log.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, newMonthOverviewResponse(o))
}

func (s *Server) handleEvaluateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		s.fail(w, r, err, log.OpRead)
		return
	}
	e, err := s.deps.Budgets.Evaluate(r.Context(), owner(r), id)
	if err != nil {
		s.fail(w, r, err, log.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, newBudgetEvaluationResponse(e))
}

// handleBudgetMonth evaluates the active budgets of ?year&month.
func (s *Server) handleBudgetMonth(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query(), s.today())
	if err != nil {
		s.fail(w, r, err, log.OpRead)
		return
	}
	items, err := s.deps.Budgets.EvaluateMonth(r.Context(), owner(r), params.Year, params.Month)
	if err != nil {
		s.fail(w, r, err, log.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, newBudgetEvaluationResponse))
}

func (s *Server) handleBudgetAnalysis(w http.ResponseWriter, r *http.Request) {
	year := s.today().Year()
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1900 || y > 9999 {
			s.fail(w, r, core.NewValidationError("year", "must be a valid year"), log.OpRead)
			return
		}
		year = y
	}
	items, err := s.deps.Budgets.Analysis(r.Context(), owner(r), year)
	if err != nil {
		s.fail(w, r, err, log.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, newCategoryAnalysisResponse))
}
