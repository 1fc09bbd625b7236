package http

import (
	"context"
	"net/http"
	"strings"

	"saldo/internal/core"
	"saldo/internal/log"
)

// Categories

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	kind := core.CategoryKind(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("kind"))))
	if kind != "" && !kind.Valid() {
		s.fail(w, r, core.NewValidationError("kind", "must be income or expense"), log.OpList)
		return
	}
	items, err := s.deps.References.ListCategories(r.Context(), owner(r), kind)
	if err != nil {
		s.fail(w, r, err, log.OpList)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, newCategoryResponse))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, log.OpCreate)
		return
	}
	created, err := s.deps.References.CreateCategory(r.Context(), owner(r), core.Category{
		Name: strings.TrimSpace(req.Name),
		Kind: core.CategoryKind(strings.ToLower(req.Kind)),
	})
	if err != nil {
		s.fail(w, r, err, log.OpCreate)
		return
	}
	writeJSON(w, http.StatusCreated, newCategoryResponse(created))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.deps.References.DeleteCategory)
}

// Accounts

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	items, err := s.deps.References.ListAccounts(r.Context(), owner(r), activeOnly)
	if err != nil {
		s.fail(w, r, err, log.OpList)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, newAccountResponse))
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req AccountRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, log.OpCreate)
		return
	}
	created, err := s.deps.References.CreateAccount(r.Context(), owner(r), core.Account{
		Name:           strings.TrimSpace(req.Name),
		Type:           core.AccountType(strings.ToLower(req.Type)),
		OpeningBalance: req.OpeningBalance,
		Active:         true,
	})
	if err != nil {
		s.fail(w, r, err, log.OpCreate)
		return
	}
	writeJSON(w, http.StatusCreated, newAccountResponse(created))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		s.fail(w, r, err, log.OpRead)
		return
	}
	a, err := s.deps.References.GetAccount(r.Context(), owner(r), id)
	if err != nil {
		s.fail(w, r, err, log.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, newAccountResponse(a))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.deps.References.DeleteAccount)
}

func (s *Server) handleRecomputeAccount(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		s.fail(w, r, err, log.OpUpdate)
		return
	}
	if _, err := s.deps.References.RecomputeAccount(r.Context(), owner(r), id); err != nil {
		s.fail(w, r, err, log.OpUpdate)
		return
	}
	a, err := s.deps.References.GetAccount(r.Context(), owner(r), id)
	if err != nil {
		s.fail(w, r, err, log.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, newAccountResponse(a))
}

// Savings goals

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.References.ListGoals(r.Context(), owner(r))
	if err != nil {
		s.fail(w, r, err, log.OpList)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, newGoalResponse))
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req GoalRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, log.OpCreate)
		return
	}
	g, err := req.toDomain()
	if err != nil {
		s.fail(w, r, err, log.OpCreate)
		return
	}
	created, err := s.deps.References.CreateGoal(r.Context(), owner(r), g)
	if err != nil {
		s.fail(w, r, err, log.OpCreate)
		return
	}
	writeJSON(w, http.StatusCreated, newGoalResponse(created))
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		s.fail(w, r, err, log.OpRead)
		return
	}
	g, err := s.deps.References.GetGoal(r.Context(), owner(r), id)
	if err != nil {
		s.fail(w, r, err, log.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, newGoalResponse(g))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.deps.References.DeleteGoal)
}

func (s *Server) handleReconcileGoal(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		s.fail(w, r, err, log.OpReconcile)
		return
	}
	before, after, err := s.deps.References.ReconcileGoal(r.Context(), owner(r), id)
	if err != nil {
		s.fail(w, r, err, log.OpReconcile)
		return
	}
	writeJSON(w, http.StatusOK, ReconcileResponse{
		GoalID: id,
		Before: before,
		After:  after,
		Drift:  after.Sub(before),
	})
}

// Budgets

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.References.ListBudgets(r.Context(), owner(r))
	if err != nil {
		s.fail(w, r, err, log.OpList)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, newBudgetResponse))
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req BudgetRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, log.OpCreate)
		return
	}
	created, err := s.deps.References.CreateBudget(r.Context(), owner(r), req.toDomain())
	if err != nil {
		s.fail(w, r, err, log.OpCreate)
		return
	}
	writeJSON(w, http.StatusCreated, newBudgetResponse(created))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.deps.References.DeleteBudget)
}

// Recurring definitions

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.References.ListRecurring(r.Context(), owner(r))
	if err != nil {
		s.fail(w, r, err, log.OpList)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, newRecurringResponse))
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req RecurringRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, log.OpCreate)
		return
	}
	def, err := req.toDomain()
	if err != nil {
		s.fail(w, r, err, log.OpCreate)
		return
	}
	created, err := s.deps.References.CreateRecurring(r.Context(), owner(r), def)
	if err != nil {
		s.fail(w, r, err, log.OpCreate)
		return
	}
	writeJSON(w, http.StatusCreated, newRecurringResponse(created))
}

func (s *Server) handleGetRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		s.fail(w, r, err, log.OpRead)
		return
	}
	def, err := s.deps.References.GetRecurring(r.Context(), owner(r), id)
	if err != nil {
		s.fail(w, r, err, log.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, newRecurringResponse(def))
}

func (s *Server) handleSetRecurringActive(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		s.fail(w, r, err, log.OpUpdate)
		return
	}
	var req ActiveRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, log.OpUpdate)
		return
	}
	if req.Active == nil {
		s.fail(w, r, core.NewValidationError("active", "is required"), log.OpUpdate)
		return
	}
	if err := s.deps.References.SetRecurringActive(r.Context(), owner(r), id, *req.Active); err != nil {
		s.fail(w, r, err, log.OpUpdate)
		return
	}
	def, err := s.deps.References.GetRecurring(r.Context(), owner(r), id)
	if err != nil {
		s.fail(w, r, err, log.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, newRecurringResponse(def))
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.deps.References.DeleteRecurring)
}

func (s *Server) deleteByID(w http.ResponseWriter, r *http.Request, del func(context.Context, string, int64) error) {
	id, err := PathID(r)
	if err != nil {
		s.fail(w, r, err, log.OpDelete)
		return
	}
	if err := del(r.Context(), owner(r), id); err != nil {
		s.fail(w, r, err, log.OpDelete)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
