package http

import (
	"net/http"
	"strconv"

	"saldo/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		s.fail(w, r, err, log.OpList)
		return
	}
	limit, err := ParseLimit(r.URL.Query())
	if err != nil {
		s.fail(w, r, err, log.OpList)
		return
	}

	items, err := s.deps.Transactions.List(r.Context(), owner(r), filter, limit)
	if err != nil {
		s.fail(w, r, err, log.OpList)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(items, newTransactionResponse))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		s.fail(w, r, err, log.OpRead)
		return
	}
	t, err := s.deps.Transactions.Get(r.Context(), owner(r), id)
	if err != nil {
		s.fail(w, r, err, log.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, newTransactionResponse(t))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, log.OpCreate)
		return
	}
	t, err := req.toDomain()
	if err != nil {
		s.fail(w, r, err, log.OpCreate)
		return
	}

	created, err := s.deps.Transactions.Create(r.Context(), owner(r), t)
	if err != nil {
		s.fail(w, r, err, log.OpCreate)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+strconv.FormatInt(created.ID, 10)).
		Body(newTransactionResponse(created)).
		Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		s.fail(w, r, err, log.OpUpdate)
		return
	}
	var req TransactionRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, log.OpUpdate)
		return
	}
	t, err := req.toDomain()
	if err != nil {
		s.fail(w, r, err, log.OpUpdate)
		return
	}
	t.ID = id

	updated, err := s.deps.Transactions.Update(r.Context(), owner(r), t)
	if err != nil {
		s.fail(w, r, err, log.OpUpdate)
		return
	}
	writeJSON(w, http.StatusOK, newTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.deps.Transactions.Delete)
}
