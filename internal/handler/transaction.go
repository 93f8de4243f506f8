package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/centsible/centsible-go/internal/middleware"
	"github.com/centsible/centsible-go/internal/model"
	"github.com/centsible/centsible-go/internal/repository"
	"github.com/centsible/centsible-go/internal/service"
)

// TransactionHandler handles HTTP requests for transaction CRUD.
type TransactionHandler struct {
	service *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(svc *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: svc}
}

// HandleCreate handles POST /api/v1/transactions requests.
func (h *TransactionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.TransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.Create(r.Context(), principal.UserID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleList handles GET /api/v1/transactions requests. Pagination and
// search come from the query string; out-of-range values are clamped
// rather than rejected.
func (h *TransactionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	q := r.URL.Query()
	query := service.ListQuery{
		Page:   queryInt(q.Get("page")),
		Limit:  queryInt(q.Get("limit")),
		Search: q.Get("search"),
	}

	resp, err := h.service.List(r.Context(), principal.UserID, query)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleGet handles GET /api/v1/transactions/{id} requests.
func (h *TransactionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	resp, err := h.service.Get(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleUpdate handles PUT /api/v1/transactions/{id} requests.
func (h *TransactionHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.TransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.Update(r.Context(), principal, chi.URLParam(r, "id"), req)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleDelete handles DELETE /api/v1/transactions/{id} requests.
func (h *TransactionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	if err := h.service.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "transaction deleted"})
}

// queryInt parses a pagination parameter; anything unparsable is zero,
// which the service replaces with its default.
func queryInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
